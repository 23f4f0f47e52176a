package session

// Area names a gated page.
type Area string

const (
	AreaProfile Area = "profile"
	AreaAdmin   Area = "admin"
	AreaMembers Area = "members"
	AreaKeys    Area = "keys"
)

// Access is a gating decision.
type Access int

const (
	AccessAllowed Access = iota
	// AccessPending means capabilities are still loading; ask again shortly.
	AccessPending
	// AccessLogin sends the visitor to the login page.
	AccessLogin
	// AccessDenied sends the visitor home.
	AccessDenied
)

const (
	LoginPath = "/connexion"
	HomePath  = "/"
)

func (a Access) String() string {
	switch a {
	case AccessAllowed:
		return "allowed"
	case AccessPending:
		return "pending"
	case AccessLogin:
		return "login"
	default:
		return "denied"
	}
}

// Redirect is where a refused visitor goes, or "" when nothing to do.
func (a Access) Redirect() string {
	switch a {
	case AccessLogin:
		return LoginPath
	case AccessDenied:
		return HomePath
	}
	return ""
}

// Access decides whether the snapshot may enter area:
//
//	profile  signed in, else login
//	admin    signed in (else login) and admin (else home)
//	members  admin and board officer, else home
//	keys     committee member, else home
func (s Snapshot) Access(area Area) Access {
	if s.IsLoading {
		return AccessPending
	}
	switch area {
	case AreaProfile:
		if s.User == nil {
			return AccessLogin
		}
		return AccessAllowed
	case AreaAdmin:
		if s.User == nil {
			return AccessLogin
		}
		if !s.IsAdmin {
			return AccessDenied
		}
		return AccessAllowed
	case AreaMembers:
		if !s.IsAdminBoardMember {
			return AccessDenied
		}
		return AccessAllowed
	case AreaKeys:
		if !s.IsCAMember {
			return AccessDenied
		}
		return AccessAllowed
	}
	return AccessDenied
}
