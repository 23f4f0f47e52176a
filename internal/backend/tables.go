package backend

// Tables of the hosted data API.
const (
	TableProfiles           = "profiles"
	TableUserRoles          = "user_roles"
	TableBoardMembers       = "board_members"
	TableKeys               = "keys"
	TableKeyTransfers       = "key_transfers"
	TableEvents             = "events"
	TableEventRegistrations = "event_registrations"
	TableCommunityRequests  = "community_access_requests"
)

// RPC functions of the hosted data API.
const (
	// FnConfirmKeyTransfer marks a pending transfer confirmed and hands the
	// key to its recipient in one transaction. Args: {"transfer_id": uuid}.
	FnConfirmKeyTransfer = "confirm_key_transfer"
)
