package members

import (
	"orcs/pkg/domain"
	strutil "orcs/pkg/string"
)

// Apply returns the members matching f, keeping their order. Search matches
// the display name ignoring case and accents.
func (f Filter) Apply(members []Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if f.Search != "" && !strutil.ContainsFolded(m.Name(), f.Search) {
			continue
		}
		if f.Activity != "" && !m.HasActivity(f.Activity) {
			continue
		}
		if f.Status != "" && m.MembershipStatus != f.Status {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ComputeStats counts members by status. boardIDs are the users holding an
// active board seat.
func ComputeStats(members []Member, boardIDs []domain.UserID) Stats {
	board := make(map[domain.UserID]struct{}, len(boardIDs))
	for _, id := range boardIDs {
		board[id] = struct{}{}
	}
	st := Stats{Total: len(members)}
	for _, m := range members {
		switch m.MembershipStatus {
		case domain.MembershipPending:
			st.Pending++
		case domain.MembershipActive:
			st.Active++
		case domain.MembershipInactive:
			st.Inactive++
		}
		if _, ok := board[m.ID]; ok {
			st.Board++
		}
	}
	return st
}
