package memory

import (
	"time"

	"github.com/google/uuid"

	"orcs/internal/backend"
	"orcs/pkg/domain"
)

// tableSchema mirrors the column defaults, unique constraints and enum
// orderings of the hosted database.
type tableSchema struct {
	defaults func(now time.Time) map[string]any
	unique   [][]string
	enums    map[string]func(string) int
}

func timestamp(t time.Time) string { return t.Format(time.RFC3339Nano) }

func date(t time.Time) string { return t.Format(time.DateOnly) }

func newID() string { return uuid.NewString() }

var schemas = map[string]tableSchema{
	backend.TableProfiles: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"full_name":         nil,
				"avatar_url":        nil,
				"membership_status": string(domain.MembershipPending),
				"activities":        []any{},
				"created_at":        timestamp(now),
				"updated_at":        timestamp(now),
			}
		},
		unique: [][]string{{"id"}},
	},
	backend.TableUserRoles: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{"id": newID(), "created_at": timestamp(now)}
		},
		unique: [][]string{{"id"}, {"user_id", "role"}},
	},
	backend.TableBoardMembers: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"id":         newID(),
				"is_active":  true,
				"start_date": date(now),
				"end_date":   nil,
				"created_at": timestamp(now),
			}
		},
		unique: [][]string{{"id"}},
		enums: map[string]func(string) int{
			"board_role": func(v string) int { return domain.BoardRole(v).Rank() },
		},
	},
	backend.TableKeys: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"id":                newID(),
				"current_holder_id": nil,
				"status":            "available",
				"created_at":        timestamp(now),
				"updated_at":        timestamp(now),
			}
		},
		unique: [][]string{{"id"}, {"key_number"}},
	},
	backend.TableKeyTransfers: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"id":            newID(),
				"from_user_id":  nil,
				"transfer_date": timestamp(now),
				"confirmed":     false,
				"confirmed_at":  nil,
				"created_at":    timestamp(now),
			}
		},
		unique: [][]string{{"id"}},
	},
	backend.TableEvents: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"id":                 newID(),
				"description":        nil,
				"end_date":           nil,
				"location":           nil,
				"price":              0,
				"max_participants":   nil,
				"payment_link":       nil,
				"is_recurring":       false,
				"recurrence_pattern": nil,
				"created_by":         nil,
				"created_at":         timestamp(now),
				"updated_at":         timestamp(now),
			}
		},
		unique: [][]string{{"id"}},
	},
	backend.TableEventRegistrations: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"id":            newID(),
				"status":        "registered",
				"registered_at": timestamp(now),
			}
		},
		unique: [][]string{{"id"}, {"event_id", "user_id"}},
	},
	backend.TableCommunityRequests: {
		defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"id":         newID(),
				"status":     "pending",
				"created_at": timestamp(now),
				"updated_at": timestamp(now),
			}
		},
		unique: [][]string{{"id"}, {"user_id", "community"}},
	},
}

func schemaFor(table string) tableSchema {
	if s, ok := schemas[table]; ok {
		return s
	}
	return tableSchema{
		defaults: func(time.Time) map[string]any { return map[string]any{"id": newID()} },
		unique:   [][]string{{"id"}},
	}
}
