package memory

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"orcs/internal/backend"
	"orcs/pkg/domain"
)

//go:embed fixtures/dev.yaml
var devFixtures []byte

// Fixtures seeds accounts and raw table rows.
type Fixtures struct {
	Users  []UserFixture               `yaml:"users"`
	Tables map[string][]map[string]any `yaml:"tables"`
}

// UserFixture describes an account and the rows hanging off it.
type UserFixture struct {
	ID               string   `yaml:"id"`
	Email            string   `yaml:"email"`
	Password         string   `yaml:"password"`
	FullName         string   `yaml:"full_name"`
	Unconfirmed      bool     `yaml:"unconfirmed"`
	MembershipStatus string   `yaml:"membership_status"`
	Activities       []string `yaml:"activities"`
	Roles            []string `yaml:"roles"`
	BoardRole        string   `yaml:"board_role"`
}

// LoadFixtures reads a YAML fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	return parseFixtures(raw)
}

// DevFixtures returns the built-in development data set.
func DevFixtures() (*Fixtures, error) {
	return parseFixtures(devFixtures)
}

func parseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	return &f, nil
}

// Apply seeds the backend. Tables are loaded in name order after the users.
func (b *Backend) Apply(f *Fixtures) error {
	for _, u := range f.Users {
		if _, err := b.AddUser(u); err != nil {
			return fmt.Errorf("seeding user %s: %w", u.Email, err)
		}
	}
	for _, table := range slices.Sorted(maps.Keys(f.Tables)) {
		for i, raw := range f.Tables[table] {
			r, err := toRow(raw)
			if err != nil {
				return fmt.Errorf("seeding %s[%d]: %w", table, i, err)
			}
			b.mu.Lock()
			_, err = b.insertRow(table, r)
			b.mu.Unlock()
			if err != nil {
				return fmt.Errorf("seeding %s[%d]: %w", table, i, err)
			}
		}
	}
	return nil
}

// AddUser creates an account with its profile, role tags and, when
// BoardRole is set, an active board assignment.
func (b *Backend) AddUser(u UserFixture) (domain.UserID, error) {
	var id domain.UserID
	if u.ID != "" {
		parsed, err := domain.ParseUserID(u.ID)
		if err != nil {
			return id, err
		}
		id = parsed
	}
	var metadata map[string]any
	if u.FullName != "" {
		metadata = map[string]any{"full_name": u.FullName}
	}
	acc, err := b.createAccount(id, normalizeEmail(u.Email), u.Password, !u.Unconfirmed, metadata)
	if err != nil {
		return id, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	patch := row{}
	if u.MembershipStatus != "" {
		patch["membership_status"] = u.MembershipStatus
	}
	if u.Activities != nil {
		patch["activities"] = toAnySlice(u.Activities)
	}
	if len(patch) > 0 {
		if _, err := b.updateRows(backend.From(backend.TableProfiles).Eq("id", acc.id), patch); err != nil {
			return acc.id, err
		}
	}
	for _, role := range u.Roles {
		if err := b.upsertRow(backend.TableUserRoles, row{"user_id": acc.id.String(), "role": role}, "user_id,role"); err != nil {
			return acc.id, err
		}
	}
	if u.BoardRole != "" {
		if _, err := b.insertRow(backend.TableBoardMembers, row{"user_id": acc.id.String(), "board_role": u.BoardRole}); err != nil {
			return acc.id, err
		}
	}
	return acc.id, nil
}

func toAnySlice(xs []string) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
