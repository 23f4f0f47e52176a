package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"orcs/internal/keys/models"
	"orcs/pkg/domain"
	"orcs/pkg/testutil"
)

func TestFindInconsistencies(t *testing.T) {
	ids := testutil.TestIDs
	admin, member := ids.AdminID, ids.MemberID
	ledger := func(key domain.KeyID, to domain.UserID) models.Transfer {
		return models.Transfer{ID: domain.TransferID(key), KeyID: key, ToUserID: to, Confirmed: true}
	}

	tests := []struct {
		name   string
		key    models.Key
		ledger []models.Transfer
		want   models.InconsistencyKind
	}{
		{
			name: "held without holder",
			key:  models.Key{ID: ids.Key1, Status: models.KeyHeld},
			want: models.StatusHolderMismatch,
		},
		{
			name: "available with holder",
			key:  models.Key{ID: ids.Key1, Status: models.KeyAvailable, CurrentHolderID: &admin},
			want: models.StatusHolderMismatch,
		},
		{
			name:   "ledger names someone else",
			key:    models.Key{ID: ids.Key1, Status: models.KeyHeld, CurrentHolderID: &admin},
			ledger: []models.Transfer{ledger(ids.Key1, member)},
			want:   models.LedgerHolderMismatch,
		},
		{
			name:   "ledger agrees",
			key:    models.Key{ID: ids.Key1, Status: models.KeyHeld, CurrentHolderID: &member},
			ledger: []models.Transfer{ledger(ids.Key1, member), ledger(ids.Key1, admin)},
		},
		{
			name: "held with no ledger entry",
			key:  models.Key{ID: ids.Key1, Status: models.KeyHeld, CurrentHolderID: &admin},
		},
		{
			name:   "other key's ledger is ignored",
			key:    models.Key{ID: ids.Key1, Status: models.KeyAvailable},
			ledger: []models.Transfer{ledger(ids.Key2, member)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findInconsistencies([]models.Key{tt.key}, latestByKey(tt.ledger))
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			if assert.Len(t, got, 1) {
				assert.Equal(t, tt.want, got[0].Kind)
				assert.Equal(t, tt.key.ID, got[0].KeyID)
			}
		})
	}
}

func TestLatestByKeyKeepsFirst(t *testing.T) {
	ids := testutil.TestIDs
	newest := models.Transfer{ID: domain.TransferID(ids.Key3), KeyID: ids.Key1, ToUserID: ids.MemberID}
	older := models.Transfer{ID: domain.TransferID(ids.Key2), KeyID: ids.Key1, ToUserID: ids.AdminID}

	latest := latestByKey([]models.Transfer{newest, older})
	assert.Equal(t, newest, latest[ids.Key1])
}
