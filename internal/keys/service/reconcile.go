package service

import (
	"context"

	"orcs/internal/keys/models"
	"orcs/pkg/domain"
	"orcs/pkg/platform/audit"
)

// Reconcile compares every key against itself and against the latest
// confirmed transfer for it. Findings are logged, audited and exported as a
// gauge; nothing is repaired.
func (s *Service) Reconcile(ctx context.Context) ([]models.Inconsistency, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, translate(err, "failed to list keys")
	}
	ledger, err := s.store.ListConfirmed(ctx, 0)
	if err != nil {
		return nil, translate(err, "failed to read transfer ledger")
	}

	found := findInconsistencies(keys, latestByKey(ledger))
	for _, inc := range found {
		s.logger.WarnContext(ctx, "key custody inconsistency",
			"key_id", inc.KeyID.String(),
			"key_number", inc.KeyNumber,
			"kind", string(inc.Kind),
		)
		s.audit.Log(ctx, audit.EventKeyInconsistency,
			"actor_id", actor(ctx),
			"subject", inc.KeyID.String(),
			"reason", string(inc.Kind),
		)
	}
	if s.metrics != nil {
		s.metrics.SetKeyInconsistencies(len(found))
	}
	return found, nil
}

// latestByKey expects transfers ordered by confirmed_at descending.
func latestByKey(transfers []models.Transfer) map[domain.KeyID]models.Transfer {
	latest := make(map[domain.KeyID]models.Transfer)
	for _, t := range transfers {
		if _, seen := latest[t.KeyID]; !seen {
			latest[t.KeyID] = t
		}
	}
	return latest
}

func findInconsistencies(keys []models.Key, latest map[domain.KeyID]models.Transfer) []models.Inconsistency {
	found := []models.Inconsistency{}
	for _, k := range keys {
		if k.Held() != (k.CurrentHolderID != nil) {
			found = append(found, models.Inconsistency{
				KeyID:     k.ID,
				KeyNumber: k.KeyNumber,
				Kind:      models.StatusHolderMismatch,
				HolderID:  k.CurrentHolderID,
			})
			continue
		}
		t, ok := latest[k.ID]
		if !ok {
			continue
		}
		if k.CurrentHolderID == nil || *k.CurrentHolderID != t.ToUserID {
			to, id := t.ToUserID, t.ID
			found = append(found, models.Inconsistency{
				KeyID:          k.ID,
				KeyNumber:      k.KeyNumber,
				Kind:           models.LedgerHolderMismatch,
				HolderID:       k.CurrentHolderID,
				LedgerHolderID: &to,
				TransferID:     &id,
			})
		}
	}
	return found
}
