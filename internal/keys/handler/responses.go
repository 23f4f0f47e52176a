package handler

import "orcs/internal/keys/models"

// ReconcileResponse lists keys whose row disagrees with the transfer ledger.
type ReconcileResponse struct {
	Consistent      bool                   `json:"consistent"`
	Inconsistencies []models.Inconsistency `json:"inconsistencies"`
}
