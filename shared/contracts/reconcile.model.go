package contracts

import (
	"time"

	"github.com/google/uuid"
)

// EventReconcileRequested asks the orchestrator to reconcile a batch of
// scanned references.
const EventReconcileRequested = "reconcile.requested"

// ReconcileRequest is the payload of EventReconcileRequested. The batch is
// searched as UserID, exactly as if they had typed each term themselves.
type ReconcileRequest struct {
	BatchID   string    `json:"batchID"`
	UserID    uuid.UUID `json:"userID"`
	CompanyID string    `json:"companyID,omitempty"`
	Terms     []string  `json:"terms"`
}

// TermResult is the outcome of searching one term of a batch.
type TermResult struct {
	Term        string   `json:"term"`
	ShipmentIDs []string `json:"shipmentIDs"`
}

// Matched reports whether the term found at least one shipment.
func (r TermResult) Matched() bool {
	return len(r.ShipmentIDs) > 0
}

// ReconcileReport is the result of a BatchReconcileWorkflow run. Results are
// in the order the terms were submitted.
type ReconcileReport struct {
	BatchID   string       `json:"batchID"`
	Results   []TermResult `json:"results"`
	Unmatched []string     `json:"unmatched,omitempty"`
}

// Sources of an UnmatchedNotice.
const (
	SourceBatch        = "batch"
	SourceManualSearch = "manual_search"
)

// UnmatchedNotice is the job queued for operations when a batch, or a manual
// search, leaves terms without a match. BatchID is empty for manual searches.
type UnmatchedNotice struct {
	Source    string    `json:"source"`
	BatchID   string    `json:"batchID,omitempty"`
	UserID    uuid.UUID `json:"userID"`
	CompanyID string    `json:"companyID,omitempty"`
	Terms     []string  `json:"terms"`
	QueuedAt  time.Time `json:"queuedAt"`
}
