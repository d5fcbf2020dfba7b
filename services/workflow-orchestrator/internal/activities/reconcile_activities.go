package activities

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/identity"
	"github.com/solushipx/logisynapse/shared/rabbitmq"
)

// UnmatchedQueue receives one UnmatchedNotice per batch with unmatched terms.
const UnmatchedQueue = "reconcile_unmatched"

// Searcher is the matcher entry point the activities drive.
type Searcher interface {
	ManualSearch(ctx context.Context, caller *identity.Identity, req matcher.SearchRequest) (*matcher.SearchResponse, error)
}

// ReconcileActivities hosts the activities of BatchReconcileWorkflow.
type ReconcileActivities struct {
	Searcher Searcher
	Queue    rabbitmq.QueuePublisher
}

// SearchTermInput is one term of a batch plus who is asking.
type SearchTermInput struct {
	UserID    uuid.UUID `json:"userID"`
	CompanyID string    `json:"companyID,omitempty"`
	Term      string    `json:"term"`
}

// SearchTerm runs a manual search for one term. A failed lookup is returned
// as an error so the workflow's retry policy applies; a missing caller is
// not retryable.
func (a *ReconcileActivities) SearchTerm(ctx context.Context, in SearchTermInput) (contracts.TermResult, error) {
	caller, err := callerFor(in.UserID, in.CompanyID)
	if err != nil {
		return contracts.TermResult{}, err
	}
	resp, err := a.Searcher.ManualSearch(ctx, caller, matcher.SearchRequest{SearchTerm: in.Term})
	if errors.Is(err, identity.ErrUnauthenticated) {
		return contracts.TermResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "Unauthenticated", err)
	}
	if err != nil {
		return contracts.TermResult{}, err
	}
	if !resp.Success {
		return contracts.TermResult{}, errors.New(resp.Message)
	}

	result := contracts.TermResult{Term: in.Term, ShipmentIDs: make([]string, 0, len(resp.Matches))}
	for _, m := range resp.Matches {
		result.ShipmentIDs = append(result.ShipmentIDs, m.Shipment.ID)
	}
	activity.GetLogger(ctx).Info("term searched", "term", in.Term, "matches", len(result.ShipmentIDs))
	return result, nil
}

// NotifyUnmatched queues the unmatched terms of a batch for operations.
func (a *ReconcileActivities) NotifyUnmatched(ctx context.Context, notice contracts.UnmatchedNotice) error {
	if len(notice.Terms) == 0 {
		return nil
	}
	if notice.QueuedAt.IsZero() {
		notice.QueuedAt = time.Now().UTC()
	}
	return rabbitmq.PublishJSON(ctx, a.Queue, UnmatchedQueue, notice)
}

func callerFor(userID uuid.UUID, companyID string) (*identity.Identity, error) {
	if userID == uuid.Nil {
		return nil, temporal.NewNonRetryableApplicationError(identity.ErrUnauthenticated.Error(), "Unauthenticated", identity.ErrUnauthenticated)
	}
	return &identity.Identity{UserID: userID, CompanyID: companyID, Role: identity.RoleOperator}, nil
}
