package workflow

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/solushipx/logisynapse/services/workflow-orchestrator/internal/activities"
	"github.com/solushipx/logisynapse/shared/contracts"
)

// TaskQueue is polled by the orchestrator worker.
const TaskQueue = "RECONCILE_TASK_QUEUE"

// WorkflowID is the ID a batch runs under, so a redelivered request maps to
// the same execution.
func WorkflowID(batchID string) string {
	return "reconcile-" + batchID
}

// BatchReconcileWorkflow searches every term of a batch and queues the terms
// that matched nothing for operations.
func BatchReconcileWorkflow(ctx workflow.Context, req contracts.ReconcileRequest) (contracts.ReconcileReport, error) {
	// a term whose lookups fail is searched again with backoff, for about
	// an hour and a half before the batch gives up
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    100,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)
	logger := workflow.GetLogger(ctx)

	var a *activities.ReconcileActivities

	// Step 1: search all terms at once; results are read back in input order
	var terms []string
	var futures []workflow.Future
	for _, term := range req.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		futures = append(futures, workflow.ExecuteActivity(ctx, a.SearchTerm, activities.SearchTermInput{
			UserID:    req.UserID,
			CompanyID: req.CompanyID,
			Term:      term,
		}))
	}

	report := contracts.ReconcileReport{BatchID: req.BatchID, Results: make([]contracts.TermResult, 0, len(futures))}
	for i, f := range futures {
		var res contracts.TermResult
		if err := f.Get(ctx, &res); err != nil {
			logger.Error("term search failed", "batchID", req.BatchID, "term", terms[i], "error", err)
			return contracts.ReconcileReport{}, err
		}
		report.Results = append(report.Results, res)
		if !res.Matched() {
			report.Unmatched = append(report.Unmatched, res.Term)
		}
	}

	// Step 2: hand the leftovers to operations
	if len(report.Unmatched) > 0 {
		notice := contracts.UnmatchedNotice{
			Source:    contracts.SourceBatch,
			BatchID:   req.BatchID,
			UserID:    req.UserID,
			CompanyID: req.CompanyID,
			Terms:     report.Unmatched,
			QueuedAt:  workflow.Now(ctx).UTC(),
		}
		if err := workflow.ExecuteActivity(ctx, a.NotifyUnmatched, notice).Get(ctx, nil); err != nil {
			return contracts.ReconcileReport{}, err
		}
	}

	logger.Info("batch reconciled", "batchID", req.BatchID, "terms", len(report.Results), "unmatched", len(report.Unmatched))
	return report, nil
}
