// Package bridge turns reconcile requests arriving on Kafka into workflow runs.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/services/workflow-orchestrator/internal/workflow"
	"github.com/solushipx/logisynapse/shared/contracts"
)

// WorkflowStarter is the part of the Temporal client the bridge uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

type requestEvent struct {
	Event   string                     `json:"event"`
	Payload contracts.ReconcileRequest `json:"payload"`
}

// ReconcileBridge starts one BatchReconcileWorkflow per request event.
type ReconcileBridge struct {
	starter WorkflowStarter
	logger  *zap.Logger
}

func New(starter WorkflowStarter, logger *zap.Logger) *ReconcileBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileBridge{starter: starter, logger: logger}
}

// Handle is a kafka.Handler. Malformed or foreign messages are logged and
// skipped; a failed start is returned so the message is redelivered.
func (b *ReconcileBridge) Handle(ctx context.Context, key, value []byte) error {
	var evt requestEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		b.logger.Warn("skipping unreadable reconcile message", zap.ByteString("key", key), zap.Error(err))
		return nil
	}
	if evt.Event != contracts.EventReconcileRequested {
		return nil
	}
	req := evt.Payload
	if req.BatchID == "" || len(req.Terms) == 0 {
		b.logger.Warn("skipping reconcile request without batch or terms", zap.String("batch_id", req.BatchID))
		return nil
	}

	// a redelivered request for a running batch gets the existing run back
	opts := client.StartWorkflowOptions{
		ID:        workflow.WorkflowID(req.BatchID),
		TaskQueue: workflow.TaskQueue,
	}
	run, err := b.starter.ExecuteWorkflow(ctx, opts, workflow.BatchReconcileWorkflow, req)
	if err != nil {
		return fmt.Errorf("failed to start reconcile workflow for batch %s: %w", req.BatchID, err)
	}
	fields := []zap.Field{zap.String("workflow_id", opts.ID), zap.Int("terms", len(req.Terms))}
	if run != nil {
		fields = append(fields, zap.String("run_id", run.GetRunID()))
	}
	b.logger.Info("reconcile workflow started", fields...)
	return nil
}
