package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/solushipx/logisynapse/services/workflow-orchestrator/internal/workflow"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/kafka"
)

// MockStarter records workflow starts.
type MockStarter struct {
	Options []client.StartWorkflowOptions
	Args    [][]interface{}
	Err     error
}

func (m *MockStarter) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Options = append(m.Options, options)
	m.Args = append(m.Args, args)
	return nil, nil
}

func encode(t *testing.T, event string, payload interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(kafka.Event{Event: event, Payload: payload})
	require.NoError(t, err)
	return b
}

func TestHandle_StartsWorkflow(t *testing.T) {
	starter := &MockStarter{}
	b := New(starter, nil)
	req := contracts.ReconcileRequest{BatchID: "b-7", UserID: uuid.New(), CompanyID: "acme", Terms: []string{"SHP-1", "SHP-2"}}

	require.NoError(t, b.Handle(context.Background(), []byte("b-7"), encode(t, contracts.EventReconcileRequested, req)))

	require.Len(t, starter.Options, 1)
	assert.Equal(t, "reconcile-b-7", starter.Options[0].ID)
	assert.Equal(t, workflow.TaskQueue, starter.Options[0].TaskQueue)
	require.Len(t, starter.Args[0], 1)
	assert.Equal(t, req, starter.Args[0][0])
}

func TestHandle_SkipsWhatItCannotUse(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
	}{
		{"not json", []byte("{")},
		{"other event", encode(t, "shipment.created", map[string]string{"id": "x"})},
		{"no batch id", encode(t, contracts.EventReconcileRequested, contracts.ReconcileRequest{Terms: []string{"A"}})},
		{"no terms", encode(t, contracts.EventReconcileRequested, contracts.ReconcileRequest{BatchID: "b"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starter := &MockStarter{}
			assert.NoError(t, New(starter, nil).Handle(context.Background(), nil, tt.value))
			assert.Empty(t, starter.Options)
		})
	}
}

func TestHandle_StartFailureIsRetried(t *testing.T) {
	starter := &MockStarter{Err: errors.New("temporal unavailable")}
	req := contracts.ReconcileRequest{BatchID: "b-8", UserID: uuid.New(), Terms: []string{"SHP-1"}}

	err := New(starter, nil).Handle(context.Background(), nil, encode(t, contracts.EventReconcileRequested, req))
	assert.ErrorContains(t, err, "temporal unavailable")
}
