package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/kafka"
)

func TestHandleUnmatched(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewNotifier(zap.New(core))

	body, err := json.Marshal(contracts.UnmatchedNotice{
		Source:   contracts.SourceBatch,
		BatchID:  "b-9",
		UserID:   uuid.New(),
		Terms:    []string{"NOPE-1", "NOPE-2"},
		QueuedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, n.HandleUnmatched(context.Background(), body))

	sent := logs.FilterMessage("ops notification sent").All()
	require.Len(t, sent, 1)
	fields := sent[0].ContextMap()
	assert.Equal(t, "Batch b-9: 2 unmatched reference(s)", fields["subject"])
	assert.Equal(t, "NOPE-1, NOPE-2", fields["terms"])
}

func TestHandleUnmatched_Malformed(t *testing.T) {
	n := NewNotifier(nil)
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"no terms", `{"source":"batch","batchID":"b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := n.HandleUnmatched(context.Background(), []byte(tt.body))
			assert.ErrorIs(t, err, ErrMalformedJob)
		})
	}
}

// fakeAcker records how each delivery was settled.
type fakeAcker struct {
	mu       sync.Mutex
	acked    []uint64
	dropped  []uint64
	requeued []uint64
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if requeue {
		f.requeued = append(f.requeued, tag)
	} else {
		f.dropped = append(f.dropped, tag)
	}
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func TestWork_SettlesEachDelivery(t *testing.T) {
	acker := &fakeAcker{}
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: []byte("ok")}
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte("bad")}
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: []byte("flaky")}
	close(deliveries)

	handle := func(ctx context.Context, body []byte) error {
		switch string(body) {
		case "bad":
			return ErrMalformedJob
		case "flaky":
			return errors.New("smtp timeout")
		}
		return nil
	}
	Work(context.Background(), "test", deliveries, handle, nil)

	assert.Equal(t, []uint64{1}, acker.acked)
	assert.Equal(t, []uint64{2}, acker.dropped)
	assert.Equal(t, []uint64{3}, acker.requeued)
}

func TestWork_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Work(ctx, "test", make(chan amqp.Delivery), func(context.Context, []byte) error { return nil }, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

// MockQueue records published jobs.
type MockQueue struct {
	Queues []string
	Bodies [][]byte
	Err    error
}

func (m *MockQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Queues = append(m.Queues, queueName)
	m.Bodies = append(m.Bodies, body)
	return nil
}

func searchEventJSON(t *testing.T, userID string, matches int) []byte {
	t.Helper()
	b, err := json.Marshal(kafka.Event{Event: eventSearchCompleted, Payload: map[string]interface{}{
		"userID":     userID,
		"companyID":  "acme",
		"term":       "SHP-404",
		"candidates": 5,
		"matches":    matches,
		"at":         "2025-03-01T09:00:00Z",
	}})
	require.NoError(t, err)
	return b
}

func TestSearchBridge(t *testing.T) {
	userID := uuid.New()

	t.Run("unmatched search is queued", func(t *testing.T) {
		q := &MockQueue{}
		require.NoError(t, NewSearchBridge(q, nil).Handle(context.Background(), nil, searchEventJSON(t, userID.String(), 0)))

		require.Len(t, q.Bodies, 1)
		assert.Equal(t, UnmatchedQueue, q.Queues[0])
		var notice contracts.UnmatchedNotice
		require.NoError(t, json.Unmarshal(q.Bodies[0], &notice))
		assert.Equal(t, contracts.SourceManualSearch, notice.Source)
		assert.Equal(t, userID, notice.UserID)
		assert.Equal(t, []string{"SHP-404"}, notice.Terms)
		assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), notice.QueuedAt)
	})

	t.Run("matched search and noise are ignored", func(t *testing.T) {
		q := &MockQueue{}
		b := NewSearchBridge(q, nil)
		assert.NoError(t, b.Handle(context.Background(), nil, searchEventJSON(t, userID.String(), 2)))
		assert.NoError(t, b.Handle(context.Background(), nil, searchEventJSON(t, "not-a-uuid", 0)))
		assert.NoError(t, b.Handle(context.Background(), nil, []byte("{")))
		assert.Empty(t, q.Bodies)
	})

	t.Run("queue failure is returned for redelivery", func(t *testing.T) {
		q := &MockQueue{Err: errors.New("channel closed")}
		err := NewSearchBridge(q, nil).Handle(context.Background(), nil, searchEventJSON(t, userID.String(), 0))
		assert.EqualError(t, err, "channel closed")
	})
}
