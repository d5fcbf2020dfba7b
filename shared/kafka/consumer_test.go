package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// scriptedReader hands out queued messages, then blocks until ctx is done.
type scriptedReader struct {
	mu        sync.Mutex
	queue     []skafka.Message
	committed []int64
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (skafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return skafka.Message{}, ctx.Err()
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...skafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func TestConsumer_CommitsOnlySuccessfulMessages(t *testing.T) {
	reader := &scriptedReader{queue: []skafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("fail")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := NewConsumerWithReader(reader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var seen int
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Start(ctx, func(ctx context.Context, key, value []byte) error {
			seen++
			if seen == 3 {
				defer cancel()
			}
			if string(value) == "fail" {
				return errors.New("handler failed")
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("consumer did not stop")
	}

	reader.mu.Lock()
	defer reader.mu.Unlock()
	if len(reader.committed) != 2 || reader.committed[0] != 1 || reader.committed[1] != 3 {
		t.Errorf("expected offsets [1 3] committed, got %v", reader.committed)
	}
}
