package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs []skafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)
	err := p.Publish(context.Background(), "key1", Event{Event: "match.search.completed", Payload: map[string]string{"a": "b"}})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "key1" {
		t.Errorf("expected key key1, got %s", fw.msgs[0].Key)
	}
	var decoded Event
	if err := json.Unmarshal(fw.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("value is not json: %v", err)
	}
	if decoded.Event != "match.search.completed" {
		t.Errorf("unexpected event name %q", decoded.Event)
	}
}

func TestPublish_WriterError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaProducerWithWriter(fw, nil)
	if err := p.Publish(context.Background(), "k", map[string]int{"n": 1}); err == nil {
		t.Fatal("expected writer error to be returned")
	}
}

func TestPublish_Unmarshalable(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)
	if err := p.Publish(context.Background(), "k", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if len(fw.msgs) != 0 {
		t.Errorf("nothing should be written, got %d messages", len(fw.msgs))
	}
}
