package queue

import (
	"context"
	"testing"
	"time"

	"github.com/soltixdb/lagforest/internal/config"
)

func TestNewQueue_DefaultsToMemory(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{})
	if err != nil {
		t.Fatalf("Failed to create default queue: %v", err)
	}
	defer func() { _ = q.Close() }()

	if _, ok := q.(*MemoryQueue); !ok {
		t.Errorf("Expected *MemoryQueue, got %T", q)
	}
}

func TestNewQueue_TypeIsCaseInsensitive(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "MEMORY"})
	if err != nil {
		t.Fatalf("Failed to create memory queue: %v", err)
	}
	_ = q.Close()
}

func TestNewQueue_UnsupportedType(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "rabbitmq"}); err == nil {
		t.Fatal("Expected error for unsupported queue type")
	}
}

func TestNewQueue_KafkaRequiresBrokers(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "kafka"}); err == nil {
		t.Fatal("Expected error for kafka without brokers")
	}
}

func TestNewQueue_KafkaIsLazy(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{
		Type:         "kafka",
		KafkaBrokers: []string{"127.0.0.1:1"},
	})
	if err != nil {
		t.Fatalf("Kafka queue should not connect on construction: %v", err)
	}
	kq := q.(*KafkaQueue)
	if kq.config.GroupID != "lagforest-group" {
		t.Errorf("Expected default group id, got %q", kq.config.GroupID)
	}
	if err := q.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewQueue_RedisRequiresURL(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "redis"}); err == nil {
		t.Fatal("Expected error for redis without url")
	}
}

func TestNewQueue_RedisUnreachable(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "redis", URL: "redis://127.0.0.1:1"}); err == nil {
		t.Fatal("Expected connection error for unreachable redis")
	}
}

func TestPublisherSubscriber_MemoryRoundTrip(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	got := make(chan *ModelPublished, 1)
	err = SubscribeModels(q, "models", func(e *ModelPublished) error {
		got <- e
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("SubscribeModels failed: %v", err)
	}

	want := sampleEvent()
	if err := PublishModel(context.Background(), q, "models", want); err != nil {
		t.Fatalf("PublishModel failed: %v", err)
	}

	select {
	case e := <-got:
		if e.RunID != want.RunID || e.ModelDir != want.ModelDir || !e.TrainedAt.Equal(want.TrainedAt) {
			t.Errorf("Received %+v, want %+v", e, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for model event")
	}
}
