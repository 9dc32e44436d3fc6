package queue

import (
	"sync"
	"testing"
	"time"
)

func NewMemoryQueue() *MemoryQueue {
	return newMemoryQueue()
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("Timeout waiting for WaitGroup")
	}
}

func waitFor(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Timeout waiting for condition")
}

func sampleEvent() *ModelPublished {
	return &ModelPublished{
		RunID:     "run-1",
		ModelDir:  "/tmp/model",
		Path:      "/tmp/model/predictor.lfm",
		Algorithm: "RandomForest",
		Entities:  2,
		TrainedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
