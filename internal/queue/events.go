package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ModelPublished announces that a trained model was saved to a model
// directory and can be (re)loaded by serving processes.
type ModelPublished struct {
	RunID     string    `json:"run_id"`
	ModelDir  string    `json:"model_dir"`
	Path      string    `json:"path"`
	Algorithm string    `json:"algorithm"`
	Entities  int       `json:"entities"`
	Skipped   int       `json:"skipped"`
	TrainedAt time.Time `json:"trained_at"`
}

// Validate checks the fields a subscriber needs to act on the event
func (e *ModelPublished) Validate() error {
	if e.ModelDir == "" {
		return errors.New("model_dir is required")
	}
	if e.RunID == "" {
		return errors.New("run_id is required")
	}
	return nil
}

// EncodeModelPublished serializes an event as JSON
func EncodeModelPublished(e *ModelPublished) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model event: %w", err)
	}
	return json.Marshal(e)
}

// DecodeModelPublished parses and validates a JSON event
func DecodeModelPublished(data []byte) (*ModelPublished, error) {
	var e ModelPublished
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode model event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model event: %w", err)
	}
	return &e, nil
}

// PublishModel encodes and publishes a model event on subject
func PublishModel(ctx context.Context, p Publisher, subject string, e *ModelPublished) error {
	data, err := EncodeModelPublished(e)
	if err != nil {
		return err
	}
	return p.Publish(ctx, subject, data)
}

// SubscribeModels subscribes handler to decoded model events on subject.
// Undecodable messages are reported through onInvalid and acknowledged so
// they are not redelivered.
func SubscribeModels(s Subscriber, subject string, handler func(*ModelPublished) error, onInvalid func([]byte, error)) error {
	return s.Subscribe(subject, func(data []byte) error {
		e, err := DecodeModelPublished(data)
		if err != nil {
			if onInvalid != nil {
				onInvalid(data, err)
			}
			return nil
		}
		return handler(e)
	})
}
