package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/modelstore"
	"github.com/soltixdb/lagforest/internal/queue"
	"github.com/soltixdb/lagforest/internal/schema"
	"github.com/soltixdb/lagforest/internal/utils"
)

// TrainingOptions controls how training runs are executed
type TrainingOptions struct {
	Workers      int
	AllowPartial bool
	Timeout      time.Duration
	Subject      string // Subject model events are published on
}

// TrainingService trains, saves and announces models
type TrainingService struct {
	logger    *logging.Logger
	publisher queue.Publisher
	observer  forecast.Observer
	store     *modelstore.Store
	opts      TrainingOptions
}

// NewTrainingService creates a new TrainingService. publisher, observer
// and store are optional.
func NewTrainingService(
	logger *logging.Logger,
	publisher queue.Publisher,
	observer forecast.Observer,
	store *modelstore.Store,
	opts TrainingOptions,
) *TrainingService {
	if opts.Subject == "" {
		opts.Subject = utils.ModelPublishedSubject
	}
	return &TrainingService{
		logger:    logger,
		publisher: publisher,
		observer:  observer,
		store:     store,
		opts:      opts,
	}
}

// TrainRequest represents a training request. History takes precedence
// over HistoryPath.
type TrainRequest struct {
	HistoryPath string
	History     *frame.Frame
	Schema      schema.Schema
	Params      forecast.Params
	ModelDir    string
}

// TrainResult describes a completed training run
type TrainResult struct {
	Model     *forecast.Model
	Path      string
	Published bool
	Elapsed   time.Duration
}

// Train fits a model on the request history, saves it to the model
// directory and publishes a model event when a publisher is configured.
// A failed publish is logged but does not fail the run.
func (s *TrainingService) Train(ctx context.Context, req *TrainRequest) (*TrainResult, error) {
	start := time.Now()

	if err := req.Schema.Validate(); err != nil {
		return nil, &ServiceError{Code: CodeInvalidSchema, Message: err.Error(), cause: err}
	}
	if req.ModelDir == "" {
		return nil, NewServiceError(CodeInvalidRequest, "model directory is required")
	}

	history := req.History
	if history == nil {
		if req.HistoryPath == "" {
			return nil, NewServiceError(CodeInvalidRequest, "training data is required")
		}
		var err error
		history, err = frame.ReadCSVFile(req.HistoryPath, req.Schema.TextColumns()...)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Failed to read training data",
				map[string]interface{}{"path": req.HistoryPath, "error": err.Error()})
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx = logging.WithLogger(logging.WithRunID(ctx, runID), s.logger)

	opts := []forecast.Option{
		forecast.WithWorkers(s.opts.Workers),
		forecast.WithAllowPartial(s.opts.AllowPartial),
		forecast.WithLogger(s.logger),
		forecast.WithRunID(runID),
	}
	if s.observer != nil {
		opts = append(opts, forecast.WithObserver(s.observer))
	}

	model, err := forecast.Train(ctx, history, req.Schema, req.Params, opts...)
	if err != nil {
		logging.ErrorCtx(ctx, "Training failed", "rows", history.Len(), "error", err)
		return nil, wrapError(err, CodeTrainingFailed)
	}

	path, err := forecast.Save(req.ModelDir, model)
	if err != nil {
		return nil, wrapError(fmt.Errorf("failed to save model: %w", err), CodeInternal)
	}

	result := &TrainResult{Model: model, Path: path}
	if s.store != nil {
		if err := s.store.Put(req.ModelDir, model); err != nil {
			logging.WarnCtx(ctx, "Failed to cache trained model", "dir", req.ModelDir, "error", err)
		}
	}

	if s.publisher != nil {
		result.Published = s.publish(ctx, req.ModelDir, path, model)
	}

	result.Elapsed = time.Since(start)
	logging.InfoCtx(ctx, "Model trained and saved",
		"path", path,
		"entities", model.Registry.Len(),
		"skipped", len(model.Skipped),
		"published", result.Published,
		"elapsed", result.Elapsed)

	return result, nil
}

func (s *TrainingService) publish(ctx context.Context, dir, path string, m *forecast.Model) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.EventPublishTimeout)
	defer cancel()

	event := &queue.ModelPublished{
		RunID:     m.RunID,
		ModelDir:  dir,
		Path:      path,
		Algorithm: m.Algorithm(),
		Entities:  m.Registry.Len(),
		Skipped:   len(m.Skipped),
		TrainedAt: m.TrainedAt,
	}
	if err := queue.PublishModel(ctx, s.publisher, s.opts.Subject, event); err != nil {
		logging.WarnCtx(ctx, "Failed to publish model event", "subject", s.opts.Subject, "error", err)
		return false
	}
	return true
}
