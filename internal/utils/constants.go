package utils

import "time"

// Version is the build version, overridden with -ldflags "-X ...utils.Version=..."
var Version = "dev"

// =============================================================================
// Persistence
// =============================================================================

const (
	// PredictorFileName is the name of the persisted model blob inside a model directory
	PredictorFileName = "predictor.lfm"

	// DefaultModelDir is where models are saved when no directory is configured
	DefaultModelDir = "./model"
)

// =============================================================================
// Forecasting defaults
// =============================================================================

const (
	// DefaultPredictionColumn is the output column name when none is requested
	DefaultPredictionColumn = "prediction"

	// DefaultModelCacheSize bounds the number of registries kept by the model store
	DefaultModelCacheSize = 8
)

// =============================================================================
// Timeouts
// =============================================================================

const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful server shutdown
	ShutdownTimeout = 10 * time.Second

	// EventPublishTimeout bounds publication of model events
	EventPublishTimeout = 5 * time.Second
)

// =============================================================================
// Queue
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	QueueTypeNATS   QueueType = "nats"
	QueueTypeRedis  QueueType = "redis"
	QueueTypeKafka  QueueType = "kafka"
	QueueTypeMemory QueueType = "memory"
)

// ModelPublishedSubject is the subject model publication events are sent on
const ModelPublishedSubject = "lagforest.model.published"
