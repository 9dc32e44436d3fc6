package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	SchemaPath      string                `mapstructure:"schema_path"`
	Data            DataConfig            `mapstructure:"data"`
	Training        TrainingConfig        `mapstructure:"training"`
	Hyperparameters HyperparametersConfig `mapstructure:"hyperparameters"`
	Server          ServerConfig          `mapstructure:"server"`
	Auth            AuthConfig            `mapstructure:"auth"`
	Queue           QueueConfig           `mapstructure:"queue"`
	Metrics         MetricsConfig         `mapstructure:"metrics"`
	Cache           CacheConfig           `mapstructure:"cache"`
	Logging         LoggingConfig         `mapstructure:"logging"`
}

// DataConfig represents model and data locations
type DataConfig struct {
	ModelDir         string `mapstructure:"model_dir"`         // Directory holding the persisted model
	PredictionColumn string `mapstructure:"prediction_column"` // Output column name for forecasts
}

// TrainingConfig controls how a training run is executed
type TrainingConfig struct {
	Workers      int           `mapstructure:"workers"`       // Concurrent entity fits (0 = GOMAXPROCS)
	AllowPartial bool          `mapstructure:"allow_partial"` // Keep the entities that fit when others fail
	Timeout      time.Duration `mapstructure:"timeout"`       // 0 disables the deadline
	Publish      bool          `mapstructure:"publish"`       // Publish a model event after saving
}

// Lags is a lag set; it decodes from either an integer L (lags 1..L) or an
// explicit list
type Lags []int

// HyperparametersConfig is the raw hyperparameter section
type HyperparametersConfig struct {
	Kind                 string  `mapstructure:"kind"`
	NumTrees             int     `mapstructure:"n_estimators"`
	Criterion            string  `mapstructure:"criterion"`
	MinSamplesSplit      float64 `mapstructure:"min_samples_split"`
	MinSamplesLeaf       float64 `mapstructure:"min_samples_leaf"`
	MaxDepth             int     `mapstructure:"max_depth"`
	MaxFeatures          float64 `mapstructure:"max_features"`
	Lags                 Lags    `mapstructure:"lags"`
	RandomState          uint64  `mapstructure:"random_state"`
	HistoryForecastRatio float64 `mapstructure:"history_forecast_ratio"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // Max request body in bytes
}

// AuthConfig represents API key authentication for the forecasting API
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

// QueueConfig represents message queue configuration for model events
type QueueConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Subject  string `mapstructure:"subject"`  // Subject/topic for model-published events
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`
	RedisStream   string `mapstructure:"redis_stream"`   // Stream prefix (default: "lagforest")
	RedisGroup    string `mapstructure:"redis_group"`    // Consumer group (default: "lagforest-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// MetricsConfig represents prometheus metrics configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// CacheConfig represents the loaded-model cache
type CacheConfig struct {
	ModelCacheSize int `mapstructure:"model_cache_size"` // Max model directories kept in memory
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data config: %w", err)
	}

	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training config: %w", err)
	}

	if err := c.Hyperparameters.Validate(); err != nil {
		return fmt.Errorf("hyperparameters config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if c.Cache.ModelCacheSize < 1 {
		return fmt.Errorf("cache config: model_cache_size must be at least 1")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates data configuration
func (c *DataConfig) Validate() error {
	if c.ModelDir == "" {
		return fmt.Errorf("model_dir is required")
	}
	if c.PredictionColumn == "" {
		return fmt.Errorf("prediction_column is required")
	}
	return nil
}

// Validate validates training configuration
func (c *TrainingConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("training.workers cannot be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("training.timeout cannot be negative")
	}
	return nil
}

// Validate checks the section shape only; value ranges are checked when
// the section is turned into training parameters
func (c *HyperparametersConfig) Validate() error {
	if len(c.Lags) == 0 {
		return fmt.Errorf("lags is required")
	}
	for _, lag := range c.Lags {
		if lag < 1 {
			return fmt.Errorf("lags must be >= 1, got %d", lag)
		}
	}
	if c.HistoryForecastRatio < 0 {
		return fmt.Errorf("history_forecast_ratio cannot be negative")
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}
	return nil
}

// Validate validates auth configuration
func (c *AuthConfig) Validate() error {
	if c.Enabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys is required when auth is enabled")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Type {
	case "", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("queue.type must be one of: memory, nats, redis, kafka")
	}

	if c.Subject == "" {
		return fmt.Errorf("queue.subject is required")
	}
	return nil
}

// Validate validates metrics configuration
func (c *MetricsConfig) Validate() error {
	if c.Enabled && (c.Path == "" || c.Path[0] != '/') {
		return fmt.Errorf("metrics.path must start with '/'")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
