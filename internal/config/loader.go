package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LAGFOREST_TRAINING_WORKERS
const EnvPrefix = "LAGFOREST"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")              // Current directory
		v.AddConfigPath("./configs")      // Project configs directory
		v.AddConfigPath("./config")       // Alternative config directory
		v.AddConfigPath("/etc/lagforest") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("schema_path", d.SchemaPath)

	// Data defaults
	v.SetDefault("data.model_dir", d.Data.ModelDir)
	v.SetDefault("data.prediction_column", d.Data.PredictionColumn)

	// Training defaults
	v.SetDefault("training.workers", d.Training.Workers)
	v.SetDefault("training.allow_partial", d.Training.AllowPartial)
	v.SetDefault("training.timeout", d.Training.Timeout)
	v.SetDefault("training.publish", d.Training.Publish)

	// Hyperparameter defaults
	v.SetDefault("hyperparameters.kind", d.Hyperparameters.Kind)
	v.SetDefault("hyperparameters.n_estimators", d.Hyperparameters.NumTrees)
	v.SetDefault("hyperparameters.criterion", d.Hyperparameters.Criterion)
	v.SetDefault("hyperparameters.min_samples_split", d.Hyperparameters.MinSamplesSplit)
	v.SetDefault("hyperparameters.min_samples_leaf", d.Hyperparameters.MinSamplesLeaf)
	v.SetDefault("hyperparameters.max_depth", d.Hyperparameters.MaxDepth)
	v.SetDefault("hyperparameters.max_features", d.Hyperparameters.MaxFeatures)
	v.SetDefault("hyperparameters.lags", []int(d.Hyperparameters.Lags))
	v.SetDefault("hyperparameters.random_state", d.Hyperparameters.RandomState)
	v.SetDefault("hyperparameters.history_forecast_ratio", d.Hyperparameters.HistoryForecastRatio)

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	// Queue defaults
	v.SetDefault("queue.enabled", d.Queue.Enabled)
	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.subject", d.Queue.Subject)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)

	// Metrics defaults
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("cache.model_cache_size", d.Cache.ModelCacheSize)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		lagsHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		SchemaPath: "./schema.yaml",
		Data: DataConfig{
			ModelDir:         "./model",
			PredictionColumn: "prediction",
		},
		Training: TrainingConfig{
			Workers: 0,
		},
		Hyperparameters: HyperparametersConfig{
			Kind:            "random_forest",
			NumTrees:        50,
			Criterion:       "squared_error",
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			Lags:            Lags{2, 5, 7},
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5565,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BodyLimit:    16 * 1024 * 1024,
		},
		Queue: QueueConfig{
			Type:         "memory",
			URL:          "nats://localhost:4222",
			Subject:      "lagforest.model.published",
			RedisStream:  "lagforest",
			RedisGroup:   "lagforest-group",
			KafkaGroupID: "lagforest-group",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "lagforest",
		},
		Cache: CacheConfig{
			ModelCacheSize: 8,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
