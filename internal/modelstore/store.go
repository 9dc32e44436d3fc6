// Package modelstore keeps recently used trained models in memory, keyed
// by model directory, and swaps them atomically on reload.
package modelstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/queue"
	"github.com/soltixdb/lagforest/internal/utils"
)

// ErrNoModelDir is returned when no directory is given and no default is set
var ErrNoModelDir = errors.New("model directory not specified")

// LoadFunc reads a model from a directory
type LoadFunc func(dir string) (*forecast.Model, error)

// ReloadObserver is notified of every reload attempt
type ReloadObserver interface {
	ModelReloaded(err error)
}

// Config configures a Store
type Config struct {
	Size       int    // Max model directories kept in memory
	DefaultDir string // Directory used when callers pass ""
}

// Store is a size-bounded cache of loaded models. Lookups of a directory
// that is not cached load it from disk; concurrent misses on the same
// store are serialized so a model is read once.
type Store struct {
	cache      *lru.Cache[string, *forecast.Model]
	defaultDir string
	load       LoadFunc
	observer   ReloadObserver
	logger     *logging.Logger
	loadMu     sync.Mutex
	hits       atomic.Uint64
	misses     atomic.Uint64
}

// Option configures a Store
type Option func(*Store)

// WithLoader replaces forecast.Load as the model reader
func WithLoader(fn LoadFunc) Option {
	return func(s *Store) { s.load = fn }
}

// WithObserver sets the reload observer
func WithObserver(obs ReloadObserver) Option {
	return func(s *Store) { s.observer = obs }
}

// WithLogger sets the store logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Size <= 0 {
		cfg.Size = utils.DefaultModelCacheSize
	}
	cache, err := lru.New[string, *forecast.Model](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create model cache: %w", err)
	}

	s := &Store{
		cache:  cache,
		load:   forecast.Load,
		logger: logging.Global(),
	}
	if cfg.DefaultDir != "" {
		s.defaultDir = normalize(cfg.DefaultDir)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func normalize(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

func (s *Store) key(dir string) (string, error) {
	if dir == "" {
		if s.defaultDir == "" {
			return "", ErrNoModelDir
		}
		return s.defaultDir, nil
	}
	return normalize(dir), nil
}

// DefaultDir returns the normalized default model directory
func (s *Store) DefaultDir() string {
	return s.defaultDir
}

// Get returns the model saved in dir, loading it on a cache miss.
// An empty dir selects the default directory.
func (s *Store) Get(dir string) (*forecast.Model, error) {
	key, err := s.key(dir)
	if err != nil {
		return nil, err
	}
	if m, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return m, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have loaded it while we waited
	if m, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return m, nil
	}
	s.misses.Add(1)

	m, err := s.load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", key, err)
	}
	m.SetLogger(s.logger)
	s.cache.Add(key, m)
	s.logger.Info("Model loaded", "dir", key, "entities", m.Registry.Len(), "run_id", m.RunID)
	return m, nil
}

// Put caches a model that is already in memory, e.g. right after training
func (s *Store) Put(dir string, m *forecast.Model) error {
	key, err := s.key(dir)
	if err != nil {
		return err
	}
	s.cache.Add(key, m)
	return nil
}

// Reload reads dir again and replaces the cached model. On failure the
// previously cached model, if any, stays in place.
func (s *Store) Reload(dir string) (*forecast.Model, error) {
	key, err := s.key(dir)
	if err != nil {
		return nil, err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	m, err := s.load(key)
	if s.observer != nil {
		s.observer.ModelReloaded(err)
	}
	if err != nil {
		s.logger.Error("Model reload failed, keeping previous model", "dir", key, "error", err)
		return nil, fmt.Errorf("failed to reload model from %s: %w", key, err)
	}
	m.SetLogger(s.logger)
	s.cache.Add(key, m)
	s.logger.Info("Model reloaded", "dir", key, "entities", m.Registry.Len(), "run_id", m.RunID)
	return m, nil
}

// Invalidate drops dir from the cache
func (s *Store) Invalidate(dir string) {
	if key, err := s.key(dir); err == nil {
		s.cache.Remove(key)
	}
}

// Len returns the number of cached models
func (s *Store) Len() int {
	return s.cache.Len()
}

// Stats returns the cache hit and miss counters
func (s *Store) Stats() (hits, misses uint64) {
	return s.hits.Load(), s.misses.Load()
}

// HandleModelPublished reloads the directory named by a model event.
// Events for directories that are neither cached nor the default are
// ignored.
func (s *Store) HandleModelPublished(e *queue.ModelPublished) error {
	key := normalize(e.ModelDir)
	if key != s.defaultDir && !s.cache.Contains(key) {
		s.logger.Debug("Ignoring model event for unused directory", "dir", key, "run_id", e.RunID)
		return nil
	}
	_, err := s.Reload(key)
	return err
}
