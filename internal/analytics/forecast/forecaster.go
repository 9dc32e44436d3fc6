package forecast

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/lagforest/internal/analytics/forest"
	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/schema"
)

// Observer receives training progress, e.g. for metrics
type Observer interface {
	// EntityFitted is called once per entity, from the worker that fit it
	EntityFitted(id string, rows int, elapsed time.Duration, err error)
	// TrainingFinished is called once per successful or failed run
	TrainingFinished(fitted, failed int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) EntityFitted(string, int, time.Duration, error) {}
func (nopObserver) TrainingFinished(int, int, time.Duration)       {}

type options struct {
	workers      int
	allowPartial bool
	runID        string
	logger       *logging.Logger
	observer     Observer
}

// Option configures a training run
type Option func(*options)

// WithWorkers bounds the number of entities fit concurrently
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithAllowPartial keeps the entities that could be fit when others fail
func WithAllowPartial(allow bool) Option {
	return func(o *options) { o.allowPartial = allow }
}

// WithRunID sets the run identifier of the trained model. A random one is
// generated when it is not set.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the training observer
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// Model is the result of a training run: the registry plus the
// hyperparameters it was fit with
type Model struct {
	Registry  *Registry
	Params    Params
	Skipped   []string
	TrainedAt time.Time
	RunID     string

	logger *logging.Logger
}

// Train partitions history by entity and fits one model per entity.
//
// Entities whose history is too short for the lag set are isolated: with
// WithAllowPartial they are listed in Model.Skipped, otherwise Train
// returns a *TrainingError. Train fails whenever no entity could be fit.
func Train(ctx context.Context, history *frame.Frame, sch schema.Schema, params Params, opts ...Option) (*Model, error) {
	o := options{
		workers:  runtime.GOMAXPROCS(0),
		logger:   logging.Global(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if history.Len() == 0 || !history.Has(sch.IDColumn) {
		return nil, ErrEmptyHistory
	}
	for _, col := range append([]string{sch.Target}, sch.FutureCovariates...) {
		if !history.Has(col) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	lags, err := params.LagSpec()
	if err != nil {
		return nil, err
	}

	groups, err := history.Partition(sch.IDColumn)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	limit := params.HistoryLimit(sch.ForecastLength)
	fitted, errs := fitAll(ctx, groups, func(i int, g frame.Group) (*EntityModel, error) {
		series, err := SeriesFromFrame(g.ID, g.Frame, sch.Target, sch.FutureCovariates)
		if err != nil {
			return nil, err
		}
		return FitEntityModel(series, lags, params.Forest(DeriveSeed(params.Seed, i)), limit)
	}, o)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training cancelled: %w", err)
	}

	order := make([]string, len(groups))
	for i, g := range groups {
		order[i] = g.ID
	}
	reg := newRegistry(sch, order)

	var failed []*EntityError
	for i, g := range groups {
		if errs[i] != nil {
			failed = append(failed, &EntityError{ID: g.ID, Err: errs[i]})
			o.logger.Warn("Entity could not be fit", "entity", g.ID, "error", errs[i])
			continue
		}
		reg.Models[g.ID] = fitted[i]
	}
	o.observer.TrainingFinished(reg.Len(), len(failed), time.Since(start))

	if len(failed) > 0 && (!o.allowPartial || reg.Len() == 0) {
		return nil, &TrainingError{Failed: failed, Fitted: reg.Len()}
	}

	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	m := &Model{
		Registry:  reg,
		Params:    params,
		TrainedAt: time.Now().UTC(),
		RunID:     o.runID,
		logger:    o.logger,
	}
	for _, f := range failed {
		m.Skipped = append(m.Skipped, f.ID)
	}

	o.logger.Info("Training completed",
		"run_id", m.RunID,
		"entities", reg.Len(),
		"skipped", len(m.Skipped),
		"lags", lags.String(),
		"history_limit", limit,
		"duration", time.Since(start))
	return m, nil
}

// fitAll runs fit for every group on a semaphore-bounded set of goroutines.
// Results are indexed by group position, so the outcome does not depend on
// scheduling.
func fitAll(ctx context.Context, groups []frame.Group, fit func(int, frame.Group) (*EntityModel, error), o options) ([]*EntityModel, []error) {
	fitted := make([]*EntityModel, len(groups))
	errs := make([]error, len(groups))

	semaphore := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

dispatch:
	for i, g := range groups {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}

		wg.Add(1)
		go func(i int, g frame.Group) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			start := time.Now()
			fitted[i], errs[i] = fit(i, g)
			o.observer.EntityFitted(g.ID, g.Frame.Len(), time.Since(start), errs[i])
		}(i, g)
	}

	wg.Wait()
	return fitted, errs
}

// Predict forecasts every trained entity found in future. Entities are
// emitted in training-time order; entities missing from the registry or
// from future contribute no rows. The output holds the identifier column
// first, the other future columns, and the predictions under
// predictionColumn (the target name when empty).
//
// A forecast that fails for one entity fails the whole call with an
// *EntityError naming it. The future table shares one column layout across
// entities, so such a failure is a problem with the request rather than
// with the entity.
func (m *Model) Predict(future *frame.Frame, predictionColumn string) (*frame.Frame, error) {
	if m == nil || m.Registry.Len() == 0 {
		return nil, ErrNotFitted
	}
	sch := m.Registry.Schema
	if predictionColumn == "" {
		predictionColumn = sch.Target
	}
	if !future.Has(sch.IDColumn) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, sch.IDColumn)
	}
	logger := m.log()

	groups, err := future.Partition(sch.IDColumn)
	if err != nil {
		return nil, err
	}
	index := frame.Index(groups)

	for _, g := range groups {
		if _, ok := m.Registry.Get(g.ID); !ok {
			logger.Debug("Skipping entity without a trained model", "entity", g.ID)
		}
	}

	var parts []*frame.Frame
	for _, id := range m.Registry.IDs() {
		pos, ok := index[id]
		if !ok {
			continue
		}
		sub := groups[pos].Frame
		if sub.Len() != sch.ForecastLength {
			logger.Warn("Future rows differ from forecast length",
				"entity", id, "rows", sub.Len(), "forecast_length", sch.ForecastLength)
		}

		em, _ := m.Registry.Get(id)
		preds, err := em.Forecast(sub)
		if err != nil {
			return nil, &EntityError{ID: id, Err: err}
		}
		part, err := attachPredictions(sub, sch, id, preds, predictionColumn)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		empty := future.Take(nil).Drop(sch.IDColumn)
		return attachPredictions(empty, sch, "", nil, predictionColumn)
	}
	return frame.Concat(parts...)
}

// attachPredictions reattaches the identifier and writes the predictions
// under the requested column name
func attachPredictions(sub *frame.Frame, sch schema.Schema, id string, preds []float64, predictionColumn string) (*frame.Frame, error) {
	out := sub.Drop()
	ids := make([]string, sub.Len())
	for i := range ids {
		ids[i] = id
	}
	if preds == nil {
		preds = []float64{}
	}

	if err := out.InsertStrings(0, sch.IDColumn, ids); err != nil {
		return nil, err
	}
	if err := out.SetFloats(sch.Target, preds); err != nil {
		return nil, err
	}
	if predictionColumn != sch.Target {
		if out.Has(predictionColumn) {
			out = out.Drop(predictionColumn)
		}
		if err := out.Rename(sch.Target, predictionColumn); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Model) log() *logging.Logger {
	if m.logger != nil {
		return m.logger
	}
	return logging.Global()
}

// SetLogger replaces the logger used by Predict
func (m *Model) SetLogger(l *logging.Logger) {
	m.logger = l
}

// Algorithm returns the display name of the regressor kind
func (m *Model) Algorithm() string {
	switch m.Params.Kind {
	case forest.ExtraTrees:
		return "ExtraTrees"
	default:
		return "RandomForest"
	}
}

func (m *Model) String() string {
	return fmt.Sprintf("Model name: %s Forecaster", m.Algorithm())
}

// ModelInfo describes a trained model
type ModelInfo struct {
	Algorithm      string    `json:"algorithm"`
	RunID          string    `json:"run_id"`
	TrainedAt      time.Time `json:"trained_at"`
	Params         Params    `json:"parameters"`
	Lags           []int     `json:"lags"`
	ForecastLength int       `json:"forecast_length"`
	IDColumn       string    `json:"id_column"`
	TimeColumn     string    `json:"time_column,omitempty"`
	Target         string    `json:"target"`
	Covariates     []string  `json:"future_covariates,omitempty"`
	Entities       []string  `json:"entities"`
	Skipped        []string  `json:"skipped,omitempty"`
	TrainRows      int       `json:"train_rows"`
}

// Info summarizes the model
func (m *Model) Info() ModelInfo {
	sch := m.Registry.Schema
	info := ModelInfo{
		Algorithm:      m.Algorithm(),
		RunID:          m.RunID,
		TrainedAt:      m.TrainedAt,
		Params:         m.Params,
		ForecastLength: sch.ForecastLength,
		IDColumn:       sch.IDColumn,
		TimeColumn:     sch.TimeColumn,
		Target:         sch.Target,
		Covariates:     sch.FutureCovariates,
		Entities:       m.Registry.IDs(),
		Skipped:        m.Skipped,
	}
	if lags, err := m.Params.LagSpec(); err == nil {
		info.Lags = lags.Lags
	}
	for _, id := range info.Entities {
		em, _ := m.Registry.Get(id)
		info.TrainRows += em.TrainRows
	}
	return info
}
