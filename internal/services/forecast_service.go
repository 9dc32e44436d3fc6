package services

import (
	"context"
	"slices"
	"time"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/modelstore"
)

// PredictionObserver receives prediction outcomes, e.g. for metrics
type PredictionObserver interface {
	PredictionServed(rows int, elapsed time.Duration, err error)
}

// ForecastService serves predictions from stored models
type ForecastService struct {
	logger           *logging.Logger
	store            *modelstore.Store
	observer         PredictionObserver
	predictionColumn string
}

// NewForecastService creates a new ForecastService. predictionColumn is
// the default output column; observer is optional.
func NewForecastService(
	logger *logging.Logger,
	store *modelstore.Store,
	observer PredictionObserver,
	predictionColumn string,
) *ForecastService {
	return &ForecastService{
		logger:           logger,
		store:            store,
		observer:         observer,
		predictionColumn: predictionColumn,
	}
}

// ForecastRequest represents a forecast request. Future takes precedence
// over Records.
type ForecastRequest struct {
	ModelDir         string                   // "" selects the default model
	Records          []map[string]interface{} // future rows as decoded JSON
	Columns          []string                 // column order for Records; derived when empty
	Future           *frame.Frame
	PredictionColumn string
}

// ForecastResponse represents the complete forecast response
type ForecastResponse struct {
	RunID            string                   `json:"run_id"`
	Model            string                   `json:"model"`
	PredictionColumn string                   `json:"prediction_column"`
	Columns          []string                 `json:"columns"`
	Rows             []map[string]interface{} `json:"rows"`
	Count            int                      `json:"count"`
	Entities         int                      `json:"entities"`

	Frame *frame.Frame `json:"-"`
}

// Forecast predicts every trained entity present in the request
func (s *ForecastService) Forecast(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	start := time.Now()
	resp, err := s.forecast(ctx, req)
	if s.observer != nil {
		rows := 0
		if resp != nil {
			rows = resp.Count
		}
		s.observer.PredictionServed(rows, time.Since(start), err)
	}
	return resp, err
}

func (s *ForecastService) forecast(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapError(err, CodeTimeout)
	}

	model, err := s.store.Get(req.ModelDir)
	if err != nil {
		return nil, wrapError(err, CodeModelNotFound)
	}
	sch := model.Registry.Schema

	future := req.Future
	if future == nil {
		if len(req.Records) == 0 {
			return nil, NewServiceError(CodeInvalidRequest, "no future rows given")
		}
		columns := req.Columns
		if len(columns) == 0 {
			columns = recordColumns(req.Records, sch.IDColumn)
		}
		future, err = frame.FromRecords(req.Records, columns, sch.TextColumns()...)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Invalid future rows",
				map[string]interface{}{"error": err.Error()})
		}
	}
	if !future.Has(sch.IDColumn) {
		return nil, NewServiceErrorWithDetails(CodeMissingColumn, "Future rows have no identifier column",
			map[string]interface{}{"column": sch.IDColumn})
	}

	predictionColumn := req.PredictionColumn
	if predictionColumn == "" {
		predictionColumn = s.predictionColumn
	}

	out, err := model.Predict(future, predictionColumn)
	if err != nil {
		return nil, wrapError(err, CodePredictionFailed)
	}
	if predictionColumn == "" {
		predictionColumn = sch.Target
	}

	entities := 0
	if out.Len() > 0 {
		ids, _ := out.Strings(sch.IDColumn)
		entities = countDistinct(ids)
	}

	s.logger.Debug("Forecast served",
		"run_id", model.RunID,
		"rows", out.Len(),
		"entities", entities)

	return &ForecastResponse{
		RunID:            model.RunID,
		Model:            model.String(),
		PredictionColumn: predictionColumn,
		Columns:          out.Columns(),
		Rows:             out.Records(),
		Count:            out.Len(),
		Entities:         entities,
		Frame:            out,
	}, nil
}

// Evaluate scores the model against test rows holding actual targets
func (s *ForecastService) Evaluate(ctx context.Context, modelDir string, test *frame.Frame) (*forecast.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapError(err, CodeTimeout)
	}
	model, err := s.store.Get(modelDir)
	if err != nil {
		return nil, wrapError(err, CodeModelNotFound)
	}
	eval, err := forecast.Evaluate(model, test)
	if err != nil {
		return nil, wrapError(err, CodePredictionFailed)
	}
	s.logger.Info("Model evaluated",
		"run_id", model.RunID,
		"entities", len(eval.Entities),
		"mae", eval.Overall.MAE,
		"rmse", eval.Overall.RMSE)
	return eval, nil
}

// EvaluateRecords builds a test frame from decoded JSON rows and scores the
// model against it
func (s *ForecastService) EvaluateRecords(ctx context.Context, modelDir string, records []map[string]interface{}, columns []string) (*forecast.Evaluation, error) {
	if len(records) == 0 {
		return nil, NewServiceError(CodeInvalidRequest, "no test rows given")
	}
	model, err := s.store.Get(modelDir)
	if err != nil {
		return nil, wrapError(err, CodeModelNotFound)
	}
	sch := model.Registry.Schema
	if len(columns) == 0 {
		columns = recordColumns(records, sch.IDColumn)
	}
	test, err := frame.FromRecords(records, columns, sch.TextColumns()...)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Invalid test rows",
			map[string]interface{}{"error": err.Error()})
	}
	return s.Evaluate(ctx, modelDir, test)
}

// ReloadModel reads modelDir from disk again, replacing the cached model
func (s *ForecastService) ReloadModel(modelDir string) (*forecast.Model, error) {
	model, err := s.store.Reload(modelDir)
	if err != nil {
		return nil, wrapError(err, CodeModelNotFound)
	}
	return model, nil
}

// DefaultModelDir returns the directory served when requests name none
func (s *ForecastService) DefaultModelDir() string {
	return s.store.DefaultDir()
}

// CachedModels returns the number of models held in memory
func (s *ForecastService) CachedModels() int {
	return s.store.Len()
}

// ModelInfo describes the model stored in modelDir
func (s *ForecastService) ModelInfo(modelDir string) (*forecast.ModelInfo, error) {
	model, err := s.store.Get(modelDir)
	if err != nil {
		return nil, wrapError(err, CodeModelNotFound)
	}
	info := model.Info()
	return &info, nil
}

// recordColumns returns the identifier column followed by the remaining
// record keys in sorted order
func recordColumns(records []map[string]interface{}, idColumn string) []string {
	seen := map[string]bool{idColumn: true}
	var rest []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	slices.Sort(rest)
	return append([]string{idColumn}, rest...)
}

func countDistinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
