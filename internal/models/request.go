package models

// ForecastRequest represents a forecast request over future rows in long
// format. Each row holds the identifier column, the time column and every
// future covariate the model was trained with.
type ForecastRequest struct {
	ModelDir         string                   `json:"model_dir,omitempty"`
	PredictionColumn string                   `json:"prediction_column,omitempty"`
	Columns          []string                 `json:"columns,omitempty"`
	Rows             []map[string]interface{} `json:"rows" validate:"required,min=1"`
}

// EvaluateRequest represents an evaluation request. Rows carry the actual
// target values alongside the future covariates.
type EvaluateRequest struct {
	ModelDir string                   `json:"model_dir,omitempty"`
	Columns  []string                 `json:"columns,omitempty"`
	Rows     []map[string]interface{} `json:"rows" validate:"required,min=1"`
}

// ReloadRequest represents a model reload request
type ReloadRequest struct {
	ModelDir string `json:"model_dir,omitempty"`
}
