package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Version      string `json:"version"`
	ModelLoaded  bool   `json:"model_loaded"`
	CachedModels int    `json:"cached_models"`
}

// ReloadResponse represents the outcome of a model reload
type ReloadResponse struct {
	Reloaded bool   `json:"reloaded"`
	ModelDir string `json:"model_dir"`
	RunID    string `json:"run_id"`
	Model    string `json:"model"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
