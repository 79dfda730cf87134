package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse error 422 con los mensajes por campo o regla.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}
