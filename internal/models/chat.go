package models

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the generated reply on success.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the flat error body returned on any chat failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness and whether the upstream credential is set.
type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}
