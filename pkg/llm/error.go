// Package llm provides the wire representations of chat inference requests
// that flow between the frontend, the gateway, and the LLM backend.
package llm

// ErrorResponse is the JSON error body returned to callers.
type ErrorResponse struct {
	Error string `json:"error"`
}
