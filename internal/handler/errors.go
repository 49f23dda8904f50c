package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "line not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// notReadyBody is returned while the map style is still loading.
func notReadyBody() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_ready", Message: "map is still loading"}}
}

func internalBody() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "internal", Message: "internal server error"}}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "validation error: stops[0].lat must be a valid latitude" → "stops[0].lat must be a valid latitude"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const prefix = "validation error: "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client is gone if this fails.
	json.NewEncoder(w).Encode(v)
}
