package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard API response shape. Every endpoint responds with
// it, success or failure.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// WriteJSON writes an envelope with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(env)
}

// WriteSuccess writes a success envelope
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// WriteFailure writes a failure envelope without payload
func WriteFailure(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Envelope{Success: false, Message: message})
}

// WriteFailureData writes a failure envelope carrying payload the client
// needs to recover (e.g. the ref id of an unconfirmed account)
func WriteFailureData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Success: false, Message: message, Data: data})
}

// WriteValidationError writes a 422 envelope with field-level errors
func WriteValidationError(w http.ResponseWriter, errs interface{}) {
	WriteJSON(w, http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Common failure writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusUnauthorized, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusConflict, message)
}

// WriteInternalError writes a generic 500 envelope. The underlying error is
// never included here; it belongs in the server log only.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusInternalServerError, message)
}
