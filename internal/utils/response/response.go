// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses carry the bare entity (or array). Every failure
// carries the same envelope:
//
//	{ "error": "<human-readable message>" }
//
// Centralising the encoding here keeps handlers down to one line per
// outcome and keeps the error shape uniform for API consumers.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is the envelope returned for every failed request.
type Error struct {
	Message string `json:"error"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status
// code. data may be any encodable value — entity, slice, or Error.
//
// Order matters: Content-Type must be set before WriteHeader, and
// WriteHeader before the body.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode streams straight into w; no intermediate buffer.
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard envelope.
func GeneralError(err error) Error {
	return Error{Message: err.Error()}
}

// ValidationError converts go-playground/validator field errors into a
// single envelope. The validator returns one FieldError per failing
// struct field; each becomes a plain English clause and the clauses are
// joined so the client sees one descriptive string.
//
// Example:
//
//	{ "error": "field Latitude is required, field UserID is required" }
func ValidationError(errs validator.ValidationErrors) Error {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "min", "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is out of range", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error{Message: strings.Join(errMessages, ", ")}
}
