package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"batchkit/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  errors.Internal.Name(),
	}

	var categorized *errors.Error
	if stderrors.As(err, &categorized) {
		resp.Code = categorized.Code()
		resp.Details = categorized.Details
	}

	WriteJSON(w, resp, status)
}

// WriteCategorized writes err with the status its category maps to
func WriteCategorized(w http.ResponseWriter, err error) {
	WriteError(w, err, errors.StatusFor(errors.CategoryOf(err)))
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.Invalid, message, nil), http.StatusBadRequest)
}

// NotFound writes a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.NotFound, message, nil), http.StatusNotFound)
}

// MethodNotAllowed writes a 405 and the Allow header
func MethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	WriteError(w, errors.New(errors.Invalid, "method not allowed", nil), http.StatusMethodNotAllowed)
}

// InternalError writes a 500 Internal Server Error. The cause is not exposed.
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, errors.New(errors.Internal, message, nil), http.StatusInternalServerError)
}
