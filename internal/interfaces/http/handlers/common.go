// Package handlers implements the HTTP API of the EVA engine.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/razinkele/marbefes-eva-app/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps application-level errors to HTTP status codes.
// Internal errors are masked so stack details never reach clients.
func writeAppError(w http.ResponseWriter, err error) {
	status := errors.StatusFor(err)
	resp := ErrorResponse{
		Code:    string(errors.GetCode(err)),
		Message: err.Error(),
	}
	if status >= http.StatusInternalServerError {
		resp = ErrorResponse{
			Code:    string(errors.CodeInternal),
			Message: "internal server error",
		}
	}
	writeJSON(w, status, resp)
}

// decodeJSON decodes a request body, rejecting unknown fields so typos in
// client payloads fail loudly instead of silently dropping data.
func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return errors.Wrap(err, errors.CodeBadRequest, "invalid request body")
	}
	return nil
}
