package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failed request in the response envelope.
type ErrorCode string

const (
	CodeBadRequest   ErrorCode = "BAD_REQUEST"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnavailable  ErrorCode = "HEALTH_CHECK_FAILED"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// Status returns the HTTP status a code is reported with.
func (c ErrorCode) Status() int {
	switch c {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Envelope wraps every JSON body the API writes. Data is never omitted so
// that a date without an observance reads as an explicit null.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data"`
	Error   *Problem `json:"error,omitempty"`
}

// Problem describes why a request failed.
type Problem struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) error {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(env)
}

// WriteSuccess writes data with a 200 status.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return writeEnvelope(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteProblem writes a failure envelope whose status follows from code.
// The message is formatted with args when any are given.
func WriteProblem(w http.ResponseWriter, code ErrorCode, message string, args ...any) error {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return writeEnvelope(w, code.Status(), Envelope{
		Error: &Problem{Message: message, Code: code},
	})
}
