// Package httputil writes JSON responses and maps domain errors onto HTTP.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "orcs/pkg/domain-errors"
)

// WriteJSON writes response as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already sent; an encoding error cannot be reported
	_ = json.NewEncoder(w).Encode(response)
}

type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[dErrors.Code]errorMapping{
	dErrors.CodeBadRequest:         {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:         {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation: {http.StatusBadRequest, "validation_error"},
	dErrors.CodeNotFound:           {http.StatusNotFound, "not_found"},
	dErrors.CodeConflict:           {http.StatusConflict, "conflict"},
	dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:          {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:            {http.StatusGatewayTimeout, "backend_timeout"},
	dErrors.CodeUnavailable:        {http.StatusServiceUnavailable, "unavailable"},
}

var internalError = errorMapping{http.StatusInternalServerError, "internal_error"}

func mappingFor(code dErrors.Code) errorMapping {
	if m, ok := errorMappings[code]; ok {
		return m
	}
	return internalError
}

// DomainCodeToHTTPStatus returns the HTTP status for code.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	return mappingFor(code).status
}

// DomainCodeToHTTPCode returns the "error" field written for code.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	return mappingFor(code).code
}

// WriteError answers with the status and code of err's domain code. Uncoded
// errors become a bare 500 so their text never reaches the client; retryable
// ones carry Retry-After.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	m := mappingFor(code)
	body := map[string]string{"error": m.code}

	var de *dErrors.Error
	if errors.As(err, &de) && de.Message != "" {
		body["error_description"] = de.Message
	}
	if dErrors.Retryable(err) {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, m.status, body)
}
