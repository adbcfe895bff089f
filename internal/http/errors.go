// Package for HTTP error responses

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Request Failed.\nStatus: %s. \nBody: %s", e.Status, e.Body)
}

func NewHTTPError(statusCode int, status, body string) error {
	return &HTTPError{
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
}

// Writes a JSON error body {"error": message} with the given status.
// Every handler error response goes through here.
func Error(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
