package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

// ErrNotJSONObject is returned when a request body is not a JSON object
var ErrNotJSONObject = errors.New("request body must be a JSON object")

// maxBodyBytes bounds request bodies read by DecodeJSONObject
const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	if data == nil {
		w.WriteHeader(status)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the error envelope with the given status code
func WriteError(w http.ResponseWriter, status int, message, requestID string) error {
	return WriteJSON(w, status, ErrorResponse{
		Error:     message,
		RequestID: requestID,
	})
}

// DecodeJSONObject decodes a request body into dst. The body must be a
// single JSON object; arrays, scalars, null and malformed input are rejected.
func DecodeJSONObject(r io.Reader, dst interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotJSONObject
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	return nil
}
