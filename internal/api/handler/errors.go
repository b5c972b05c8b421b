package handler

import (
	"encoding/json"
	"net/http"

	"github.com/medge/codewords/internal/api/apierr"
)

// WriteError maps err to its API error envelope
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError builds a 400 with the given message
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewInternalError builds an opaque 500
func NewInternalError() error {
	return apierr.NewInternalError()
}

// decodeJSON reads the request body into dst, reporting a 400 on failure.
// Returns false when the response has already been written
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}

// requireFields takes name/value pairs and reports a 400 naming the first
// empty value. Returns false when the response has already been written
func requireFields(w http.ResponseWriter, pairs ...string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			WriteError(w, NewInvalidRequestError(pairs[i]+" is required"))
			return false
		}
	}
	return true
}
