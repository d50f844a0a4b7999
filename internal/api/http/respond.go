package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opoprep/opoprep-engine/internal/session"
)

// Every response body carries the {success, error?} envelope; handlers embed
// their payload fields next to Success. Errors stay machine-parseable JSON,
// the status code carries the class.

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Success: false, Error: msg})
}

// writeSessionError maps the session package's sentinel errors onto the HTTP
// taxonomy: 400 validation, 403 ownership, 404 missing, 409 state conflicts,
// 500 everything else. Internal detail never reaches the body on 500.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidID), errors.Is(err, session.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "test not found")
	case errors.Is(err, session.ErrFinished), errors.Is(err, session.ErrIncomplete):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
