package web

// errors.go provides the JSON response envelope for the service surface.
//
// Every response carries an "ok" flag. Failures get an HTTP status that
// reflects the failure class: 504 when a sync job exceeded its deadline
// ("still might have partially run"), 500 for everything else. The technical
// error is logged with the request id; the client receives the message only.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkranz/sheetsync/internal/logging"
)

// envelope is the common JSON response shape.
type envelope map[string]any

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing to do but log.
		logging.FromContext(context.Background()).Error("json encode error", "error", err)
	}
}

// respondError logs err and writes an ok:false envelope. Deadline expiry maps
// to 504 so callers can tell "timed out, may have partially run" from
// "rejected outright".
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
		message = "sync timed out"
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	writeJSON(w, status, envelope{"ok": false, "error": message})
}

// respondBadRequest writes an ok:false envelope with a 400 status.
func respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	logging.FromContext(r.Context()).Warn("bad request",
		"path", r.URL.Path,
		"error", message,
	)
	writeJSON(w, http.StatusBadRequest, envelope{"ok": false, "error": message})
}
