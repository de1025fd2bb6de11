// Package httputil translates the core library's §7 error kinds into JSON
// HTTP responses, logging client faults at warn and server faults at error
// exactly as the teacher's plain-text helpers did.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coinflip-gg/bracketry"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, kind bracketry.ErrorKind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: string(kind), Message: msg})
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeJSONError(w, http.StatusInternalServerError, bracketry.ErrStorageError, "internal server error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeJSONError(w, http.StatusBadRequest, bracketry.ErrInvalidInput, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeJSONError(w, http.StatusNotFound, bracketry.ErrNotFound, msg)
}

// statusFor maps a §7 error kind to its HTTP status, the transport-edge
// translation SPEC_FULL.md's ambient-stack section assigns to this package.
func statusFor(kind bracketry.ErrorKind) int {
	switch kind {
	case bracketry.ErrNotFound:
		return http.StatusNotFound
	case bracketry.ErrInvalidInput, bracketry.ErrInvalidOpponent, bracketry.ErrInvalidScore,
		bracketry.ErrInvalidResult, bracketry.ErrInvalidTransition, bracketry.ErrUseMatchGameUpdate,
		bracketry.ErrCannotResetDownstreamCompleted:
		return http.StatusUnprocessableEntity
	case bracketry.ErrStorageError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteError dispatches a bracketry.Error (or any error) to the right
// status/body, logging server faults at error and everything else at warn.
func WriteError(w http.ResponseWriter, msg string, err error) {
	kind, ok := bracketry.KindOf(err)
	if !ok {
		InternalServerError(w, msg, err)
		return
	}
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "kind", kind, "error", err)
	} else {
		slog.Warn(msg, "kind", kind, "error", err)
	}
	writeJSONError(w, status, kind, err.Error())
}
