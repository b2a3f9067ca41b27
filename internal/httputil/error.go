package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
)

// Error writes err with the status its type maps to. Internal errors are
// logged and never shown to the caller.
func Error(w http.ResponseWriter, msg string, err error) {
	var (
		verr      *bracket.ValidationError
		conflict  *bracket.ConflictError
		nf        *bracket.NotFoundError
		invariant *bracket.InvariantViolation
	)
	switch {
	case errors.As(err, &verr):
		slog.Warn("validation failed", "message", msg, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflict):
		slog.Warn("conflict", "message", msg, "error", err)
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &nf):
		NotFound(w, err.Error(), nil)
	case errors.As(err, &invariant):
		slog.Error("bracket invariant violated", "message", msg, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		InternalServerError(w, msg, err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeError(w, http.StatusNotFound, msg)
}
