package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chetan-code/todoly/internal/repository"
	"github.com/chetan-code/todoly/internal/service"
)

// errBadInput marks request data that could not be parsed or validated.
var errBadInput = errors.New("bad input")

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error from the task operations onto what the caller sees.
// Unknown errors are logged here and hidden behind a generic message.
func classify(r *http.Request, err error) apiError {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return apiError{http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to continue"}
	case errors.Is(err, service.ErrEmptyTask):
		return apiError{http.StatusBadRequest, "BAD_REQUEST", "Task text can't be empty"}
	case errors.Is(err, service.ErrTaskTooLong):
		return apiError{http.StatusBadRequest, "BAD_REQUEST", "Task text is too long"}
	case errors.Is(err, errBadInput):
		return apiError{http.StatusBadRequest, "BAD_REQUEST", err.Error()}
	case errors.Is(err, repository.ErrNotFound):
		return apiError{http.StatusNotFound, "NOT_FOUND", "Task not found"}
	}

	slog.Error("task_operation_failed",
		"method", r.Method,
		"path", r.URL.Path,
		"ip", r.RemoteAddr,
		"error", err)
	return apiError{http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Something went wrong, please try again"}
}
