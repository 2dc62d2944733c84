package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/gorilla/mux"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Anything unrecognized is a 500
// and its message stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		detail = domain.ErrUnauthenticated.Error()
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.Is(err, domain.ErrForbidden):
		status, detail = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, detail = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidTransition):
		status, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, detail = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUpstream):
		status, detail = http.StatusBadGateway, err.Error()
	default:
		slog.ErrorContext(r.Context(), "[order-svc] request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{Detail: detail})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidRequest, name)
	}
	return value, nil
}
