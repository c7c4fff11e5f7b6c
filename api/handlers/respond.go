package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/api"
	"github.com/linesmerrill/car-spec-api/catalog"
	"github.com/linesmerrill/car-spec-api/config"
)

// respond writes body as JSON with the given status
func respond(w http.ResponseWriter, status int, body interface{}) {
	b, err := json.Marshal(body)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// respondError maps a catalog error onto its status code and error body.
// Unrecognised errors are logged and answered with an opaque 500.
func respondError(w http.ResponseWriter, err error) {
	var (
		validation   *catalog.ValidationError
		notFound     *catalog.NotFoundError
		insufficient *catalog.InsufficientDataError
		metric       *catalog.InvalidMetricError
	)
	switch {
	case errors.As(err, &validation):
		respond(w, http.StatusBadRequest, map[string]interface{}{"error": validation.Message})
	case errors.As(err, &metric):
		respond(w, http.StatusBadRequest, map[string]interface{}{
			"error":         metric.Error(),
			"suggestion":    "Use GET /api/v1/available/metrics to list supported metrics",
			"cars":          []interface{}{},
			"valid_metrics": metric.Valid,
		})
	case errors.As(err, &insufficient):
		respond(w, http.StatusBadRequest, map[string]interface{}{
			"error":              insufficient.Message,
			"cars":               []interface{}{},
			"comparison_winners": map[string]interface{}{},
			"found":              insufficient.Found,
		})
	case errors.As(err, &notFound):
		body := map[string]interface{}{}
		for k, v := range notFound.Context {
			body[k] = v
		}
		body["error"] = notFound.Message
		respond(w, http.StatusNotFound, body)
	default:
		config.ErrorStatus("internal server error", http.StatusInternalServerError, w, err)
	}
}

// queryContext bounds store calls made while serving r
func queryContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return api.WithQueryTimeout(r.Context(), timeout)
}

func intVar(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		zap.S().Debugw("invalid path parameter", "name", name, "value", mux.Vars(r)[name])
		return 0, &catalog.ValidationError{Message: "invalid " + name}
	}
	return v, nil
}

// intQuery reads an optional integer query parameter; absent gives 0
func intQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &catalog.ValidationError{Message: "invalid value " + strconv.Quote(v) + " for " + name}
	}
	return n, nil
}
