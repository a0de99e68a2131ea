package health

import (
	"encoding/json"
	"errors"
	"net/http"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// HealthHandler returns an HTTP handler that runs every check and writes
// the aggregate as JSON. It always answers 200; failures are reported in
// the body.
func HealthHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		writeJSON(w, http.StatusOK, results)
	}
}

// CheckNameFunc extracts the requested check name from a request.
type CheckNameFunc func(r *http.Request) string

// SingleCheckHandler returns an HTTP handler for checking a single component.
// Unknown names answer 404.
func SingleCheckHandler(agg *Aggregator, name CheckNameFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := agg.Check(r.Context(), name(r))
		if errors.Is(err, ErrCheckerNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
