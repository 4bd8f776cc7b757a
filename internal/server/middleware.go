package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with request metrics under a fixed path
// label. When metrics are disabled it returns the handler unchanged.
func (h *Handler) instrument(path string, next http.HandlerFunc) http.Handler {
	if h.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.metrics.HTTPRequestsInFlight.WithLabelValues(r.Method, path).Inc()
		defer h.metrics.HTTPRequestsInFlight.WithLabelValues(r.Method, path).Dec()

		timer := prometheus.NewTimer(h.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path))
		defer timer.ObserveDuration()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		h.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
	})
}
