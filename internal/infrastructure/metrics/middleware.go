package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// statusRecorder captures the response status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// routeLabel returns the route template for the request, falling back to the
// raw path when the request did not match a registered route.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// Middleware returns an HTTP middleware that records metrics for each request.
func Middleware(collector *Collector, exporter *PrometheusExporter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeLabel(r)

			// Record request
			collector.RecordRequest(route)
			if exporter != nil {
				exporter.RecordRequest(r.Method, route)
			}

			// Call handler
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Record duration
			duration := time.Since(start).Seconds()
			collector.RecordDuration(route, duration)
			if exporter != nil {
				exporter.RecordDuration(r.Method, route, duration)
			}

			// Record error responses
			if rec.status >= http.StatusBadRequest {
				collector.RecordError(route)
				if exporter != nil {
					exporter.RecordError(r.Method, route, strconv.Itoa(rec.status))
				}
			}
		})
	}
}
