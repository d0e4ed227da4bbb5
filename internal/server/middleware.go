package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// observeMiddleware logs every request and feeds the prometheus counters.
func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		}
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("code", rec.code),
			zap.Duration("took", time.Since(start)))
	})
}

// recoverMiddleware keeps a panicking handler from tearing the connection
// down without a formatted response.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Handler panicked", zap.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError,
					errBody("Internal server error", fmt.Sprint(rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
