package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"civicbriefs/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
// A dashboard request includes its upstream calls, so the bar sits above a single call's.
const DefaultSlowRequestMs = 800

// RequestIDHeader carries the id Timing assigns, so a slow page can be found in the log.
const RequestIDHeader = "X-Request-Id"

// recorderWriter remembers what the handler sent.
type recorderWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *recorderWriter) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorderWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *recorderWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// renderMode names how the dashboard answers: fragments for app.js, a full page otherwise.
func renderMode(r *http.Request) string {
	if r.Header.Get("X-Requested-With") == "fetch" {
		return "fetch"
	}
	return "page"
}

// Timing returns middleware that times each dashboard request, including the
// upstream calls its handler makes, and tags the response with a request id.
// Requests to /static/ are excluded.
// PRE: recorder may be nil; slowMs <= 0 selects DefaultSlowRequestMs
// POST: one perf entry per non-static request, recorded even if the handler panics
func Timing(recorder perf.Recorder, slowMs int) func(http.Handler) http.Handler {
	if slowMs <= 0 {
		slowMs = DefaultSlowRequestMs
	}
	threshold := float64(slowMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStatic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			id := uuid.NewString()
			w.Header().Set(RequestIDHeader, id)
			rw := &recorderWriter{ResponseWriter: w}
			start := time.Now()
			completed := false
			defer func() {
				elapsed := float64(time.Since(start).Microseconds()) / 1000.0
				status := rw.status
				switch {
				case !completed:
					status = http.StatusInternalServerError
				case status == 0:
					status = http.StatusOK
				}
				attrs := []any{
					"request_id", id,
					"route", r.Method + " " + r.URL.Path,
					"mode", renderMode(r),
					"status", status,
					"bytes", rw.bytes,
					"duration_ms", elapsed,
				}
				if elapsed >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
				if recorder != nil {
					recorder.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + r.URL.Path,
						StatusCode: status,
						DurationMs: elapsed,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(rw, r)
			completed = true
		})
	}
}
