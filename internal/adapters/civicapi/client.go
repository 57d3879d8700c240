// Package civicapi is the dashboard's only path to the remote Civic Briefs API.
//
// Every call returns a Result rather than an error: transport failures,
// non-2xx statuses and unparseable bodies are all folded into the Result and
// surfaced to the user as a generic "Request failed" toast. Callers decide
// whether to render more specific detail from the payload.
package civicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civicbriefs/internal/adapters/http/perf"
	"civicbriefs/internal/application/toast"
)

// FailureMessage is the generic toast shown for any failed request.
const FailureMessage = "Request failed"

// DefaultSlowUpstreamMs is the default threshold for slow upstream warnings.
const DefaultSlowUpstreamMs = 500

// ErrNoBaseURL is returned when the client is configured without an API origin.
var ErrNoBaseURL = errors.New("api base url is required")

// Request describes one call to the backend.
type Request struct {
	Method     string
	Path       string // relative path, may carry a query string
	Header     http.Header
	Body       any    // []byte is sent as-is; anything else is JSON-encoded
	Credential string // attached as a bearer token when non-empty
	Quiet      bool   // suppresses the failure toast for background checks
}

// Result is the uniform outcome of a call.
// INVARIANT: OK == (200 <= Status < 300); Status == 0 means no response
type Result struct {
	OK     bool
	Status int
	Data   any    // decoded JSON, or nil when the body was not JSON
	Text   string // raw body text when it was not JSON
	Raw    []byte
	Err    error // transport or encoding failure; nil when a response arrived
}

// IsJSON reports whether the body parsed as JSON.
func (r Result) IsJSON() bool {
	return r.Data != nil
}

// Decode unmarshals the raw body into v. Non-JSON bodies decode to nothing.
func (r Result) Decode(v any) error {
	if len(bytes.TrimSpace(r.Raw)) == 0 || !r.IsJSON() {
		return nil
	}
	return json.Unmarshal(r.Raw, v)
}

// Detail returns the backend's error detail, if the body carries one.
func (r Result) Detail() string {
	m, ok := r.Data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Pretty renders the payload for a status panel: indented JSON, or the raw
// text, or the transport error.
func (r Result) Pretty() string {
	if r.IsJSON() {
		out, err := json.MarshalIndent(r.Data, "", "  ")
		if err == nil {
			return string(out)
		}
	}
	if r.Text != "" {
		return r.Text
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Config configures a Client.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Recorder       perf.Recorder
	SlowUpstreamMs int
}

// Client issues requests against one backend origin.
type Client struct {
	base      string
	http      *http.Client
	recorder  perf.Recorder
	threshold float64
}

// New creates a Client.
// PRE: cfg.BaseURL is an absolute http(s) URL
// POST: Returns a Client with no request timeout beyond the transport default
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	slow := cfg.SlowUpstreamMs
	if slow <= 0 {
		slow = DefaultSlowUpstreamMs
	}
	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		http:      hc,
		recorder:  cfg.Recorder,
		threshold: float64(slow),
	}, nil
}

// BaseURL returns the configured origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// resolve joins a relative path onto the base URL.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

// Do performs req and folds every outcome into a Result.
// PRE: req.Path is non-empty
// POST: never panics or returns a Go error; pushes FailureMessage onto the
// context's toast tray when the result is not OK
func (c *Client) Do(ctx context.Context, req Request) Result {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	start := time.Now()
	res := c.do(ctx, method, req)
	c.observe(method, req.Path, res, start)
	if !res.OK && !req.Quiet {
		toast.Push(ctx, toast.Error, FailureMessage)
	}
	return res
}

func (c *Client) do(ctx context.Context, method string, req Request) Result {
	var body io.Reader
	isJSON := false
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return Result{Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(encoded)
		isJSON = true
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.Path), body)
	if err != nil {
		return Result{Err: fmt.Errorf("build request: %w", err)}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if isJSON && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Credential)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	res := Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Raw:    raw,
	}
	if err != nil {
		res.Err = fmt.Errorf("read response body: %w", err)
	}
	var data any
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &data) == nil && data != nil {
		res.Data = data
	} else {
		res.Text = string(raw)
	}
	return res
}

// observe logs and records the timing of one upstream call.
func (c *Client) observe(method, path string, res Result, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	route := method + " " + stripQuery(path)

	attrs := []any{
		"method", method,
		"path", stripQuery(path),
		"status", res.Status,
		"duration_ms", durationMs,
	}
	switch {
	case res.Err != nil && res.Status == 0:
		slog.Warn("upstream_error", append(attrs, "error", res.Err.Error())...)
	case durationMs >= c.threshold:
		slog.Warn("slow_upstream", attrs...)
	default:
		slog.Debug("upstream", attrs...)
	}

	if c.recorder != nil {
		c.recorder.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       route,
			StatusCode: res.Status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
