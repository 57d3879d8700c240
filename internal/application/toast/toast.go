// Package toast collects transient user-visible notifications for one request.
package toast

import (
	"context"
	"sync"
)

// Level styles a notification.
type Level string

// Notification levels.
const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// Toast is one transient notification.
type Toast struct {
	Level   Level
	Message string
}

// Tray accumulates toasts for a single request. Safe for concurrent use,
// since panel fetches run in parallel.
type Tray struct {
	mu     sync.Mutex
	toasts []Toast
}

// Push appends a toast. Consecutive duplicates are collapsed so that two
// failed fetches joined into one panel show one "Request failed".
func (t *Tray) Push(level Level, message string) {
	if t == nil || message == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.toasts); n > 0 && t.toasts[n-1] == (Toast{Level: level, Message: message}) {
		return
	}
	t.toasts = append(t.toasts, Toast{Level: level, Message: message})
}

// All returns a copy of the collected toasts in push order.
func (t *Tray) All() []Toast {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Messages returns just the message texts.
func (t *Tray) Messages() []string {
	all := t.All()
	out := make([]string, len(all))
	for i, m := range all {
		out[i] = m.Message
	}
	return out
}

type ctxKey struct{}

// WithTray returns a context carrying tray.
func WithTray(ctx context.Context, tray *Tray) context.Context {
	return context.WithValue(ctx, ctxKey{}, tray)
}

// FromContext returns the request's tray, or nil. A nil tray discards pushes.
func FromContext(ctx context.Context) *Tray {
	tray, _ := ctx.Value(ctxKey{}).(*Tray)
	return tray
}

// Push adds a toast to the tray in ctx, if any.
func Push(ctx context.Context, level Level, message string) {
	FromContext(ctx).Push(level, message)
}
