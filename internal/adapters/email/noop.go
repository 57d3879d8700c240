package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. It keeps what it was
// given so development and tests can inspect the last sends.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records and logs the message.
// POST: Sent() includes msg when it is valid
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	slog.Info("noop_email_send", "recipients", len(msg.To), "subject", msg.Subject)
	return Receipt{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Sent returns a copy of every recorded message.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
