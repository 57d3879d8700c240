package email

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoRecipient is returned when a message has nobody to go to.
var ErrNoRecipient = errors.New("email needs at least one recipient")

// Message is one outgoing email.
type Message struct {
	To      []string
	From    string // empty selects the sender's default
	Subject string
	HTML    string
	Text    string // optional plain-text alternative
}

// Validate checks the message before it reaches a provider.
// PRE: none
// POST: Returns nil if there is a non-blank recipient and subject
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipient
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return ErrNoRecipient
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject cannot be empty")
	}
	return nil
}

// Receipt is the provider's acknowledgement.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
