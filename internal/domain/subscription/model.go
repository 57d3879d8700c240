package subscription

import (
	"errors"
	"net/url"
	"strings"
)

// Channel constants name the two mailing lists.
const (
	ChannelDaily  = "daily"
	ChannelWeekly = "weekly"
)

// DefaultMissedDays is how far back missed capsules are resent.
const DefaultMissedDays = 7

// Domain errors
var (
	ErrEmptyEmail     = errors.New("email cannot be empty")
	ErrInvalidChannel = errors.New("channel must be daily or weekly")
	ErrInvalidDays    = errors.New("days must be between 1 and 30")
)

// Subscriber is one row of a subscriber list.
type Subscriber struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// List is the payload of the subscriber list endpoints.
type List struct {
	Subscribers []Subscriber `json:"subscribers"`
}

// Normalize fills the empty list.
func (l *List) Normalize() {
	if l.Subscribers == nil {
		l.Subscribers = []Subscriber{}
	}
}

// Row is a subscriber tagged with the list it came from.
type Row struct {
	Channel string
	Subscriber
}

// Rows joins the daily and weekly lists, daily first. A nil list contributes nothing.
func Rows(daily, weekly *List) []Row {
	var rows []Row
	if daily != nil {
		for _, s := range daily.Subscribers {
			rows = append(rows, Row{Channel: ChannelDaily, Subscriber: s})
		}
	}
	if weekly != nil {
		for _, s := range weekly.Subscribers {
			rows = append(rows, Row{Channel: ChannelWeekly, Subscriber: s})
		}
	}
	return rows
}

// Change is a subscribe or unsubscribe on one channel.
type Change struct {
	Email       string
	Channel     string
	Unsubscribe bool
}

// Validate checks the email and channel.
// PRE: none
// POST: Returns nil if email is non-blank and channel is known
func (c *Change) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if c.Channel != ChannelDaily && c.Channel != ChannelWeekly {
		return ErrInvalidChannel
	}
	return nil
}

// Path is the backend path for the change, with the email path-escaped.
// PRE: Validate returned nil
func (c Change) Path() string {
	verb := "subscribe"
	if c.Unsubscribe {
		verb = "unsubscribe"
	}
	if c.Channel == ChannelWeekly {
		verb += "-weekly"
	}
	return "/subscription/" + verb + "/" + url.PathEscape(c.Email)
}

// ValidateDays bounds the missed-capsule window.
func ValidateDays(days int) error {
	if days < 1 || days > 30 {
		return ErrInvalidDays
	}
	return nil
}
