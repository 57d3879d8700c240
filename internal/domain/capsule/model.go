package capsule

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"civicbriefs/internal/domain/schema"
)

// Display limits for the two capsule renderings.
const (
	CompactSummaryLimit = 300
	MaxTopicTags        = 6
	CompactPyqLimit     = 4
	RichPyqLimit        = 3
)

// DefaultDate is shown when the backend omits the capsule date.
const DefaultDate = "Today"

// Domain errors
var (
	ErrEmptyTitle   = errors.New("news title cannot be empty")
	ErrEmptyContent = errors.New("news content cannot be empty")
)

// Capsule is a dated bundle of curated news items.
type Capsule struct {
	Date  string `json:"date"`
	Items []Item `json:"items"`
}

// Item is one news entry with its topic tags and related prior-exam questions.
type Item struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Source  string  `json:"source"`
	Summary string  `json:"summary"`
	Topics  []Topic `json:"topics"`
	Pyqs    []Pyq   `json:"pyqs"`
}

// Topic is a syllabus tag attached to an item.
type Topic struct {
	Paper string     `json:"paper"`
	Topic string     `json:"topic"`
	Score schema.Num `json:"score"`
}

// Pyq is a previously-asked exam question.
type Pyq struct {
	ID       schema.Text `json:"id"`
	Year     schema.Text `json:"year"`
	Paper    string      `json:"paper"`
	Question string      `json:"question"`
}

// Normalize replaces nil collections with empty ones so renderers never branch on nil.
// POST: Items, and every item's Topics and Pyqs, are non-nil
func (c *Capsule) Normalize() {
	if c.Items == nil {
		c.Items = []Item{}
	}
	for i := range c.Items {
		if c.Items[i].Topics == nil {
			c.Items[i].Topics = []Topic{}
		}
		if c.Items[i].Pyqs == nil {
			c.Items[i].Pyqs = []Pyq{}
		}
	}
}

// DisplayDate returns the capsule date or DefaultDate.
func (c Capsule) DisplayDate() string {
	if strings.TrimSpace(c.Date) == "" {
		return DefaultDate
	}
	return c.Date
}

// IsEmpty reports whether the capsule has no items.
func (c Capsule) IsEmpty() bool {
	return len(c.Items) == 0
}

// Truncate returns the first n runes of s, with no ellipsis.
// INVARIANT: s is not modified when it is already n runes or shorter
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// FormatScore rounds a topic score half away from zero to two decimals.
// Both capsule renderings use it so the same score always prints the same.
func FormatScore(score float64) string {
	rounded := math.Round(score*100) / 100
	return strconv.FormatFloat(rounded, 'f', 2, 64)
}

// TagLabel is the "paper: topic" label of a topic chip.
func (t Topic) TagLabel() string {
	return t.Paper + ": " + t.Topic
}

// NewsIn is a news item submitted for ingestion.
type NewsIn struct {
	Source      string `json:"source" validate:"required,max=120"`
	Title       string `json:"title" validate:"required,max=500"`
	URL         string `json:"url" validate:"required,url"`
	PublishedAt string `json:"published_at" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// Validate checks the item's hard invariants that do not need a validator instance.
// PRE: none
// POST: Returns nil if title and content are present
func (n NewsIn) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
