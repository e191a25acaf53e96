package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Card type constants.
const (
	CardTypeURL      = "url"
	CardTypeMarkdown = "md-note"
	CardTypeText     = "text-note"
	CardTypeQuick    = "quick-note"
	CardTypeFile     = "file"
)

// Tag conventions: collection membership and calendar scheduling are
// encoded as specially prefixed tags on the card.
const (
	CollectionTagPrefix = "collection:"
	ScheduledTagPrefix  = "scheduled:"
)

// Card is a bookmark or note. URL cards carry fetched page metadata
// (domain, description, image) that the server owns; note cards carry
// user-authored content.
type Card struct {
	Base

	Type    string `json:"type" db:"type"`
	Title   string `json:"title" db:"title"`
	URL     string `json:"url,omitempty" db:"url"`
	Content string `json:"content,omitempty" db:"content"`

	// Server-fetched page metadata. These are server-authoritative:
	// conflict merges always prefer the server's copy.
	Domain      string `json:"domain,omitempty" db:"domain"`
	Description string `json:"description,omitempty" db:"description"`
	ImageURL    string `json:"image_url,omitempty" db:"image_url"`

	Tags           []string `json:"tags,omitempty" db:"-"`
	Pinned         bool     `json:"pinned" db:"pinned"`
	ScheduledDates []string `json:"scheduled_dates,omitempty" db:"-"`
}

// Validate checks the card is well-formed enough to persist.
func (c *Card) Validate() error {
	switch c.Type {
	case CardTypeURL, CardTypeMarkdown, CardTypeText, CardTypeQuick, CardTypeFile:
	default:
		return fmt.Errorf("%w: unknown card type %q", ErrValidation, c.Type)
	}
	if c.WorkspaceID == "" {
		return fmt.Errorf("%w: card has no workspace", ErrValidation)
	}
	if c.Type == CardTypeURL {
		if strings.TrimSpace(c.URL) == "" {
			return fmt.Errorf("%w: url card has no url", ErrValidation)
		}
		if _, err := url.Parse(c.URL); err != nil {
			return fmt.Errorf("%w: invalid url %q", ErrValidation, c.URL)
		}
	} else if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: note card has neither title nor content", ErrValidation)
	}
	return nil
}

// ContentKey returns the key the deduplication engine groups cards by:
// normalized URL for url cards, title otherwise, falling back to the id
// so keyless cards never collide with each other.
func (c *Card) ContentKey() string {
	if c.URL != "" {
		return normalizeURL(c.URL)
	}
	if t := strings.TrimSpace(strings.ToLower(c.Title)); t != "" {
		return "title:" + t
	}
	return "id:" + c.ID
}

// normalizeURL lowercases the host, strips a trailing slash, and drops
// the scheme so http/https duplicates of the same page collapse.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "url:" + strings.TrimRight(strings.TrimSpace(raw), "/")
	}
	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.Path, "/")
	key := host + path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return "url:" + key
}

// InCollection reports whether the card carries the membership tag for
// the given collection slug.
func (c *Card) InCollection(slug string) bool {
	for _, t := range c.Tags {
		if t == CollectionTagPrefix+slug {
			return true
		}
	}
	return false
}

// EntityType implements Entity.
func (c *Card) EntityType() EntityType { return TypeCard }

// EntityBase implements Entity.
func (c *Card) EntityBase() *Base { return &c.Base }
