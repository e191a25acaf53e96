package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Collection is a named, optionally nested grouping of cards. Membership
// is tag-based (see CollectionTagPrefix); the collection row itself only
// carries the tree structure and display attributes.
type Collection struct {
	Base

	Name      string  `json:"name" db:"name"`
	Slug      string  `json:"slug" db:"slug"`
	ParentID  *string `json:"parent_id,omitempty" db:"parent_id"`
	Pinned    bool    `json:"pinned" db:"pinned"`
	IsPrivate bool    `json:"is_private" db:"is_private"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the routing/tag slug from a collection name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Validate checks the collection is well-formed enough to persist.
func (c *Collection) Validate() error {
	if c.WorkspaceID == "" {
		return fmt.Errorf("%w: collection has no workspace", ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: collection name must not be empty", ErrValidation)
	}
	if c.Slug == "" {
		return fmt.Errorf("%w: collection has no slug", ErrValidation)
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return fmt.Errorf("%w: collection cannot be its own parent", ErrValidation)
	}
	return nil
}

// DeletePolicy selects what happens to a deleted collection's children.
type DeletePolicy int

const (
	// CascadeDelete soft-deletes every descendant collection.
	CascadeDelete DeletePolicy = iota
	// ReparentChildren moves direct children up to the deleted
	// collection's parent.
	ReparentChildren
)

// EntityType implements Entity.
func (c *Collection) EntityType() EntityType { return TypeCollection }

// EntityBase implements Entity.
func (c *Collection) EntityBase() *Base { return &c.Base }
