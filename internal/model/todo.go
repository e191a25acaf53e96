package model

import (
	"fmt"
	"strings"
)

// Todo status constants.
const (
	TodoStatusOpen     = "open"
	TodoStatusComplete = "complete"
)

// Todo is a lightweight checklist item, optionally scheduled on a date.
type Todo struct {
	Base

	Title     string `json:"title" db:"title"`
	Status    string `json:"status" db:"status"`
	DueDate   string `json:"due_date,omitempty" db:"due_date"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// Validate checks the todo is well-formed enough to persist.
func (t *Todo) Validate() error {
	if t.WorkspaceID == "" {
		return fmt.Errorf("%w: todo has no workspace", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: todo title must not be empty", ErrValidation)
	}
	if t.Status != "" && t.Status != TodoStatusOpen && t.Status != TodoStatusComplete {
		return fmt.Errorf("%w: unknown todo status %q", ErrValidation, t.Status)
	}
	return nil
}

// EntityType implements Entity.
func (t *Todo) EntityType() EntityType { return TypeTodo }

// EntityBase implements Entity.
func (t *Todo) EntityBase() *Base { return &t.Base }
