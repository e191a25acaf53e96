package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Recurrence frequency constants.
const (
	FreqDaily    = "daily"
	FreqWeekly   = "weekly"
	FreqBiweekly = "biweekly"
	FreqMonthly  = "monthly"
	FreqYearly   = "yearly"
)

// Recurrence describes how an event repeats. A zero Interval means 1.
// The rule ends at EndDate or after EndCount emitted occurrences,
// whichever is reached first; both zero means unbounded.
type Recurrence struct {
	Frequency  string         `json:"frequency"`
	Interval   int            `json:"interval,omitempty"`
	DaysOfWeek []time.Weekday `json:"days_of_week,omitempty"`
	DayOfMonth int            `json:"day_of_month,omitempty"`
	EndDate    string         `json:"end_date,omitempty"`
	EndCount   int            `json:"end_count,omitempty"`
}

// CalendarEvent is a scheduled item anchored on Date. EndDate (without a
// recurrence rule) makes it a multi-day span. Exception instances carry
// RecurrenceParentID pointing back at the recurring parent.
type CalendarEvent struct {
	Base

	Title     string `json:"title" db:"title"`
	Date      string `json:"date" db:"date"`
	EndDate   string `json:"end_date,omitempty" db:"end_date"`
	StartTime string `json:"start_time,omitempty" db:"start_time"`
	EndTime   string `json:"end_time,omitempty" db:"end_time"`

	Recurrence         *Recurrence `json:"recurrence,omitempty" db:"-"`
	ExcludedDates      []string    `json:"excluded_dates,omitempty" db:"-"`
	RecurrenceParentID *string     `json:"recurrence_parent_id,omitempty" db:"recurrence_parent_id"`
	IsException        bool        `json:"is_exception" db:"is_exception"`
}

// Validate checks the event is well-formed enough to persist.
func (e *CalendarEvent) Validate() error {
	if e.WorkspaceID == "" {
		return fmt.Errorf("%w: event has no workspace", ErrValidation)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: event title must not be empty", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: bad event date %q", ErrValidation, e.Date)
	}
	if e.EndDate != "" {
		end, err := time.Parse(DateLayout, e.EndDate)
		if err != nil {
			return fmt.Errorf("%w: bad event end date %q", ErrValidation, e.EndDate)
		}
		start, _ := time.Parse(DateLayout, e.Date)
		if end.Before(start) {
			return fmt.Errorf("%w: event ends before it starts", ErrValidation)
		}
	}
	if e.Recurrence != nil {
		switch e.Recurrence.Frequency {
		case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqYearly:
		default:
			return fmt.Errorf("%w: unknown recurrence frequency %q", ErrValidation, e.Recurrence.Frequency)
		}
		if e.Recurrence.Interval < 0 {
			return fmt.Errorf("%w: negative recurrence interval", ErrValidation)
		}
	}
	return nil
}

// IsExcluded reports whether the given date is in the rule's exclusion set.
func (e *CalendarEvent) IsExcluded(date string) bool {
	for _, d := range e.ExcludedDates {
		if d == date {
			return true
		}
	}
	return false
}

// EntityType implements Entity.
func (e *CalendarEvent) EntityType() EntityType { return TypeEvent }

// EntityBase implements Entity.
func (e *CalendarEvent) EntityBase() *Base { return &e.Base }
