// Package recur expands recurring calendar events into concrete
// occurrences. Expansion is pure: it performs no I/O and never mutates
// the event, so the same event and range always yield the same result.
package recur

import (
	"time"

	"github.com/pawkit/pawkit/internal/model"
)

// maxIterations bounds the expansion loop so a malformed rule cannot run
// away. Hitting the cap means "no more occurrences", not an error.
const maxIterations = 1000

// Instance is one concrete occurrence of an event. IsOriginal marks the
// rule's anchor date as opposed to a generated repetition.
type Instance struct {
	Event        *model.CalendarEvent
	InstanceDate string
	IsOriginal   bool
}

// Expand produces the event's occurrences within [rangeStart, rangeEnd]
// (inclusive, ISO dates). Malformed dates yield no instances.
func Expand(ev *model.CalendarEvent, rangeStart, rangeEnd string) []Instance {
	start, err := time.Parse(model.DateLayout, rangeStart)
	if err != nil {
		return nil
	}
	end, err := time.Parse(model.DateLayout, rangeEnd)
	if err != nil || end.Before(start) {
		return nil
	}
	anchor, err := time.Parse(model.DateLayout, ev.Date)
	if err != nil {
		return nil
	}

	if ev.Recurrence == nil {
		if ev.EndDate != "" && ev.EndDate != ev.Date {
			return expandSpan(ev, anchor, start, end)
		}
		// Single-day event: one instance iff the date is in range.
		if !anchor.Before(start) && !anchor.After(end) {
			return []Instance{{Event: ev, InstanceDate: ev.Date, IsOriginal: true}}
		}
		return nil
	}

	return expandRule(ev, anchor, start, end)
}

// expandSpan emits one instance per calendar day of a multi-day event,
// clipped to the query range.
func expandSpan(ev *model.CalendarEvent, anchor, start, end time.Time) []Instance {
	spanEnd, err := time.Parse(model.DateLayout, ev.EndDate)
	if err != nil {
		return nil
	}

	from := maxDate(anchor, start)
	to := minDate(spanEnd, end)

	var out []Instance
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(model.DateLayout)
		out = append(out, Instance{
			Event:        ev,
			InstanceDate: date,
			IsOriginal:   date == ev.Date,
		})
	}
	return out
}

// expandRule walks a recurrence rule forward from the anchor date.
func expandRule(ev *model.CalendarEvent, anchor, start, end time.Time) []Instance {
	rule := ev.Recurrence

	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	var ruleEnd time.Time
	haveRuleEnd := false
	if rule.EndDate != "" {
		if parsed, err := time.Parse(model.DateLayout, rule.EndDate); err == nil {
			ruleEnd = parsed
			haveRuleEnd = true
		}
	}

	// Weekly rules with an explicit day-of-week set step day-by-day so
	// every listed weekday inside each active week is visited.
	dayByDay := rule.Frequency == model.FreqWeekly && len(rule.DaysOfWeek) > 0

	var out []Instance
	emitted := 0
	current := anchor

	for i := 0; i < maxIterations; i++ {
		if current.After(end) {
			break
		}
		if haveRuleEnd && current.After(ruleEnd) {
			break
		}
		if rule.EndCount > 0 && emitted >= rule.EndCount {
			break
		}

		date := current.Format(model.DateLayout)

		// In the day-by-day walk a date belongs to the series only when
		// its weekday is listed and its week sits on the interval grid
		// relative to the anchor's week.
		matches := true
		if dayByDay {
			matches = matchesWeekday(current.Weekday(), rule.DaysOfWeek) &&
				weekOffset(anchor, current)%interval == 0
		}

		include := matches && !current.Before(start) && !ev.IsExcluded(date)

		// The occurrence still counts against EndCount even when the
		// query range clips it, so pagination does not shift the series.
		counts := matches && !ev.IsExcluded(date)

		if include {
			out = append(out, Instance{
				Event:        ev,
				InstanceDate: date,
				IsOriginal:   date == ev.Date,
			})
		}
		if counts {
			emitted++
		}

		current = advance(current, anchor, rule, interval, dayByDay, i)
	}

	return out
}

// advance steps to the next candidate date.
func advance(current, anchor time.Time, rule *model.Recurrence, interval int, dayByDay bool, step int) time.Time {
	if dayByDay {
		return current.AddDate(0, 0, 1)
	}

	switch rule.Frequency {
	case model.FreqDaily:
		return current.AddDate(0, 0, interval)
	case model.FreqWeekly:
		return current.AddDate(0, 0, 7*interval)
	case model.FreqBiweekly:
		return current.AddDate(0, 0, 14*interval)
	case model.FreqMonthly:
		// Step in whole months from the anchor, clamping the target day
		// to the last valid day of the resulting month (day 31 in
		// February lands on the 28th/29th).
		months := (step + 1) * interval
		return addMonthsClamped(anchor, months, rule.DayOfMonth)
	case model.FreqYearly:
		months := (step + 1) * interval * 12
		return addMonthsClamped(anchor, months, rule.DayOfMonth)
	default:
		// Unknown frequency: stall past any range to end the loop.
		return current.AddDate(1000, 0, 0)
	}
}

// addMonthsClamped adds months to the anchor, targeting dayOfMonth when
// the rule sets one (the anchor's day otherwise), clamped to the target
// month's last day. Plain AddDate would overflow Jan 31 + 1 month into
// March.
func addMonthsClamped(anchor time.Time, months, dayOfMonth int) time.Time {
	year, month, day := anchor.Date()
	if dayOfMonth > 0 {
		day = dayOfMonth
	}
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := daysInMonth(target.Year(), target.Month())
	if day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// weekOffset counts whole weeks between the anchor's week and the
// current date, with weeks starting on Sunday. Dates are parsed in UTC
// at midnight, so the hour arithmetic is exact.
func weekOffset(anchor, current time.Time) int {
	a := anchor.AddDate(0, 0, -int(anchor.Weekday()))
	c := current.AddDate(0, 0, -int(current.Weekday()))
	return int(c.Sub(a).Hours() / (24 * 7))
}

func matchesWeekday(day time.Weekday, set []time.Weekday) bool {
	for _, d := range set {
		if d == day {
			return true
		}
	}
	return false
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
