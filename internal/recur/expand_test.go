package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawkit/pawkit/internal/model"
)

func event(date string, rule *model.Recurrence) *model.CalendarEvent {
	return &model.CalendarEvent{
		Base:       model.Base{ID: "ev-1", WorkspaceID: "ws"},
		Title:      "standup",
		Date:       date,
		Recurrence: rule,
	}
}

func dates(instances []Instance) []string {
	out := make([]string, 0, len(instances))
	for _, inst := range instances {
		out = append(out, inst.InstanceDate)
	}
	return out
}

func TestExpandSingleDay(t *testing.T) {
	ev := event("2026-03-10", nil)

	got := Expand(ev, "2026-03-01", "2026-03-31")
	require.Len(t, got, 1)
	assert.Equal(t, "2026-03-10", got[0].InstanceDate)
	assert.True(t, got[0].IsOriginal)

	assert.Empty(t, Expand(ev, "2026-04-01", "2026-04-30"))
}

func TestExpandMultiDaySpanClipped(t *testing.T) {
	ev := event("2026-03-10", nil)
	ev.EndDate = "2026-03-14"

	got := Expand(ev, "2026-03-12", "2026-03-13")
	assert.Equal(t, []string{"2026-03-12", "2026-03-13"}, dates(got))
	for _, inst := range got {
		assert.False(t, inst.IsOriginal)
	}
}

func TestExpandDaily(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{Frequency: model.FreqDaily})

	got := Expand(ev, "2026-03-10", "2026-03-14")
	assert.Equal(t, []string{
		"2026-03-10", "2026-03-11", "2026-03-12", "2026-03-13", "2026-03-14",
	}, dates(got))
	assert.True(t, got[0].IsOriginal)
	assert.False(t, got[1].IsOriginal)
}

func TestExpandDailyInterval(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{Frequency: model.FreqDaily, Interval: 3})

	got := Expand(ev, "2026-03-10", "2026-03-20")
	assert.Equal(t, []string{
		"2026-03-10", "2026-03-13", "2026-03-16", "2026-03-19",
	}, dates(got))
}

func TestExpandWeeklyDaysOfWeek(t *testing.T) {
	// 2026-03-02 is a Monday.
	ev := event("2026-03-02", &model.Recurrence{
		Frequency:  model.FreqWeekly,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	})

	got := Expand(ev, "2026-03-02", "2026-03-13")
	assert.Equal(t, []string{
		"2026-03-02", "2026-03-04", "2026-03-06",
		"2026-03-09", "2026-03-11", "2026-03-13",
	}, dates(got))
}

func TestExpandWeeklyDaysOfWeekSkipsOffIntervalWeeks(t *testing.T) {
	// 2026-03-02 is a Monday. Every other week, Monday and Friday:
	// the weeks of Mar 8 and Mar 22 are off the interval grid.
	ev := event("2026-03-02", &model.Recurrence{
		Frequency:  model.FreqWeekly,
		Interval:   2,
		DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
	})

	got := Expand(ev, "2026-03-02", "2026-03-29")
	assert.Equal(t, []string{
		"2026-03-02", "2026-03-06",
		"2026-03-16", "2026-03-20",
	}, dates(got))
}

func TestExpandWeeklyDaysOfWeekIntervalEndCount(t *testing.T) {
	// Mondays in off weeks do not consume the series count.
	ev := event("2026-03-02", &model.Recurrence{
		Frequency:  model.FreqWeekly,
		Interval:   2,
		DaysOfWeek: []time.Weekday{time.Monday},
		EndCount:   3,
	})

	got := Expand(ev, "2026-03-01", "2026-04-30")
	assert.Equal(t, []string{"2026-03-02", "2026-03-16", "2026-03-30"}, dates(got))
}

func TestExpandWeeklyWithoutDaysOfWeek(t *testing.T) {
	ev := event("2026-03-02", &model.Recurrence{Frequency: model.FreqWeekly})

	got := Expand(ev, "2026-03-01", "2026-03-31")
	assert.Equal(t, []string{
		"2026-03-02", "2026-03-09", "2026-03-16", "2026-03-23", "2026-03-30",
	}, dates(got))
}

func TestExpandBiweekly(t *testing.T) {
	ev := event("2026-03-02", &model.Recurrence{Frequency: model.FreqBiweekly})

	got := Expand(ev, "2026-03-01", "2026-03-31")
	assert.Equal(t, []string{"2026-03-02", "2026-03-16", "2026-03-30"}, dates(got))
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	ev := event("2026-01-31", &model.Recurrence{Frequency: model.FreqMonthly})

	got := Expand(ev, "2026-01-01", "2026-04-30")
	// February has 28 days in 2026; the day clamps instead of
	// overflowing into March, and later months go back to the 31st
	// or their own last day.
	assert.Equal(t, []string{
		"2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30",
	}, dates(got))
}

func TestExpandMonthlyDayOfMonth(t *testing.T) {
	ev := event("2026-01-15", &model.Recurrence{
		Frequency:  model.FreqMonthly,
		DayOfMonth: 31,
	})

	got := Expand(ev, "2026-01-01", "2026-03-31")
	assert.Equal(t, []string{
		"2026-01-15", "2026-02-28", "2026-03-31",
	}, dates(got))
}

func TestExpandYearly(t *testing.T) {
	ev := event("2024-02-29", &model.Recurrence{Frequency: model.FreqYearly})

	got := Expand(ev, "2024-01-01", "2028-12-31")
	assert.Equal(t, []string{
		"2024-02-29", "2025-02-28", "2026-02-28", "2027-02-28", "2028-02-29",
	}, dates(got))
}

func TestExpandExcludedDates(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{Frequency: model.FreqDaily})
	ev.ExcludedDates = []string{"2026-03-12"}

	got := Expand(ev, "2026-03-10", "2026-03-14")
	assert.Equal(t, []string{
		"2026-03-10", "2026-03-11", "2026-03-13", "2026-03-14",
	}, dates(got))
}

func TestExpandEndDate(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{
		Frequency: model.FreqDaily,
		EndDate:   "2026-03-12",
	})

	got := Expand(ev, "2026-03-01", "2026-03-31")
	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12"}, dates(got))
}

func TestExpandEndCount(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{
		Frequency: model.FreqDaily,
		EndCount:  3,
	})

	got := Expand(ev, "2026-03-01", "2026-03-31")
	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12"}, dates(got))
}

func TestExpandEndCountSpansRanges(t *testing.T) {
	// Occurrences clipped by the query range still count against
	// EndCount, so a later window does not shift the series.
	ev := event("2026-03-10", &model.Recurrence{
		Frequency: model.FreqDaily,
		EndCount:  5,
	})

	got := Expand(ev, "2026-03-13", "2026-03-31")
	assert.Equal(t, []string{"2026-03-13", "2026-03-14"}, dates(got))
}

func TestExpandUnknownFrequency(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{Frequency: "lunar"})

	got := Expand(ev, "2026-03-01", "2026-03-31")
	assert.Equal(t, []string{"2026-03-10"}, dates(got))
}

func TestExpandMalformedDates(t *testing.T) {
	ev := event("not-a-date", &model.Recurrence{Frequency: model.FreqDaily})
	assert.Empty(t, Expand(ev, "2026-03-01", "2026-03-31"))

	ev = event("2026-03-10", nil)
	assert.Empty(t, Expand(ev, "bogus", "2026-03-31"))
	assert.Empty(t, Expand(ev, "2026-03-31", "2026-03-01"))
}

func TestExpandIsPure(t *testing.T) {
	ev := event("2026-03-10", &model.Recurrence{Frequency: model.FreqDaily})
	ev.ExcludedDates = []string{"2026-03-11"}

	first := Expand(ev, "2026-03-10", "2026-03-14")
	second := Expand(ev, "2026-03-10", "2026-03-14")
	assert.Equal(t, dates(first), dates(second))
	assert.Equal(t, []string{"2026-03-11"}, ev.ExcludedDates)
}
