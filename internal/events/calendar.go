package events

import (
	"slices"
	"time"
)

// ByMonth groups events by the month they start in, in loc. Months come out
// in chronological order with events in start order; empty months are
// skipped.
func ByMonth(events []Event, loc *time.Location) []Month {
	if loc == nil {
		loc = time.UTC
	}
	months := []Month{}
	index := map[string]int{}
	for _, e := range sortedByStart(events) {
		key := e.StartDate.In(loc).Format("2006-01")
		i, ok := index[key]
		if !ok {
			i = len(months)
			index[key] = i
			months = append(months, Month{Key: key})
		}
		months[i].Events = append(months[i].Events, e)
	}
	return months
}

// Upcoming returns the events that have not ended by now, soonest first.
// Events without an end date are over once they start.
func Upcoming(events []Event, now time.Time) []Event {
	out := []Event{}
	for _, e := range sortedByStart(events) {
		end := e.StartDate
		if e.EndDate != nil {
			end = *e.EndDate
		}
		if !end.Before(now) {
			out = append(out, e)
		}
	}
	return out
}

func sortedByStart(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	slices.SortStableFunc(out, func(a, b Event) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return out
}
