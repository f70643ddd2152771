package catalog

import (
	"strings"
	"time"

	"github.com/mbertelsen/citypulse/internal/event"
)

// Filter narrows a catalog listing. A zero Filter matches everything:
// filtering is never implicit, so an unfiltered call returns the full corpus.
type Filter struct {
	// City matches exactly or as a case-insensitive substring of the
	// venue city.
	City string

	// Category is a case-insensitive substring match.
	Category string

	// DateFrom/DateTo bound the start date window when non-zero.
	DateFrom time.Time
	DateTo   time.Time
}

// IsEmpty reports whether no criteria are set.
func (f Filter) IsEmpty() bool {
	return f.City == "" && f.Category == "" && f.DateFrom.IsZero() && f.DateTo.IsZero()
}

// key is the cache key for this filter combination.
func (f Filter) key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(f.City))
	b.WriteString("|")
	b.WriteString(strings.ToLower(f.Category))
	b.WriteString("|")
	if !f.DateFrom.IsZero() {
		b.WriteString(f.DateFrom.UTC().Format(time.RFC3339))
	}
	b.WriteString("|")
	if !f.DateTo.IsZero() {
		b.WriteString(f.DateTo.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// Matches reports whether one event satisfies every set criterion.
func (f Filter) Matches(evt *event.Event) bool {
	if f.City != "" {
		city := evt.Venue.City
		if !strings.EqualFold(city, f.City) &&
			!strings.Contains(strings.ToLower(city), strings.ToLower(f.City)) {
			return false
		}
	}
	if f.Category != "" {
		if !strings.Contains(strings.ToLower(evt.Category), strings.ToLower(f.Category)) {
			return false
		}
	}
	if !f.DateFrom.IsZero() && evt.StartDate.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && evt.StartDate.After(f.DateTo) {
		return false
	}
	return true
}

// Apply returns the events matching the filter.
func (f Filter) Apply(events []event.Event) []event.Event {
	if f.IsEmpty() {
		return events
	}
	filtered := make([]event.Event, 0, len(events))
	for i := range events {
		if f.Matches(&events[i]) {
			filtered = append(filtered, events[i])
		}
	}
	return filtered
}
