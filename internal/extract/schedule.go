package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/mbertelsen/citypulse/internal/event"
	"github.com/mbertelsen/citypulse/internal/venue"
)

const (
	// scheduleHorizon bounds how far ahead occurrences are synthesized.
	scheduleHorizon = 30 * 24 * time.Hour

	// maxOccurrences caps the synthesized count per source per pass.
	maxOccurrences = 12
)

var weekdaysByName = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) > 3 {
		name = name[:3]
	}
	d, ok := weekdaysByName[name]
	return d, ok
}

// Synthesize generates upcoming occurrences for a schedule-based source.
// This is a deliberate, explicit fallback for venues that publish a weekly
// cadence instead of dated listings; the result is marked Synthesized and
// carries schedule provenance so it stays distinguishable from scraped dates.
func (e *Extractor) Synthesize(src venue.Source, now time.Time) []event.Candidate {
	if src.Schedule == nil || len(src.Schedule.Weekdays) == 0 {
		return nil
	}

	wanted := make(map[time.Weekday]bool)
	for _, name := range src.Schedule.Weekdays {
		if d, ok := parseWeekday(name); ok {
			wanted[d] = true
		}
	}
	if len(wanted) == 0 {
		e.log.Warn().Str("source", src.ID).Msg("schedule has no recognizable weekdays")
		return nil
	}

	hour, minute := parseStartTime(src.Schedule.StartTime)

	title := src.Schedule.Title
	if title == "" {
		title = src.Name
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	limit := now.Add(scheduleHorizon)

	var candidates []event.Candidate
	for !day.After(limit) && len(candidates) < maxOccurrences {
		if wanted[day.Weekday()] {
			start := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
			if start.After(now) {
				candidates = append(candidates, event.Candidate{
					Title:       title,
					URL:         src.URL,
					Category:    src.Category,
					SourceID:    "schedule:" + src.ID,
					Start:       start,
					Synthesized: true,
				})
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	e.log.Debug().
		Str("source", src.ID).
		Int("occurrences", len(candidates)).
		Msg("synthesized recurring schedule")

	return candidates
}

// parseStartTime reads "21:30" style times, defaulting to 20:00 when the
// schedule omits one.
func parseStartTime(s string) (hour, minute int) {
	hour = 20
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) == 0 || parts[0] == "" {
		return hour, 0
	}
	if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 && h < 24 {
		hour = h
	}
	if len(parts) == 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 0 && m < 60 {
			minute = m
		}
	}
	return hour, minute
}
