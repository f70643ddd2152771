// Package calendar renders catalog events as iCalendar files so clients can
// add a listing to their own calendar.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbertelsen/citypulse/internal/event"
)

// defaultDuration is assumed when a listing carries no end date.
const defaultDuration = 3 * time.Hour

// GenerateICS renders one event as an RFC 5545 calendar file.
func GenerateICS(evt *event.Event, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//citypulse//event-catalog//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s@citypulse\r\n", evt.ID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	end := evt.StartDate.Add(defaultDuration)
	if evt.EndDate != nil {
		end = *evt.EndDate
	}
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(evt.StartDate)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Title)))

	description := evt.Description
	if description == "" {
		description = fmt.Sprintf("%s at %s", evt.Title, evt.Venue.Name)
	}
	description = fmt.Sprintf("%s\nPrice: %s", description, evt.Price)
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	location := evt.Venue.Name
	if evt.Venue.Address != "" {
		location = fmt.Sprintf("%s, %s", evt.Venue.Name, evt.Venue.Address)
	}
	ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(location)))

	if evt.Venue.Coordinates != nil {
		ics.WriteString(fmt.Sprintf("GEO:%.4f;%.4f\r\n",
			evt.Venue.Coordinates.Latitude, evt.Venue.Coordinates.Longitude))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters according to RFC 5545
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
