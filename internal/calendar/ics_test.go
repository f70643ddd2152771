package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/mbertelsen/citypulse/internal/event"
)

func TestGenerateICS(t *testing.T) {
	start := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	evt := &event.Event{
		ID:        "test-event-123",
		Title:     "Spring Showcase",
		StartDate: start,
		Venue: event.Venue{
			Name:    "The Orpheum",
			Address: "601 Smithe St",
			City:    "Vancouver",
			Coordinates: &event.Coordinates{
				Latitude:  49.2801,
				Longitude: -123.1207,
			},
		},
		Price: "$25",
	}

	ics := GenerateICS(evt, now)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//citypulse//event-catalog//EN",
		"BEGIN:VEVENT",
		"UID:test-event-123@citypulse",
		"DTSTAMP:20260101T000000Z",
		"DTSTART:20260315T200000Z",
		"DTEND:20260315T230000Z",
		"SUMMARY:Spring Showcase",
		"DESCRIPTION:",
		"LOCATION:The Orpheum\\, 601 Smithe St", // Comma is escaped
		"GEO:49.2801;-123.1207",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	// Check that lines end with \r\n
	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_ExplicitEnd(t *testing.T) {
	start := time.Date(2026, 7, 15, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 20, 23, 0, 0, 0, time.UTC)
	evt := &event.Event{
		ID:        "festival",
		Title:     "Summer Festival",
		StartDate: start,
		EndDate:   &end,
		Venue:     event.Venue{Name: "Waterfront Park"},
		Price:     "Free",
	}

	ics := GenerateICS(evt, time.Now())

	if !strings.Contains(ics, "DTEND:20260720T230000Z") {
		t.Error("explicit end date should override the default duration")
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	evt := &event.Event{
		ID:        "test-event",
		Title:     "Test Event; With, Special\\Characters\nAnd Newlines",
		StartDate: time.Date(2026, 4, 20, 19, 0, 0, 0, time.UTC),
		Venue:     event.Venue{Name: "Somewhere"},
		Price:     "Free",
	}

	ics := GenerateICS(evt, time.Now())

	if strings.Contains(ics, "SUMMARY:Test Event; With, Special\\Characters\nAnd Newlines") {
		t.Error("Special characters should be escaped in SUMMARY")
	}
	if !strings.Contains(ics, "\\;") || !strings.Contains(ics, "\\,") || !strings.Contains(ics, "\\n") {
		t.Error("Special characters should be escaped")
	}
}

func TestGenerateICS_DescriptionFallback(t *testing.T) {
	evt := &event.Event{
		ID:        "no-desc",
		Title:     "Quiet Night",
		StartDate: time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC),
		Venue:     event.Venue{Name: "The Basement"},
		Price:     "$10",
	}

	ics := GenerateICS(evt, time.Now())

	if !strings.Contains(ics, "DESCRIPTION:Quiet Night at The Basement\\nPrice: $10") {
		t.Errorf("description fallback missing:\n%s", ics)
	}
}

func TestFormatICSTime(t *testing.T) {
	testTime := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	formatted := formatICSTime(testTime)

	expected := "20260315T143000Z"
	if formatted != expected {
		t.Errorf("formatICSTime() = %q, want %q", formatted, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
