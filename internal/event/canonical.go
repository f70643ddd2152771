package event

import (
	"regexp"
	"strings"
	"time"

	"github.com/mbertelsen/citypulse/internal/datetext"
)

// Candidate is an unvalidated event-shaped record extracted from one page.
// It is transient: produced per extraction pass and discarded once
// canonicalization has been attempted.
type Candidate struct {
	Title       string
	DateText    string
	URL         string
	ImageURL    string
	Description string
	Price       string
	Category    string
	SourceID    string

	// Start is pre-resolved for synthesized occurrences; for scraped
	// candidates it is zero and DateText is normalized instead.
	Start       time.Time
	End         *time.Time
	Synthesized bool
}

// Upstream extraction sometimes concatenates a ticket price range onto the
// title, e.g. "Friday Night Live CA$15.00 - CA$25.00".
var currencyRangePattern = regexp.MustCompile(`(?i)(?:(?:CA|US|C)?\$|\b(?:CAD|USD))\s*\d+(?:\.\d{2})?\s*[-–—]\s*(?:(?:CA|US|C)?\$|\b(?:CAD|USD))?\s*\d+(?:\.\d{2})?`)

// CleanTitle trims and collapses whitespace, strips a leading "City - "
// style venue prefix, and removes stray currency-range substrings.
func CleanTitle(title, city string) string {
	title = currencyRangePattern.ReplaceAllString(title, "")
	title = strings.Join(strings.Fields(title), " ")

	if city != "" {
		for _, sep := range []string{" - ", " – ", ": "} {
			prefix := city + sep
			if len(title) > len(prefix) && strings.EqualFold(title[:len(prefix)], prefix) {
				title = title[len(prefix):]
				break
			}
		}
	}

	return strings.TrimSpace(strings.Trim(title, "-– "))
}

// Canonicalize maps a validated candidate plus venue metadata onto a catalog
// record. It returns false when the candidate's date cannot be resolved; a
// start date is never fabricated.
func Canonicalize(c Candidate, v Venue, now time.Time) (*Event, bool) {
	start := c.Start
	end := c.End
	if start.IsZero() {
		parsed, ok := datetext.Parse(c.DateText, now)
		if !ok {
			return nil, false
		}
		start = parsed.Start
		if !parsed.End.IsZero() {
			e := parsed.End
			end = &e
		}
	}

	title := CleanTitle(c.Title, v.City)
	if title == "" {
		return nil, false
	}

	price := strings.TrimSpace(c.Price)
	if price == "" {
		price = "Free"
	}

	ts := now.UTC()
	return &Event{
		ID:          GenerateID(title, v.Name, start),
		Title:       title,
		Description: strings.TrimSpace(c.Description),
		StartDate:   start,
		EndDate:     end,
		Venue:       v,
		Price:       price,
		Category:    c.Category,
		Source:      c.SourceID,
		ImageURL:    c.ImageURL,
		Synthesized: c.Synthesized,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, true
}
