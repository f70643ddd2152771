package datetext

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parsed is the canonical form of a date text. End is zero unless the text
// carried an explicit range end. HasTime reports whether a time of day was
// found and attached to Start.
type Parsed struct {
	Start   time.Time
	End     time.Time
	HasTime bool
}

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember|t)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	isoPattern        = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2})(?::\d{2})?)?`)
	monthFirstPattern = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\b`)
	dayFirstPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNames + `)\.?(?:,?\s*(\d{4}))?\b`)
	numericPattern    = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})[/.](\d{2,4})\b`)

	dayRangeTail  = regexp.MustCompile(`^\s*[-–—]\s*(\d{1,2})(?:st|nd|rd|th)?\b`)
	rangeToken    = regexp.MustCompile(`(?i)^\s*(?:[-–—]|to|through|until)\s*$`)
	clockPattern  = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?\b`)
	clock24Hour   = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	monthsByShort = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

func parseMonth(name string) time.Month {
	name = strings.ToLower(name)
	if len(name) > 3 {
		name = name[:3]
	}
	return monthsByShort[name]
}

// inferYear applies the near-future heuristic: a month strictly before the
// reference month belongs to the next year.
func inferYear(month time.Month, now time.Time) int {
	year := now.Year()
	if month < now.Month() {
		year++
	}
	return year
}

// makeDate builds a UTC midnight instant, rejecting impossible day-of-month
// combinations that time.Date would silently normalize.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Parse normalizes free-form date text against a reference instant.
//
// Recognized forms: ISO-prefixed dates, "Month D[, YYYY]", day-first
// "D Month[ YYYY]", weekday-qualified variants of either, numeric D/M/Y, and
// ranges of those. Only the range start becomes Start unless an explicit end
// token joins a second date, in which case End is set too. A trailing time of
// day is parsed and attached independently of the date. Text supplying a day
// without a resolvable month is rejected, never guessed.
func Parse(text string, now time.Time) (Parsed, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Parsed{}, false
	}

	p, ok := parseISO(text)
	if !ok {
		p, ok = parseMonthName(text, now)
	}
	if !ok {
		p, ok = parseNumeric(text, now)
	}
	if !ok {
		return Parsed{}, false
	}

	if !p.HasTime {
		if h, m, found := findClock(text); found {
			p.Start = p.Start.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
			p.HasTime = true
		}
	}

	return p, true
}

func parseISO(text string) (Parsed, bool) {
	m := isoPattern.FindStringSubmatch(text)
	if m == nil {
		return Parsed{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 {
		return Parsed{}, false
	}
	start, ok := makeDate(year, time.Month(month), day)
	if !ok {
		return Parsed{}, false
	}

	p := Parsed{Start: start}
	if m[4] != "" {
		h, _ := strconv.Atoi(m[4])
		min, _ := strconv.Atoi(m[5])
		if h < 24 && min < 60 {
			p.Start = p.Start.Add(time.Duration(h)*time.Hour + time.Duration(min)*time.Minute)
			p.HasTime = true
		}
	}

	// A second ISO date joined by a range token becomes the end.
	loc := isoPattern.FindStringIndex(text)
	rest := text[loc[1]:]
	if m2 := isoPattern.FindStringSubmatch(rest); m2 != nil {
		between := rest[:isoPattern.FindStringIndex(rest)[0]]
		if rangeToken.MatchString(between) {
			y2, _ := strconv.Atoi(m2[1])
			mo2, _ := strconv.Atoi(m2[2])
			d2, _ := strconv.Atoi(m2[3])
			if mo2 >= 1 && mo2 <= 12 {
				if end, ok := makeDate(y2, time.Month(mo2), d2); ok {
					p.End = end
				}
			}
		}
	}
	return p, true
}

// monthDayMatch is one month-name date occurrence within the text.
type monthDayMatch struct {
	month      time.Month
	day        int
	year       int // 0 when absent
	start, end int // byte offsets in the scanned text
}

func findMonthDays(text string) []monthDayMatch {
	var out []monthDayMatch
	for _, idx := range monthFirstPattern.FindAllStringSubmatchIndex(text, -1) {
		m := monthDayMatch{start: idx[0], end: idx[1]}
		m.month = parseMonth(text[idx[2]:idx[3]])
		m.day, _ = strconv.Atoi(text[idx[4]:idx[5]])
		if idx[6] >= 0 {
			m.year, _ = strconv.Atoi(text[idx[6]:idx[7]])
		}
		out = append(out, m)
	}
	for _, idx := range dayFirstPattern.FindAllStringSubmatchIndex(text, -1) {
		m := monthDayMatch{start: idx[0], end: idx[1]}
		m.day, _ = strconv.Atoi(text[idx[2]:idx[3]])
		m.month = parseMonth(text[idx[4]:idx[5]])
		if idx[6] >= 0 {
			m.year, _ = strconv.Atoi(text[idx[6]:idx[7]])
		}
		// Skip if this span overlaps a month-first match already taken.
		overlaps := false
		for _, prev := range out {
			if m.start < prev.end && prev.start < m.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, m)
		}
	}
	return out
}

func (m monthDayMatch) resolve(now time.Time) (time.Time, bool) {
	year := m.year
	if year == 0 {
		year = inferYear(m.month, now)
	}
	return makeDate(year, m.month, m.day)
}

func parseMonthName(text string, now time.Time) (Parsed, bool) {
	matches := findMonthDays(text)
	if len(matches) == 0 {
		return Parsed{}, false
	}

	first := matches[0]
	start, ok := first.resolve(now)
	if !ok {
		return Parsed{}, false
	}
	p := Parsed{Start: start}

	// "Mar 1-15": a bare day after a dash shares the start's month and year.
	if tail := dayRangeTail.FindStringSubmatch(text[first.end:]); tail != nil {
		day2, _ := strconv.Atoi(tail[1])
		if end, ok := makeDate(start.Year(), start.Month(), day2); ok && !end.Before(start) {
			p.End = end
		}
		return p, true
	}

	// Two full dates joined by an explicit end token.
	if len(matches) > 1 {
		second := matches[1]
		if rangeToken.MatchString(text[first.end:second.start]) {
			if end, ok := second.resolve(now); ok {
				p.End = end
			}
		}
	}
	return p, true
}

// parseNumeric handles day-first numeric dates such as "4/7/2026" or
// "04.07.26", swapping fields when only the swapped reading is a valid month.
func parseNumeric(text string, now time.Time) (Parsed, bool) {
	m := numericPattern.FindStringSubmatch(text)
	if m == nil {
		return Parsed{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month > 12 && day <= 12 {
		day, month = month, day
	}
	if month < 1 || month > 12 {
		return Parsed{}, false
	}
	if year < 100 {
		year += 2000
	}
	start, ok := makeDate(year, time.Month(month), day)
	if !ok {
		return Parsed{}, false
	}
	return Parsed{Start: start}, true
}

func findClock(text string) (hour, minute int, found bool) {
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 12 || minute > 59 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
		if strings.EqualFold(m[3], "p") {
			hour += 12
		}
		return hour, minute, true
	}
	if m := clock24Hour.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return hour, minute, true
	}
	return 0, 0, false
}

// FindDateText scans arbitrary container text for the first date-looking
// substring. Month-name forms win over numeric forms, which win over ISO
// prefixes, mirroring how listing pages usually spell dates.
func FindDateText(text string) string {
	if m := monthFirstPattern.FindString(text); m != "" {
		return m
	}
	if m := dayFirstPattern.FindString(text); m != "" {
		return m
	}
	if m := numericPattern.FindString(text); m != "" {
		return m
	}
	if m := isoPattern.FindString(text); m != "" {
		return m
	}
	return ""
}
