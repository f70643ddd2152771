// Package validate classifies candidate titles as event-like or UI chrome.
//
// The lexicon is a closed list of navigation and chrome terms harvested from
// venue pages. Substring matching is restricted to short titles so that long
// legitimate titles containing a common word are never suppressed: the
// tradeoff deliberately favors letting some chrome through over discarding
// real content.
package validate

import "strings"

// shortTitleMax bounds the substring lexicon check. Titles longer than this
// are only rejected on an exact match.
const shortTitleMax = 20

// chromeTerms is the closed lexicon of navigation/UI noise.
var chromeTerms = map[string]struct{}{
	"menu":         {},
	"search":       {},
	"subscribe":    {},
	"load more":    {},
	"view all":     {},
	"view shows":   {},
	"see all":      {},
	"show more":    {},
	"read more":    {},
	"more info":    {},
	"learn more":   {},
	"buy tickets":  {},
	"tickets":      {},
	"sign up":      {},
	"sign in":      {},
	"log in":       {},
	"login":        {},
	"newsletter":   {},
	"follow us":    {},
	"gallery":      {},
	"calendar":     {},
	"upcoming":     {},
	"past events":  {},
	"archive":      {},
	"next":         {},
	"previous":     {},
	"filter":       {},
	"sold out":     {},
	"privacy":      {},
	"terms":        {},
	"cookie":       {},
	"reservations": {},
}

// genericNouns are bare section labels that look like titles but never are.
var genericNouns = map[string]struct{}{
	"events":  {},
	"event":   {},
	"shows":   {},
	"about":   {},
	"contact": {},
	"home":    {},
	"news":    {},
	"blog":    {},
	"shop":    {},
	"faq":     {},
}

// IsEventTitle reports whether a candidate title looks like a real event
// rather than navigation chrome.
func IsEventTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	lower := strings.ToLower(trimmed)

	// Icon and button labels: too short to be a listing, no internal space.
	if len(trimmed) < 5 && !strings.ContainsAny(trimmed, " \t") {
		return false
	}

	if _, ok := chromeTerms[lower]; ok {
		return false
	}
	if _, ok := genericNouns[lower]; ok {
		return false
	}

	// Substring matching only for short titles; "DJ Night at Fat Eddie's"
	// must not be rejected for containing "at".
	if len(trimmed) <= shortTitleMax {
		for term := range chromeTerms {
			if strings.Contains(lower, term) {
				return false
			}
		}
	}

	return true
}
