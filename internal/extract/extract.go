package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/mbertelsen/citypulse/internal/datetext"
	"github.com/mbertelsen/citypulse/internal/event"
	"github.com/mbertelsen/citypulse/internal/validate"
	"github.com/mbertelsen/citypulse/internal/venue"
)

const (
	// maxContainers bounds how many matched containers one page pass examines.
	maxContainers = 50

	// minTitleLen rejects icon and glyph labels before validation runs.
	minTitleLen = 5
)

// DefaultStrategies is the ranked cascade used when a source configures none.
// Grouped selectors are tried in order; the first group with any match wins.
var DefaultStrategies = []venue.Strategy{
	{
		Name:      "event-card",
		Container: ".event-card, .event-listing, .event-item, [class*='event-card'], [data-event]",
	},
	{
		Name:      "event-class",
		Container: "article[class*='event'], li[class*='event'], div[class*='event']",
	},
	{
		Name:      "article",
		Container: "article, .card, .listing-item",
	},
}

// Extractor turns one page's content into raw candidates.
type Extractor struct {
	log zerolog.Logger
}

// New creates an Extractor.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{log: log.With().Str("component", "extract").Logger()}
}

// Extract runs the strategy cascade over page content for one source and
// returns the raw candidates found. Schedule-based sources never reach here;
// see Synthesize.
func (e *Extractor) Extract(content string, src venue.Source, now time.Time) []event.Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		e.log.Warn().Str("source", src.ID).Err(err).Msg("unparseable page content")
		return nil
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		base = nil
	}

	strategies := src.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	var containers *goquery.Selection
	var strategyName string
	for _, st := range strategies {
		sel := doc.Find(st.Container)
		if sel.Length() > 0 {
			containers = sel
			strategyName = st.Name
			break
		}
	}
	if containers == nil {
		e.log.Debug().Str("source", src.ID).Msg("no strategy matched any containers")
		return nil
	}

	strategy := strategyFor(strategies, strategyName)

	var candidates []event.Candidate
	seen := make(map[string]bool)

	containers.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxContainers {
			return false
		}

		title := resolveTitle(sel, strategy.Titles)
		if len(strings.TrimSpace(title)) < minTitleLen {
			return true
		}
		if !validate.IsEventTitle(title) {
			return true
		}

		// Dedup on the container's own link; link-less containers fall back
		// to the title so they are not collapsed under the shared page URL.
		link := resolveURL(sel, base)
		key := link
		if key == "" {
			key = strings.ToLower(title)
		}
		if seen[key] {
			return true
		}
		seen[key] = true
		if link == "" {
			link = src.URL
		}

		candidates = append(candidates, event.Candidate{
			Title:    title,
			DateText: resolveDateText(sel, strategy.Dates),
			URL:      link,
			ImageURL: resolveImage(sel, base),
			Price:    resolvePrice(sel),
			Category: src.Category,
			SourceID: src.ID,
		})
		return true
	})

	e.log.Debug().
		Str("source", src.ID).
		Str("strategy", strategyName).
		Int("candidates", len(candidates)).
		Msg("extraction pass complete")

	return candidates
}

func strategyFor(strategies []venue.Strategy, name string) venue.Strategy {
	for _, st := range strategies {
		if st.Name == name {
			return st
		}
	}
	return venue.Strategy{}
}

// resolveTitle walks the title fallback chain: configured selectors, heading
// elements, class-name heuristics, then the first link's text.
func resolveTitle(sel *goquery.Selection, extra []string) string {
	chain := append(append([]string{}, extra...),
		"h1, h2, h3, h4",
		"[class*='title'], [class*='name'], [itemprop='name']",
		"a",
	)
	for _, q := range chain {
		if q == "" {
			continue
		}
		if t := strings.TrimSpace(sel.Find(q).First().Text()); t != "" {
			return strings.Join(strings.Fields(t), " ")
		}
	}
	return ""
}

// resolveDateText prefers machine-readable date attributes, then labeled
// date elements, then a regex scan of the container's full text.
func resolveDateText(sel *goquery.Selection, extra []string) string {
	for _, q := range extra {
		if t := strings.TrimSpace(sel.Find(q).First().Text()); t != "" {
			return t
		}
	}

	if dt, ok := sel.Find("time[datetime]").First().Attr("datetime"); ok && dt != "" {
		return dt
	}
	if dt, ok := sel.Find("[data-date]").First().Attr("data-date"); ok && dt != "" {
		return dt
	}
	if dt, ok := sel.Find("[itemprop='startDate']").First().Attr("content"); ok && dt != "" {
		return dt
	}
	if t := strings.TrimSpace(sel.Find("[class*='date'], time").First().Text()); t != "" {
		return t
	}

	return datetext.FindDateText(sel.Text())
}

func resolveURL(sel *goquery.Selection, base *url.URL) string {
	href, ok := sel.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	return absoluteURL(href, base)
}

// resolveImage returns the first image in the container that is not an
// obvious logo or icon asset.
func resolveImage(sel *goquery.Selection, base *url.URL) string {
	var out string
	sel.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		lower := strings.ToLower(src)
		for _, skip := range []string{"logo", "icon", "sprite", "placeholder", "avatar"} {
			if strings.Contains(lower, skip) {
				return true
			}
		}
		out = absoluteURL(src, base)
		return false
	})
	return out
}

func resolvePrice(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Find("[class*='price']").First().Text())
}

func absoluteURL(ref string, base *url.URL) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if u.IsAbs() || base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
