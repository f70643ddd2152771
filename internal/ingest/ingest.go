// Package ingest drives scrape cycles: fetch, extract, canonicalize, and
// upsert, one isolated task per source.
//
// Cities run in parallel; sources within one city run sequentially to bound
// simultaneous outbound load. A slow or failing source is abandoned at its
// timeout and contributes an empty candidate list — failure isolation is
// mandatory, so no single source can fail a cycle.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbertelsen/citypulse/internal/event"
	"github.com/mbertelsen/citypulse/internal/extract"
	"github.com/mbertelsen/citypulse/internal/metrics"
	"github.com/mbertelsen/citypulse/internal/store"
	"github.com/mbertelsen/citypulse/internal/venue"
)

// DefaultSourceTimeout bounds one source's fetch-and-extract task.
const DefaultSourceTimeout = 45 * time.Second

// Fetcher retrieves one page as text. fetch.Client implements it; tests
// substitute fakes.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// Stats summarizes one ingest cycle.
type Stats struct {
	Sources    int `json:"sources"`
	Failed     int `json:"failed"`
	Candidates int `json:"candidates"`
	Rejected   int `json:"rejected"`
	Created    int `json:"created"`
	Merged     int `json:"merged"`
}

// Ingestor runs scrape cycles against the configured registry.
type Ingestor struct {
	fetcher       Fetcher
	registry      *venue.Registry
	store         *store.Store
	extractor     *extract.Extractor
	log           zerolog.Logger
	sourceTimeout time.Duration
	now           func() time.Time
	invalidate    func()
}

// New wires an Ingestor. invalidate is called after every completed cycle
// (typically the catalog cache's Invalidate); it may be nil.
func New(fetcher Fetcher, registry *venue.Registry, st *store.Store, log zerolog.Logger, sourceTimeout time.Duration, invalidate func()) *Ingestor {
	if sourceTimeout <= 0 {
		sourceTimeout = DefaultSourceTimeout
	}
	return &Ingestor{
		fetcher:       fetcher,
		registry:      registry,
		store:         st,
		extractor:     extract.New(log),
		log:           log.With().Str("component", "ingest").Logger(),
		sourceTimeout: sourceTimeout,
		now:           time.Now,
		invalidate:    invalidate,
	}
}

// Run executes one full cycle and returns its stats. The cycle itself never
// fails; per-source errors are logged and isolated.
func (ing *Ingestor) Run(ctx context.Context) Stats {
	started := time.Now()
	groups := ing.registry.ByCity()

	var (
		mu    sync.Mutex
		total Stats
		wg    sync.WaitGroup
	)
	total.Sources = ing.registry.Len()

	for city, sources := range groups {
		wg.Add(1)
		go func(city string, sources []venue.Source) {
			defer wg.Done()
			for _, src := range sources {
				st := ing.runSource(ctx, src)
				mu.Lock()
				total.Failed += st.Failed
				total.Candidates += st.Candidates
				total.Rejected += st.Rejected
				total.Created += st.Created
				total.Merged += st.Merged
				mu.Unlock()
			}
		}(city, sources)
	}
	wg.Wait()

	if ing.invalidate != nil {
		ing.invalidate()
	}

	elapsed := time.Since(started)
	metrics.IngestDuration.Observe(elapsed.Seconds())
	ing.log.Info().
		Int("sources", total.Sources).
		Int("failed", total.Failed).
		Int("candidates", total.Candidates).
		Int("rejected", total.Rejected).
		Int("created", total.Created).
		Int("merged", total.Merged).
		Dur("elapsed", elapsed).
		Msg("ingest cycle complete")

	return total
}

// runSource executes one source's isolated task. Every failure path returns
// a Stats with Failed set and nothing merged; a cancelled task contributes no
// partial candidate list.
func (ing *Ingestor) runSource(ctx context.Context, src venue.Source) Stats {
	ctx, cancel := context.WithTimeout(ctx, ing.sourceTimeout)
	defer cancel()

	now := ing.now()

	var candidates []event.Candidate
	if src.Schedule != nil {
		candidates = ing.extractor.Synthesize(src, now)
	} else {
		content, err := ing.fetcher.Get(ctx, src.URL)
		if err != nil {
			metrics.SourceFailures.WithLabelValues(src.ID).Inc()
			ing.log.Warn().Str("source", src.ID).Err(err).Msg("source failed, contributing nothing")
			return Stats{Failed: 1}
		}
		if err := ctx.Err(); err != nil {
			metrics.SourceFailures.WithLabelValues(src.ID).Inc()
			ing.log.Warn().Str("source", src.ID).Err(err).Msg("source timed out, discarding partial results")
			return Stats{Failed: 1}
		}
		candidates = ing.extractor.Extract(content, src, now)
	}

	st := Stats{Candidates: len(candidates)}
	metrics.CandidatesExtracted.WithLabelValues(src.ID).Add(float64(len(candidates)))

	v := src.Venue()
	for _, c := range candidates {
		evt, ok := event.Canonicalize(c, v, now)
		if !ok {
			st.Rejected++
			metrics.CandidatesDropped.WithLabelValues("unparseable_date").Inc()
			continue
		}
		created, err := ing.store.UpsertEvent(evt)
		if err != nil {
			ing.log.Error().Str("source", src.ID).Str("id", evt.ID).Err(err).Msg("upsert failed")
			continue
		}
		if created {
			st.Created++
			metrics.EventsStored.WithLabelValues("created").Inc()
		} else {
			st.Merged++
			metrics.EventsStored.WithLabelValues("merged").Inc()
		}
	}
	return st
}
