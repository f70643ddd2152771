package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mbertelsen/citypulse/internal/event"
	"github.com/mbertelsen/citypulse/internal/metrics"
	"github.com/mbertelsen/citypulse/internal/store"
)

// Service answers catalog queries. It is stateless across requests and safe
// for concurrent readers while a scrape cycle writes behind it.
type Service struct {
	store    *store.Store
	cache    *Cache
	validate *validator.Validate
	log      zerolog.Logger
}

// New creates a Service. cache may be nil to disable caching.
func New(st *store.Store, cache *Cache, log zerolog.Logger) *Service {
	return &Service{
		store:    st,
		cache:    cache,
		validate: validator.New(),
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// InvalidateCache drops cached listings; called at the end of a scrape cycle
// and after curation changes.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
}

// List returns the filtered catalog under the deterministic sort contract.
// A reachable store with no matches yields an empty, valid result; only a
// failed store connection surfaces as an error (store.ErrUnavailable).
func (s *Service) List(ctx context.Context, f Filter) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(f.key()); ok {
		return cached, nil
	}

	events, err := s.store.ListEvents()
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	marks, err := s.store.ListFeatured()
	if err != nil {
		return nil, fmt.Errorf("listing featured overlay: %w", err)
	}

	events = f.Apply(events)
	events = sortEvents(events, marks)
	events = s.guard(events)

	s.cache.Put(f.key(), events)
	return events, nil
}

// sortEvents applies the serving order: featured records first in mark order,
// the rest by start date ascending, with createdAt then ID as stable
// tie-breaks. Marks referencing events absent from the result are simply
// inert; broken references never surface as errors.
func sortEvents(events []event.Event, marks []event.FeaturedMark) []event.Event {
	rank := make(map[string]int, len(marks))
	for _, m := range marks {
		rank[m.EventID] = m.Order
	}

	sort.SliceStable(events, func(i, j int) bool {
		ri, iFeat := rank[events[i].ID]
		rj, jFeat := rank[events[j].ID]
		switch {
		case iFeat && jFeat:
			return ri < rj
		case iFeat != jFeat:
			return iFeat
		}
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.Before(events[j].StartDate)
		}
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events
}

// guard is the final defensive pass before serialization. A record failing
// structural validation, or lacking a resolvable start date, is dropped and
// logged at error severity: these are bug signals, not ordinary filtering.
// Running last keeps pre/post counts traceable.
func (s *Service) guard(events []event.Event) []event.Event {
	before := len(events)
	kept := events[:0]

	for i := range events {
		evt := &events[i]
		if err := s.validate.Struct(evt); err != nil {
			s.dropMalformed(evt, err)
			continue
		}
		if evt.StartDate.IsZero() {
			s.dropMalformed(evt, fmt.Errorf("missing start date"))
			continue
		}
		kept = append(kept, *evt)
	}

	if dropped := before - len(kept); dropped > 0 {
		s.log.Warn().
			Int("before", before).
			Int("after", len(kept)).
			Int("dropped", dropped).
			Msg("null-safety guard dropped records")
	}
	return kept
}

func (s *Service) dropMalformed(evt *event.Event, err error) {
	metrics.IntegrityViolations.Inc()
	s.log.Error().
		Str("id", evt.ID).
		Str("title", evt.Title).
		Err(err).
		Msg("malformed record reached the serving boundary")
}

// Featured resolves the curated overlay to full events, silently dropping
// marks whose event no longer exists.
func (s *Service) Featured(ctx context.Context) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	marks, err := s.store.ListFeatured()
	if err != nil {
		return nil, fmt.Errorf("listing featured overlay: %w", err)
	}

	events := make([]event.Event, 0, len(marks))
	for _, m := range marks {
		evt, err := s.store.GetEvent(m.EventID)
		if errors.Is(err, store.ErrNotFound) {
			// Broken soft reference: dropped at read time, not corruption.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving featured event: %w", err)
		}
		events = append(events, *evt)
	}
	return s.guard(events), nil
}

// Feature adds an event to the curated overlay and invalidates cached
// listings. The capacity error from the store passes through untouched.
func (s *Service) Feature(eventID string, now time.Time) error {
	if _, err := s.store.GetEvent(eventID); err != nil {
		return err
	}
	if err := s.store.AddFeatured(eventID, now); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// Unfeature removes an event from the overlay.
func (s *Service) Unfeature(eventID string) error {
	if err := s.store.RemoveFeatured(eventID); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// Reorder replaces the overlay ordering.
func (s *Service) Reorder(eventIDs []string) error {
	if err := s.store.ReorderFeatured(eventIDs); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}
