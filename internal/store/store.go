package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/mbertelsen/citypulse/internal/event"
)

var (
	// ErrNotFound marks a missing document.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a failed store connection, as opposed to an
	// empty-but-valid result.
	ErrUnavailable = errors.New("store unavailable")

	// ErrFeaturedCapacity is returned when the curated overlay is full.
	ErrFeaturedCapacity = fmt.Errorf("featured overlay is at capacity (%d)", event.MaxFeatured)
)

var (
	eventPrefix    = []byte("evt:")
	featuredPrefix = []byte("feat:")
	legacyPrefix   = []byte("tsd:")
)

// Store wraps the badger database holding the catalog.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store, used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// wrapDB maps badger connection failures onto ErrUnavailable so callers can
// distinguish a down store from an empty one.
func wrapDB(err error) error {
	if errors.Is(err, badger.ErrDBClosed) || errors.Is(err, badger.ErrBlockedWrites) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func eventKey(id string) []byte    { return append(append([]byte{}, eventPrefix...), id...) }
func featuredKey(id string) []byte { return append(append([]byte{}, featuredPrefix...), id...) }
func legacyKey(k string) []byte    { return append(append([]byte{}, legacyPrefix...), k...) }

func getJSON(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return txn.Set(key, data)
}

// UpsertEvent merges a canonicalized record into the catalog without creating
// duplicates. Lookup is by canonical ID first, then by the legacy
// (title, startDate) index. On a hit, merge is enrichment-only: existing
// non-empty content wins, only empty fields are filled from the incoming
// record, and createdAt and identity are preserved. On a miss the record is
// inserted. The whole sequence runs in one transaction.
func (s *Store) UpsertEvent(incoming *event.Event) (created bool, err error) {
	err = s.db.Update(func(txn *badger.Txn) error {
		existing := new(event.Event)
		lookupErr := getJSON(txn, eventKey(incoming.ID), existing)

		if errors.Is(lookupErr, ErrNotFound) {
			// Fallback for rows ingested before venue-aware ID hashing.
			var legacyID string
			if idxErr := getJSON(txn, legacyKey(event.LegacyKey(incoming.Title, incoming.StartDate)), &legacyID); idxErr == nil {
				lookupErr = getJSON(txn, eventKey(legacyID), existing)
			}
		}

		switch {
		case lookupErr == nil:
			merged := mergeEvent(existing, incoming)
			return setJSON(txn, eventKey(merged.ID), merged)
		case errors.Is(lookupErr, ErrNotFound):
			created = true
			if err := setJSON(txn, eventKey(incoming.ID), incoming); err != nil {
				return err
			}
			return setJSON(txn, legacyKey(event.LegacyKey(incoming.Title, incoming.StartDate)), incoming.ID)
		default:
			return lookupErr
		}
	})
	if err != nil {
		return false, wrapDB(fmt.Errorf("upserting event: %w", err))
	}
	return created, nil
}

// mergeEvent applies the first-write-wins merge policy: only currently-empty
// fields are filled from the newer record.
func mergeEvent(existing, incoming *event.Event) *event.Event {
	merged := *existing

	if merged.Description == "" {
		merged.Description = incoming.Description
	}
	if merged.ImageURL == "" {
		merged.ImageURL = incoming.ImageURL
	}
	if merged.Category == "" {
		merged.Category = incoming.Category
	}
	if merged.EndDate == nil {
		merged.EndDate = incoming.EndDate
	}
	// "Free" is the fabricated default, so a concrete extracted price may
	// replace it; a concrete price is never overwritten.
	if merged.Price == "" || (merged.Price == "Free" && incoming.Price != "" && incoming.Price != "Free") {
		merged.Price = incoming.Price
	}
	merged.UpdatedAt = incoming.UpdatedAt

	return &merged
}

// GetEvent fetches one event by canonical ID.
func (s *Store) GetEvent(id string) (*event.Event, error) {
	evt := new(event.Event)
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, eventKey(id), evt)
	})
	if err != nil {
		return nil, wrapDB(err)
	}
	return evt, nil
}

// ListEvents returns the full corpus, ordered by key for a stable baseline.
func (s *Store) ListEvents() ([]event.Event, error) {
	var events []event.Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var evt event.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &evt)
			}); err != nil {
				return err
			}
			events = append(events, evt)
		}
		return nil
	})
	if err != nil {
		return nil, wrapDB(fmt.Errorf("listing events: %w", err))
	}
	return events, nil
}

// CountEvents reports the number of stored events.
func (s *Store) CountEvents() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, wrapDB(err)
	}
	return n, nil
}

func listFeatured(txn *badger.Txn) ([]event.FeaturedMark, error) {
	var marks []event.FeaturedMark
	opts := badger.DefaultIteratorOptions
	opts.Prefix = featuredPrefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var mark event.FeaturedMark
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &mark)
		}); err != nil {
			return nil, err
		}
		marks = append(marks, mark)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].Order < marks[j].Order })
	return marks, nil
}

// ListFeatured returns the curated overlay in mark order.
func (s *Store) ListFeatured() ([]event.FeaturedMark, error) {
	var marks []event.FeaturedMark
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		marks, err = listFeatured(txn)
		return err
	})
	if err != nil {
		return nil, wrapDB(fmt.Errorf("listing featured marks: %w", err))
	}
	return marks, nil
}

// AddFeatured appends an event to the curated overlay. Adding beyond the cap
// fails with ErrFeaturedCapacity; it is never silently truncated. Adding an
// already-featured event is a no-op.
func (s *Store) AddFeatured(eventID string, now time.Time) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(featuredKey(eventID)); err == nil {
			return nil
		}

		marks, err := listFeatured(txn)
		if err != nil {
			return err
		}
		if len(marks) >= event.MaxFeatured {
			return ErrFeaturedCapacity
		}

		next := 1
		if len(marks) > 0 {
			next = marks[len(marks)-1].Order + 1
		}
		return setJSON(txn, featuredKey(eventID), event.FeaturedMark{
			EventID: eventID,
			Order:   next,
			AddedAt: now.UTC(),
		})
	})
	return wrapDB(err)
}

// RemoveFeatured drops an event from the overlay and renumbers the remaining
// marks so Order stays a strict 1..N sequence.
func (s *Store) RemoveFeatured(eventID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(featuredKey(eventID)); err != nil {
			return err
		}
		marks, err := listFeatured(txn)
		if err != nil {
			return err
		}
		for i := range marks {
			if marks[i].Order != i+1 {
				marks[i].Order = i + 1
				if err := setJSON(txn, featuredKey(marks[i].EventID), marks[i]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return wrapDB(err)
}

// ReorderFeatured replaces the overlay ordering. The given IDs must be
// exactly the currently featured set; partial reorders are rejected so the
// strict 1..N invariant stays trivially checkable.
func (s *Store) ReorderFeatured(eventIDs []string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		marks, err := listFeatured(txn)
		if err != nil {
			return err
		}
		if len(eventIDs) != len(marks) {
			return fmt.Errorf("reorder must list all %d featured events, got %d", len(marks), len(eventIDs))
		}

		byID := make(map[string]event.FeaturedMark, len(marks))
		for _, m := range marks {
			byID[m.EventID] = m
		}
		for i, id := range eventIDs {
			mark, ok := byID[id]
			if !ok {
				return fmt.Errorf("event %s is not featured", id)
			}
			delete(byID, id)
			mark.Order = i + 1
			if err := setJSON(txn, featuredKey(id), mark); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapDB(err)
}
