package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mbertelsen/citypulse/internal/event"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvent(title string, day int) *event.Event {
	start := time.Date(2026, time.February, day, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	return &event.Event{
		ID:        event.GenerateID(title, "Blue Note", start),
		Title:     title,
		StartDate: start,
		Venue:     event.Venue{Name: "Blue Note", Address: "131 W 3rd St", City: "New York"},
		Price:     "Free",
		Source:    "blue-note",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUpsertEventIdempotent(t *testing.T) {
	s := testStore(t)
	evt := testEvent("Winter Jazz Fest", 14)

	created, err := s.UpsertEvent(evt)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}

	created, err = s.UpsertEvent(testEvent("Winter Jazz Fest", 14))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should merge, not create")
	}

	n, err := s.CountEvents()
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored event, got %d", n)
	}
}

func TestUpsertEventEnrichmentMerge(t *testing.T) {
	s := testStore(t)

	first := testEvent("Winter Jazz Fest", 14)
	first.Description = "Original description"
	if _, err := s.UpsertEvent(first); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second := testEvent("Winter Jazz Fest", 14)
	second.Description = "Rediscovered description"
	second.ImageURL = "https://img.example/jazz.jpg"
	second.Price = "$35"
	second.UpdatedAt = first.UpdatedAt.Add(time.Hour)
	if _, err := s.UpsertEvent(second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetEvent(first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Original description" {
		t.Errorf("existing description overwritten: %q", got.Description)
	}
	if got.ImageURL != "https://img.example/jazz.jpg" {
		t.Errorf("empty image not enriched: %q", got.ImageURL)
	}
	if got.Price != "$35" {
		t.Errorf("default price not upgraded: %q", got.Price)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("createdAt changed: %v vs %v", got.CreatedAt, first.CreatedAt)
	}
	if !got.UpdatedAt.Equal(second.UpdatedAt) {
		t.Errorf("updatedAt not advanced: %v", got.UpdatedAt)
	}
}

func TestUpsertEventLegacyLookup(t *testing.T) {
	s := testStore(t)

	// A record ingested before venue-aware hashing: same title and start
	// date, but a foreign ID.
	legacy := testEvent("Winter Jazz Fest", 14)
	legacy.ID = "legacy-0001"
	if _, err := s.UpsertEvent(legacy); err != nil {
		t.Fatalf("upsert legacy: %v", err)
	}

	incoming := testEvent("Winter Jazz Fest", 14)
	incoming.Description = "Filled by rediscovery"
	created, err := s.UpsertEvent(incoming)
	if err != nil {
		t.Fatalf("upsert incoming: %v", err)
	}
	if created {
		t.Error("legacy row should be found by (title, startDate), not duplicated")
	}

	got, err := s.GetEvent("legacy-0001")
	if err != nil {
		t.Fatalf("get legacy: %v", err)
	}
	if got.Description != "Filled by rediscovery" {
		t.Errorf("legacy row not enriched: %q", got.Description)
	}

	n, _ := s.CountEvents()
	if n != 1 {
		t.Errorf("expected 1 stored event, got %d", n)
	}
}

func TestFeaturedCap(t *testing.T) {
	s := testStore(t)
	now := time.Now()

	for i := 0; i < event.MaxFeatured; i++ {
		if err := s.AddFeatured(fmt.Sprintf("evt-%02d", i), now); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	err := s.AddFeatured("evt-overflow", now)
	if !errors.Is(err, ErrFeaturedCapacity) {
		t.Fatalf("expected ErrFeaturedCapacity, got %v", err)
	}

	marks, err := s.ListFeatured()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(marks) != event.MaxFeatured {
		t.Errorf("expected count to stay at %d, got %d", event.MaxFeatured, len(marks))
	}
	for i, m := range marks {
		if m.Order != i+1 {
			t.Errorf("mark %d has order %d, want strict 1..N", i, m.Order)
		}
	}
}

func TestFeaturedAddIsIdempotent(t *testing.T) {
	s := testStore(t)
	now := time.Now()

	if err := s.AddFeatured("evt-1", now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddFeatured("evt-1", now); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	marks, _ := s.ListFeatured()
	if len(marks) != 1 {
		t.Errorf("expected 1 mark, got %d", len(marks))
	}
}

func TestFeaturedRemoveRenumbers(t *testing.T) {
	s := testStore(t)
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddFeatured(id, now); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := s.RemoveFeatured("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	marks, _ := s.ListFeatured()
	if len(marks) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(marks))
	}
	want := []string{"a", "c"}
	for i, m := range marks {
		if m.EventID != want[i] || m.Order != i+1 {
			t.Errorf("mark %d = %+v, want %s at order %d", i, m, want[i], i+1)
		}
	}
}

func TestFeaturedReorder(t *testing.T) {
	s := testStore(t)
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddFeatured(id, now); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	if err := s.ReorderFeatured([]string{"c", "a", "b"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	marks, _ := s.ListFeatured()
	want := []string{"c", "a", "b"}
	for i, m := range marks {
		if m.EventID != want[i] {
			t.Errorf("position %d = %s, want %s", i+1, m.EventID, want[i])
		}
	}

	// Partial or foreign reorders are rejected outright.
	if err := s.ReorderFeatured([]string{"c", "a"}); err == nil {
		t.Error("partial reorder should fail")
	}
	if err := s.ReorderFeatured([]string{"c", "a", "x"}); err == nil {
		t.Error("reorder with unknown ID should fail")
	}
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Close()

	if _, err := s.ListEvents(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from closed store, got %v", err)
	}
	if _, err := s.UpsertEvent(testEvent("X Marks the Spot", 1)); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from closed store, got %v", err)
	}
}
