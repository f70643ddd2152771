package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Coordinates is a venue location in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is the place an event happens at, attached verbatim from the
// venue registry during canonicalization.
type Venue struct {
	Name        string       `json:"name" validate:"required"`
	Address     string       `json:"address" validate:"required"`
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Event is a validated, deduplicated catalog record.
//
// Price is always a non-empty string ("Free" when no price was extracted)
// because downstream clients use strict decoding that rejects missing fields.
// Synthesized marks occurrences generated from a venue's recurring schedule
// rather than scraped from listing text.
type Event struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Venue       Venue      `json:"venue"`
	Price       string     `json:"price" validate:"required"`
	Category    string     `json:"category,omitempty"`
	Source      string     `json:"source"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Synthesized bool       `json:"synthesized,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FeaturedMark is a curated overlay entry promoting one event to the top of
// catalog listings. Order is a strict 1..N sequence.
type FeaturedMark struct {
	EventID string    `json:"eventId"`
	Order   int       `json:"order"`
	AddedAt time.Time `json:"addedAt"`
}

// MaxFeatured caps the curated overlay.
const MaxFeatured = 10

// NormalizeTitle lowercases a title and collapses runs of whitespace, giving
// the stable form used for identity derivation.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// GenerateID derives the deterministic event identity from normalized title,
// venue name, and start date. Two scrapes of the same listing always hash to
// the same ID.
func GenerateID(title, venueName string, start time.Time) string {
	h := sha1.New()
	h.Write([]byte(NormalizeTitle(title)))
	h.Write([]byte("|"))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(venueName))))
	h.Write([]byte("|"))
	h.Write([]byte(start.UTC().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// LegacyKey hashes (title, startDate) for records ingested before ID hashing
// included the venue name. The store keeps a secondary index on it so old
// rows are still found by the deduplicator.
func LegacyKey(title string, start time.Time) string {
	h := sha1.New()
	h.Write([]byte(NormalizeTitle(title)))
	h.Write([]byte("|"))
	h.Write([]byte(start.UTC().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))
}
