// Package store persists the catalog in an embedded badger database.
//
// Two logical collections live under key prefixes: events keyed by canonical
// ID, and featured marks keyed by event ID. A secondary index maps the legacy
// (title, startDate) hash to an ID so records ingested before venue-aware ID
// hashing are still found by the deduplicator. Each upsert is one badger
// transaction, so the check-then-act merge is atomic per document even when
// overlapping scrape runs hit the same venue.
package store
