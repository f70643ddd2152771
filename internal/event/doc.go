// Package event defines the canonical catalog record and the canonicalization
// step that turns raw extracted candidates into store-ready events.
//
// Each event carries a deterministic SHA1-based ID derived from its normalized
// title, venue name, and start date, so re-scraping the same real-world listing
// converges on a single identity without a prior store lookup.
package event
