// Package extract scans fetched page content for event-shaped fragments.
//
// Extraction is a cascade of ranked selector strategies: the first strategy
// whose container selector matches anything claims the page, and at most 50
// containers are examined to bound cost. Each container resolves its title,
// date text, link, and image through fallback chains; containers that fail a
// step are skipped, never aborting the page. Candidates are deduplicated by
// resolved URL within one pass so overlapping strategy groups cannot emit the
// same element twice.
//
// Sources marked with a recurring schedule bypass date discovery entirely and
// synthesize upcoming occurrences on the stated weekly cadence instead.
package extract
