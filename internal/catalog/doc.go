// Package catalog serves filtered, deterministically ordered views of the
// event store, merged with the curated featured overlay.
//
// The sort contract: featured events first in mark order, remaining events by
// start date ascending, with a stable createdAt-then-ID tie-break so repeated
// calls against unchanged data return byte-identical orderings. A final
// null-safety guard runs after sorting and drops any record that is not
// well-formed or lacks a resolvable start date; the catalog never serves a
// fabricated date.
package catalog
