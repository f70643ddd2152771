// Package metrics exposes the pipeline's operational counters via Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidatesExtracted counts raw candidates produced per source.
	CandidatesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_candidates_extracted_total",
		Help: "Raw candidates produced by extraction passes.",
	}, []string{"source"})

	// CandidatesDropped counts silent drops by reason (parse, validation).
	CandidatesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_candidates_dropped_total",
		Help: "Candidates dropped before reaching the store.",
	}, []string{"reason"})

	// EventsStored counts store writes by outcome (created, merged).
	EventsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_events_stored_total",
		Help: "Events written to the catalog store.",
	}, []string{"outcome"})

	// SourceFailures counts sources that failed or timed out in isolation.
	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_source_failures_total",
		Help: "Scrape sources that failed and contributed nothing.",
	}, []string{"source"})

	// IntegrityViolations counts records dropped by the null-safety guard.
	// These are bug signals, distinct from ordinary filtering.
	IntegrityViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citypulse_integrity_violations_total",
		Help: "Malformed records dropped at the serving boundary.",
	})

	// IngestDuration observes full scrape cycle durations.
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "citypulse_ingest_cycle_seconds",
		Help:    "Duration of complete ingest cycles.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
