package ingest

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler runs ingest cycles on a cron cadence.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the ingestor on the given cron expression
// (e.g. "0 */6 * * *"). Overlapping runs are skipped: if a cycle is still in
// flight when the next tick fires, the tick is dropped.
func NewScheduler(ing *Ingestor, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		ing.Run(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scrape schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
