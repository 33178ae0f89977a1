// Package scheduler wires up the portal's background cron jobs: purging
// expired sessions and probing the Job Store for the gRPC health status.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// ProbeSpec is how often the Job Store is probed.
const ProbeSpec = "@every 30s"

// Purger drops expired sessions and reports how many went.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Prober refreshes the served health status.
type Prober interface {
	Probe(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the maintenance loop.
type Scheduler struct {
	cron      *cron.Cron
	purger    Purger
	prober    Prober
	purgeSpec string
}

// New creates a Scheduler that purges on purgeSpec. prober may be nil.
func New(purger Purger, prober Prober, purgeSpec string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cron.DefaultLogger)),
		purger:    purger,
		prober:    prober,
		purgeSpec: purgeSpec,
	}
}

// Start registers the jobs and starts the scheduler. The probe also runs once
// immediately so health is known without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.purgeSpec, func() { s.runPurge(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc purge %q: %w", s.purgeSpec, err)
	}
	if s.prober != nil {
		if _, err := s.cron.AddFunc(ProbeSpec, func() { s.runProbe(ctx) }); err != nil {
			return fmt.Errorf("cron.AddFunc probe: %w", err)
		}
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, purge: %s", s.purgeSpec)

	if s.prober != nil {
		go s.runProbe(ctx)
	}
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runPurge(ctx context.Context) {
	n, err := s.purger.Purge(ctx)
	if err != nil {
		log.Printf("[scheduler] Session purge error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[scheduler] Purged %d expired session(s)", n)
	}
}

func (s *Scheduler) runProbe(ctx context.Context) {
	if err := s.prober.Probe(ctx); err != nil {
		log.Printf("[scheduler] Job store unreachable: %v", err)
	}
}
