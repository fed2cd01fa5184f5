// Package scheduler runs cleanup cycles on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/driftersoft/janitord/internal/engine"
	"github.com/driftersoft/janitord/pkg/observability"
)

// Scheduler triggers Clean on a cron schedule. Cycles never overlap: the
// cleaner serializes them, so a trigger that fires while a cycle is running
// simply waits its turn. Stopping the scheduler
// only prevents the next cycle; a cycle in flight runs to completion.
type Scheduler struct {
	cleaner  *engine.Cleaner
	schedule string
	dry      bool
	log      *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// New validates the cron expression (standard five-field syntax, plus
// descriptors like "@every 15m") and returns a stopped scheduler.
func New(cleaner *engine.Cleaner, schedule string, dry bool, log *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cleaner:  cleaner,
		schedule: schedule,
		dry:      dry,
		log:      log.With("component", "scheduler"),
	}, nil
}

// Start begins scheduling cycles until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", "schedule", s.schedule, "dry_run", s.dry)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop prevents further cycles and waits for a running one to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("scheduler stopped")
}

// NextRun returns the time of the next scheduled cycle, or zero when the
// scheduler is stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// runCycle executes one cycle and surfaces failures as log events and
// metrics instead of letting them escape.
func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	deleted, err := s.cleaner.Clean(ctx, s.dry)
	observability.CycleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.CleanupCycles.WithLabelValues("error").Inc()
		s.log.Error("cleanup cycle failed", "error", err)
		return
	}
	observability.CleanupCycles.WithLabelValues("ok").Inc()
	if !s.dry {
		for _, d := range deleted {
			kind := "file"
			if d.IsDir {
				kind = "dir"
			}
			observability.DeletedEntries.WithLabelValues(kind).Inc()
			observability.ReclaimedBytes.Add(float64(d.Size))
		}
	}
	s.log.Info("scheduled cycle finished", "deleted", len(deleted), "dry_run", s.dry)
}
