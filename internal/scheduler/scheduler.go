package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// Scheduler drives the irrigation cycle at a fixed interval. Cycles never
// overlap: a tick that fires while the previous cycle is still running is
// skipped, and a failed cycle never blocks the next tick.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	service      *irrigation.Service
	interval     time.Duration
	cycleTimeout time.Duration
}

// New creates a Scheduler. cycleTimeout bounds one cycle's total duration,
// including provider retries and store writes; it should sit well under the
// tick interval.
func New(service *irrigation.Service, interval, cycleTimeout time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:    s,
		service:      service,
		interval:     interval,
		cycleTimeout: cycleTimeout,
	}
}

// Start schedules the periodic cycle and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cycleTimeout)
		defer cancel()

		decision, cerr := s.service.RunCycle(ctx)
		if cerr != nil {
			// Skip this cycle; the decision log keeps a gap and the
			// next tick starts fresh.
			log.Printf("scheduler: cycle failed at %s: %v", cerr.Stage, cerr.Err)
			return
		}

		log.Printf("scheduler: cycle complete, decision %s (%s)", decision.Class, decision.ID)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler. An in-flight cycle finishes within its timeout.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
