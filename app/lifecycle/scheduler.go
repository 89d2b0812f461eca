package lifecycle

import (
	"context"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the scan at the start of every hour
const DefaultSpec = "@hourly"

// Cron interface defines basic robfig/cron methods used by scheduler
type Cron interface {
	Start()
	Stop() context.Context
	Schedule(schedule cron.Schedule, cmd cron.Job) cron.EntryID
}

// Scheduler runs Engine.Scan once at start and then on the cron spec
type Scheduler struct {
	Cron   Cron
	Engine *Engine
	Spec   string // standard cron spec or descriptor, DefaultSpec if empty
	Now    func() time.Time
}

// Do runs blocking scheduler until ctx is canceled
func (s *Scheduler) Do(ctx context.Context) error {
	spec := s.Spec
	if spec == "" {
		spec = DefaultSpec
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("can't parse lifecycle schedule %q: %w", spec, err)
	}

	s.scan(ctx) // data load time
	id := s.Cron.Schedule(sched, cron.FuncJob(func() { s.scan(ctx) }))
	log.Printf("[INFO] lifecycle scan scheduled %q, next at %s (%v)", spec, sched.Next(s.now()).Format(time.RFC3339), id)

	s.Cron.Start()
	<-ctx.Done()
	log.Print("[DEBUG] lifecycle scheduler terminated")
	<-s.Cron.Stop().Done()
	return nil
}

func (s *Scheduler) scan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Engine.Scan(ctx, s.now()); err != nil {
		log.Printf("[WARN] lifecycle scan failed: %v", err)
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
