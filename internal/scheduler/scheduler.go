// Package scheduler repeats the load cycle on a cron spec.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"hh-vacancies-go/internal/logger"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. Runs of the job never overlap: a tick that
// arrives while the previous run is still going is skipped.
type Scheduler struct {
	cron  *cron.Cron
	spec  string
	job   Job
	entry cron.EntryID

	// manual runs are not tracked by cron.Stop
	manual sync.WaitGroup
}

// New creates a Scheduler for spec, e.g. "@every 6h" or "0 */6 * * *".
func New(spec string, job Job) *Scheduler {
	cronLogger := cron.PrintfLogger(logger.Logger())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		spec: spec,
		job:  job,
	}
}

// Start registers the job and starts the cron loop. ctx is handed to every
// run of the job.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	s.entry = id

	s.cron.Start()
	logger.InfoLog(ctx, "scheduler started, spec: %s, next run at %s", s.spec, s.cron.Entry(id).Next.Format("2006-01-02 15:04:05"))
	return nil
}

// RunNow runs the job in the calling goroutine through the same wrappers as
// a scheduled tick, so it is skipped if a run is already in progress. It must
// be called after Start.
func (s *Scheduler) RunNow() {
	s.manual.Add(1)
	defer s.manual.Done()
	s.runEntry()
}

// Trigger is RunNow in a new goroutine. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.runEntry()
	}()
}

func (s *Scheduler) runEntry() {
	entry := s.cron.Entry(s.entry)
	if entry.WrappedJob == nil {
		return
	}
	entry.WrappedJob.Run()
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.manual.Wait()
	logger.InfoLog(context.Background(), "scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.job(ctx); err != nil {
		logger.ErrorLog(ctx, "scheduled run failed", err)
	}
}
