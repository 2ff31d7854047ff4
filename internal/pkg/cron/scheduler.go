package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is a task that runs once a day at a fixed wall-clock time.
type Job struct {
	Name   string
	Hour   int
	Minute int
	Fn     func(ctx context.Context) error
}

// nextRun returns the first occurrence of the job's wall-clock time strictly
// after now.
func (j Job) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), j.Hour, j.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Scheduler runs registered daily jobs until stopped.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddDailyJob registers fn to run every day at hour:minute local time.
func (s *Scheduler) AddDailyJob(name string, hour, minute int, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Hour: hour, Minute: minute, Fn: fn})
	slog.Info("Daily job registered", "name", name, "at", fmt.Sprintf("%02d:%02d", hour, minute))
}

// Start launches one goroutine per registered job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Scheduler started", "job_count", len(s.jobs))
}

// Stop cancels all jobs and waits for them to finish.
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(time.Until(job.nextRun(time.Now())))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			slog.Info("Daily job stopping", "name", job.Name)
			return
		case <-timer.C:
			s.executeJob(job)
		}
	}
}

func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Daily job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Daily job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs every registered job immediately, ignoring the schedule
// (useful for testing).
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Daily job failed", "name", job.Name, "error", err)
		}
	}
}
