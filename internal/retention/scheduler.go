package retention

import (
	"context"
	"sync"
	"time"

	"traka/pkg/logger"
)

// Job is one periodic maintenance task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals until the context is
// cancelled. Jobs tick independently; a slow job never blocks another.
type Scheduler struct {
	jobs   []Job
	logger *logger.Logger
}

func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{logger: log}
}

func (s *Scheduler) Add(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runLoop(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.WithFields(map[string]interface{}{
		"job":      job.Name,
		"interval": job.Interval.String(),
	}).Info("Scheduled job registered")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				s.logger.WithError(err).WithField("job", job.Name).Error("Scheduled job failed")
				continue
			}
			s.logger.WithFields(map[string]interface{}{
				"job":      job.Name,
				"duration": time.Since(start).String(),
			}).Debug("Scheduled job finished")
		}
	}
}
