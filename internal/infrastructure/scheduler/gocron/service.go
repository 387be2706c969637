package scheduler

import (
	"sync"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/ports"
	"github.com/go-co-op/gocron"
)

type service struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() ports.SchedulerService {
	return &service{gocron.NewScheduler(time.UTC)}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

func (s *service) SchedulePoll(interval time.Duration, fn func()) (ports.PollTask, error) {
	task := &pollTask{scheduler: s.scheduler}

	// the job is cancelled from inside fn when a terminal status is
	// seen, so the guard must exist before the first tick
	job, err := s.scheduler.Every(interval).WaitForSchedule().Do(func() {
		task.mu.Lock()
		cancelled := task.cancelled
		task.mu.Unlock()
		if cancelled {
			return
		}
		fn()
	})
	if err != nil {
		return nil, err
	}

	task.job = job
	return task, nil
}

type pollTask struct {
	scheduler *gocron.Scheduler
	job       *gocron.Job

	mu        sync.Mutex
	cancelled bool
}

func (t *pollTask) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	t.mu.Unlock()

	t.scheduler.RemoveByReference(t.job)
}

func (t *pollTask) NextRun() time.Time {
	return t.job.NextRun()
}
