package ports

import "time"

// PollTask is a handle on a recurring scheduled job. Cancel stops the
// job and guarantees it never fires afterwards; cancelling twice is a
// no-op.
type PollTask interface {
	Cancel()
	NextRun() time.Time
}

type SchedulerService interface {
	Start()
	Stop()
	// SchedulePoll runs fn every interval until the returned task is
	// cancelled. The first run happens one interval after scheduling.
	SchedulePoll(interval time.Duration, fn func()) (PollTask, error)
}
