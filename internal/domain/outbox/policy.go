package outbox

import "time"

// RetryMode names how failed tasks with remaining retry budget are
// treated between drains.
type RetryMode string

const (
	// RetryManual leaves failed tasks failed until an operator requeues
	// them. This is the default: a task that failed once usually failed
	// for a reason a blind retry will not fix (unsynced parent, bad
	// payload), and auto-retry would burn the remote rate budget.
	RetryManual RetryMode = "manual"

	// RetryRequeue returns failed tasks with budget left to pending at
	// the top of every drain, with exponential backoff on scheduled_at.
	RetryRequeue RetryMode = "requeue"
)

// Valid reports whether the mode is one of the closed set.
func (m RetryMode) Valid() bool {
	return m == RetryManual || m == RetryRequeue
}

// RetryPolicy is the named, explicit policy for failed-task handling.
type RetryPolicy struct {
	Mode        RetryMode
	BaseBackoff time.Duration
}

// DefaultRetryPolicy matches the historically observed behavior: failed
// tasks never return to pending on their own.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Mode:        RetryManual,
		BaseBackoff: 30 * time.Second,
	}
}

// Backoff returns the delay before a task on its nth retry (1-based)
// becomes dequeuable again under RetryRequeue.
func (p RetryPolicy) Backoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := p.BaseBackoff
	for i := 1; i < retryCount; i++ {
		d *= 2
	}
	return d
}
