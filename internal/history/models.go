package history

import (
	"strings"
	"time"
)

// Status captures how a run ended.
type Status string

const (
	// StatusCompleted means the engine ran and a result was harvested.
	StatusCompleted Status = "completed"
	// StatusNoResult means the engine ran but wrote no result file.
	StatusNoResult Status = "no_result"
	// StatusTimedOut means the engine was still running when the wait bound elapsed.
	StatusTimedOut Status = "timed_out"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

var allStatuses = []Status{
	StatusCompleted,
	StatusNoResult,
	StatusTimedOut,
	StatusFailed,
	StatusCanceled,
}

// AllStatuses returns every known status in display order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts user input to a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Run is a single persisted engine invocation.
type Run struct {
	ID           string
	Drawing      string
	Plugin       string
	Command      string
	Status       Status
	ExitCode     *int
	PID          int
	Duration     time.Duration
	ResultJSON   string
	OutputPath   string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Succeeded reports whether the run produced a result.
func (r Run) Succeeded() bool {
	return r.Status == StatusCompleted
}
