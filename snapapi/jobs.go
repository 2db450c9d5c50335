package snapapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// JobStatus is the state of a batch job, an async job, or a batch item.
// Only the service moves a job between states.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transition can leave this state.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// AsyncJob is a snapshot of a single asynchronous screenshot job.
type AsyncJob struct {
	Success     bool              `json:"success"`
	JobID       string            `json:"jobId"`
	Status      JobStatus         `json:"status"`
	Result      *ScreenshotResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	CompletedAt string            `json:"completedAt,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler; an absent status reads as pending.
func (j *AsyncJob) UnmarshalJSON(b []byte) error {
	type wire AsyncJob
	w := wire{Status: JobPending}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*j = AsyncJob(w)
	return nil
}

// Done reports whether the job has reached a terminal state.
func (j *AsyncJob) Done() bool {
	return j.Status.IsTerminal()
}

var (
	// ErrProgressRegressed indicates a later poll reported less progress than an earlier one
	ErrProgressRegressed = errors.New("job progress regressed between polls")
	// ErrJobMismatch indicates snapshots of different jobs were fed to one monitor
	ErrJobMismatch = errors.New("snapshot belongs to a different job")
)

// ProgressMonitor checks successive polls of one batch job: the number of
// settled items never decreases and a terminal job stays terminal.
// It is safe for concurrent use.
type ProgressMonitor struct {
	mu       sync.Mutex
	jobID    string
	settled  int
	terminal JobStatus
	polls    int
}

// Observe records a snapshot and reports a contract violation, if any.
func (m *ProgressMonitor) Observe(r *BatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.polls > 0 && r.JobID != m.jobID {
		return fmt.Errorf("%w: expected %s, got %s", ErrJobMismatch, m.jobID, r.JobID)
	}

	settled := r.Settled()
	if settled < m.settled {
		return fmt.Errorf("%w: %d settled items after %d", ErrProgressRegressed, settled, m.settled)
	}
	if m.terminal != "" && r.Status != m.terminal {
		return fmt.Errorf("%w: job left terminal state %s for %s", ErrProgressRegressed, m.terminal, r.Status)
	}

	m.jobID = r.JobID
	m.settled = settled
	if r.Status.IsTerminal() {
		m.terminal = r.Status
	}
	m.polls++
	return nil
}

// Settled returns the highest settled count observed so far.
func (m *ProgressMonitor) Settled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settled
}

// Polls returns the number of snapshots accepted.
func (m *ProgressMonitor) Polls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}
