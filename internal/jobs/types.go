// Package jobs defines the asynchronous persistence pipeline: a chat
// handler publishes a recording job and responds immediately, while a
// consumer writes the transaction to storage in the background.
package jobs

import (
	"context"
	"time"

	"github.com/ntarasov/finchat/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeRecordTransaction persists one chat-confirmed transaction.
	JobTypeRecordTransaction JobType = "record_transaction"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// RecordTransactionJob carries one extracted transaction plus the
// conversation it came from, so the handler can archive a snapshot
// alongside the stored row.
type RecordTransactionJob struct {
	JobID  string `json:"job_id"`
	UserID string `json:"user_id"`

	Transaction    *domain.Transaction `json:"transaction"`
	Turns          domain.Transcript   `json:"turns,omitempty"`
	AssistantReply string              `json:"assistant_reply,omitempty"`

	// SnapshotURI is set by the handler once the conversation snapshot
	// lands in object storage.
	SnapshotURI string `json:"snapshot_uri,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// Job is a generic interface over job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *RecordTransactionJob) GetID() string        { return j.JobID }
func (j *RecordTransactionJob) GetType() JobType     { return JobTypeRecordTransaction }
func (j *RecordTransactionJob) GetStatus() JobStatus { return j.Status }

// Publisher is the enqueue side of the pipeline. The abstraction keeps
// handlers independent of the queue implementation (in-memory now,
// Cloud Tasks or Pub/Sub later).
type Publisher interface {
	PublishRecordTransaction(ctx context.Context, job *RecordTransactionJob) error
	Close() error
}

// Consumer is the dequeue side of the pipeline.
type Consumer interface {
	// Start begins consuming jobs; handler is called for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job failed
// and eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can report recording progress.
type JobStore interface {
	SaveJob(ctx context.Context, job *RecordTransactionJob) error
	GetJob(ctx context.Context, jobID string) (*RecordTransactionJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*RecordTransactionJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
