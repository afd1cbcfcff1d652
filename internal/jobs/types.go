package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by a JobStore for an unknown job ID.
var ErrJobNotFound = errors.New("job not found")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeWeekdayReport renders and saves a weekday spending report.
	JobTypeWeekdayReport JobType = "weekday_report"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies when a published job leaves MaxRetries unset.
const DefaultMaxRetries = 3

// WeekdayReportJob asks a worker to compute and persist a weekday report.
type WeekdayReportJob struct {
	JobID string `json:"job_id"`

	// EndDate is the DD.MM.YYYY window end; empty means the latest operation.
	EndDate string `json:"end_date,omitempty"`

	// ReportName overrides the default report file name.
	ReportName string `json:"report_name,omitempty"`

	// ReportLocation is where the saved report ended up.
	ReportLocation string `json:"report_location,omitempty"`

	// Trigger records who asked for the report, e.g. "api" or "schedule".
	Trigger string `json:"trigger,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`

	// MaxRetries is the number of retries allowed; negative disables retries.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *WeekdayReportJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *WeekdayReportJob) GetType() JobType {
	return JobTypeWeekdayReport
}

// GetStatus implements the Job interface.
func (j *WeekdayReportJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher enqueues jobs.
type Publisher interface {
	PublishWeekdayReport(ctx context.Context, job *WeekdayReportJob) error
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the attempt as failed
// and may trigger a retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *WeekdayReportJob) error
	GetJob(ctx context.Context, jobID string) (*WeekdayReportJob, error)

	// ListJobs returns jobs newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*WeekdayReportJob, error)

	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status  JobStatus
	Trigger string

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
