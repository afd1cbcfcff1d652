package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spending-reports/internal/jobs"
)

// DefaultWorkers is used when NewQueue is given a non-positive worker count.
const DefaultWorkers = 5

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// Jobs do not survive a restart.
type Queue struct {
	jobChan   chan *jobs.WeekdayReportJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool

	workers      int
	retryBackoff time.Duration
	log          zerolog.Logger
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishWeekdayReport blocks.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		jobChan:      make(chan *jobs.WeekdayReportJob, bufferSize),
		closeChan:    make(chan struct{}),
		store:        store,
		workers:      workers,
		retryBackoff: time.Second,
		log:          zerolog.Nop(),
	}
}

// SetRetryBackoff sets the base delay; attempt n waits n times this long.
func (q *Queue) SetRetryBackoff(d time.Duration) {
	q.retryBackoff = d
}

// SetLogger attaches a logger for job lifecycle events.
func (q *Queue) SetLogger(log zerolog.Logger) {
	q.log = log
}

// PublishWeekdayReport implements the Publisher interface.
func (q *Queue) PublishWeekdayReport(ctx context.Context, job *jobs.WeekdayReportJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		q.log.Debug().Str("job_id", job.JobID).Msg("Job enqueued")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface. It runs the configured number of
// workers, each calling handler for one job at a time.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.log.Info().Int("workers", q.workers).Msg("Job queue started")

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, job *jobs.WeekdayReportJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := runHandler(ctx, job, handler)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	retry := false
	if err != nil {
		job.Error = err.Error()

		if job.RetryCount < job.MaxRetries {
			job.RetryCount++
			job.Status = jobs.JobStatusRetrying
			retry = true
		} else {
			job.Status = jobs.JobStatusFailed
		}
		q.log.Warn().Err(err).
			Str("job_id", job.JobID).
			Int("retry_count", job.RetryCount).
			Str("status", string(job.Status)).
			Msg("Job failed")
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		q.log.Info().Str("job_id", job.JobID).Str("location", job.ReportLocation).Msg("Job completed")
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	if retry {
		backoff := time.Duration(job.RetryCount) * q.retryBackoff
		time.AfterFunc(backoff, func() {
			job.Status = jobs.JobStatusPending
			job.StartedAt = nil
			job.CompletedAt = nil
			if err := q.PublishWeekdayReport(ctx, job); err != nil {
				q.log.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to re-enqueue job")
			}
		})
	}
}

// runHandler converts a handler panic into a failed attempt.
func runHandler(ctx context.Context, job jobs.Job, handler jobs.JobHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panic: %v", r)
		}
	}()
	return handler(ctx, job)
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
