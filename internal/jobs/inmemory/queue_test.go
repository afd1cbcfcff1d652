package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/spending-reports/internal/jobs"
)

// waitForStatus polls the store until the job reaches status or the deadline passes.
func waitForStatus(t *testing.T, store *Store, jobID string, status jobs.JobStatus) *jobs.WeekdayReportJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == status {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job %s did not reach %s, last state %+v", jobID, status, job)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, store)
	defer q.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		j := job.(*jobs.WeekdayReportJob)
		j.ReportLocation = "reports/" + j.ReportName
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.WeekdayReportJob{ReportName: "weekly.xlsx"}
	if err := q.PublishWeekdayReport(context.Background(), job); err != nil {
		t.Fatalf("PublishWeekdayReport() error = %v", err)
	}
	if job.JobID == "" || job.MaxRetries != jobs.DefaultMaxRetries {
		t.Errorf("published job defaults not applied: %+v", job)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.ReportLocation != "reports/weekly.xlsx" {
		t.Errorf("ReportLocation = %q", done.ReportLocation)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Errorf("timestamps not recorded: %+v", done)
	}
}

func TestQueue_RetriesThenFails(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store)
	q.SetRetryBackoff(time.Millisecond)
	defer q.Close()

	var attempts int32
	handler := func(ctx context.Context, job jobs.Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("source unavailable")
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.WeekdayReportJob{MaxRetries: 2}
	if err := q.PublishWeekdayReport(context.Background(), job); err != nil {
		t.Fatalf("PublishWeekdayReport() error = %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.RetryCount != 2 || failed.Error != "source unavailable" {
		t.Errorf("failed job = %+v", failed)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestQueue_NoRetries(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		panic("boom")
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.WeekdayReportJob{MaxRetries: -1}
	if err := q.PublishWeekdayReport(context.Background(), job); err != nil {
		t.Fatalf("PublishWeekdayReport() error = %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.RetryCount != 0 || failed.Error == "" {
		t.Errorf("failed job = %+v", failed)
	}
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(1, 1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := q.PublishWeekdayReport(context.Background(), &jobs.WeekdayReportJob{}); err == nil {
		t.Error("expected error publishing to closed queue")
	}
	if err := q.Start(context.Background(), func(context.Context, jobs.Job) error { return nil }); err == nil {
		t.Error("expected error starting closed queue")
	}
}

func TestQueue_PublishRespectsContext(t *testing.T) {
	q := NewQueue(0, 1, nil)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.PublishWeekdayReport(ctx, &jobs.WeekdayReportJob{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
