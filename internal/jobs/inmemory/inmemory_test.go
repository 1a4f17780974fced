package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ntarasov/finchat/internal/domain"
	"github.com/ntarasov/finchat/internal/jobs"
)

func sampleJob(id string) *jobs.RecordTransactionJob {
	return &jobs.RecordTransactionJob{
		JobID:  id,
		UserID: "user-1",
		Transaction: &domain.Transaction{
			Type:        domain.TypeExpense,
			Amount:      21.00,
			Category:    domain.CategoryPersonalCare,
			Description: "Haircut",
		},
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := sampleJob("job-1")
	job.Status = jobs.JobStatusPending

	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() err = %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() err = %v", err)
	}
	if got.UserID != "user-1" || got.Status != jobs.JobStatusPending {
		t.Errorf("GetJob() = %+v, want saved job", got)
	}

	// Mutating the returned copy must not affect the stored job.
	got.Status = jobs.JobStatusFailed
	again, _ := store.GetJob(ctx, "job-1")
	if again.Status != jobs.JobStatusPending {
		t.Error("stored job mutated through returned copy")
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.RecordTransactionJob{}); err == nil {
		t.Fatal("SaveJob() err = nil, want error for missing ID")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Fatal("GetJob() err = nil, want error")
	}
}

func TestStoreListJobsFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a := sampleJob("job-a")
	a.Status = jobs.JobStatusCompleted
	a.CreatedAt = time.Now().Add(-time.Minute)
	b := sampleJob("job-b")
	b.Status = jobs.JobStatusFailed
	b.CreatedAt = time.Now()
	c := sampleJob("job-c")
	c.UserID = "user-2"
	c.Status = jobs.JobStatusCompleted
	c.CreatedAt = time.Now().Add(-2 * time.Minute)

	for _, j := range []*jobs.RecordTransactionJob{a, b, c} {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) err = %v", j.JobID, err)
		}
	}

	got, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListJobs() err = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListJobs(user-1) count = %d, want 2", len(got))
	}
	if got[0].JobID != "job-b" {
		t.Errorf("ListJobs() first = %s, want newest first", got[0].JobID)
	}

	got, _ = store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if len(got) != 2 {
		t.Errorf("ListJobs(completed) count = %d, want 2", len(got))
	}

	got, _ = store.ListJobs(ctx, jobs.JobFilter{UserID: "user-1", Limit: 1})
	if len(got) != 1 {
		t.Errorf("ListJobs(limit 1) count = %d, want 1", len(got))
	}
}

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	processed := make(map[string]bool)

	handler := func(_ context.Context, job jobs.Job) error {
		mu.Lock()
		processed[job.GetID()] = true
		mu.Unlock()
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() err = %v", err)
	}

	job := sampleJob("")
	if err := queue.PublishRecordTransaction(ctx, job); err != nil {
		t.Fatalf("PublishRecordTransaction() err = %v", err)
	}
	if job.JobID == "" {
		t.Fatal("job ID not assigned on publish")
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		done := processed[job.JobID]
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job not processed before deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Status must eventually land on completed in the store.
	deadline = time.After(2 * time.Second)
	for {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job status never reached completed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestQueueRetriesFailedJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0

	handler := func(_ context.Context, _ jobs.Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return errors.New("transient failure")
		}
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() err = %v", err)
	}

	job := sampleJob("")
	job.MaxRetries = 2
	if err := queue.PublishRecordTransaction(ctx, job); err != nil {
		t.Fatalf("PublishRecordTransaction() err = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusCompleted {
			if got.RetryCount != 1 {
				t.Errorf("RetryCount = %d, want 1", got.RetryCount)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("job never completed after retry")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, nil)
	if err := queue.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	if err := queue.PublishRecordTransaction(context.Background(), sampleJob("job-x")); err == nil {
		t.Fatal("PublishRecordTransaction() err = nil after close, want error")
	}
}
