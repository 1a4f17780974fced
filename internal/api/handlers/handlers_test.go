package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ntarasov/finchat/internal/chat"
	"github.com/ntarasov/finchat/internal/describe"
	"github.com/ntarasov/finchat/internal/domain"
	"github.com/ntarasov/finchat/internal/infra/memory"
	"github.com/ntarasov/finchat/internal/jobs"
	"github.com/ntarasov/finchat/internal/jobs/inmemory"
)

type fakePublisher struct {
	published []*jobs.RecordTransactionJob
	err       error
}

func (f *fakePublisher) PublishRecordTransaction(_ context.Context, job *jobs.RecordTransactionJob) error {
	if f.err != nil {
		return f.err
	}
	if job.JobID == "" {
		job.JobID = "job-1"
	}
	f.published = append(f.published, job)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newChatHandler(pub jobs.Publisher) *ChatHandler {
	extractor := chat.NewExtractor(describe.NewComposer(nil))
	return NewChatHandler(extractor, pub, "USD", zerolog.Nop())
}

func TestHandleMessageRecordsTransaction(t *testing.T) {
	pub := &fakePublisher{}
	h := newChatHandler(pub)

	body := `{
		"user_id": "user-1",
		"messages": [{"role": "user", "text": "i spent 21 on the haircut"}],
		"assistant_reply": "Added expense: $21.00 for Personal Care (Haircut)."
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Recorded    bool                `json:"recorded"`
		JobID       string              `json:"job_id"`
		Transaction *domain.Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Recorded {
		t.Error("recorded = false, want true")
	}
	if resp.JobID == "" {
		t.Error("job_id missing")
	}
	if resp.Transaction == nil {
		t.Fatal("transaction missing from response")
	}
	if resp.Transaction.Amount != 21.00 || resp.Transaction.Category != domain.CategoryPersonalCare {
		t.Errorf("transaction = %+v, want 21.00 Personal Care", resp.Transaction)
	}
	if resp.Transaction.Currency != "USD" {
		t.Errorf("currency = %q, want USD", resp.Transaction.Currency)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published jobs = %d, want 1", len(pub.published))
	}
	if pub.published[0].UserID != "user-1" {
		t.Errorf("job user = %q, want user-1", pub.published[0].UserID)
	}
}

func TestHandleMessageNonConfirmation(t *testing.T) {
	pub := &fakePublisher{}
	h := newChatHandler(pub)

	body := `{
		"user_id": "user-1",
		"messages": [{"role": "user", "text": "i spent money"}],
		"assistant_reply": "Please provide the amount you spent."
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if recorded, _ := resp["recorded"].(bool); recorded {
		t.Error("recorded = true, want false")
	}
	if len(pub.published) != 0 {
		t.Errorf("published jobs = %d, want 0", len(pub.published))
	}
}

func TestHandleMessageValidation(t *testing.T) {
	h := newChatHandler(&fakePublisher{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"user_id": `},
		{name: "missing reply", body: `{"user_id": "u", "messages": []}`},
		{name: "bad role", body: `{"assistant_reply": "Added expense: $5.00.", "messages": [{"role": "system", "text": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleMessage(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleMessagePublishFailure(t *testing.T) {
	h := newChatHandler(&fakePublisher{err: errors.New("queue is closed")})

	body := `{
		"user_id": "user-1",
		"messages": [{"role": "user", "text": "i spent 21 on the haircut"}],
		"assistant_reply": "Added expense: $21.00 for Personal Care (Haircut)."
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestListTransactions(t *testing.T) {
	repo := memory.NewTransactionRepository()
	now := time.Now().UTC()
	seed := &domain.Transaction{
		ID:          "tx-1",
		UserID:      "user-1",
		Type:        domain.TypeExpense,
		Amount:      21.00,
		Currency:    "USD",
		Category:    domain.CategoryPersonalCare,
		Description: "Haircut",
		RecordedAt:  now.AddDate(0, 0, -1),
	}
	if err := repo.InsertTransaction(context.Background(), seed, "job-1", ""); err != nil {
		t.Fatalf("seeding repo: %v", err)
	}

	h := NewTransactionsHandler(repo, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	h.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got []*domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 1 || got[0].ID != "tx-1" {
		t.Errorf("transactions = %+v, want the seeded one", got)
	}
}

func TestListTransactionsRequiresUser(t *testing.T) {
	h := NewTransactionsHandler(memory.NewTransactionRepository(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListTransactionsBadDate(t *testing.T) {
	h := NewTransactionsHandler(memory.NewTransactionRepository(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?start_date=junk", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	h.ListTransactions(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListCategories(t *testing.T) {
	h := NewCategoriesHandler(zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListCategories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Expense []string `json:"expense"`
		Income  []string `json:"income"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Expense) != len(domain.ExpenseCategories) {
		t.Errorf("expense count = %d, want %d", len(resp.Expense), len(domain.ExpenseCategories))
	}
	if len(resp.Income) != len(domain.IncomeCategories) {
		t.Errorf("income count = %d, want %d", len(resp.Income), len(domain.IncomeCategories))
	}
}

func TestJobsHandler(t *testing.T) {
	store := inmemory.NewStore()
	job := &jobs.RecordTransactionJob{
		JobID:     "job-9",
		UserID:    "user-1",
		Status:    jobs.JobStatusCompleted,
		CreatedAt: time.Now(),
	}
	if err := store.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	h := NewJobsHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/job-9", nil), "job-9")
	if rec.Code != http.StatusOK {
		t.Errorf("GetJob status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetJob missing status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?user_id=user-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ListJobs status = %d, want 200", rec.Code)
	}
	var resp struct {
		Jobs  []*jobs.RecordTransactionJob `json:"jobs"`
		Count int                          `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 || len(resp.Jobs) != 1 || resp.Jobs[0].JobID != "job-9" {
		t.Errorf("ListJobs = %+v, want the seeded job", resp)
	}
}
