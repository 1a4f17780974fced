// Package handlers implements the HTTP API: chat message ingestion,
// transaction reads, job status and the category listing.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ntarasov/finchat/internal/api/middleware"
	"github.com/ntarasov/finchat/internal/chat"
	"github.com/ntarasov/finchat/internal/domain"
	"github.com/ntarasov/finchat/internal/infra/bigquery"
	"github.com/ntarasov/finchat/internal/jobs"
)

// ChatHandler handles chat message ingestion.
type ChatHandler struct {
	extractor *chat.Extractor
	publisher jobs.Publisher
	currency  string
	log       zerolog.Logger
}

// NewChatHandler creates a chat handler. currency is applied to every
// recorded transaction; the chat surface has no per-message currency.
func NewChatHandler(extractor *chat.Extractor, publisher jobs.Publisher, currency string, log zerolog.Logger) *ChatHandler {
	if currency == "" {
		currency = "USD"
	}
	return &ChatHandler{
		extractor: extractor,
		publisher: publisher,
		currency:  currency,
		log:       log,
	}
}

type chatMessageRequest struct {
	UserID         string     `json:"user_id"`
	Messages       []chatTurn `json:"messages"`
	AssistantReply string     `json:"assistant_reply"`
}

type chatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// HandleMessage handles POST /api/chat/message. The reply is inspected
// for a confirmed transaction; when one is found a recording job is
// enqueued and the response reports it, otherwise the exchange is
// acknowledged with recorded=false.
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AssistantReply == "" {
		middleware.WriteError(w, http.StatusBadRequest, "assistant_reply is required")
		return
	}

	transcript := make(domain.Transcript, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := domain.Role(m.Role)
		if role != domain.RoleUser && role != domain.RoleAssistant {
			middleware.WriteError(w, http.StatusBadRequest, "message role must be user or assistant")
			return
		}
		transcript = append(transcript, domain.ConversationTurn{Role: role, Text: m.Text})
	}

	tx := h.extractor.Extract(ctx, transcript, req.AssistantReply)
	if tx == nil {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"recorded": false,
		})
		return
	}

	tx.ID = uuid.New().String()
	tx.UserID = req.UserID
	tx.Currency = h.currency
	tx.RecordedAt = time.Now().UTC()

	if err := tx.Validate(); err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Extracted transaction failed validation")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	job := &jobs.RecordTransactionJob{
		UserID:         req.UserID,
		Transaction:    tx,
		Turns:          transcript,
		AssistantReply: req.AssistantReply,
	}

	if err := h.publisher.PublishRecordTransaction(ctx, job); err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to enqueue recording job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("transaction_id", tx.ID).
		Str("category", tx.Category).
		Float64("amount", tx.Amount).
		Msg("Recording job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"recorded":    true,
		"job_id":      job.JobID,
		"transaction": tx,
	})
}

// TransactionsHandler handles transaction read endpoints.
type TransactionsHandler struct {
	repo bigquery.TransactionRepository
	log  zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(repo bigquery.TransactionRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		repo: repo,
		log:  log,
	}
}

// ListTransactions handles GET /api/transactions. The caller comes
// from the X-User-ID header; start_date and end_date default to the
// trailing year.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	query := r.URL.Query()
	startDateStr := query.Get("start_date")
	endDateStr := query.Get("end_date")

	var startDate, endDate time.Time
	var err error

	if startDateStr != "" {
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	} else {
		startDate = time.Now().AddDate(-1, 0, 0)
	}

	if endDateStr != "" {
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
		// Make the end date inclusive of the whole day.
		endDate = endDate.Add(24*time.Hour - time.Nanosecond)
	} else {
		endDate = time.Now()
	}

	transactions, err := h.repo.ListTransactionsByDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// CategoriesHandler serves the canonical category vocabulary.
type CategoriesHandler struct {
	log zerolog.Logger
}

// NewCategoriesHandler creates a categories handler.
func NewCategoriesHandler(log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{log: log}
}

// ListCategories handles GET /api/categories.
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expense": domain.ExpenseCategories,
		"income":  domain.IncomeCategories,
	})
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
