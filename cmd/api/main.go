package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ntarasov/finchat/internal/api/handlers"
	"github.com/ntarasov/finchat/internal/api/middleware"
	"github.com/ntarasov/finchat/internal/archive"
	"github.com/ntarasov/finchat/internal/chat"
	"github.com/ntarasov/finchat/internal/describe"
	infraBQ "github.com/ntarasov/finchat/internal/infra/bigquery"
	"github.com/ntarasov/finchat/internal/infra/memory"
	"github.com/ntarasov/finchat/internal/jobs"
	"github.com/ntarasov/finchat/internal/jobs/inmemory"
	"github.com/ntarasov/finchat/internal/llm"
	"github.com/ntarasov/finchat/internal/logger"
	"github.com/ntarasov/finchat/internal/notionsync"
	"github.com/ntarasov/finchat/internal/ratelimit"
)

func main() {
	// Parse command-line flags
	var (
		port     = flag.String("port", "8080", "HTTP server port")
		project  = flag.String("project", os.Getenv("BQ_PROJECT"), "GCP project for BigQuery (or set BQ_PROJECT env); in-memory store when empty")
		dataset  = flag.String("dataset", "finance", "BigQuery dataset name")
		bucket   = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for conversation snapshots (or set GCS_BUCKET env)")
		model    = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model for description polishing")
		currency = flag.String("currency", "USD", "Currency recorded on chat transactions")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	ctx := context.Background()

	// Initialize transaction repository
	var repo infraBQ.TransactionRepository
	if *project != "" {
		bqRepo, err := infraBQ.NewBigQueryTransactionRepository(ctx, *project, *dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create transaction repository")
		}
		repo = bqRepo
	} else {
		log.Warn().Msg("No BigQuery project configured - transactions kept in memory only")
		repo = memory.NewTransactionRepository()
	}
	defer repo.Close()

	// Description polishing is optional; without credentials the
	// deterministic cleanup covers it.
	var completer llm.Completer
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		completer = llm.NewGeminiCompleter(*model)
	} else {
		log.Warn().Msg("No Gemini API key configured - description polishing disabled")
	}

	extractor := chat.NewExtractor(describe.NewComposer(completer))

	// Conversation snapshot archive
	var archiver archive.Archiver
	if *bucket != "" {
		archiver = archive.NewGCSArchiver(*bucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - conversation snapshots disabled")
	}

	// Optional Notion ledger mirror
	var mirror *notionsync.Mirror
	notionToken := os.Getenv("NOTION_TOKEN")
	notionDB := os.Getenv("NOTION_DATABASE_ID")
	if notionToken != "" && notionDB != "" {
		mirror = notionsync.NewMirror(notionsync.NewNotionClient(notionToken), notionDB)
	} else {
		log.Warn().Msg("Notion mirror not configured - skipping ledger sync")
	}

	// Rate limiter with background window sweep
	limiter := ratelimit.NewLimiter(ratelimit.DefaultQuotas())
	limiter.Start()
	defer limiter.Stop()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 5, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// The recording job persists the transaction, archives the
	// conversation and mirrors the row to Notion. Only the store write
	// can fail the job; archive and mirror are best-effort.
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		recordJob, ok := job.(*jobs.RecordTransactionJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", recordJob.JobID).
			Str("transaction_id", recordJob.Transaction.ID).
			Msg("Processing recording job")

		if archiver != nil && recordJob.SnapshotURI == "" {
			uri, err := archiver.UploadSnapshot(ctx, &archive.Snapshot{
				UserID:         recordJob.UserID,
				Turns:          recordJob.Turns,
				AssistantReply: recordJob.AssistantReply,
				Transaction:    recordJob.Transaction,
			})
			if err != nil {
				log.Warn().Err(err).Str("job_id", recordJob.JobID).Msg("Failed to archive conversation snapshot")
			} else {
				recordJob.SnapshotURI = uri
			}
		}

		if err := repo.InsertTransaction(ctx, recordJob.Transaction, recordJob.JobID, recordJob.SnapshotURI); err != nil {
			log.Error().
				Err(err).
				Str("job_id", recordJob.JobID).
				Str("transaction_id", recordJob.Transaction.ID).
				Msg("Failed to store transaction")
			return err
		}

		if mirror != nil {
			if _, err := mirror.MirrorTransaction(ctx, recordJob.Transaction); err != nil {
				log.Warn().Err(err).Str("job_id", recordJob.JobID).Msg("Failed to mirror transaction to Notion")
			}
		}

		log.Info().
			Str("job_id", recordJob.JobID).
			Str("transaction_id", recordJob.Transaction.ID).
			Msg("Recording job completed")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(extractor, jobQueue, *currency, log)
	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	categoriesHandler := handlers.NewCategoriesHandler(log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Chat endpoint, gated by the chat quota
	chatRoute := middleware.RateLimit(limiter, ratelimit.RouteChat, log)(
		http.HandlerFunc(chatHandler.HandleMessage),
	)
	mux.HandleFunc("/api/chat/message", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chatRoute.ServeHTTP(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Categories endpoints
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.ListCategories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
