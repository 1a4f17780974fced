package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/ntarasov/finchat/internal/domain"
)

const (
	transactionsTable = "chat_transactions"
	dateFormat        = "2006-01-02"
)

// TransactionRepository is the persistence contract the job handler and
// the read API depend on. The in-memory implementation backs tests and
// local runs.
type TransactionRepository interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction, jobID, snapshotURI string) error
	ListTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error)
	Close() error
}

// BigQueryTransactionRepository implements TransactionRepository on top
// of a shared BigQuery client, so each operation does not open its own
// connection.
type BigQueryTransactionRepository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewBigQueryTransactionRepository creates a repository bound to the
// given project and dataset.
func NewBigQueryTransactionRepository(ctx context.Context, projectID, datasetID string) (*BigQueryTransactionRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryTransactionRepository: creating client: %w", err)
	}
	return &BigQueryTransactionRepository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryTransactionRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransaction delegates to InsertTransactionRowsWithClient with
// the shared client.
func (r *BigQueryTransactionRepository) InsertTransaction(ctx context.Context, tx *domain.Transaction, jobID, snapshotURI string) error {
	row := RowFromTransaction(tx, jobID, snapshotURI)
	return InsertTransactionRowsWithClient(ctx, r.client, r.projectID, r.datasetID, []*TransactionRow{row})
}

// ListTransactionsByDateRange delegates to the query function with the
// shared client.
func (r *BigQueryTransactionRepository) ListTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := QueryTransactionsByDateRangeWithClient(ctx, r.client, r.projectID, r.datasetID, userID, start, end)
	if err != nil {
		return nil, err
	}
	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.ToTransaction())
	}
	return txs, nil
}

// InsertTransactionRowsWithClient inserts a batch of TransactionRow
// using the provided BigQuery client.
func InsertTransactionRowsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Fully qualified table name to avoid project ID ambiguity.
	table := client.DatasetInProject(projectID, datasetID).Table(transactionsTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactionRows: inserting rows: %w", err)
	}

	return nil
}

// QueryTransactionsByDateRangeWithClient queries one user's
// transactions within the date range, oldest first.
func QueryTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string, start, end time.Time) ([]*TransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.user_id,
			t.job_id,
			t.transaction_date,
			t.tx_type,
			t.amount,
			t.currency,
			t.category,
			t.description,
			t.source,
			t.snapshot_uri,
			t.created_ts
		FROM %s.%s t
		WHERE t.user_id = @user_id
		  AND t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		ORDER BY t.transaction_date, t.created_ts
	`, datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: start.Format(dateFormat)},
		{Name: "end_date", Value: end.Format(dateFormat)},
	}
	q.DefaultProjectID = projectID

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
