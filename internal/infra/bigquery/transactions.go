// Package bigquery persists chat-confirmed transactions in BigQuery.
package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/ntarasov/finchat/internal/domain"
)

// TransactionRow mirrors the finance.chat_transactions schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID string `bigquery:"user_id"` // NULLABLE
	JobID  string `bigquery:"job_id"`  // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	TxType   string   `bigquery:"tx_type"`  // REQUIRED, "income" or "expense"
	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC
	Currency string   `bigquery:"currency"` // REQUIRED STRING

	Category    string `bigquery:"category"`    // REQUIRED STRING
	Description string `bigquery:"description"` // REQUIRED STRING

	Source      bigquery.NullString `bigquery:"source"`       // NULLABLE, e.g. "chat"
	SnapshotURI bigquery.NullString `bigquery:"snapshot_uri"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

// RowFromTransaction converts a domain transaction into its stored
// shape. The amount goes through big.Rat so the NUMERIC column keeps
// exact cents.
func RowFromTransaction(tx *domain.Transaction, jobID, snapshotURI string) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   tx.ID,
		UserID:          tx.UserID,
		JobID:           jobID,
		TransactionDate: civil.DateOf(tx.RecordedAt),
		TxType:          string(tx.Type),
		Amount:          new(big.Rat).SetFloat64(domain.RoundAmount(tx.Amount)),
		Currency:        tx.Currency,
		Category:        tx.Category,
		Description:     tx.Description,
		Source:          bigquery.NullString{StringVal: "chat", Valid: true},
		CreatedTS:       tx.RecordedAt,
	}
	if snapshotURI != "" {
		row.SnapshotURI = bigquery.NullString{StringVal: snapshotURI, Valid: true}
	}
	return row
}

// ToTransaction converts a stored row back into the domain shape.
func (r *TransactionRow) ToTransaction() *domain.Transaction {
	amount := 0.0
	if r.Amount != nil {
		amount, _ = r.Amount.Float64()
	}
	return &domain.Transaction{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		Type:        domain.TransactionType(r.TxType),
		Amount:      domain.RoundAmount(amount),
		Currency:    r.Currency,
		Category:    r.Category,
		Description: r.Description,
		RecordedAt:  r.CreatedTS,
	}
}
