package domain

import (
	"fmt"
	"math"
	"time"
)

// TransactionType distinguishes money coming in from money going out.
// These are the only two values the pipeline ever produces.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two permitted transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is the structured record produced when the assistant
// confirms a transaction in chat. Category is always a canonical label
// (see categories.go) and Description is a short human-readable label.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	RecordedAt  time.Time       `json:"recorded_at,omitempty"`
}

// Validate checks the invariants every extracted transaction must hold
// before it is handed to the persistence layer.
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("Transaction.Validate: invalid type %q", t.Type)
	}
	if t.Amount < 0 {
		return fmt.Errorf("Transaction.Validate: negative amount %.2f", t.Amount)
	}
	if t.Category == "" {
		return fmt.Errorf("Transaction.Validate: empty category")
	}
	if t.Type == TypeExpense && IsIncomeCategory(t.Category) {
		return fmt.Errorf("Transaction.Validate: income category %q on expense", t.Category)
	}
	if t.Description == "" {
		return fmt.Errorf("Transaction.Validate: empty description")
	}
	return nil
}

// RoundAmount rounds a monetary value to two fractional digits.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single message in a chat exchange.
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is an ordered sequence of turns, most recent last. The
// pipeline receives transcripts wholesale per request and keeps no
// transcript state of its own.
type Transcript []ConversationTurn

// Last returns the final turn of the transcript, or a zero turn if the
// transcript is empty.
func (t Transcript) Last() ConversationTurn {
	if len(t) == 0 {
		return ConversationTurn{}
	}
	return t[len(t)-1]
}
