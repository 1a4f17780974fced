// Package chat decides whether an assistant reply confirms a financial
// transaction and, when it does, turns the surrounding conversation
// into a structured transaction record.
package chat

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ntarasov/finchat/internal/category"
	"github.com/ntarasov/finchat/internal/describe"
	"github.com/ntarasov/finchat/internal/domain"
)

// requestPhrases mark replies that ask the user for missing details.
// Such replies are never confirmations, whatever else they contain.
var requestPhrases = []string{
	"please provide",
	"please enter",
	"please share",
	"could you provide",
	"can you provide",
	"could you tell",
	"what is the",
	"what's the",
	"which category",
	"what category",
	"how much",
	"what amount",
	"would you like",
	"do you want",
	"should i",
	"shall i",
	"please confirm",
	"can you confirm",
}

// completionSignals are the past-tense verbs the assistant uses when it
// states that a transaction was recorded. "add" alone is not enough:
// "Should I add it?" must stay on the question side of the boundary.
var completionSignals = []string{
	"added",
	"recorded",
	"logged",
	"saved",
	"noted",
}

var (
	currencyAmountPattern = regexp.MustCompile(`[$€£]\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
	anyAmountPattern      = regexp.MustCompile(`\b[0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?\b`)
	categoryAfterFor      = regexp.MustCompile(`(?i)\bfor\s+([A-Za-z][A-Za-z&' -]*?)\s*(?:\(|\.|,|!|$)`)
	parentheticalPattern  = regexp.MustCompile(`\(([^)]{1,60})\)`)

	incomeWords  = []string{"income", "deposit", "earning", "received"}
	expenseWords = []string{"expense", "spending", "purchase", "spent", "cost"}
)

// Extractor turns confirmed chat exchanges into transaction records.
// It performs no external calls itself; the composer it carries may.
type Extractor struct {
	composer *describe.Composer
}

// NewExtractor creates an extractor that routes description hints
// through the given composer.
func NewExtractor(composer *describe.Composer) *Extractor {
	return &Extractor{composer: composer}
}

// Extract inspects the assistant's newest reply against the full
// transcript and returns the transaction it confirms, or nil when the
// reply is not a confirmation. A nil result is not an error: it simply
// means no transaction is recorded this turn. Ambiguity resolves to
// nil as well, since a missed record is cheaper than a wrong one.
//
// The reply text is treated as authoritative for the amount: it states
// what the assistant is about to record, so the stored amount always
// matches what the user was told.
func (e *Extractor) Extract(ctx context.Context, transcript domain.Transcript, reply string) *domain.Transaction {
	lower := strings.ToLower(reply)

	for _, p := range requestPhrases {
		if strings.Contains(lower, p) {
			return nil
		}
	}

	confirmed := false
	for _, s := range completionSignals {
		if strings.Contains(lower, s) {
			confirmed = true
			break
		}
	}
	if !confirmed {
		return nil
	}

	amount, ok := extractAmount(reply)
	if !ok {
		return nil
	}

	txType, ok := detectType(lower)
	if !ok {
		return nil
	}

	cat := recoverCategory(reply, transcript, txType)
	desc := e.recoverDescription(ctx, reply, transcript, txType, amount, cat)

	return &domain.Transaction{
		Type:        txType,
		Amount:      amount,
		Category:    cat,
		Description: desc,
	}
}

// extractAmount pulls the confirmed amount out of the reply. When the
// reply holds several numeric tokens, the one next to a currency
// symbol wins; with no currency symbol a single numeric token is
// accepted and anything else is ambiguous.
func extractAmount(reply string) (float64, bool) {
	if m := currencyAmountPattern.FindStringSubmatch(reply); m != nil {
		return parseAmount(m[1])
	}
	all := anyAmountPattern.FindAllString(reply, -1)
	if len(all) == 1 {
		return parseAmount(all[0])
	}
	return 0, false
}

func parseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return domain.RoundAmount(v), true
}

// detectType reads the transaction direction off the reply's wording.
// Wording that pulls both ways, or neither way, is ambiguous.
func detectType(lowerReply string) (domain.TransactionType, bool) {
	income := containsAny(lowerReply, incomeWords)
	expense := containsAny(lowerReply, expenseWords)

	switch {
	case income && !expense:
		return domain.TypeIncome, true
	case expense && !income:
		return domain.TypeExpense, true
	default:
		return "", false
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// recoverCategory prefers an explicit category token in the reply
// (text following "for", which the assistant echoes back already
// category-shaped, hence the normalizer). Failing that it walks the
// transcript for the most recent turn that named one, classifying it
// as free text. With no hint anywhere the type default applies.
func recoverCategory(reply string, transcript domain.Transcript, txType domain.TransactionType) string {
	if m := categoryAfterFor.FindStringSubmatch(reply); m != nil {
		token := strings.TrimSpace(m[1])
		if token != "" {
			c := category.Normalize(token)
			if keepsTypeInvariant(c, txType) {
				return c
			}
		}
	}

	if hint, ok := lastCategoryHint(transcript); ok {
		return category.Classify(hint, txType)
	}

	return domain.DefaultCategory(txType)
}

// keepsTypeInvariant rejects category candidates that would put an
// income label on an expense or the reverse.
func keepsTypeInvariant(cat string, txType domain.TransactionType) bool {
	if txType == domain.TypeIncome {
		return domain.IsIncomeCategory(cat)
	}
	return !domain.IsIncomeCategory(cat)
}

// recoverDescription prefers a short parenthetical in the reply and
// falls back to the user's own wording from the transcript. Either way
// the raw text goes through the composer, which guarantees a clean,
// bounded, non-empty label.
func (e *Extractor) recoverDescription(ctx context.Context, reply string, transcript domain.Transcript, txType domain.TransactionType, amount float64, cat string) string {
	raw := ""
	if m := parentheticalPattern.FindStringSubmatch(reply); m != nil {
		raw = strings.TrimSpace(m[1])
	}
	if raw == "" || isBareNumber(raw) {
		if hint, ok := lastUserItemHint(transcript); ok {
			raw = hint
		}
	}
	return e.composer.Compose(ctx, raw, txType, amount, cat)
}
