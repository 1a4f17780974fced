// Package describe turns noisy user utterances into short, clean
// transaction labels. Composition is two-staged: an optional
// text-completion call behind a strict timeout, and a deterministic
// cleanup that the pipeline can always fall back on. Compose never
// fails and never returns an empty label.
package describe

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/ntarasov/finchat/internal/domain"
	"github.com/ntarasov/finchat/internal/llm"
)

const (
	// DefaultMaxLength bounds every label Compose returns.
	DefaultMaxLength = 50

	defaultTimeout = 10 * time.Second

	maxLabelWords         = 5
	completionTokens      = 16
	completionTemperature = 0.2
)

var (
	bareNumberPattern = regexp.MustCompile(`^[\s$€£]*\d+(?:[.,]\d+)?\s*$`)
	amountPattern     = regexp.MustCompile(`[$€£]\s*\d+(?:[.,]\d+)?|\b\d+(?:[.,]\d+)?\b`)
	fillerPattern     = regexp.MustCompile(`(?i)\b(i|i've|ive|we|just|spent|paid|bought|purchased|got|added|on|for|at|the|a|an|my|some|dollar|dollars|bucks|usd|eur|gbp|euros|pounds|quid|today|yesterday)\b`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// fillerWords disqualify an utterance from being passed through
// unchanged: their presence means the text is a sentence, not a label.
var fillerWords = map[string]bool{
	"spent": true, "paid": true, "bought": true, "purchased": true,
	"on": true, "for": true, "i": true, "i've": true, "my": true,
	"the": true, "a": true, "an": true, "dollars": true, "bucks": true,
	"usd": true, "euros": true, "pounds": true,
}

// Composer produces transaction labels. A nil completer disables the
// enhancement stage entirely; the deterministic path covers everything.
type Composer struct {
	completer llm.Completer
	timeout   time.Duration
	maxLen    int
}

// NewComposer creates a composer. completer may be nil.
func NewComposer(completer llm.Completer) *Composer {
	return &Composer{
		completer: completer,
		timeout:   defaultTimeout,
		maxLen:    DefaultMaxLength,
	}
}

// Compose returns a short human-readable label for the transaction.
// Already-clean input passes through untouched. Otherwise the
// completion service is tried, and any failure there (timeout, empty,
// malformed or over-length response) silently degrades to the
// deterministic cleanup.
func (c *Composer) Compose(ctx context.Context, rawUserText string, txType domain.TransactionType, amount float64, category string) string {
	raw := strings.TrimSpace(rawUserText)

	if c.isClean(raw) {
		return raw
	}

	if c.completer != nil && raw != "" {
		if label, ok := c.tryComplete(ctx, raw, txType, amount, category); ok {
			return label
		}
	}

	return c.fallback(raw, txType, category)
}

// isClean reports whether raw can be used as a label as-is: short, not
// a bare number, and free of sentence vocabulary.
func (c *Composer) isClean(raw string) bool {
	if raw == "" || len([]rune(raw)) > c.maxLen || bareNumberPattern.MatchString(raw) {
		return false
	}
	words := strings.Fields(raw)
	if len(words) > 2 {
		return false
	}
	for _, w := range words {
		if fillerWords[strings.ToLower(strings.Trim(w, ".,!?"))] {
			return false
		}
	}
	return true
}

// tryComplete asks the completion service for a label and validates
// the response. ok false on any failure; the error itself is never
// surfaced.
func (c *Composer) tryComplete(ctx context.Context, raw string, txType domain.TransactionType, amount float64, category string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.completer.Complete(ctx, buildLabelPrompt(raw, txType, amount, category), completionTokens, completionTemperature)
	if err != nil {
		return "", false
	}

	label := strings.TrimSpace(text)
	if label == "" || len([]rune(label)) > c.maxLen {
		return "", false
	}
	if len(strings.Fields(label)) > maxLabelWords {
		return "", false
	}
	return label, true
}

// fallback is the deterministic cleanup stage.
func (c *Composer) fallback(raw string, txType domain.TransactionType, category string) string {
	if raw == "" || bareNumberPattern.MatchString(raw) {
		return c.genericLabel(txType, category)
	}

	cleaned := amountPattern.ReplaceAllString(raw, " ")
	cleaned = fillerPattern.ReplaceAllString(cleaned, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " .,!?-")

	if len([]rune(cleaned)) < 2 {
		return c.genericLabel(txType, category)
	}

	r := []rune(cleaned)
	cleaned = strings.ToUpper(string(r[0])) + string(r[1:])

	return c.truncate(cleaned)
}

// genericLabel resolves degenerate input: the category when it carries
// information, else a label keyed by the transaction type.
func (c *Composer) genericLabel(txType domain.TransactionType, category string) string {
	if category != "" && category != domain.CategoryOther {
		return c.truncate(category)
	}
	if txType == domain.TypeIncome {
		return "Income"
	}
	return "Expense"
}

func (c *Composer) truncate(s string) string {
	r := []rune(s)
	if len(r) <= c.maxLen {
		return s
	}
	return string(r[:c.maxLen-1]) + "…"
}
