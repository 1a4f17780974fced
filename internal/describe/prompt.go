package describe

import (
	"fmt"
	"strings"

	"github.com/ntarasov/finchat/internal/domain"
)

// buildLabelPrompt renders the labelling prompt for one utterance. The
// examples pin the output shape down hard: models drift into full
// sentences without them.
func buildLabelPrompt(raw string, txType domain.TransactionType, amount float64, category string) string {
	var b strings.Builder

	b.WriteString("You label transactions for a personal finance app.\n")
	b.WriteString("\n")
	b.WriteString("Task: rewrite the user's message as a short transaction label.\n")
	b.WriteString("\n")
	b.WriteString("Rules:\n")
	b.WriteString("- 2 to 5 words.\n")
	b.WriteString("- No amounts, currency symbols, quotes or trailing punctuation.\n")
	b.WriteString("- Keep the user's wording where possible; do not invent details.\n")
	b.WriteString("- Respond with the label only, nothing else.\n")
	b.WriteString("\n")
	b.WriteString("Examples:\n")
	b.WriteString("Message: \"i spent 21 on the haircut\" -> Haircut\n")
	b.WriteString("Message: \"paid 60 bucks for groceries at aldi\" -> Groceries at Aldi\n")
	b.WriteString("Message: \"45.50 dinner with the team\" -> Dinner with team\n")
	b.WriteString("Message: \"got my freelance payment today\" -> Freelance payment\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Message: %q\n", raw)
	fmt.Fprintf(&b, "Type: %s, amount: %.2f, category: %s\n", txType, amount, category)
	b.WriteString("Label:")

	return b.String()
}
