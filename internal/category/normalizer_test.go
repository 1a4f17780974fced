package category

import (
	"testing"

	"github.com/ntarasov/finchat/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "phrase beats generic word",
			input: "FOOD DELIVERY",
			want:  domain.CategoryDiningOut,
		},
		{
			name:  "generic food maps to groceries",
			input: "FOOD",
			want:  domain.CategoryGroceries,
		},
		{
			name:  "exact synonym",
			input: "groceries",
			want:  domain.CategoryGroceries,
		},
		{
			name:  "case insensitive exact synonym",
			input: "ReStAuRaNt",
			want:  domain.CategoryDiningOut,
		},
		{
			name:  "chain name",
			input: "Burger King",
			want:  domain.CategoryDiningOut,
		},
		{
			name:  "canonical label round trips",
			input: "Personal Care",
			want:  domain.CategoryPersonalCare,
		},
		{
			name:  "gas station phrase",
			input: "gas station",
			want:  domain.CategoryFuel,
		},
		{
			name:  "gas bill phrase",
			input: "GAS BILL",
			want:  domain.CategoryUtilities,
		},
		{
			name:  "raw value containing a synonym",
			input: "monthly groceries run",
			want:  domain.CategoryGroceries,
		},
		{
			name:  "raw value contained in a synonym",
			input: "subscr",
			want:  domain.CategorySubscriptions,
		},
		{
			name:  "income synonym",
			input: "paycheck",
			want:  domain.CategorySalary,
		},
		{
			name:  "unknown value keeps capitalized form",
			input: "windsurfing lessons fund",
			want:  "Windsurfing lessons fund",
		},
		{
			name:  "unknown all caps value is title cased",
			input: "WIZARDRY SUPPLIES",
			want:  "Wizardry Supplies",
		},
		{
			name:  "empty value falls back to Other",
			input: "   ",
			want:  domain.CategoryOther,
		},
		{
			name:  "car maintenance stays off home maintenance",
			input: "Car Maintenance",
			want:  domain.CategoryCarMaintenance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Every canonical label must normalize back to itself so values echoed
// by the assistant never drift.
func TestNormalizeCanonicalRoundTrip(t *testing.T) {
	labels := append([]string{}, domain.ExpenseCategories...)
	labels = append(labels, domain.IncomeCategories...)

	for _, label := range labels {
		if got := Normalize(label); got != label {
			t.Errorf("Normalize(%q) = %q, want unchanged", label, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"FOOD DELIVERY", "groceries", "unknown label", "GAS BILL", "subscr"}
	for _, in := range inputs {
		first := Normalize(in)
		if got := Normalize(first); got != first {
			t.Errorf("Normalize not stable for %q: %q then %q", in, first, got)
		}
	}
}

func TestResolveReportsMatch(t *testing.T) {
	if _, ok := Resolve("groceries"); !ok {
		t.Error("Resolve(groceries) reported no match")
	}
	if _, ok := Resolve("completely made up thing"); ok {
		t.Error("Resolve reported a match for unrecognized input")
	}
}

func TestRecase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"UPPER CASE VALUE", "Upper Case Value"},
		{"mixed Case value", "Mixed case value"},
		{"single", "Single"},
	}
	for _, tt := range tests {
		if got := recase(tt.in); got != tt.want {
			t.Errorf("recase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
