package domain

import "strings"

// Canonical category labels. Classification and normalization always
// resolve into this closed set; it is not extensible at request time.
const (
	CategoryRent            = "Rent"
	CategoryUtilities       = "Utilities"
	CategoryInternetPhone   = "Internet & Phone"
	CategoryHomeMaintenance = "Home Maintenance"
	CategoryGroceries       = "Groceries"
	CategoryDiningOut       = "Dining Out"
	CategoryCoffeeSnacks    = "Coffee & Snacks"
	CategoryTransportation  = "Transportation"
	CategoryFuel            = "Fuel"
	CategoryPublicTransit   = "Public Transit"
	CategoryRideSharing     = "Ride Sharing"
	CategoryCarMaintenance  = "Car Maintenance"
	CategoryParkingTolls    = "Parking & Tolls"
	CategorySubscriptions   = "Subscriptions"
	CategoryShopping        = "Shopping"
	CategoryClothing        = "Clothing"
	CategoryElectronics     = "Electronics"
	CategoryEntertainment   = "Entertainment"
	CategoryTravel          = "Travel"
	CategoryMedical         = "Medical"
	CategoryHealthFitness   = "Health & Fitness"
	CategoryPersonalCare    = "Personal Care"
	CategoryEducation       = "Education"
	CategoryChildcare       = "Childcare"
	CategoryPets            = "Pets"
	CategoryGiftsDonations  = "Gifts & Donations"
	CategoryInsurance       = "Insurance"
	CategoryDebtLoans       = "Debt & Loans"
	CategoryOther           = "Other"

	CategorySalary    = "Salary"
	CategoryFreelance = "Freelance & Side Income"
)

// ExpenseCategories lists every canonical expense label. "Other" is the
// universal fallback for expenses with no match.
var ExpenseCategories = []string{
	CategoryRent,
	CategoryUtilities,
	CategoryInternetPhone,
	CategoryHomeMaintenance,
	CategoryGroceries,
	CategoryDiningOut,
	CategoryCoffeeSnacks,
	CategoryTransportation,
	CategoryFuel,
	CategoryPublicTransit,
	CategoryRideSharing,
	CategoryCarMaintenance,
	CategoryParkingTolls,
	CategorySubscriptions,
	CategoryShopping,
	CategoryClothing,
	CategoryElectronics,
	CategoryEntertainment,
	CategoryTravel,
	CategoryMedical,
	CategoryHealthFitness,
	CategoryPersonalCare,
	CategoryEducation,
	CategoryChildcare,
	CategoryPets,
	CategoryGiftsDonations,
	CategoryInsurance,
	CategoryDebtLoans,
	CategoryOther,
}

// IncomeCategories lists the income sub-vocabulary. Income has no
// generic bucket; unmatched income defaults to "Salary".
var IncomeCategories = []string{
	CategorySalary,
	CategoryFreelance,
}

var canonicalSet = func() map[string]bool {
	set := make(map[string]bool, len(ExpenseCategories)+len(IncomeCategories))
	for _, c := range ExpenseCategories {
		set[c] = true
	}
	for _, c := range IncomeCategories {
		set[c] = true
	}
	return set
}()

// IsCanonicalCategory reports whether label belongs to the canonical
// category set (exact match, case-sensitive).
func IsCanonicalCategory(label string) bool {
	return canonicalSet[label]
}

// IsIncomeCategory reports whether label belongs to the income
// sub-vocabulary. Income labels are never assigned to expenses.
func IsIncomeCategory(label string) bool {
	for _, c := range IncomeCategories {
		if strings.EqualFold(c, label) {
			return true
		}
	}
	return false
}

// DefaultCategory returns the fallback label for a transaction type:
// "Salary" for income, "Other" for expenses.
func DefaultCategory(t TransactionType) string {
	if t == TypeIncome {
		return CategorySalary
	}
	return CategoryOther
}
