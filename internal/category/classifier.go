// Package category resolves free text and semi-structured values into
// the canonical category set defined in the domain package.
package category

import (
	"strings"

	"github.com/ntarasov/finchat/internal/domain"
)

// diningMerchants lists quick-service chains whose name alone decides
// the category. Chain names are highly predictive, so they are checked
// before any keyword rule and override every other signal.
var diningMerchants = []string{
	"mcdonald",
	"burger king",
	"kfc",
	"subway",
	"taco bell",
	"wendy",
	"chipotle",
	"domino",
	"pizza hut",
	"popeyes",
	"five guys",
	"shake shack",
	"chick-fil-a",
	"in-n-out",
	"panera",
	"dunkin",
	"starbucks",
	"nando",
}

func isDiningMerchant(lower string) bool {
	for _, m := range diningMerchants {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// keywordRule binds a keyword group to one canonical category. Rules
// are walked in order and the first hit wins. When companions is
// non-empty the keywords only count if at least one companion word
// cohabits the same input; that disambiguates words like "gas", which
// can mean fuel or home heating depending on its neighbours.
type keywordRule struct {
	category   string
	keywords   []string
	companions []string
	incomeOnly bool
}

func (r keywordRule) matches(lower string) bool {
	hit := false
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	if len(r.companions) == 0 {
		return true
	}
	for _, c := range r.companions {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// classifierRules is ordered most specific first: narrow vocabularies
// are tested before general ones that would otherwise shadow them
// ("food delivery" must resolve to dining before "food" resolves to
// groceries). The ordering is part of the contract and covered by
// tests.
var classifierRules = []keywordRule{
	{category: domain.CategorySalary, incomeOnly: true, keywords: []string{
		"salary", "paycheck", "payroll", "wage", "bonus", "pension", "payday",
	}},
	{category: domain.CategoryFreelance, incomeOnly: true, keywords: []string{
		"freelance", "side income", "side hustle", "gig", "consulting",
		"commission", "contract work", "upwork", "fiverr",
	}},

	{category: domain.CategoryRent, keywords: []string{
		"rent", "mortgage", "landlord",
	}},
	{category: domain.CategoryDiningOut, keywords: []string{
		"food delivery", "takeout", "takeaway", "take-away", "delivery order",
		"uber eats", "doordash", "deliveroo", "grubhub",
	}},
	{category: domain.CategoryCoffeeSnacks, keywords: []string{
		"coffee", "cafe", "latte", "espresso", "snack", "bubble tea", "boba",
	}},
	{category: domain.CategoryDiningOut, keywords: []string{
		"restaurant", "dinner", "lunch", "brunch", "dining", "eating out",
		"pizza", "sushi", "burger", "bar tab", "pub",
	}},
	{category: domain.CategoryGroceries, keywords: []string{
		"grocer", "supermarket", "food shop", "farmers market", "butcher",
		"bakery", "produce", "food",
	}},
	{category: domain.CategoryFuel, keywords: []string{"gas"},
		companions: []string{"station", "car", "tank", "fill", "fuel", "petrol"}},
	{category: domain.CategoryUtilities, keywords: []string{"gas"},
		companions: []string{"heating", "home", "bill", "natural", "utility"}},
	{category: domain.CategoryFuel, keywords: []string{
		"fuel", "petrol", "diesel", "gasoline",
	}},
	{category: domain.CategoryRideSharing, keywords: []string{
		"uber", "lyft", "taxi", "cab ", "rideshare", "ride share", "ride hail",
	}},
	{category: domain.CategoryPublicTransit, keywords: []string{
		"bus", "train", "metro", "tram", "transit", "commute", "rail",
	}},
	{category: domain.CategoryParkingTolls, keywords: []string{
		"parking", "toll",
	}},
	{category: domain.CategoryCarMaintenance, keywords: []string{
		"car wash", "oil change", "mechanic", "car repair", "tire", "tyre",
	}},
	{category: domain.CategoryHomeMaintenance, keywords: []string{
		"plumber", "handyman", "home repair", "maintenance",
	}},
	{category: domain.CategoryTransportation, keywords: []string{
		"transport", "scooter", "bike share",
	}},
	{category: domain.CategoryUtilities, keywords: []string{
		"electric", "water bill", "power bill", "utility", "utilities",
		"sewage", "trash", "heating",
	}},
	{category: domain.CategoryInternetPhone, keywords: []string{
		"internet", "broadband", "wifi", "phone bill", "mobile plan",
		"cell phone", "sim card",
	}},
	{category: domain.CategorySubscriptions, keywords: []string{
		"subscription", "netflix", "spotify", "hulu", "disney", "hbo",
		"youtube premium", "prime membership", "patreon", "membership",
	}},
	{category: domain.CategoryEntertainment, keywords: []string{
		"movie", "cinema", "concert", "theater", "theatre", "gaming", "game",
		"festival", "museum",
	}},
	{category: domain.CategoryClothing, keywords: []string{
		"clothes", "clothing", "shoes", "sneakers", "jacket", "dress",
		"jeans", "apparel",
	}},
	{category: domain.CategoryElectronics, keywords: []string{
		"electronics", "laptop", "headphones", "gadget", "keyboard",
		"monitor", "charger",
	}},
	{category: domain.CategoryShopping, keywords: []string{
		"shopping", "amazon", "mall", "store", "shop", "online order",
		"furniture", "home decor",
	}},
	{category: domain.CategoryTravel, keywords: []string{
		"flight", "hotel", "airbnb", "vacation", "airline", "airport",
		"travel",
	}},
	{category: domain.CategoryMedical, keywords: []string{
		"doctor", "dentist", "pharmacy", "medicine", "prescription",
		"hospital", "clinic", "therapy",
	}},
	{category: domain.CategoryHealthFitness, keywords: []string{
		"gym", "fitness", "yoga", "workout", "supplements",
	}},
	{category: domain.CategoryPersonalCare, keywords: []string{
		"haircut", "barber", "salon", "spa", "manicure", "cosmetics",
		"skincare", "personal care",
	}},
	{category: domain.CategoryEducation, keywords: []string{
		"tuition", "course", "school", "university", "college", "textbook",
		"udemy", "workshop",
	}},
	{category: domain.CategoryChildcare, keywords: []string{
		"daycare", "babysit", "nanny", "childcare",
	}},
	{category: domain.CategoryPets, keywords: []string{
		"vet", "pet food", "cat litter", "dog food", "pet",
	}},
	{category: domain.CategoryGiftsDonations, keywords: []string{
		"gift", "donation", "charity", "present for",
	}},
	{category: domain.CategoryInsurance, keywords: []string{
		"insurance",
	}},
	{category: domain.CategoryDebtLoans, keywords: []string{
		"loan", "debt", "credit card payment", "lease", "installment",
		"repayment",
	}},
}

// Classify maps free descriptive text to a canonical category. It never
// fails: expenses with no match resolve to "Other" and income with no
// match resolves to "Salary". Income transactions only ever receive
// labels from the income sub-vocabulary and expenses never do.
func Classify(freeText string, txType domain.TransactionType) string {
	lower := strings.ToLower(strings.TrimSpace(freeText))
	if lower == "" {
		return domain.DefaultCategory(txType)
	}

	if txType != domain.TypeIncome && isDiningMerchant(lower) {
		return domain.CategoryDiningOut
	}

	for _, r := range classifierRules {
		if r.incomeOnly != (txType == domain.TypeIncome) {
			continue
		}
		if r.matches(lower) {
			return r.category
		}
	}

	return domain.DefaultCategory(txType)
}
