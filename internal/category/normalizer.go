package category

import (
	"sort"
	"strings"

	"github.com/ntarasov/finchat/internal/domain"
)

// contextPhrases resolves category values that carry qualifying words.
// The table is ordered: longer, more specific phrases come before the
// generic ones at the bottom that would otherwise shadow them ("food
// delivery" must win over "food").
var contextPhrases = []struct {
	phrase   string
	category string
}{
	{"food delivery", domain.CategoryDiningOut},
	{"eating out", domain.CategoryDiningOut},
	{"dining out", domain.CategoryDiningOut},
	{"dinner out", domain.CategoryDiningOut},
	{"fast food", domain.CategoryDiningOut},
	{"take away", domain.CategoryDiningOut},
	{"takeaway", domain.CategoryDiningOut},
	{"takeout", domain.CategoryDiningOut},
	{"coffee shop", domain.CategoryCoffeeSnacks},
	{"grocery shopping", domain.CategoryGroceries},
	{"food shopping", domain.CategoryGroceries},
	{"online shopping", domain.CategoryShopping},
	{"public transport", domain.CategoryPublicTransit},
	{"public transit", domain.CategoryPublicTransit},
	{"ride sharing", domain.CategoryRideSharing},
	{"ride share", domain.CategoryRideSharing},
	{"ride hailing", domain.CategoryRideSharing},
	{"car insurance", domain.CategoryInsurance},
	{"health insurance", domain.CategoryInsurance},
	{"home insurance", domain.CategoryInsurance},
	{"car maintenance", domain.CategoryCarMaintenance},
	{"car wash", domain.CategoryCarMaintenance},
	{"oil change", domain.CategoryCarMaintenance},
	{"home maintenance", domain.CategoryHomeMaintenance},
	{"car payment", domain.CategoryDebtLoans},
	{"car lease", domain.CategoryDebtLoans},
	{"student loan", domain.CategoryDebtLoans},
	{"credit card", domain.CategoryDebtLoans},
	{"gas station", domain.CategoryFuel},
	{"gas bill", domain.CategoryUtilities},
	{"natural gas", domain.CategoryUtilities},
	{"electric bill", domain.CategoryUtilities},
	{"water bill", domain.CategoryUtilities},
	{"phone bill", domain.CategoryInternetPhone},
	{"side income", domain.CategoryFreelance},
	{"side hustle", domain.CategoryFreelance},
	{"personal care", domain.CategoryPersonalCare},
	{"health and fitness", domain.CategoryHealthFitness},
	{"gifts and donations", domain.CategoryGiftsDonations},
	{"food", domain.CategoryGroceries},
	{"shopping", domain.CategoryShopping},
	{"insurance", domain.CategoryInsurance},
	{"transport", domain.CategoryTransportation},
}

// synonyms maps common category variants to canonical labels. Used for
// exact lookup first and two-way substring containment after.
var synonyms = map[string]string{
	"groceries":     domain.CategoryGroceries,
	"grocery":       domain.CategoryGroceries,
	"supermarket":   domain.CategoryGroceries,
	"restaurant":    domain.CategoryDiningOut,
	"restaurants":   domain.CategoryDiningOut,
	"dining":        domain.CategoryDiningOut,
	"eatery":        domain.CategoryDiningOut,
	"coffee":        domain.CategoryCoffeeSnacks,
	"snacks":        domain.CategoryCoffeeSnacks,
	"cafe":          domain.CategoryCoffeeSnacks,
	"rent":          domain.CategoryRent,
	"housing":       domain.CategoryRent,
	"mortgage":      domain.CategoryRent,
	"utilities":     domain.CategoryUtilities,
	"utility":       domain.CategoryUtilities,
	"electricity":   domain.CategoryUtilities,
	"power":         domain.CategoryUtilities,
	"internet":      domain.CategoryInternetPhone,
	"phone":         domain.CategoryInternetPhone,
	"mobile":        domain.CategoryInternetPhone,
	"broadband":     domain.CategoryInternetPhone,
	"fuel":          domain.CategoryFuel,
	"petrol":        domain.CategoryFuel,
	"gasoline":      domain.CategoryFuel,
	"transit":       domain.CategoryPublicTransit,
	"commute":       domain.CategoryPublicTransit,
	"bus":           domain.CategoryPublicTransit,
	"train":         domain.CategoryPublicTransit,
	"metro":         domain.CategoryPublicTransit,
	"taxi":          domain.CategoryRideSharing,
	"uber":          domain.CategoryRideSharing,
	"lyft":          domain.CategoryRideSharing,
	"cab":           domain.CategoryRideSharing,
	"parking":       domain.CategoryParkingTolls,
	"toll":          domain.CategoryParkingTolls,
	"tolls":         domain.CategoryParkingTolls,
	"subscription":  domain.CategorySubscriptions,
	"subscriptions": domain.CategorySubscriptions,
	"streaming":     domain.CategorySubscriptions,
	"netflix":       domain.CategorySubscriptions,
	"spotify":       domain.CategorySubscriptions,
	"clothes":       domain.CategoryClothing,
	"clothing":      domain.CategoryClothing,
	"apparel":       domain.CategoryClothing,
	"shoes":         domain.CategoryClothing,
	"electronics":   domain.CategoryElectronics,
	"gadgets":       domain.CategoryElectronics,
	"entertainment": domain.CategoryEntertainment,
	"movies":        domain.CategoryEntertainment,
	"cinema":        domain.CategoryEntertainment,
	"games":         domain.CategoryEntertainment,
	"travel":        domain.CategoryTravel,
	"vacation":      domain.CategoryTravel,
	"holiday":       domain.CategoryTravel,
	"flights":       domain.CategoryTravel,
	"hotel":         domain.CategoryTravel,
	"medical":       domain.CategoryMedical,
	"healthcare":    domain.CategoryMedical,
	"doctor":        domain.CategoryMedical,
	"pharmacy":      domain.CategoryMedical,
	"medicine":      domain.CategoryMedical,
	"dental":        domain.CategoryMedical,
	"health":        domain.CategoryHealthFitness,
	"fitness":       domain.CategoryHealthFitness,
	"gym":           domain.CategoryHealthFitness,
	"wellness":      domain.CategoryHealthFitness,
	"grooming":      domain.CategoryPersonalCare,
	"haircut":       domain.CategoryPersonalCare,
	"beauty":        domain.CategoryPersonalCare,
	"salon":         domain.CategoryPersonalCare,
	"education":     domain.CategoryEducation,
	"school":        domain.CategoryEducation,
	"tuition":       domain.CategoryEducation,
	"course":        domain.CategoryEducation,
	"courses":       domain.CategoryEducation,
	"childcare":     domain.CategoryChildcare,
	"daycare":       domain.CategoryChildcare,
	"pets":          domain.CategoryPets,
	"pet":           domain.CategoryPets,
	"vet":           domain.CategoryPets,
	"gifts":         domain.CategoryGiftsDonations,
	"gift":          domain.CategoryGiftsDonations,
	"donations":     domain.CategoryGiftsDonations,
	"donation":      domain.CategoryGiftsDonations,
	"charity":       domain.CategoryGiftsDonations,
	"loan":          domain.CategoryDebtLoans,
	"loans":         domain.CategoryDebtLoans,
	"debt":          domain.CategoryDebtLoans,
	"lease":         domain.CategoryDebtLoans,
	"car":           domain.CategoryTransportation,
	"auto":          domain.CategoryTransportation,
	"transportation": domain.CategoryTransportation,
	"maintenance":   domain.CategoryHomeMaintenance,
	"repairs":       domain.CategoryHomeMaintenance,
	"repair":        domain.CategoryHomeMaintenance,
	"salary":        domain.CategorySalary,
	"wages":         domain.CategorySalary,
	"wage":          domain.CategorySalary,
	"paycheck":      domain.CategorySalary,
	"payroll":       domain.CategorySalary,
	"income":        domain.CategorySalary,
	"freelance":     domain.CategoryFreelance,
	"freelancing":   domain.CategoryFreelance,
	"gig":           domain.CategoryFreelance,
	"consulting":    domain.CategoryFreelance,
	"misc":          domain.CategoryOther,
	"miscellaneous": domain.CategoryOther,
	"other":         domain.CategoryOther,
	"uncategorized": domain.CategoryOther,
	"general":       domain.CategoryOther,
}

// synonymKeys is the sorted key list used by the containment tier so
// lookups stay deterministic regardless of map iteration order.
var synonymKeys = func() []string {
	keys := make([]string, 0, len(synonyms))
	for k := range synonyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// Normalize canonicalizes a category value that already arrived
// category-shaped (operator-entered or echoed back by the assistant)
// rather than as free descriptive text.
func Normalize(rawCategory string) string {
	c, _ := Resolve(rawCategory)
	return c
}

// Resolve is Normalize plus a flag reporting whether any dictionary
// tier matched. Tiers, first hit wins: merchant override, ordered
// context phrases, exact synonym lookup, two-way substring containment
// against the synonym dictionary, and finally a casing heuristic.
// Unrecognized values keep their re-cased text instead of collapsing
// to "Other": the input is assumed to already be a category-like
// token, so a plausible unknown label is preserved.
func Resolve(rawCategory string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(rawCategory))
	if lower == "" {
		return domain.CategoryOther, false
	}

	if isDiningMerchant(lower) {
		return domain.CategoryDiningOut, true
	}

	for _, p := range contextPhrases {
		if strings.Contains(lower, p.phrase) {
			return p.category, true
		}
	}

	if c, ok := synonyms[lower]; ok {
		return c, true
	}

	// Containment runs both ways: the raw value may embed a known
	// variant ("monthly groceries") or abbreviate one ("subscr").
	// Keys shorter than four runes only match exactly; values shorter
	// than three are too ambiguous to contain a key.
	if len(lower) >= 3 {
		for _, k := range synonymKeys {
			if len(k) < 4 {
				continue
			}
			if strings.Contains(lower, k) || strings.Contains(k, lower) {
				return synonyms[k], true
			}
		}
	}

	return recase(rawCategory), false
}

// recase applies the fallback casing rule: all-uppercase input is
// title-cased, anything else gets a capital first letter with the rest
// lowercased.
func recase(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.CategoryOther
	}
	if trimmed == strings.ToUpper(trimmed) {
		words := strings.Fields(strings.ToLower(trimmed))
		for i, w := range words {
			r := []rune(w)
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
			words[i] = string(r)
		}
		return strings.Join(words, " ")
	}
	r := []rune(trimmed)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
