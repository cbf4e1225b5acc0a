package utils

import (
	"fmt"
	"strings"

	"dietvision/models"
)

const (
	SeverityInfo    = "info"
	SeverityCaution = "caution"
	SeverityHigh    = "high"
)

// AssessmentContext is what we know about the eater.
type AssessmentContext struct {
	Age              int
	HealthConditions []string
	CalorieTarget    float64 // 0 means 2000 kcal
}

// AssessMeal runs rule-based checks over one portion. Findings only appear for
// values that are present; a missing nutrient never produces a warning.
func AssessMeal(facts *models.NutritionFacts, ctx AssessmentContext) []models.Warning {
	warnings := []models.Warning{}
	if facts == nil {
		return warnings
	}
	name := strings.ToLower(facts.FoodClass)
	tags := strings.ToLower(strings.Join(facts.Tags, " "))

	kcal := facts.Calories
	if kcal <= 0 {
		kcal = 4*facts.Carbs + 4*facts.Protein + 9*facts.Fat
	}
	target := ctx.CalorieTarget
	if target <= 0 {
		target = 2000
	}

	// under 2 no added sugar is advised; otherwise flag sugars above 10% of the item's energy
	if ctx.Age > 0 && ctx.Age < 2 {
		if facts.Sugar > 0 {
			warnings = append(warnings, models.Warning{
				Code:     "added_sugars_infants",
				Severity: SeverityHigh,
				Message:  "Under age 2: avoid added sugars.",
			})
		}
	} else if kcal > 0 && facts.Sugar > 0 {
		if pct := facts.Sugar * 4 / kcal; pct >= 0.10 {
			warnings = append(warnings, models.Warning{
				Code:     "sugars_high_item",
				Severity: SeverityCaution,
				Message:  fmt.Sprintf("High sugars for this item (%.0f%% of its calories).", pct*100),
			})
		}
	}

	if share := kcal / target; share >= 0.40 {
		warnings = append(warnings, models.Warning{
			Code:     "energy_large_share",
			Severity: SeverityCaution,
			Message:  fmt.Sprintf("This portion is about %.0f%% of a %.0f kcal day.", share*100, target),
		})
	}

	if total := 4*facts.Carbs + 4*facts.Protein + 9*facts.Fat; total > 0 {
		if f := 9 * facts.Fat / total; f > 0.35 {
			warnings = append(warnings, models.Warning{
				Code:     "amdr_fat_out_of_range",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("Fat ~%.0f%% of macro calories (AMDR 20–35%%).", f*100),
			})
		}
		if p := 4 * facts.Protein / total; p < 0.10 {
			warnings = append(warnings, models.Warning{
				Code:     "amdr_protein_low",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("Protein ~%.0f%% of macro calories (AMDR 10–35%%).", p*100),
			})
		}
	}

	if kcal > 0 && facts.Carbs >= 15 && facts.Fiber > 0 && facts.Fiber/kcal*100 < 1.0 {
		warnings = append(warnings, models.Warning{
			Code:     "fiber_low_nudge",
			Severity: SeverityInfo,
			Message:  "Low dietary fiber for a carbohydrate food. Consider whole grains, fruits, or vegetables.",
		})
	}

	if isLikelyRefinedGrain(name) {
		warnings = append(warnings, models.Warning{
			Code:     "refined_grain_nudge",
			Severity: SeverityInfo,
			Message:  "Refined-grain item. Consider swapping for whole-grain options.",
		})
	}

	if ctx.Age > 0 && ctx.Age <= 13 && looksSalty(name, tags) {
		warnings = append(warnings, models.Warning{
			Code:     "sodium_child_limit",
			Severity: SeverityCaution,
			Message:  fmt.Sprintf("Likely salty. Sodium limit at age %d is %.0f mg a day.", ctx.Age, sodiumLimitByAge(ctx.Age)),
		})
	}

	for _, cond := range ctx.HealthConditions {
		c := strings.ToLower(strings.TrimSpace(cond))
		switch {
		case strings.Contains(c, "diabet"):
			if facts.Sugar >= 10 || facts.Carbs >= 30 {
				warnings = append(warnings, models.Warning{
					Code:     "condition_diabetes",
					Severity: SeverityHigh,
					Message:  fmt.Sprintf("With diabetes, watch this one: %.0f g carbs and %.0f g sugar per portion.", facts.Carbs, facts.Sugar),
				})
			}
		case containsAny(c, "hypertension", "blood pressure"):
			if looksSalty(name, tags) {
				warnings = append(warnings, models.Warning{
					Code:     "condition_sodium",
					Severity: SeverityHigh,
					Message:  "Likely high in sodium, which matters for blood pressure.",
				})
			}
		case containsAny(c, "heart", "cholesterol"):
			if facts.Fat >= 20 || looksHighSatSource(name) {
				warnings = append(warnings, models.Warning{
					Code:     "condition_fat",
					Severity: SeverityHigh,
					Message:  "High in fat or saturated-fat sources. Prefer leaner options for heart health.",
				})
			}
		case strings.Contains(c, "kidney"):
			if facts.Protein >= 30 {
				warnings = append(warnings, models.Warning{
					Code:     "condition_protein",
					Severity: SeverityCaution,
					Message:  fmt.Sprintf("%.0f g protein per portion. Check your protein allowance.", facts.Protein),
				})
			}
		case containsAny(c, "celiac", "coeliac", "gluten"):
			if containsAny(tags, "gluten") || containsAny(name, "bread", "pasta", "pizza", "noodle", "cake", "burger", "dumpling", "waffle", "pancake", "wheat") {
				warnings = append(warnings, models.Warning{
					Code:     "condition_gluten",
					Severity: SeverityHigh,
					Message:  "Probably contains gluten.",
				})
			}
		case strings.Contains(c, "lactose"):
			if containsAny(tags, "dairy") || containsAny(name, "cheese", "milk", "cream", "butter", "yogurt", "paneer") {
				warnings = append(warnings, models.Warning{
					Code:     "condition_lactose",
					Severity: SeverityCaution,
					Message:  "Probably contains dairy.",
				})
			}
		case strings.Contains(c, "nut"):
			if containsAny(tags, "nut") || containsAny(name, "peanut", "almond", "cashew", "walnut", "pecan", "satay", "pesto") {
				warnings = append(warnings, models.Warning{
					Code:     "condition_nuts",
					Severity: SeverityHigh,
					Message:  "May contain nuts.",
				})
			}
		}
	}
	return warnings
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isLikelyRefinedGrain(name string) bool {
	return containsAny(name, "white bread", "white rice", "refined flour", "maida", "cake", "pastry", "cracker", "biscuit", "donut")
}

func looksHighSatSource(name string) bool {
	return containsAny(name,
		"butter", "ghee", "cream", "cheese", "bacon", "sausage", "shortening",
		"palm oil", "coconut oil", "lard")
}

func looksSalty(name, tags string) bool {
	return containsAny(tags, "salty", "high sodium", "high-sodium", "processed") ||
		containsAny(name, "fries", "chips", "ramen", "bacon", "sausage", "pizza")
}

// sodiumLimitByAge is the daily chronic-disease risk reduction limit in mg.
func sodiumLimitByAge(age int) float64 {
	switch {
	case age > 0 && age <= 3:
		return 1200
	case age >= 4 && age <= 8:
		return 1500
	case age >= 9 && age <= 13:
		return 1800
	default:
		return 2300
	}
}
