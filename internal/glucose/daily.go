// internal/glucose/daily.go
package glucose

import (
	"mcp-meal-risk/internal/models"
	"mcp-meal-risk/internal/thresholds"
)

// DailyEvaluator flags macro-balance risk against the daily_targets
// section, independent of the glucose response model.
type DailyEvaluator struct {
	cfg *thresholds.DailyTargets
}

func NewDailyEvaluator(cfg *thresholds.DailyTargets) *DailyEvaluator {
	return &DailyEvaluator{cfg: cfg}
}

// EvaluateMeal checks one meal's totals against per-meal bounds derived
// from the daily targets. Gram, glycemic-load and calorie targets are
// divided by mealCount; the percentage targets apply to the meal's own
// calorie split and need no pro-ration. Returned flag names match the
// daily_targets field names, in a fixed order. mealCount must be >= 1.
func (d *DailyEvaluator) EvaluateMeal(m models.Macros, mealCount int) ([]string, error) {
	if mealCount < 1 {
		return nil, &InvalidInputError{Reason: "meal count must be at least 1"}
	}
	if err := checkMacros(m); err != nil {
		return nil, err
	}

	per := float64(mealCount)
	var flags []string

	if m.SugarG > d.cfg.SugarG/per {
		flags = append(flags, "sugar_g")
	}
	if m.GlycemicLoad() > d.cfg.GlycemicLoad/per {
		flags = append(flags, "glycemic_load")
	}
	if m.ProteinG < d.cfg.ProteinG/per {
		flags = append(flags, "protein_g")
	}

	// Percentage checks are undefined for a zero-calorie meal.
	if m.Calories > 0 {
		fatPct := m.FatG * 9 / m.Calories * 100
		if fatPct > d.cfg.FatPct {
			flags = append(flags, "fat_pct")
		}
		carbsPct := m.CarbsG * 4 / m.Calories * 100
		if carbsPct > d.cfg.CarbsPct {
			flags = append(flags, "carbs_pct")
		}
	}

	if m.Calories < d.cfg.CaloriesMin/per {
		flags = append(flags, "calories_min")
	}
	if m.Calories > d.cfg.CaloriesMax/per {
		flags = append(flags, "calories_max")
	}

	return flags, nil
}
