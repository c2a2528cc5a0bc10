// internal/models/meal.go
package models

import (
	"time"
)

type Meal struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Foods       []Food    `json:"foods,omitempty"`
	Macros      Macros    `json:"macros"`
	RiskScore   float64   `json:"risk_score"`
	RiskRating  Rating    `json:"risk_rating"`
	CurveShape  string    `json:"curve_shape"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Source      string    `json:"source"` // "manual", "ai_estimated"
}

type Food struct {
	Name       string          `json:"name"`
	Quantity   string          `json:"quantity"`
	Macros     Macros          `json:"macros"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// Macros is a meal's aggregated macronutrient totals, the input to every
// scoring and classification call.
type Macros struct {
	CarbsG   float64 `json:"carbs_g"`
	GI       float64 `json:"gi"`
	FatG     float64 `json:"fat_g"`
	ProteinG float64 `json:"protein_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	Calories float64 `json:"calories"`
}

// GlycemicLoad derives the meal's glycemic load from GI and carb grams
// (GL = GI x carbs / 100).
func (m Macros) GlycemicLoad() float64 {
	return m.GI * m.CarbsG / 100.0
}

type ConfidenceLevel string

const (
	HighConfidence   ConfidenceLevel = "high"
	MediumConfidence ConfidenceLevel = "medium"
	LowConfidence    ConfidenceLevel = "low"
)

type MacroEstimationRequest struct {
	MealDescription   string `json:"meal_description"`
	AskClarifications bool   `json:"ask_clarifications"`
}

type MacroEstimationResponse struct {
	Foods          []Food          `json:"foods"`
	Totals         Macros          `json:"totals"`
	Confidence     ConfidenceLevel `json:"confidence"`
	Clarifications []string        `json:"clarifications,omitempty"`
	NeedsMoreInfo  bool            `json:"needs_more_info"`
}
