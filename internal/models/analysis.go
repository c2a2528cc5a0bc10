// internal/models/analysis.go
package models

type Rating string

const (
	LowRisk      Rating = "low"
	MediumRisk   Rating = "medium"
	HighRisk     Rating = "high"
	VeryHighRisk Rating = "very_high"
)

// RiskComponents is the per-factor breakdown behind a risk score.
type RiskComponents struct {
	CarbRisk            float64 `json:"carb_risk"`
	GISpeedFactor       float64 `json:"gi_speed_factor"`
	BaseCarbRisk        float64 `json:"base_carb_risk"`
	FatDelayRisk        float64 `json:"fat_delay_risk"`
	ProteinTailRisk     float64 `json:"protein_tail_risk"`
	FiberBuffer         float64 `json:"fiber_buffer"`
	RawScoreBeforeFloor float64 `json:"raw_score_before_floor"`
}

// RiskResult is the output of glucose risk scoring. Score is floored at 0
// and has no upper ceiling.
type RiskResult struct {
	Score      float64        `json:"risk_score"`
	Rating     Rating         `json:"risk_rating"`
	Components RiskComponents `json:"components"`
}

// CurveResult is the output of curve-shape classification. Description has
// already had its placeholders substituted.
type CurveResult struct {
	Shape       string `json:"curve_shape"`
	Label       string `json:"curve_label"`
	Description string `json:"curve_description"`
}

// MealAnalysis bundles all engine outputs for one meal.
type MealAnalysis struct {
	Macros       Macros            `json:"input_meal"`
	Risk         RiskResult        `json:"risk"`
	Curve        CurveResult       `json:"curve"`
	Explanations map[string]string `json:"explanations"`
}
