// internal/thresholds/thresholds.go

// Package thresholds loads and validates the externally supplied scoring
// configuration. The document is JSON with four required sections
// (daily_targets, glucose_scoring, curve_classification, explain_messages);
// every structural problem is reported at load time, and a loaded document
// is immutable for the life of the process.
package thresholds

// Range is one entry of an ordered range table: an inclusive upper bound
// paired with a payload. A nil Max marks the terminal, unbounded entry.
type Range[T any] struct {
	Max     *float64
	Payload T
}

// Resolve returns the payload of the first entry whose bound is >= value,
// or the terminal entry's payload if no finite bound matches. Lookups are
// inclusive of the bound. Tables produced by Load always terminate with an
// unbounded entry, so Resolve is total for them.
func Resolve[T any](table []Range[T], value float64) T {
	for _, r := range table {
		if r.Max == nil || value <= *r.Max {
			return r.Payload
		}
	}
	var zero T
	return zero
}

// Thresholds is the validated configuration document.
type Thresholds struct {
	Version             int
	DailyTargets        DailyTargets
	GlucoseScoring      GlucoseScoring
	CurveClassification CurveClassification
	ExplainMessages     ExplainMessages
}

// DailyTargets holds per-day nutrient ceilings and floors. Gram, glycemic
// load and calorie targets are pro-rated by meal count before use; the
// percentage targets apply to a meal's own calorie split.
type DailyTargets struct {
	SugarG       float64
	GlycemicLoad float64
	ProteinG     float64
	FatPct       float64
	CarbsPct     float64
	CaloriesMin  float64
	CaloriesMax  float64
}

// Weights are the multipliers of the risk formula's delay, tail and buffer
// components. FiberBuffer is subtractive.
type Weights struct {
	FatDelay    float64
	ProteinTail float64
	FiberBuffer float64
}

type GlucoseScoring struct {
	CarbRiskRanges       []Range[float64]
	GISpeedFactors       []Range[float64]
	FatDelayRanges       []Range[float64]
	ProteinTailRanges    []Range[float64]
	FiberBufferRanges    []Range[float64]
	RiskScoreWeights     Weights
	RiskRatingThresholds []Range[string]
}

// CurveRule is one named curve-shape predicate. A threshold that is nil was
// not declared and does not constrain the rule. Description may contain the
// {carbs}, {fiber} and {risk_score} placeholders.
type CurveRule struct {
	MinCarbs   *float64
	MaxCarbs   *float64
	MinGI      *float64
	MaxGI      *float64
	MinFat     *float64
	MaxFat     *float64
	MinProtein *float64
	MaxProtein *float64
	MinFiber   *float64
	MaxFiber   *float64

	Label       string
	Description string
}

type CurveClassification struct {
	VeryLowCarbMax CurveRule
	DelayedSpike   CurveRule
	DoubleHump     CurveRule
	BluntedSpike   CurveRule
	SpikeThenDip   CurveRule
	Default        CurveRule
}

type ExplainMessages struct {
	CarbRanges              []Range[string]
	GIRanges                []Range[string]
	FatRanges               []Range[string]
	ProteinRanges           []Range[string]
	FiberRanges             []Range[string]
	RiskScoreInterpretation []Range[string]
}
