// internal/glucose/scorer.go
package glucose

import (
	"mcp-meal-risk/internal/models"
	"mcp-meal-risk/internal/thresholds"
)

// Scorer computes a meal's numeric glucose risk score and qualitative
// rating from the glucose_scoring section of the thresholds.
type Scorer struct {
	cfg *thresholds.GlucoseScoring
}

func NewScorer(cfg *thresholds.GlucoseScoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score runs the weighted risk formula: the carb risk contribution is
// scaled by the GI speed factor, fat delay and protein tail add weighted
// risk, and the fiber buffer subtracts weighted risk. The result is floored
// at 0 and has no upper ceiling.
func (s *Scorer) Score(m models.Macros) (models.RiskResult, error) {
	if err := checkMacros(m); err != nil {
		return models.RiskResult{}, err
	}

	carbRisk := thresholds.Resolve(s.cfg.CarbRiskRanges, m.CarbsG)
	giFactor := thresholds.Resolve(s.cfg.GISpeedFactors, m.GI)
	baseCarbRisk := carbRisk * giFactor

	fatDelay := thresholds.Resolve(s.cfg.FatDelayRanges, m.FatG)
	proteinTail := thresholds.Resolve(s.cfg.ProteinTailRanges, m.ProteinG)
	fiberBuffer := thresholds.Resolve(s.cfg.FiberBufferRanges, m.FiberG)

	w := s.cfg.RiskScoreWeights
	raw := baseCarbRisk +
		w.FatDelay*fatDelay +
		w.ProteinTail*proteinTail -
		w.FiberBuffer*fiberBuffer

	score := raw
	if score < 0 {
		score = 0
	}

	rating := thresholds.Resolve(s.cfg.RiskRatingThresholds, score)

	return models.RiskResult{
		Score:  score,
		Rating: models.Rating(rating),
		Components: models.RiskComponents{
			CarbRisk:            carbRisk,
			GISpeedFactor:       giFactor,
			BaseCarbRisk:        baseCarbRisk,
			FatDelayRisk:        fatDelay,
			ProteinTailRisk:     proteinTail,
			FiberBuffer:         fiberBuffer,
			RawScoreBeforeFloor: raw,
		},
	}, nil
}
