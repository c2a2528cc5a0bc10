// internal/glucose/explainer.go
package glucose

import (
	"mcp-meal-risk/internal/models"
	"mcp-meal-risk/internal/thresholds"
)

// Explainer produces the per-nutrient interpretive messages. Every message
// comes from configuration; nothing is hardcoded here.
type Explainer struct {
	cfg *thresholds.ExplainMessages
}

func NewExplainer(cfg *thresholds.ExplainMessages) *Explainer {
	return &Explainer{cfg: cfg}
}

// Explain resolves each nutrient's configured message table against the
// meal's macros, plus the overall risk score against
// risk_score_interpretation. Keys: carbs, gi, fat, protein, fiber,
// risk_score.
func (e *Explainer) Explain(m models.Macros, riskScore float64) (map[string]string, error) {
	if err := checkMacros(m); err != nil {
		return nil, err
	}
	return map[string]string{
		"carbs":      thresholds.Resolve(e.cfg.CarbRanges, m.CarbsG),
		"gi":         thresholds.Resolve(e.cfg.GIRanges, m.GI),
		"fat":        thresholds.Resolve(e.cfg.FatRanges, m.FatG),
		"protein":    thresholds.Resolve(e.cfg.ProteinRanges, m.ProteinG),
		"fiber":      thresholds.Resolve(e.cfg.FiberRanges, m.FiberG),
		"risk_score": thresholds.Resolve(e.cfg.RiskScoreInterpretation, riskScore),
	}, nil
}
