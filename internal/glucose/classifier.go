// internal/glucose/classifier.go
package glucose

import (
	"strconv"
	"strings"

	"mcp-meal-risk/internal/models"
	"mcp-meal-risk/internal/thresholds"
)

// Classifier picks the expected glucose-curve shape for a meal.
//
// Rules are evaluated in a fixed priority order, not in the order they
// appear in configuration: very_low_carb_max, delayed_spike, double_hump,
// blunted_spike, spike_then_dip, default. Rules are not mutually exclusive,
// so the precedence list is the tie-breaker; the first rule whose declared
// thresholds all hold wins. The default rule has no thresholds and always
// matches, so every meal classifies to something.
type Classifier struct {
	cfg *thresholds.CurveClassification
}

func NewClassifier(cfg *thresholds.CurveClassification) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the winning rule's name, label, and description with
// {carbs}, {fiber} and {risk_score} substituted. riskScore is the meal's
// separately computed risk score.
func (c *Classifier) Classify(m models.Macros, riskScore float64) (models.CurveResult, error) {
	if err := checkMacros(m); err != nil {
		return models.CurveResult{}, err
	}

	ordered := []struct {
		name string
		rule thresholds.CurveRule
	}{
		{"very_low_carb_max", c.cfg.VeryLowCarbMax},
		{"delayed_spike", c.cfg.DelayedSpike},
		{"double_hump", c.cfg.DoubleHump},
		{"blunted_spike", c.cfg.BluntedSpike},
		{"spike_then_dip", c.cfg.SpikeThenDip},
		{"default", c.cfg.Default},
	}

	for _, entry := range ordered {
		if !ruleMatches(entry.rule, m) {
			continue
		}
		return models.CurveResult{
			Shape:       entry.name,
			Label:       entry.rule.Label,
			Description: renderDescription(entry.rule.Description, m, riskScore),
		}, nil
	}

	// unreachable: the default rule has no thresholds
	return models.CurveResult{}, nil
}

// ruleMatches checks every declared threshold of the rule against the
// meal's macros. Comparisons are inclusive on both ends.
func ruleMatches(r thresholds.CurveRule, m models.Macros) bool {
	checks := []struct {
		min, max *float64
		value    float64
	}{
		{r.MinCarbs, r.MaxCarbs, m.CarbsG},
		{r.MinGI, r.MaxGI, m.GI},
		{r.MinFat, r.MaxFat, m.FatG},
		{r.MinProtein, r.MaxProtein, m.ProteinG},
		{r.MinFiber, r.MaxFiber, m.FiberG},
	}
	for _, c := range checks {
		if c.min != nil && c.value < *c.min {
			return false
		}
		if c.max != nil && c.value > *c.max {
			return false
		}
	}
	return true
}

// renderDescription substitutes the three documented placeholders. Unknown
// placeholders were already rejected at config load, so plain literal
// replacement is enough here.
func renderDescription(desc string, m models.Macros, riskScore float64) string {
	return strings.NewReplacer(
		"{carbs}", strconv.Itoa(int(m.CarbsG)),
		"{fiber}", strconv.Itoa(int(m.FiberG)),
		"{risk_score}", strconv.FormatFloat(riskScore, 'f', 1, 64),
	).Replace(desc)
}
