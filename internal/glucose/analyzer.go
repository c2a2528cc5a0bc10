// internal/glucose/analyzer.go
package glucose

import (
	"mcp-meal-risk/internal/models"
	"mcp-meal-risk/internal/thresholds"
)

// Analyzer bundles the scorer, classifier and explainer behind one call,
// for callers that want the full picture of a meal.
type Analyzer struct {
	scorer     *Scorer
	classifier *Classifier
	explainer  *Explainer
}

func NewAnalyzer(cfg *thresholds.Thresholds) *Analyzer {
	return &Analyzer{
		scorer:     NewScorer(&cfg.GlucoseScoring),
		classifier: NewClassifier(&cfg.CurveClassification),
		explainer:  NewExplainer(&cfg.ExplainMessages),
	}
}

// Analyze scores the meal, classifies its curve shape using that score,
// and resolves the explanation messages.
func (a *Analyzer) Analyze(m models.Macros) (models.MealAnalysis, error) {
	risk, err := a.scorer.Score(m)
	if err != nil {
		return models.MealAnalysis{}, err
	}
	curve, err := a.classifier.Classify(m, risk.Score)
	if err != nil {
		return models.MealAnalysis{}, err
	}
	explanations, err := a.explainer.Explain(m, risk.Score)
	if err != nil {
		return models.MealAnalysis{}, err
	}
	return models.MealAnalysis{
		Macros:       m,
		Risk:         risk,
		Curve:        curve,
		Explanations: explanations,
	}, nil
}
