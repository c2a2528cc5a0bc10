package glucose

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mcp-meal-risk/internal/thresholds"
)

// loadThresholds loads the reference configuration shipped with the repo.
// The engine tests run against it so the numbers below track the real
// deployed tables.
func loadThresholds(t *testing.T) *thresholds.Thresholds {
	t.Helper()
	th, err := thresholds.Load("../../configs/thresholds.json")
	require.NoError(t, err)
	return th
}

func TestCheckMacrosRejectsNegatives(t *testing.T) {
	t.Parallel()

	th := loadThresholds(t)
	scorer := NewScorer(&th.GlucoseScoring)
	classifier := NewClassifier(&th.CurveClassification)
	explainer := NewExplainer(&th.ExplainMessages)

	bad := mealMacros(30, 70, 5, 10, -1)

	_, err := scorer.Score(bad)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	require.Contains(t, invalid.Reason, "fiber_g")

	_, err = classifier.Classify(bad, 5)
	require.ErrorAs(t, err, &invalid)

	_, err = explainer.Explain(bad, 5)
	require.ErrorAs(t, err, &invalid)
}
