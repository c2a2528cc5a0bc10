package glucose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainerCoversEveryNutrient(t *testing.T) {
	t.Parallel()

	explainer := NewExplainer(&loadThresholds(t).ExplainMessages)

	got, err := explainer.Explain(mealMacros(30, 70, 5, 10, 2), 6.0)
	require.NoError(t, err)

	require.Len(t, got, 6)
	for _, key := range []string{"carbs", "gi", "fat", "protein", "fiber", "risk_score"} {
		assert.NotEmpty(t, got[key], "missing explanation for %s", key)
	}

	assert.Equal(t, "Moderate carbohydrate load; expect a clear glucose rise.", got["carbs"])
	assert.Equal(t, "High glycemic index; carbohydrates absorb quickly.", got["gi"])
	assert.Equal(t, "Moderate glucose risk; watch portion size and pairing.", got["risk_score"])
}

func TestExplainerBoundsAreInclusive(t *testing.T) {
	t.Parallel()

	explainer := NewExplainer(&loadThresholds(t).ExplainMessages)

	// Carbs exactly at 20 takes the light-load band; 20.1 takes the next.
	light, err := explainer.Explain(mealMacros(20, 50, 5, 10, 2), 2.0)
	require.NoError(t, err)
	moderate, err := explainer.Explain(mealMacros(20.1, 50, 5, 10, 2), 2.0)
	require.NoError(t, err)

	assert.Equal(t, "Light carbohydrate load; a small rise is likely.", light["carbs"])
	assert.Equal(t, "Moderate carbohydrate load; expect a clear glucose rise.", moderate["carbs"])
}

func TestExplainerUnknownGI(t *testing.T) {
	t.Parallel()

	explainer := NewExplainer(&loadThresholds(t).ExplainMessages)

	got, err := explainer.Explain(mealMacros(30, 0, 5, 10, 2), 5.0)
	require.NoError(t, err)
	assert.Equal(t, "Glycemic index unknown; carb speed treated as neutral.", got["gi"])
}
