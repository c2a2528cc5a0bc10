package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-risk/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "meals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMeal(description string, ts time.Time, macros models.Macros) *models.Meal {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Meal{
		ID:          uuid.NewString(),
		Description: description,
		Timestamp:   ts,
		Macros:      macros,
		RiskScore:   4.2,
		RiskRating:  models.MediumRisk,
		CurveShape:  "default",
		CreatedAt:   now,
		UpdatedAt:   now,
		Source:      "manual",
	}
}

func TestSaveMealRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	ts := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	meal := testMeal("chicken burrito", ts, models.Macros{
		CarbsG: 55, GI: 60, FatG: 22, ProteinG: 35, FiberG: 6, SugarG: 4, Calories: 650,
	})
	meal.Foods = []models.Food{
		{
			Name:       "flour tortilla",
			Quantity:   "1 large",
			Macros:     models.Macros{CarbsG: 35, GI: 70, FatG: 5, ProteinG: 6, FiberG: 2, Calories: 210},
			Confidence: models.HighConfidence,
		},
		{
			Name:       "grilled chicken",
			Quantity:   "150g",
			Macros:     models.Macros{ProteinG: 28, FatG: 6, Calories: 180},
			Confidence: models.MediumConfidence,
		},
	}

	require.NoError(t, s.SaveMeal(meal))

	meals, err := s.GetMeals("", "", 10)
	require.NoError(t, err)
	require.Len(t, meals, 1)

	got := meals[0]
	assert.Equal(t, meal.ID, got.ID)
	assert.Equal(t, "chicken burrito", got.Description)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, meal.Macros, got.Macros)
	assert.Equal(t, 4.2, got.RiskScore)
	assert.Equal(t, models.MediumRisk, got.RiskRating)
	assert.Equal(t, "default", got.CurveShape)
	assert.Equal(t, "manual", got.Source)

	require.Len(t, got.Foods, 2)
	assert.Equal(t, "flour tortilla", got.Foods[0].Name)
	assert.Equal(t, models.HighConfidence, got.Foods[0].Confidence)
	assert.Equal(t, 28.0, got.Foods[1].Macros.ProteinG)
}

func TestTimestampsAreStoredAsRFC3339(t *testing.T) {
	s := newTestStorage(t)

	ts := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveMeal(testMeal("lunch", ts, models.Macros{CarbsG: 30, Calories: 400})))

	// SQLite's date functions only understand its own text formats; if
	// the bound timestamp were anything else, DATE() would return NULL
	// and every date-filtered query would come back empty.
	var stored string
	var day *string
	err := s.db.QueryRow(`SELECT timestamp, DATE(timestamp) FROM meals`).Scan(&stored, &day)
	require.NoError(t, err)

	parsed, err := time.Parse(time.RFC3339, stored)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
	require.NotNil(t, day, "DATE(timestamp) must not be NULL")
	assert.Equal(t, "2026-03-10", *day)
}

func TestGetMealsDateRangeAndLimit(t *testing.T) {
	s := newTestStorage(t)

	days := []string{"2026-03-08", "2026-03-09", "2026-03-10"}
	for _, day := range days {
		ts, err := time.Parse("2006-01-02", day)
		require.NoError(t, err)
		require.NoError(t, s.SaveMeal(testMeal("meal on "+day, ts.Add(8*time.Hour), models.Macros{CarbsG: 30, Calories: 400})))
	}

	all, err := s.GetMeals("", "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "meal on 2026-03-10", all[0].Description, "meals come back newest first")

	ranged, err := s.GetMeals("2026-03-09", "2026-03-09", 10)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "meal on 2026-03-09", ranged[0].Description)

	limited, err := s.GetMeals("", "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetMealsForDay(t *testing.T) {
	s := newTestStorage(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMeal(testMeal("dinner", day.Add(19*time.Hour), models.Macros{CarbsG: 60, Calories: 700})))
	require.NoError(t, s.SaveMeal(testMeal("breakfast", day.Add(8*time.Hour), models.Macros{CarbsG: 40, Calories: 350})))
	require.NoError(t, s.SaveMeal(testMeal("other day", day.AddDate(0, 0, 1), models.Macros{CarbsG: 10, Calories: 200})))

	meals, err := s.GetMealsForDay("2026-03-10")
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "breakfast", meals[0].Description, "day meals come back oldest first")
	assert.Equal(t, "dinner", meals[1].Description)
}

func TestDayTotals(t *testing.T) {
	s := newTestStorage(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMeal(testMeal("breakfast", day.Add(8*time.Hour), models.Macros{
		CarbsG: 40, FatG: 10, ProteinG: 20, FiberG: 5, SugarG: 12, Calories: 350,
	})))
	require.NoError(t, s.SaveMeal(testMeal("lunch", day.Add(13*time.Hour), models.Macros{
		CarbsG: 55, FatG: 18, ProteinG: 30, FiberG: 7, SugarG: 8, Calories: 600,
	})))

	totals, count, err := s.DayTotals("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 95.0, totals.CarbsG)
	assert.Equal(t, 28.0, totals.FatG)
	assert.Equal(t, 50.0, totals.ProteinG)
	assert.Equal(t, 12.0, totals.FiberG)
	assert.Equal(t, 20.0, totals.SugarG)
	assert.Equal(t, 950.0, totals.Calories)
}

func TestDayTotalsEmptyDay(t *testing.T) {
	s := newTestStorage(t)

	totals, count, err := s.DayTotals("2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, models.Macros{}, totals)
}
