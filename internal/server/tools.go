// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/google/uuid"

	"mcp-meal-risk/internal/models"
)

type LogMealParams struct {
	Description string         `json:"description" description:"Description of the meal eaten"`
	Timestamp   string         `json:"timestamp,omitempty" description:"ISO timestamp of when meal was eaten (defaults to now)"`
	Macros      *models.Macros `json:"macros,omitempty" description:"Meal macro totals; omitted macros are estimated from the description"`
}

type AnalyzeMealParams struct {
	Macros models.Macros `json:"macros" description:"Meal macro totals to analyze"`
}

type GetMealsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for meal query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for meal query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

type CheckDayParams struct {
	Date string `json:"date,omitempty" description:"Day to check against daily targets (YYYY-MM-DD, defaults to today)"`
}

type EstimateMacrosParams struct {
	MealDescription   string `json:"meal_description" description:"Description of the meal to analyze"`
	AskClarifications bool   `json:"ask_clarifications" description:"Whether to ask clarifying questions if needed"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

// handleLogMeal scores, classifies and persists one meal. Macros may be
// given directly or estimated from the description.
func (s *MealRiskServer) handleLogMeal(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Description == "" {
		return nil, fmt.Errorf("meal description is required")
	}

	var timestamp time.Time
	var err error
	if params.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp format: %w", err)
		}
	} else {
		timestamp = time.Now()
	}

	var macros models.Macros
	var foods []models.Food
	source := "manual"

	if params.Macros != nil {
		macros = *params.Macros
	} else {
		estReq := &models.MacroEstimationRequest{
			MealDescription:   params.Description,
			AskClarifications: true,
		}
		estimate, err := s.estimator.EstimateMacros(context.Background(), estReq)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate macros: %w", err)
		}

		if estimate.NeedsMoreInfo && len(estimate.Clarifications) > 0 {
			result := map[string]interface{}{
				"needs_clarification":  true,
				"clarifications":       estimate.Clarifications,
				"preliminary_analysis": estimate,
			}
			return s.createJSONResponse(result)
		}

		macros = estimate.Totals
		foods = estimate.Foods
		source = "ai_estimated"
	}

	analysis, err := s.analyzer.Analyze(macros)
	if err != nil {
		return nil, err
	}

	meal := &models.Meal{
		ID:          uuid.NewString(),
		Description: params.Description,
		Timestamp:   timestamp,
		Foods:       foods,
		Macros:      macros,
		RiskScore:   analysis.Risk.Score,
		RiskRating:  analysis.Risk.Rating,
		CurveShape:  analysis.Curve.Shape,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Source:      source,
	}

	if err := s.storage.SaveMeal(meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	s.logger.Info("meal logged",
		"meal_id", meal.ID,
		"risk_rating", meal.RiskRating,
		"curve_shape", meal.CurveShape,
	)

	return s.createJSONResponse(map[string]interface{}{
		"meal":     meal,
		"analysis": analysis,
	})
}

// handleAnalyzeMeal runs the full engine without logging the meal.
func (s *MealRiskServer) handleAnalyzeMeal(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	analysis, err := s.analyzer.Analyze(params.Macros)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(analysis)
}

// handleGetMeals retrieves meals from storage
func (s *MealRiskServer) handleGetMeals(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	meals, err := s.storage.GetMeals(params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}

	return s.createJSONResponse(meals)
}

// handleCheckDay flags each of a day's meals against the daily targets,
// pro-rated by that day's meal count.
func (s *MealRiskServer) handleCheckDay(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CheckDayParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	date := params.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	meals, err := s.storage.GetMealsForDay(date)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}

	if len(meals) == 0 {
		return s.createJSONResponse(map[string]interface{}{
			"date":       date,
			"meal_count": 0,
			"meals":      []interface{}{},
		})
	}

	dayTotals, count, err := s.storage.DayTotals(date)
	if err != nil {
		return nil, err
	}

	type mealFlags struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Flags       []string `json:"flags"`
	}

	flagged := make([]mealFlags, 0, len(meals))
	for _, meal := range meals {
		flags, err := s.daily.EvaluateMeal(meal.Macros, count)
		if err != nil {
			return nil, err
		}
		if flags == nil {
			flags = []string{}
		}
		flagged = append(flagged, mealFlags{
			ID:          meal.ID,
			Description: meal.Description,
			Flags:       flags,
		})
	}

	return s.createJSONResponse(map[string]interface{}{
		"date":       date,
		"meal_count": count,
		"day_totals": dayTotals,
		"meals":      flagged,
	})
}

// handleEstimateMacros estimates macros without logging the meal.
func (s *MealRiskServer) handleEstimateMacros(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateMacrosParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.MealDescription == "" {
		return nil, fmt.Errorf("meal description is required")
	}

	estReq := &models.MacroEstimationRequest{
		MealDescription:   params.MealDescription,
		AskClarifications: params.AskClarifications,
	}

	result, err := s.estimator.EstimateMacros(context.Background(), estReq)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate macros: %w", err)
	}

	return s.createJSONResponse(result)
}

// registerTools builds the dispatch table handleHTTP routes tool calls
// through.
func (s *MealRiskServer) registerTools() {
	s.tools = map[string]toolHandler{
		"log_meal":        s.handleLogMeal,
		"analyze_meal":    s.handleAnalyzeMeal,
		"get_meals":       s.handleGetMeals,
		"check_day":       s.handleCheckDay,
		"estimate_macros": s.handleEstimateMacros,
	}

	for name := range s.tools {
		s.logger.Info("registered tool", "tool", name)
	}
}
