package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-risk/internal/models"
)

func TestEstimatorParsesGatewayResponse(t *testing.T) {
	estimateJSON := `{
		"foods": [
			{
				"name": "baked potato",
				"quantity": "1 medium",
				"macros": {"carbs_g": 37, "gi": 85, "fat_g": 0.2, "protein_g": 4, "fiber_g": 4, "sugar_g": 2, "calories": 160},
				"confidence": "medium"
			}
		],
		"totals": {"carbs_g": 37, "gi": 85, "fat_g": 0.2, "protein_g": 4, "fiber_g": 4, "sugar_g": 2, "calories": 160},
		"confidence": "medium",
		"needs_more_info": false
	}`

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openrouter-gateway", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		inner, err := json.Marshal(map[string]any{"content": "Here is the estimate: " + estimateJSON})
		require.NoError(t, err)

		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"content": []map[string]any{
					{"type": "text", "text": string(inner)},
				},
			},
		})
	}))
	defer gateway.Close()

	t.Setenv("MCP_PROXY_URL", gateway.URL)
	t.Setenv("MCP_PROXY_API_KEY", "test-key")
	client := NewEstimatorClient()

	resp, err := client.EstimateMacros(context.Background(), &models.MacroEstimationRequest{
		MealDescription: "a baked potato",
	})
	require.NoError(t, err)

	require.Len(t, resp.Foods, 1)
	assert.Equal(t, "baked potato", resp.Foods[0].Name)
	assert.Equal(t, 37.0, resp.Totals.CarbsG)
	assert.Equal(t, 85.0, resp.Totals.GI)
	assert.Equal(t, models.MediumConfidence, resp.Confidence)
	assert.False(t, resp.NeedsMoreInfo)
}

func TestEstimatorGatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer gateway.Close()

	t.Setenv("MCP_PROXY_URL", gateway.URL)
	client := NewEstimatorClient()

	_, err := client.EstimateMacros(context.Background(), &models.MacroEstimationRequest{
		MealDescription: "toast",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestParseAIResponseFallsBack(t *testing.T) {
	client := NewEstimatorClient()

	for _, raw := range []string{
		"not json at all",
		`{"content": "no braces here"}`,
		`{"content": "{broken json"}`,
	} {
		resp, err := client.parseAIResponse(raw)
		require.NoError(t, err)
		assert.True(t, resp.NeedsMoreInfo, "raw=%q", raw)
		assert.Equal(t, models.LowConfidence, resp.Confidence)
		assert.NotEmpty(t, resp.Clarifications)
	}
}
