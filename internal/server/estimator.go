// internal/server/estimator.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"mcp-meal-risk/internal/models"
)

// EstimatorClient asks an LLM gateway to estimate a meal's full macro
// profile from a free-text description. It is the fallback used when
// log_meal receives no explicit macros; the engine itself never depends
// on it.
type EstimatorClient struct {
	httpClient *http.Client
	proxyURL   string
	apiKey     string
	model      string
}

func NewEstimatorClient() *EstimatorClient {
	proxyURL := os.Getenv("MCP_PROXY_URL")
	if proxyURL == "" {
		proxyURL = "http://mcp-compose-http-proxy:9876"
	}

	apiKey := os.Getenv("MCP_PROXY_API_KEY")
	if apiKey == "" {
		apiKey = "myapikey"
	}

	model := os.Getenv("OPENROUTER_MODEL")
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}

	return &EstimatorClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		proxyURL: proxyURL,
		apiKey:   apiKey,
		model:    model,
	}
}

func (e *EstimatorClient) EstimateMacros(ctx context.Context, req *models.MacroEstimationRequest) (*models.MacroEstimationResponse, error) {
	systemPrompt := `You are a nutrition expert estimating macronutrients for glucose response analysis.

When analyzing meals, provide realistic estimates of carbohydrates, glycemic index, fat, protein, fiber, sugar and calories, and identify when more information is needed.

IMPORTANT: Always respond with valid JSON in this exact format:
{
  "foods": [
    {
      "name": "specific food item name",
      "quantity": "estimated portion size with units",
      "macros": {
        "carbs_g": [number],
        "gi": [number],
        "fat_g": [number],
        "protein_g": [number],
        "fiber_g": [number],
        "sugar_g": [number],
        "calories": [number]
      },
      "confidence": "high|medium|low"
    }
  ],
  "totals": {
    "carbs_g": [number],
    "gi": [number],
    "fat_g": [number],
    "protein_g": [number],
    "fiber_g": [number],
    "sugar_g": [number],
    "calories": [number]
  },
  "confidence": "high|medium|low",
  "clarifications": ["specific question1", "specific question2"],
  "needs_more_info": [true/false]
}

The totals "gi" is the carb-weighted glycemic index of the whole meal; use 0 when carbs are negligible.

For items like "a baked potato", ask specific questions about size since this greatly affects the estimate.`

	clarificationText := ""
	if req.AskClarifications {
		clarificationText = `

If the description lacks specific details about:
- Portion sizes (small, medium, large, or specific measurements)
- Preparation methods that affect carbs or glycemic index
- Specific varieties with different macro contents

Then set "needs_more_info" to true and include specific clarifying questions in the "clarifications" array.`
	}

	userPrompt := fmt.Sprintf(`Analyze this meal and estimate its macronutrients: "%s"

Provide a detailed breakdown of each food item, realistic portion estimates, and meal totals.%s`, req.MealDescription, clarificationText)

	completionRequest := map[string]interface{}{
		"model":         e.model,
		"system_prompt": systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": userPrompt,
			},
		},
		"max_tokens":  2000,
		"temperature": 0.1,
	}

	gatewayResponse, err := e.callGateway("create_completion", completionRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to get AI completion: %w", err)
	}

	return e.parseAIResponse(gatewayResponse)
}

func (e *EstimatorClient) callGateway(toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", e.proxyURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var mcpResponse map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&mcpResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if result, ok := mcpResponse["result"].(map[string]interface{}); ok {
		if content, ok := result["content"].([]interface{}); ok && len(content) > 0 {
			if textContent, ok := content[0].(map[string]interface{}); ok {
				if text, ok := textContent["text"].(string); ok {
					return text, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unexpected response format")
}

func (e *EstimatorClient) parseAIResponse(aiOutput string) (*models.MacroEstimationResponse, error) {
	var completionResp map[string]interface{}
	if err := json.Unmarshal([]byte(aiOutput), &completionResp); err != nil {
		return e.createFallbackResponse(), nil
	}

	content, ok := completionResp["content"].(string)
	if !ok {
		return e.createFallbackResponse(), nil
	}

	start := strings.Index(content, "{")
	if start == -1 {
		return e.createFallbackResponse(), nil
	}

	end := strings.LastIndex(content, "}")
	if end == -1 || end <= start {
		return e.createFallbackResponse(), nil
	}

	jsonStr := content[start : end+1]

	var response models.MacroEstimationResponse
	if err := json.Unmarshal([]byte(jsonStr), &response); err != nil {
		return e.createFallbackResponse(), nil
	}

	return &response, nil
}

func (e *EstimatorClient) createFallbackResponse() *models.MacroEstimationResponse {
	return &models.MacroEstimationResponse{
		Foods: []models.Food{
			{
				Name:       "Analysis unavailable",
				Quantity:   "unknown",
				Macros:     models.Macros{CarbsG: 20.0, Calories: 150.0},
				Confidence: models.LowConfidence,
			},
		},
		Totals:        models.Macros{CarbsG: 20.0, Calories: 150.0},
		Confidence:    models.LowConfidence,
		NeedsMoreInfo: true,
		Clarifications: []string{
			"What were the portion sizes?",
			"How was the meal prepared?",
			"Were there any sauces or toppings?",
		},
	}
}
