// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-meal-risk/internal/glucose"
	"mcp-meal-risk/internal/storage"
	"mcp-meal-risk/internal/thresholds"
)

type toolHandler func(*protocol.CallToolRequest) (*protocol.CallToolResult, error)

type MealRiskServer struct {
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	estimator  *EstimatorClient
	analyzer   *glucose.Analyzer
	daily      *glucose.DailyEvaluator
	tools      map[string]toolHandler
	logger     *slog.Logger
	config     *Config
}

// NewMealRiskServer wires the engine, storage and tool surface together.
// The thresholds document is loaded once by the caller and held immutably
// for the process lifetime.
func NewMealRiskServer(cfg *Config, th *thresholds.Thresholds, logger *slog.Logger) (*MealRiskServer, error) {
	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	mealServer := &MealRiskServer{
		storage:   stor,
		estimator: NewEstimatorClient(),
		analyzer:  glucose.NewAnalyzer(th),
		daily:     glucose.NewDailyEvaluator(&th.DailyTargets),
		logger:    logger,
		config:    cfg,
	}

	// Tool dispatch is plain HTTP over the MCP wire types; there is no
	// transport-level MCP session.
	mealServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/", mealServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mealServer.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return mealServer, nil
}

func (s *MealRiskServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(&request)
	if err != nil {
		s.logger.Error("tool call failed", "tool", request.Name, "error", err)
		var invalidInput *glucose.InvalidInputError
		if errors.As(err, &invalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *MealRiskServer) Start(ctx context.Context) error {
	s.logger.Info("starting meal risk server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MealRiskServer) Stop() error {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *MealRiskServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
