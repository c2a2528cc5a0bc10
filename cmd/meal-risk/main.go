// cmd/meal-risk/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mcp-meal-risk/internal/logger"
	"mcp-meal-risk/internal/server"
	"mcp-meal-risk/internal/thresholds"
)

var (
	transport      = flag.String("transport", "", "Transport mode: http")
	port           = flag.Int("port", 0, "Port for HTTP transport")
	host           = flag.String("host", "", "Host address")
	address        = flag.String("address", "", "Address (alias for host)")
	dbPath         = flag.String("db-path", "", "Database path")
	thresholdsPath = flag.String("thresholds", "", "Path to thresholds config JSON")
	logFormat      = flag.String("log-format", "", "Log format: text or json")
	logLevel       = flag.String("log-level", "", "Log level: debug, info, warn, error")
	version        = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("mcp-meal-risk version 1.0.0")
		os.Exit(0)
	}

	config, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override environment settings.
	if *transport != "" {
		config.Transport = *transport
	}
	if *port != 0 {
		config.Port = *port
	}
	if *host != "" {
		config.Host = *host
	}
	if *address != "" {
		config.Host = *address
	}
	if *dbPath != "" {
		config.DBPath = *dbPath
	}
	if *thresholdsPath != "" {
		config.ThresholdsPath = *thresholdsPath
	}
	if *logFormat != "" {
		config.LogFormat = *logFormat
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log := logger.New(config.LogFormat, config.LogLevel)

	th, err := thresholds.Load(config.ThresholdsPath)
	if err != nil {
		var cfgErr *thresholds.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Invalid thresholds config %s:\n", cfgErr.Source)
			for _, problem := range cfgErr.Problems {
				fmt.Fprintf(os.Stderr, "  - %s\n", problem)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load thresholds: %v\n", err)
		}
		os.Exit(1)
	}

	srv, err := server.NewMealRiskServer(config, th, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting meal risk server", "host", config.Host, "port", config.Port)
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Info("received shutdown signal")
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	log.Info("shutting down")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
