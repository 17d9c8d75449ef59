// Package main is the entry point for the stock-advisor HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/config"
	"github.com/fleveque/stock-advisor/internal/llm"
	"github.com/fleveque/stock-advisor/internal/provider"
	"github.com/fleveque/stock-advisor/internal/server"
	"github.com/fleveque/stock-advisor/internal/service"
	"github.com/fleveque/stock-advisor/internal/storage"
)

func main() {
	// run() is separate so deferred cleanup executes before os.Exit.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("ADVISOR_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Structured logging with zap: JSON in production, human-readable in debug.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; not a real problem.
	defer func() { _ = logger.Sync() }()

	// Telemetry store
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	llmCallRepo := storage.NewLLMCallRepository(db)
	refreshRepo := storage.NewRefreshRepository(db)

	// Recommendation pipeline
	clients, err := buildLLMClients(cfg)
	if err != nil {
		return err
	}
	completions := provider.NewCompletionProvider(clients, cfg.LLM.RatePerMinute, llmCallRepo, logger)
	quotes := provider.NewPolygonClient(cfg.MarketData.APIKey, cfg.MarketData.BaseURL, logger)
	news := provider.NewNewsAPIClient(cfg.News.APIKey, cfg.News.BaseURL, logger)
	composer := service.NewComposer(completions, logger)
	recommender := service.NewRecommender(
		quotes, news, composer, refreshRepo,
		cfg.Advisor.Tickers, cfg.Advisor.PoolSize, cfg.Advisor.NewsPerTicker,
		logger,
	)
	cache := service.NewCache(recommender, cfg.Advisor.CacheTTL())

	deps := server.Deps{
		Cache:       cache,
		LLMCallRepo: llmCallRepo,
		RefreshRepo: refreshRepo,
	}
	srv := server.New(cfg, deps, logger)

	// Graceful shutdown on SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// buildLLMClients constructs the ordered completion client list from config.
// Providers without an API key are skipped; at least one must be configured.
func buildLLMClients(cfg *config.Config) ([]llm.Client, error) {
	var clients []llm.Client
	for _, name := range cfg.LLM.ProviderOrder {
		switch name {
		case "groq":
			if cfg.LLM.Groq.APIKey != "" {
				clients = append(clients, llm.NewGroqClient(
					cfg.LLM.Groq.APIKey, cfg.LLM.Groq.BaseURL, cfg.LLM.Groq.Model,
					cfg.LLM.MaxTokens, cfg.LLM.Temperature,
				))
			}
		case "anthropic":
			if cfg.LLM.Anthropic.APIKey != "" {
				clients = append(clients, llm.NewAnthropicClient(
					cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model,
					cfg.LLM.MaxTokens, cfg.LLM.Temperature,
				))
			}
		default:
			return nil, fmt.Errorf("unknown LLM provider in provider_order: %s", name)
		}
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no LLM provider configured: set ADVISOR_LLM_GROQ_API_KEY or ADVISOR_LLM_ANTHROPIC_API_KEY")
	}
	return clients, nil
}
