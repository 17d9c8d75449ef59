// Package main provides the CLI tool for the stock-advisor service.
// Uses Cobra for command parsing.
//
// Run with: go run ./cmd/cli recommend --pretty
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/config"
	"github.com/fleveque/stock-advisor/internal/llm"
	"github.com/fleveque/stock-advisor/internal/provider"
	"github.com/fleveque/stock-advisor/internal/service"
	"github.com/fleveque/stock-advisor/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "advisor",
		Short: "Stock advisor CLI tools",
	}

	root.AddCommand(recommendCmd())
	return root
}

func recommendCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Run one recommendation pass and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	return cmd
}

func runRecommend(pretty bool) error {
	configPath := os.Getenv("ADVISOR_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Always use development logging for the CLI
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

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

	// Ctrl+C cancels the in-flight upstream calls
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("cancelling...")
		cancel()
	}()

	recs := recommender.Compute(ctx)

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(recs, "", "  ")
	} else {
		out, err = json.Marshal(recs)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

// buildLLMClients constructs the ordered completion client list from config.
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
