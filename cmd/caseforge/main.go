// caseforge converts free-text software requirements into structured,
// traceable test cases annotated with applicable compliance standards.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"caseforge/internal/config"
	"caseforge/internal/corpus"
	"caseforge/internal/embedding"
	"caseforge/internal/generator"
	"caseforge/internal/llm"
	"caseforge/internal/server"
	"caseforge/internal/tagger"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "caseforge",
	Short: "caseforge - requirement-to-test-case generator",
	Long: `caseforge converts free-text software requirements into structured,
traceable test cases and annotates each with applicable compliance
standards via embedding similarity against a compliance corpus.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		if cfg.Logging.Format == "text" {
			zapCfg = zap.NewDevelopmentConfig()
		}
		if verbose || cfg.Logging.Level == "debug" {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP generation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := buildService(ctx)
		if err != nil {
			return err
		}

		srv := server.New(cfg.Server, svc, logger)
		return srv.Run(ctx)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate test cases from a requirements file (or stdin) and print JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("failed to read requirements: %w", err)
		}

		svc, err := buildService(ctx)
		if err != nil {
			return err
		}

		result, err := svc.Generate(ctx, string(raw))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Show compliance corpus status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		engine, err := embedding.NewEngine(cfg.Embedding)
		if err != nil {
			return err
		}

		store, err := corpus.NewStore(ctx, cfg.Corpus, engine, logger)
		if err != nil {
			return err
		}

		fmt.Printf("engine:     %s (%d dimensions)\n", engine.Name(), engine.Dimensions())
		fmt.Printf("snippets:   %d\n", len(store.Snippets()))
		fmt.Printf("threshold:  %.2f (top_k %d)\n", cfg.Corpus.Threshold, cfg.Corpus.TopK)
		for _, s := range store.Snippets() {
			fmt.Printf("  %-12s %s\n", s.Standard, truncate(s.Text, 70))
		}
		return nil
	},
}

// buildService wires the full pipeline. A corpus or encoder failure
// degrades compliance tagging instead of refusing to start; generation
// itself only needs the model client.
func buildService(ctx context.Context) (*generator.Service, error) {
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, err
	}

	health := generator.Health{Ready: true, Message: "corpus and encoder initialized"}

	var tg *tagger.Tagger
	engine, err := embedding.NewEngine(cfg.Embedding)
	if err != nil {
		logger.Warn("Embedding encoder unavailable, compliance tagging disabled", zap.Error(err))
		health = generator.Health{Ready: false, Message: fmt.Sprintf("embedding encoder: %v", err)}
		tg = tagger.New(nil, nil, cfg.Corpus.TopK, cfg.Corpus.Threshold, logger)
	} else {
		store, err := corpus.NewStore(ctx, cfg.Corpus, engine, logger)
		if err != nil {
			logger.Warn("Compliance corpus unavailable, compliance tagging disabled", zap.Error(err))
			health = generator.Health{Ready: false, Message: fmt.Sprintf("compliance corpus: %v", err)}
			tg = tagger.New(engine, nil, cfg.Corpus.TopK, cfg.Corpus.Threshold, logger)
		} else {
			tg = tagger.New(engine, store.Index(), cfg.Corpus.TopK, cfg.Corpus.Threshold, logger)
		}
	}

	opts := generator.Options{
		Concurrency:    cfg.Generation.Concurrency,
		RepairAttempts: cfg.Generation.RepairAttempts,
		CasesMin:       cfg.Generation.CasesMin,
		StepsMin:       cfg.Generation.StepsMin,
		RequestTimeout: cfg.RequestTimeout(),
	}

	gen := generator.New(client, tg, opts, logger)
	return generator.NewService(gen, health, logger), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "caseforge.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(corpusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
