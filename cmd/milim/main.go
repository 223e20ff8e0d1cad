// Command milim serves the Hebrew vocabulary and text browser and provides
// tools to check and grow its dataset.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/japaniel/milim/pkg/config"
	"github.com/japaniel/milim/pkg/corpus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every sub-command shares.
type app struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "milim [sub-command]",
		Short: "Hebrew vocabulary and reading-text browser",
		Long: `milim serves a browsable Hebrew vocabulary with interactive reading texts.
  Settings come from MILIM_* environment variables, optionally seeded from a .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to read settings from; missing files are ignored")

	cmd.AddCommand(a.newServeCmd())
	cmd.AddCommand(a.newLookupCmd())
	cmd.AddCommand(a.newValidateCmd())
	cmd.AddCommand(a.newImportTextCmd())
	cmd.AddCommand(a.newFetchDataCmd())
	return cmd
}

func (a *app) config() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// loadCorpus reads the configured dataset, downloading it first when a
// data directory and a download url are both configured.
func loadCorpus(ctx context.Context, cfg config.Config, logger *zap.Logger) (*corpus.Corpus, error) {
	if cfg.DataDir == "" {
		return corpus.Bundled()
	}
	if cfg.DataURL != "" {
		client := &http.Client{Timeout: 2 * time.Minute}
		if err := corpus.EnsureDataset(ctx, client, cfg.DataURL, cfg.DataDir); err != nil {
			return nil, fmt.Errorf("fetch dataset: %w", err)
		}
	}
	c, err := corpus.LoadDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		zap.String("dir", cfg.DataDir),
		zap.Int("words", len(c.Vocabulary)),
		zap.Int("texts", len(c.Texts)))
	return c, nil
}
