package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/japaniel/milim/pkg/corpus"
	"github.com/japaniel/milim/pkg/extract"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newImportTextCmd() *cobra.Command {
	var (
		pageURL     string
		category    string
		out         string
		keepNiqqud  bool
		httpTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import-text",
		Short: "Extract an article from a web page and append it to a texts file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := a.config()
			if err != nil {
				return err
			}
			defer logger.Sync()

			client := &http.Client{Timeout: httpTimeout}
			html, err := extract.Fetch(cmd.Context(), client, pageURL)
			if err != nil {
				return err
			}
			article, err := extract.Extract(html, pageURL)
			if err != nil {
				return err
			}
			t := extract.ToText(article, category, !keepNiqqud)
			if t.HebrewText == "" {
				return fmt.Errorf("no text extracted from %s", pageURL)
			}
			if err := extract.AppendText(out, t); err != nil {
				return err
			}
			logger.Info("text imported",
				zap.String("id", t.ID),
				zap.String("url", pageURL),
				zap.Int("bytes", len(t.HebrewText)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s into %s\n", t.Title, t.ID, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "page to import")
	cmd.Flags().StringVar(&category, "category", "", "category of the new text")
	cmd.Flags().StringVar(&out, "out", corpus.TextsFile, "texts JSON file to append to")
	cmd.Flags().BoolVar(&keepNiqqud, "keep-niqqud", false, "keep Hebrew vowel points")
	cmd.Flags().DurationVar(&httpTimeout, "timeout", 30*time.Second, "HTTP timeout")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (a *app) newFetchDataCmd() *cobra.Command {
	var archiveURL, dir string
	cmd := &cobra.Command{
		Use:   "fetch-data",
		Short: "Download a dataset archive into a data directory unless one is already there",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.config()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if archiveURL == "" {
				archiveURL = cfg.DataURL
			}
			if dir == "" {
				dir = cfg.DataDir
			}
			if dir == "" {
				return fmt.Errorf("no data directory: set --dir or MILIM_DATA_DIR")
			}

			client := &http.Client{Timeout: 2 * time.Minute}
			if err := corpus.EnsureDataset(cmd.Context(), client, archiveURL, dir); err != nil {
				return err
			}
			c, err := corpus.LoadDir(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dataset ready in %s: %d words, %d texts\n", dir, len(c.Vocabulary), len(c.Texts))
			return nil
		},
	}
	cmd.Flags().StringVar(&archiveURL, "url", "", "dataset .tar.gz to download (default: MILIM_DATA_URL)")
	cmd.Flags().StringVar(&dir, "dir", "", "data directory (default: MILIM_DATA_DIR)")
	return cmd
}
