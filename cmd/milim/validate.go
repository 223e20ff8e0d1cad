package main

import (
	"errors"
	"fmt"

	"github.com/japaniel/milim/pkg/corpus"
	"github.com/spf13/cobra"
)

func (a *app) newValidateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the dataset for missing or duplicate ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.config()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if dir != "" {
				cfg.DataDir = dir
			}

			out := cmd.OutOrStdout()
			c, err := loadCorpus(cmd.Context(), cfg, logger)
			var invalid *corpus.ValidationError
			if errors.As(err, &invalid) {
				for _, p := range invalid.Problems {
					fmt.Fprintln(out, p)
				}
				return fmt.Errorf("%d problems found", len(invalid.Problems))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ok: %d words, %d texts\n", len(c.Vocabulary), len(c.Texts))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "dataset directory (default: MILIM_DATA_DIR or the bundled dataset)")
	return cmd
}
