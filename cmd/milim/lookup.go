package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/milim/pkg/annotate"
	"github.com/spf13/cobra"
)

func (a *app) newLookupCmd() *cobra.Command {
	var (
		highlight string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "lookup [text|-]",
		Short: "Annotate Hebrew text against the vocabulary",
		Long: `lookup prints every vocabulary word found in the text, one per line, with
  its entry id and first English translation. Highlighted words are marked with "*".
  The text is read from standard input when it is "-" or omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.config()
			if err != nil {
				return err
			}
			defer logger.Sync()

			text, err := lookupInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			c, err := loadCorpus(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			spans := annotate.NewAnalyzer(c.Vocabulary).Analyze(text, highlight)
			if asJSON {
				return writeSpansJSON(cmd.OutOrStdout(), spans)
			}
			return writeSpans(cmd.OutOrStdout(), spans)
		},
	}
	cmd.Flags().StringVar(&highlight, "highlight", "", "word to highlight")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print all spans as JSON")
	return cmd
}

func lookupInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func writeSpans(w io.Writer, spans []annotate.Span) error {
	for _, sp := range spans {
		if !sp.Interactive && !sp.Highlighted {
			continue
		}
		mark := " "
		if sp.Highlighted {
			mark = "*"
		}
		english := ""
		if sp.Entry != nil {
			english = sp.Entry.PrimaryEnglish()
		}
		if _, err := fmt.Fprintf(w, "%s %s\t%s\t%s\n", mark, sp.Text, sp.WordID, english); err != nil {
			return err
		}
	}
	return nil
}

func writeSpansJSON(w io.Writer, spans []annotate.Span) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(spans)
}
