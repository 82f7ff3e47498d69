package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/internal/workflow"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show how a document is structured and the prompt it produces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "reading %s", args[0])
		}

		generator := workflow.NewGenerator(nil, log)
		result := generator.Preview(cmd.Context(), filepath.Base(args[0]), data)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Format: %s\n", result.Source.Format)
		switch {
		case len(result.Source.Rows) > 0:
			fmt.Fprintf(w, "Columns: %v\nRows: %d\n", result.Source.Headers, len(result.Source.Rows))
		case len(result.Source.Sections) > 0:
			fmt.Fprintf(w, "Sections: %d\n", len(result.Source.Sections))
		case len(result.Source.Items) > 0:
			fmt.Fprintf(w, "Items: %d\n", len(result.Source.Items))
		}
		fmt.Fprintf(w, "\n--- prompt ---\n%s\n", result.Prompt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
