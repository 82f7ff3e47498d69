package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/internal/anki"
)

var ankiCmd = &cobra.Command{
	Use:   "anki",
	Short: "Inspect the running Anki instance",
}

var ankiDecksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List deck names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		decks, err := newAnkiClient().DeckNames(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range decks {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		return nil
	},
}

var ankiModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List note types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newAnkiClient().ModelNames(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var ankiFieldsCmd = &cobra.Command{
	Use:   "fields <note-type>",
	Short: "List the fields of a note type and the default mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := newAnkiClient().ModelFieldNames(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		mapping := anki.DefaultFieldMapping(args[0], fields)

		w := cmd.OutOrStdout()
		for _, f := range fields {
			side, ok := mapping[f]
			if !ok {
				side = anki.SideUnused
			}
			fmt.Fprintf(w, "%-20s %s\n", f, side)
		}
		if anki.IsClozeNoteType(args[0]) {
			fmt.Fprintln(w, "\nCloze note type: the Text field gets {{c1::...}} markup when pushing.")
		}
		return nil
	},
}

var ankiCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that AnkiConnect is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAnkiClient()
		if err := client.CheckConnection(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to AnkiConnect at %s\n", client.URL())
		return nil
	},
}

func init() {
	ankiCmd.AddCommand(ankiDecksCmd, ankiModelsCmd, ankiFieldsCmd, ankiCheckCmd)
	rootCmd.AddCommand(ankiCmd)
}
