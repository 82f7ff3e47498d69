package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/internal/cardfile"
	"github.com/kpauljoseph/ankiforge/internal/scanner"
	"github.com/kpauljoseph/ankiforge/internal/workflow"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var (
	generateText         string
	generateDir          string
	generateOut          string
	generateDeck         string
	generateRootDeck     string
	generateCount        int
	generateLanguage     string
	generateInstructions string
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate flashcards into a review file",
	Long: `Generates flashcards from a document, from --text, or from every supported
document under --dir. Cards are written to a YAML review file that can be
edited before running "ankiforge push".

Use "-" as the file to read text from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireAI(); err != nil {
			return err
		}
		opts := generateOptions(cmd)
		generator := newGenerator()

		if generateDir != "" {
			return generateFromDir(cmd, generator, opts)
		}

		var (
			result     workflow.Result
			err        error
			sourceName string
		)
		switch {
		case generateText != "":
			sourceName = "text"
			result, err = generator.FromText(cmd.Context(), generateText, opts)
		case len(args) == 1 && args[0] == "-":
			sourceName = "stdin"
			data, readErr := io.ReadAll(cmd.InOrStdin())
			if readErr != nil {
				return eris.Wrap(readErr, "reading stdin")
			}
			result, err = generator.FromText(cmd.Context(), string(data), opts)
		case len(args) == 1:
			sourceName = args[0]
			data, readErr := os.ReadFile(args[0])
			if readErr != nil {
				return eris.Wrapf(readErr, "reading %s", args[0])
			}
			result, err = generator.FromFile(cmd.Context(), filepath.Base(args[0]), data, opts)
		default:
			return eris.New("give a file, --text or --dir")
		}
		if err != nil {
			return err
		}

		deck := firstNonEmpty(generateDeck, cfg.Anki.DefaultDeck)
		out := &cardfile.File{
			Deck:   deck,
			Model:  cfg.Anki.DefaultNoteType,
			Source: sourceName,
			Cards:  result.Cards,
		}
		if err := out.Save(generateOut); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cards to %s (parsed with %s stage)\n", len(result.Cards), generateOut, result.Stage)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateText, "text", "", "generate from this text instead of a file")
	generateCmd.Flags().StringVar(&generateDir, "dir", "", "generate from every supported document in this directory")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", cardfile.DefaultFileName, "review file to write (a directory with --dir)")
	generateCmd.Flags().StringVar(&generateDeck, "deck", "", "deck recorded in the review file")
	generateCmd.Flags().StringVar(&generateRootDeck, "root-deck", "", "root deck name for --dir (optional)")
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "number of cards to request")
	generateCmd.Flags().StringVar(&generateLanguage, "language", "", "language of the cards")
	generateCmd.Flags().StringVar(&generateInstructions, "instructions", "", "additional instructions for the model")
	rootCmd.AddCommand(generateCmd)
}

func generateOptions(cmd *cobra.Command) ai.GenerateOptions {
	opts := cfg.GenerateOptions()
	if cmd.Flags().Changed("count") {
		opts.Count = generateCount
	}
	if cmd.Flags().Changed("language") {
		opts.Language = generateLanguage
	}
	if cmd.Flags().Changed("instructions") {
		opts.Instructions = generateInstructions
	}
	return opts
}

// generateFromDir writes one review file per document, named after the
// document's path, with a deck derived from the same path.
func generateFromDir(cmd *cobra.Command, generator *workflow.Generator, opts ai.GenerateOptions) error {
	outDir := generateOut
	if outDir == cardfile.DefaultFileName {
		outDir = "cards"
	}

	files, err := scanner.New(log).FindSources(cmd.Context(), generateDir)
	if err != nil {
		return err
	}
	log.Info("Found %d documents to process", len(files))

	var written, failed int
	for _, f := range files {
		data, err := os.ReadFile(f.AbsolutePath)
		if err != nil {
			log.Info("Error reading %s: %v", f.RelativePath, err)
			failed++
			continue
		}

		result, err := generator.FromFile(cmd.Context(), filepath.Base(f.RelativePath), data, opts)
		if err != nil {
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			log.Info("Error generating cards for %s: %v", f.RelativePath, err)
			failed++
			continue
		}

		deck := anki.GetDeckNameFromPath(generateRootDeck, f.RelativePath)
		review := &cardfile.File{
			Deck:   deck,
			Model:  cfg.Anki.DefaultNoteType,
			Source: f.RelativePath,
			Cards:  models.ApplyTags(result.Cards, []string{anki.DeckTag(deck)}),
		}
		path := reviewFilePath(outDir, f.RelativePath)
		if err := review.Save(path); err != nil {
			log.Info("Error writing %s: %v", path, err)
			failed++
			continue
		}
		written++
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cards -> %s\n", f.RelativePath, len(review.Cards), path)
	}

	log.Info("Processing complete: %d review files written, %d failed", written, failed)
	if written == 0 {
		return eris.Errorf("no cards generated from %s", generateDir)
	}
	return nil
}

func reviewFilePath(outDir, relPath string) string {
	return filepath.Join(outDir, strings.TrimSuffix(relPath, filepath.Ext(relPath))+".yaml")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
