package main

import (
	"fmt"
	"slices"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/internal/cardfile"
	"github.com/kpauljoseph/ankiforge/internal/workflow"
)

var (
	pushDeck           string
	pushModel          string
	pushMapping        string
	pushAllowDuplicate bool
	pushCreateDeck     bool
	pushOne            int
)

var pushCmd = &cobra.Command{
	Use:   "push [review-file]",
	Short: "Add the cards of a review file to Anki",
	Long: `Adds every card of a review file to Anki in one batch. Cards Anki accepts
are removed from the file; rejected cards stay so they can be fixed and pushed
again. The file is deleted once every card has been added.

--one N adds only the N-th card (1-based).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := cardfile.DefaultFileName
		if len(args) == 1 {
			path = args[0]
		}

		review, err := cardfile.Load(path)
		if err != nil {
			return err
		}
		if len(review.Cards) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No cards in %s\n", path)
			return nil
		}

		client := newAnkiClient()
		log.Debug("Checking Anki connection...")
		if err := client.CheckConnection(ctx); err != nil {
			return err
		}
		log.Info("Successfully connected to Anki")

		target, err := resolveTarget(cmd, client, review)
		if err != nil {
			return err
		}
		if pushCreateDeck {
			if err := client.CreateDeck(ctx, target.Deck); err != nil {
				return err
			}
		}

		submitter := workflow.NewSubmitter(client, log)

		if pushOne > 0 {
			if pushOne > len(review.Cards) {
				return eris.Errorf("--one %d is out of range, %s has %d cards", pushOne, path, len(review.Cards))
			}
			id, err := submitter.SubmitOne(ctx, review.Cards[pushOne-1], target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added card %d as note %d\n", pushOne, id)
			remaining := slices.Delete(slices.Clone(review.Cards), pushOne-1, pushOne)
			_, err = review.Retain(path, remaining)
			return err
		}

		result, err := submitter.Submit(ctx, review.Cards, target)
		if err != nil {
			return err
		}
		result.Report.Print(log)

		exists, err := review.Retain(path, result.Remaining)
		if err != nil {
			return err
		}
		if exists {
			fmt.Fprintf(cmd.OutOrStdout(), "%d cards added, %d rejected cards kept in %s\n", len(result.Added), len(result.Remaining), path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "All %d cards added, removed %s\n", len(result.Added), path)
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushDeck, "deck", "", "target deck (defaults to the review file's deck)")
	pushCmd.Flags().StringVar(&pushModel, "model", "", "note type (defaults to the review file's note type)")
	pushCmd.Flags().StringVar(&pushMapping, "map", "", `field mapping, for example "Front=front,Back=back"`)
	pushCmd.Flags().BoolVar(&pushAllowDuplicate, "allow-duplicate", false, "let Anki add duplicate notes")
	pushCmd.Flags().BoolVar(&pushCreateDeck, "create-deck", false, "create the deck first if it does not exist")
	pushCmd.Flags().IntVar(&pushOne, "one", 0, "add only this card (1-based)")
	rootCmd.AddCommand(pushCmd)
}

func resolveTarget(cmd *cobra.Command, client *anki.Client, review *cardfile.File) (anki.NoteTarget, error) {
	target := anki.NoteTarget{
		Deck:           firstNonEmpty(pushDeck, review.Deck, cfg.Anki.DefaultDeck),
		Model:          firstNonEmpty(pushModel, review.Model, cfg.Anki.DefaultNoteType),
		AllowDuplicate: pushAllowDuplicate || cfg.Anki.AllowDuplicate,
	}

	fields, err := client.ModelFieldNames(cmd.Context(), target.Model)
	if err != nil {
		return target, eris.Wrapf(err, "reading fields of note type %q", target.Model)
	}
	target.Fields = fields

	if pushMapping != "" {
		mapping, err := anki.ParseFieldMapping(pushMapping)
		if err != nil {
			return target, err
		}
		target.Mapping = mapping
	} else {
		target.Mapping = anki.DefaultFieldMapping(target.Model, fields)
	}

	log.Debug("Pushing to deck %q with note type %q (%s)", target.Deck, target.Model, target.Mapping)
	return target, target.Validate()
}
