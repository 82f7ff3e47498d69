package anki

import (
	"time"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

type RejectedCard struct {
	Index  int
	Front  string
	Reason string
}

// SubmissionReport summarises one push of cards into a deck.
type SubmissionReport struct {
	DeckName      string
	StartTime     time.Time
	EndTime       time.Time
	TotalCards    int
	AddedCount    int
	RejectedCount int
	RejectedCards []RejectedCard
}

func (r *SubmissionReport) TimeTaken() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime).Round(time.Millisecond)
	}
	return r.EndTime.Sub(r.StartTime).Round(time.Millisecond)
}

func (r *SubmissionReport) Print(log *logger.Logger) {
	submissionCompleteBanner := `
+------------------------------------------------------------------------------+
|                           SUBMISSION COMPLETE                                |
+------------------------------------------------------------------------------+`

	rejectedCardsBanner := `
+------------------------------------------------------------------------------+
|                            REJECTED CARDS                                    |
+------------------------------------------------------------------------------+`

	log.Info("\n%s\n", submissionCompleteBanner)
	log.Info("- Deck: %s", r.DeckName)
	log.Info("- Cards submitted: %d", r.TotalCards)
	log.Info("- Cards added: %d", r.AddedCount)
	log.Info("- Cards rejected: %d", r.RejectedCount)
	log.Info("- Time taken: %v", r.TimeTaken())

	if r.RejectedCount > 0 {
		log.Info("\n%s\n", rejectedCardsBanner)
		for _, card := range r.RejectedCards {
			log.Info("- #%d %q: %s", card.Index+1, card.Front, card.Reason)
		}
	}
}
