package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

// NoteAdder is the part of the AnkiConnect client the submitter needs.
type NoteAdder interface {
	AddNote(ctx context.Context, note anki.Note) (int64, error)
	AddNotes(ctx context.Context, notes []anki.Note) ([]*int64, error)
}

// SubmitResult splits a batch into what Anki accepted and what stays in the
// working set. Remaining keeps the original order of the rejected cards.
type SubmitResult struct {
	Added     map[int]int64          `json:"added"`
	Rejected  []int                  `json:"rejected"`
	Remaining []models.Flashcard     `json:"remaining"`
	Report    *anki.SubmissionReport `json:"-"`
}

type Submitter struct {
	notes  NoteAdder
	logger *logger.Logger
}

func NewSubmitter(notes NoteAdder, log *logger.Logger) *Submitter {
	if log == nil {
		log = logger.Nop()
	}
	return &Submitter{notes: notes, logger: log}
}

// Submit sends every complete card in one addNotes round trip. Incomplete
// cards are never sent and count as rejected.
func (s *Submitter) Submit(ctx context.Context, cards []models.Flashcard, target anki.NoteTarget) (SubmitResult, error) {
	if err := target.Validate(); err != nil {
		return SubmitResult{}, err
	}

	report := &anki.SubmissionReport{
		DeckName:   target.Deck,
		StartTime:  time.Now(),
		TotalCards: len(cards),
	}

	notes := make([]anki.Note, 0, len(cards))
	sent := make([]int, 0, len(cards))
	reasons := make(map[int]string)
	for i, card := range cards {
		note, err := anki.BuildNote(card, target)
		if err != nil {
			reasons[i] = err.Error()
			continue
		}
		notes = append(notes, note)
		sent = append(sent, i)
	}

	ids, err := s.notes.AddNotes(ctx, notes)
	if err != nil {
		return SubmitResult{}, withNoteHint(err, target.Model)
	}

	added := make(map[int]int64, len(ids))
	for j, id := range ids {
		if id == nil {
			reasons[sent[j]] = "rejected by Anki (duplicate or invalid fields)"
			continue
		}
		added[sent[j]] = *id
	}

	result := s.collect(cards, added, reasons, report)
	s.logger.Debug("Submitted %d notes to %s: %d added, %d rejected", len(notes), target.Deck, len(added), len(result.Rejected))
	return result, nil
}

// SubmitOne adds a single card with addNote.
func (s *Submitter) SubmitOne(ctx context.Context, card models.Flashcard, target anki.NoteTarget) (int64, error) {
	note, err := anki.BuildNote(card, target)
	if err != nil {
		return 0, err
	}
	id, err := s.notes.AddNote(ctx, note)
	if err != nil {
		return 0, withNoteHint(err, target.Model)
	}
	return id, nil
}

func (s *Submitter) collect(cards []models.Flashcard, added map[int]int64, reasons map[int]string, report *anki.SubmissionReport) SubmitResult {
	result := SubmitResult{
		Added:     added,
		Rejected:  []int{},
		Remaining: []models.Flashcard{},
		Report:    report,
	}
	for i, card := range cards {
		if _, ok := added[i]; ok {
			continue
		}
		result.Rejected = append(result.Rejected, i)
		result.Remaining = append(result.Remaining, card)
		report.RejectedCards = append(report.RejectedCards, anki.RejectedCard{
			Index:  i,
			Front:  card.Front,
			Reason: reasons[i],
		})
	}

	report.EndTime = time.Now()
	report.AddedCount = len(added)
	report.RejectedCount = len(result.Rejected)
	return result
}

func withNoteHint(err error, model string) error {
	var remote *anki.RemoteError
	if !eris.As(err, &remote) || !strings.Contains(remote.Message, "cannot create note") {
		return err
	}
	if anki.IsClozeNoteType(model) {
		return eris.Wrap(err, "check that the Text field holds cloze markup such as {{c1::answer}}")
	}
	return eris.Wrap(err, "check that the field mapping matches the note type's fields")
}
