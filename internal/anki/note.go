package anki

import (
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var (
	ErrIncompleteCard = eris.New("anki: card needs both a front and a back")
	ErrNoFrontField   = eris.New("anki: no note field is mapped to the front of the card")
)

type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Options   NoteOptions       `json:"options"`
}

type NoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// NoteTarget is where cards go: the deck, the note type with its field names
// in order, and how card sides map onto those fields.
type NoteTarget struct {
	Deck           string       `json:"deck"`
	Model          string       `json:"model"`
	Fields         []string     `json:"fields"`
	Mapping        FieldMapping `json:"mapping"`
	AllowDuplicate bool         `json:"allow_duplicate"`
}

// FieldNames is the note type's field list, or the mapped fields when the
// list is unknown.
func (t NoteTarget) FieldNames() []string {
	if len(t.Fields) > 0 {
		return t.Fields
	}
	return t.Mapping.sortedFields()
}

// Validate checks the parts of a target that do not depend on a card.
func (t NoteTarget) Validate() error {
	if t.Deck == "" || t.Model == "" {
		return eris.New("anki: deck and note type are required")
	}
	if t.Mapping.FieldFor(SideFront, t.FieldNames()) == "" {
		return ErrNoFrontField
	}
	return nil
}

// BuildNote fills every field of the note type from the card according to
// the mapping. Cloze note types get cloze markup applied afterwards.
func BuildNote(card models.Flashcard, target NoteTarget) (Note, error) {
	if err := target.Validate(); err != nil {
		return Note{}, err
	}
	if !card.IsComplete() {
		return Note{}, ErrIncompleteCard
	}

	names := target.FieldNames()
	fields := make(map[string]string, len(names))
	for _, name := range names {
		fields[name] = ""
	}

	for _, name := range names {
		switch target.Mapping[name] {
		case SideFront:
			fields[name] = card.Front
		case SideBack:
			fields[name] = card.Back
		}
	}

	if IsClozeNoteType(target.Model) {
		ApplyCloze(fields, names, card, target.Mapping.FieldFor(SideBack, names))
	}

	return Note{
		DeckName:  target.Deck,
		ModelName: target.Model,
		Fields:    fields,
		Tags:      models.UniqueTags(card.Tags),
		Options:   NoteOptions{AllowDuplicate: target.AllowDuplicate},
	}, nil
}
