package anki

import (
	"slices"
	"strings"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

const (
	ClozeTextField      = "Text"
	ClozeBackExtraField = "Back Extra"

	clozeMarker = "{{c"
)

// IsClozeNoteType is a name check only: any note type with "cloze" in its
// name is treated as a cloze type.
func IsClozeNoteType(modelName string) bool {
	return strings.Contains(strings.ToLower(modelName), "cloze")
}

// FormatForCloze wraps text in a first cloze deletion unless it already
// carries cloze markup.
func FormatForCloze(text string) string {
	if strings.Contains(text, clozeMarker) {
		return text
	}
	return "{{c1::" + text + "}}"
}

// ApplyCloze rewrites the Text field of a cloze note so that Anki accepts it.
// The back of the card becomes the deletion when a back field is mapped and
// filled; otherwise the front itself is hidden. An empty Back Extra receives
// the back unless Back Extra is the mapped back field.
func ApplyCloze(fields map[string]string, fieldNames []string, card models.Flashcard, backField string) {
	if !slices.Contains(fieldNames, ClozeTextField) {
		return
	}

	if !strings.Contains(fields[ClozeTextField], clozeMarker) {
		if backField != "" && fields[backField] != "" {
			fields[ClozeTextField] = card.Front + " {{c1::" + card.Back + "}}"
		} else {
			fields[ClozeTextField] = FormatForCloze(card.Front)
		}
	}

	if slices.Contains(fieldNames, ClozeBackExtraField) && fields[ClozeBackExtraField] == "" && backField != ClozeBackExtraField {
		fields[ClozeBackExtraField] = card.Back
	}
}
