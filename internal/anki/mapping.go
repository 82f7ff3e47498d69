package anki

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

type Side string

const (
	SideFront  Side = "front"
	SideBack   Side = "back"
	SideUnused Side = "unused"
)

// FieldMapping says which side of a card fills which note field. Fields that
// are absent or SideUnused are left empty.
type FieldMapping map[string]Side

// FieldFor returns the first of the given fields mapped to side. With no
// fields given, the mapping's own fields are searched in name order.
func (m FieldMapping) FieldFor(side Side, fields []string) string {
	if len(fields) == 0 {
		fields = m.sortedFields()
	}
	for _, field := range fields {
		if m[field] == side {
			return field
		}
	}
	return ""
}

func (m FieldMapping) String() string {
	parts := make([]string, 0, len(m))
	for _, field := range m.sortedFields() {
		parts = append(parts, field+"="+string(m[field]))
	}
	return strings.Join(parts, ",")
}

func (m FieldMapping) sortedFields() []string {
	fields := make([]string, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// DefaultFieldMapping guesses a mapping from a note type's field names. Cloze
// types use Text and Back Extra; other types look for front/question and
// back/answer fields, falling back to the first two fields.
func DefaultFieldMapping(modelName string, fields []string) FieldMapping {
	mapping := FieldMapping{}
	if len(fields) == 0 {
		return mapping
	}

	var front, back string
	if IsClozeNoteType(modelName) {
		front = findField(fields, func(f string) bool { return f == ClozeTextField }, 0)
		back = findField(fields, func(f string) bool { return f == ClozeBackExtraField }, 1)
	} else {
		front = findField(fields, func(f string) bool {
			lower := strings.ToLower(f)
			return strings.Contains(lower, "front") || lower == "question"
		}, 0)
		back = findField(fields, func(f string) bool {
			lower := strings.ToLower(f)
			return strings.Contains(lower, "back") || lower == "answer"
		}, 1)
	}

	mapping[front] = SideFront
	if back == front {
		back = firstOther(fields, front)
	}
	if back != "" {
		mapping[back] = SideBack
	}
	return mapping
}

func findField(fields []string, match func(string) bool, fallback int) string {
	for _, f := range fields {
		if match(f) {
			return f
		}
	}
	if fallback < len(fields) {
		return fields[fallback]
	}
	return ""
}

func firstOther(fields []string, exclude string) string {
	for _, f := range fields {
		if f != exclude {
			return f
		}
	}
	return ""
}

// ParseFieldMapping reads "Field=side" pairs separated by commas, for example
// "Front=front,Back=back,Extra=unused".
func ParseFieldMapping(text string) (FieldMapping, error) {
	mapping := FieldMapping{}
	for _, pair := range strings.Split(text, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		field, side, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		side = strings.ToLower(strings.TrimSpace(side))
		if !ok || field == "" {
			return nil, eris.Errorf("invalid field mapping %q, expected Field=side", pair)
		}

		switch Side(side) {
		case SideFront, SideBack, SideUnused:
			mapping[field] = Side(side)
		default:
			return nil, eris.Errorf("invalid side %q for field %q, expected front, back or unused", side, field)
		}
	}

	if len(mapping) == 0 {
		return nil, eris.New("field mapping is empty")
	}
	return mapping, nil
}
