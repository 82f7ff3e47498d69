package source

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var ErrInvalidJSON = eris.New("source: invalid JSON")

// ParseJSON splits a top-level array into its elements. Any other JSON value
// becomes a single item. Elements keep their original bytes, so key order is
// preserved when they are printed again.
func ParseJSON(content string) ([]json.RawMessage, error) {
	data := bytes.TrimSpace([]byte(content))
	if len(data) == 0 || !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	if data[0] != '[' {
		return []json.RawMessage{json.RawMessage(data)}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrap(err, "source: decode JSON array")
	}
	return items, nil
}

// ParseMarkdown collects sections under "# " and "## " headings. Nothing is
// emitted before the first H1. A heading followed directly by another heading
// has no section; one followed only by blank lines gets empty content.
func ParseMarkdown(content string) []models.Section {
	var (
		sections   []models.Section
		heading    string
		subheading string
		body       strings.Builder
	)

	flush := func() {
		if heading != "" && body.Len() > 0 {
			sections = append(sections, models.Section{
				Heading:    heading,
				Subheading: subheading,
				Content:    strings.TrimSpace(body.String()),
			})
		}
		body.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "# "):
			flush()
			heading = strings.TrimSpace(line[2:])
			subheading = ""
		case strings.HasPrefix(line, "## "):
			flush()
			subheading = strings.TrimSpace(line[3:])
		default:
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	flush()

	return sections
}
