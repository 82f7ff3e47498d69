package prompt

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

const (
	MaxJSONItems   = 3
	MaxPDFRunes    = 15000
	TruncateMarker = "..."

	PDFUnreadable = "Please create flashcards from this PDF. The text couldn't be extracted properly."
)

// FromSource builds the user message sent to the completion endpoint for a
// structured document. Formats with nothing structured fall back to the raw
// content.
func FromSource(src models.ParsedSource) string {
	switch src.Format {
	case models.FormatCSV:
		if len(src.Rows) == 0 {
			return src.Content
		}
		return FromCSV(src.Headers, src.Rows)
	case models.FormatMarkdown:
		if len(src.Sections) == 0 {
			return src.Content
		}
		return FromMarkdown(src.Sections)
	case models.FormatJSON:
		if len(src.Items) == 0 {
			return src.Content
		}
		return FromJSON(src.Items)
	case models.FormatPDF:
		return FromPDF(src.Content)
	default:
		return src.Content
	}
}

func FromMarkdown(sections []models.Section) string {
	parts := make([]string, 0, len(sections))
	for _, section := range sections {
		title := section.Heading
		if section.Subheading != "" {
			title += " - " + section.Subheading
		}
		parts = append(parts, title+":\n"+section.Content)
	}

	return "Generate Anki flashcards from the following Markdown content:\n\n" +
		strings.Join(parts, "\n\n") +
		"\n\nPlease create concise and effective flashcards based on this content."
}

// FromJSON pretty-prints the first few items with two-space indentation. Key
// order is kept as it appeared in the document.
func FromJSON(items []json.RawMessage) string {
	if len(items) > MaxJSONItems {
		items = items[:MaxJSONItems]
	}

	return "Generate Anki flashcards from the following JSON data:\n\n" +
		indentJSON(items) +
		"\n\nPlease create concise and effective flashcards based on this data."
}

func indentJSON(items []json.RawMessage) string {
	compact, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return string(compact)
	}
	return out.String()
}

func FromPDF(text string) string {
	if strings.TrimSpace(text) == "" {
		return PDFUnreadable
	}

	var b strings.Builder
	b.WriteString("Generate Anki flashcards from the following PDF content:\n\n")
	b.WriteString("Please create concise and effective flashcards based on this content. Generate approximately 5-10 cards that cover the main concepts.\n")
	b.WriteString("Each card should have a clear question on the front and a comprehensive answer on the back.\n")
	b.WriteString("Focus on key terms, definitions, and important concepts from the PDF.\n\n")

	runes := []rune(text)
	if len(runes) < MaxPDFRunes {
		b.WriteString("Full content:\n")
		b.WriteString(text)
	} else {
		b.WriteString("Extended content (truncated):\n")
		b.WriteString(string(runes[:MaxPDFRunes]))
		b.WriteString(TruncateMarker)
	}
	return b.String()
}
