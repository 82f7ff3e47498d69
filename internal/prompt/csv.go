package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

const MaxSampleRows = 5

// FromCSV summarises tabular data for the model: its shape, a handful of
// sample rows and, when the headers look familiar, a hint on how to turn
// rows into cards.
func FromCSV(headers []string, rows []models.Row) string {
	var b strings.Builder

	b.WriteString("Generate Anki flashcards from the following CSV data.\n\n")
	fmt.Fprintf(&b, "The data has %d columns: %s\n", len(headers), strings.Join(headers, ", "))
	fmt.Fprintf(&b, "It contains %d rows.\n\n", len(rows))

	sample := rows
	if len(sample) > MaxSampleRows {
		sample = sample[:MaxSampleRows]
	}
	b.WriteString("Sample rows:\n")
	for i, row := range sample {
		fmt.Fprintf(&b, "\nRow %d:\n", i+1)
		for _, field := range row {
			fmt.Fprintf(&b, "%s: %s\n", field.Key, formatValue(field.Value))
		}
	}

	if guidance := csvGuidance(headers); guidance != "" {
		b.WriteString("\n")
		b.WriteString(guidance)
		b.WriteString("\n")
	}

	b.WriteString("\nPlease create concise and effective flashcards based on this data.")
	return b.String()
}

func csvGuidance(headers []string) string {
	question := findHeader(headers, "question", "front", "prompt")
	answer := findHeader(headers, "answer", "back", "response")
	if question != "" && answer != "" {
		return fmt.Sprintf("The data already pairs questions with answers. Use the %q column for the front of each card and the %q column for the back, improving the wording where needed.", question, answer)
	}

	term := findHeader(headers, "term", "word", "concept")
	definition := findHeader(headers, "definition", "meaning", "description")
	if term != "" && definition != "" {
		return fmt.Sprintf("The data lists terms with definitions. Create one card per row asking about the %q value and answering with its %q.", term, definition)
	}

	if len(headers) == 2 {
		return fmt.Sprintf("The data has two columns. Treat %q as the prompt side and %q as the answer side of each card.", headers[0], headers[1])
	}
	return ""
}

func findHeader(headers []string, candidates ...string) string {
	for _, header := range headers {
		name := strings.ToLower(strings.TrimSpace(header))
		for _, candidate := range candidates {
			if strings.Contains(name, candidate) {
				return header
			}
		}
	}
	return ""
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
