package ingest

import (
	"regexp"
	"strings"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var (
	interrogativePattern = regexp.MustCompile(`(?i)^(what|how|why|when|which|who)`)
	numeralPattern       = regexp.MustCompile(`^\d+\.`)
)

// LineHeuristicStrategy is the last resort. It pairs question-looking lines
// with the line that follows them and always returns at least one card.
type LineHeuristicStrategy struct{}

func (LineHeuristicStrategy) Name() string { return "line-heuristic" }

func (LineHeuristicStrategy) Extract(raw string) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	pending := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isQuestionLine(line) {
			if pending != "" {
				cards = append(cards, unansweredCard(pending))
			}
			pending = line
			continue
		}

		if pending != "" {
			cards = append(cards, models.NewFlashcard(pending, line, fallbackTags...))
			pending = ""
		}
	}

	if pending != "" {
		cards = append(cards, unansweredCard(pending))
	}

	if len(cards) == 0 {
		cards = append(cards, ErrorCard())
	}
	return cards, nil
}

func isQuestionLine(line string) bool {
	return strings.HasSuffix(line, "?") ||
		numeralPattern.MatchString(line) ||
		interrogativePattern.MatchString(line)
}

func unansweredCard(question string) models.Flashcard {
	return models.NewFlashcard(question, PlaceholderBack, unansweredTags...)
}

// ErrorCard is what a caller gets when nothing in the response was usable.
func ErrorCard() models.Flashcard {
	return models.NewFlashcard(ErrorFront, ErrorBack, errorTags...)
}
