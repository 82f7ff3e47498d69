package ingest

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var numberedLinePattern = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

// ConvertNumberedList turns "1. question" style output into a JSON card
// array. Each numbered line starts the card at position n-1; a following
// plain line becomes (or replaces) that card's back. A repeated number
// overwrites the earlier card and gaps in the numbering are dropped.
func ConvertNumberedList(text string) string {
	data, err := json.Marshal(numberedListCards(text))
	if err != nil {
		return "[]"
	}
	return string(data)
}

func numberedListCards(text string) []models.Flashcard {
	slots := make(map[int]*models.Flashcard)
	current := -1

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := numberedLinePattern.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				current = -1
				continue
			}
			current = n - 1
			card := models.NewFlashcard(m[2], ListPlaceholderBack, listTags...)
			slots[current] = &card
			continue
		}

		if card, ok := slots[current]; ok {
			card.Back = line
		}
	}

	positions := make([]int, 0, len(slots))
	for pos := range slots {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	cards := make([]models.Flashcard, 0, len(positions))
	for _, pos := range positions {
		cards = append(cards, *slots[pos])
	}
	return cards
}
