package models

import (
	"strings"
)

// Flashcard is a single question/answer card. Tags behave as an ordered set:
// insertion order is kept and duplicates are dropped.
type Flashcard struct {
	Front string   `json:"front" yaml:"front"`
	Back  string   `json:"back" yaml:"back"`
	Tags  []string `json:"tags" yaml:"tags"`
}

func NewFlashcard(front, back string, tags ...string) Flashcard {
	return Flashcard{
		Front: front,
		Back:  back,
		Tags:  UniqueTags(tags),
	}
}

// UniqueTags removes empty and repeated tags while keeping the first
// occurrence of each. The result is never nil.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (f *Flashcard) AddTags(tags ...string) {
	merged := make([]string, 0, len(f.Tags)+len(tags))
	merged = append(merged, f.Tags...)
	merged = append(merged, tags...)
	f.Tags = UniqueTags(merged)
}

func (f Flashcard) IsComplete() bool {
	return strings.TrimSpace(f.Front) != "" && strings.TrimSpace(f.Back) != ""
}

// ApplyTags returns a copy of cards with tags merged into every card.
func ApplyTags(cards []Flashcard, tags []string) []Flashcard {
	out := make([]Flashcard, len(cards))
	for i, card := range cards {
		card.Tags = append([]string(nil), card.Tags...)
		card.AddTags(tags...)
		out[i] = card
	}
	return out
}
