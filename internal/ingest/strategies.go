package ingest

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var (
	frontFieldPattern = regexp.MustCompile(`"front"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	backFieldPattern  = regexp.MustCompile(`"back"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	tagsFieldPattern  = regexp.MustCompile(`"tags"\s*:\s*\[((?:[^"\\\]]|\\.|"(?:[^"\\]|\\.)*")*)\]`)

	arrayOfObjectsPattern = regexp.MustCompile(`\[\s*\{[\s\S]*\}\s*\]`)
	cardObjectPattern     = regexp.MustCompile(`\{[^{}]*"front"[^{}]*"back"[^{}]*\}`)
)

var (
	errNoFields    = eris.New("ingest: no front/back fields found")
	errNoFragments = eris.New("ingest: no card fragments found")
)

// StrictStrategy sanitizes the response and requires it to parse as JSON.
type StrictStrategy struct{}

func (StrictStrategy) Name() string { return "strict" }

func (StrictStrategy) Extract(raw string) ([]models.Flashcard, error) {
	return decodeCards(Sanitize(raw), nil)
}

// FieldRegexStrategy pulls "front"/"back"/"tags" values out of otherwise
// broken JSON and pairs them by order of appearance.
type FieldRegexStrategy struct{}

func (FieldRegexStrategy) Name() string { return "field-regex" }

func (FieldRegexStrategy) Extract(raw string) ([]models.Flashcard, error) {
	if cards, ok := bracketTrimmedCards(raw); ok {
		return cards, nil
	}

	fronts := frontFieldPattern.FindAllStringSubmatch(raw, -1)
	backs := backFieldPattern.FindAllStringSubmatch(raw, -1)
	n := min(len(fronts), len(backs))
	if n == 0 {
		return nil, errNoFields
	}

	tagMatches := tagsFieldPattern.FindAllStringSubmatch(raw, -1)

	cards := make([]models.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		tags := extractedTags
		if i < len(tagMatches) {
			if parsed, ok := stringList(json.RawMessage("[" + tagMatches[i][1] + "]")); ok {
				tags = parsed
			}
		}
		cards = append(cards, models.NewFlashcard(
			unescapeJSONString(fronts[i][1]),
			unescapeJSONString(backs[i][1]),
			tags...,
		))
	}
	return cards, nil
}

// bracketTrimmedCards is a cheap second chance: parse whatever sits between
// the first '[' and the last ']' as an array of card objects.
func bracketTrimmedCards(raw string) ([]models.Flashcard, bool) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, false
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &elems); err != nil {
		return nil, false
	}
	if !allObjects(elems) {
		return nil, false
	}

	cards := make([]models.Flashcard, 0, len(elems))
	for _, elem := range elems {
		cards = append(cards, coerceCard(elem, nil))
	}
	return cards, true
}

// FragmentStrategy looks for an array of objects anywhere in the text and,
// failing that, parses each flat {"front" ... "back" ...} object on its own.
type FragmentStrategy struct{}

func (FragmentStrategy) Name() string { return "fragments" }

func (FragmentStrategy) Extract(raw string) ([]models.Flashcard, error) {
	if match := arrayOfObjectsPattern.FindString(raw); match != "" {
		if cards, err := decodeCards(Sanitize(match), extractedTags); err == nil && len(cards) > 0 {
			return cards, nil
		}
	}

	var cards []models.Flashcard
	for _, fragment := range cardObjectPattern.FindAllString(raw, -1) {
		parsed, err := decodeCards(Sanitize(fragment), extractedTags)
		if err != nil {
			continue
		}
		cards = append(cards, parsed...)
	}

	if len(cards) == 0 {
		return nil, errNoFragments
	}
	return cards, nil
}
