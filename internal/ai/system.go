package ai

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultCount    = 1
	DefaultLanguage = "english"
)

// GenerateOptions are the per-request knobs of card generation.
type GenerateOptions struct {
	Count        int    `json:"count" yaml:"count"`
	Language     string `json:"language" yaml:"language"`
	Instructions string `json:"instructions" yaml:"instructions"`
}

func (o GenerateOptions) withDefaults() GenerateOptions {
	if o.Count < 1 {
		o.Count = DefaultCount
	}
	if strings.TrimSpace(o.Language) == "" {
		o.Language = DefaultLanguage
	}
	o.Instructions = strings.TrimSpace(o.Instructions)
	return o
}

var titleCaser = cases.Title(language.English)

// SystemPrompt sets the rules of the conversation: how many cards, in which
// language, and that the reply must be a bare JSON array of cards.
func SystemPrompt(opts GenerateOptions) string {
	opts = opts.withDefaults()

	var b strings.Builder
	b.WriteString("You are an expert at creating educational flashcards.\n")
	fmt.Fprintf(&b, "Generate %d high-quality Anki flashcards from the provided content in %s.\n", opts.Count, titleCaser.String(strings.TrimSpace(opts.Language)))
	b.WriteString(`Follow these rules:
1. Create clear, concise question-and-answer pairs
2. Focus on the most important concepts
3. Make sure the front side asks a specific question
4. Make sure the back side gives a complete, concise answer
5. Generate 3-5 relevant tags based on the content's topic, subject area, and difficulty level
6. Use markdown formatting for the content where helpful (lists, bold, etc.)
`)
	if opts.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", opts.Instructions)
	}
	b.WriteString(`
VERY IMPORTANT: You MUST respond with properly formatted JSON data exactly as shown below:
[
  {
    "front": "Question on the front side",
    "back": "Answer on the back side",
    "tags": ["tag1", "tag2", "tag3"]
  },
  ...
]

DO NOT include any explanation, comments, or any text outside of the JSON array.`)
	return b.String()
}
