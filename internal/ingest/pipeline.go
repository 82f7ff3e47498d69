package ingest

import (
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

const (
	PlaceholderBack     = "Unable to extract answer from AI response."
	ListPlaceholderBack = "See reverse side"
	ErrorFront          = "AI Response Processing Error"
	ErrorBack           = "The AI response could not be parsed into proper flashcards. Please try again with different content or instructions."
)

var (
	listTags       = []string{"extracted", "auto-generated"}
	extractedTags  = []string{"extracted"}
	fallbackTags   = []string{"extraction-fallback", "review-needed"}
	unansweredTags = []string{"extraction-error", "review-needed"}
	errorTags      = []string{"error", "retry-needed"}
)

// Strategy turns a raw model response into cards. An error or an empty
// result hands the response to the next strategy.
type Strategy interface {
	Name() string
	Extract(raw string) ([]models.Flashcard, error)
}

func DefaultStrategies() []Strategy {
	return []Strategy{
		StrictStrategy{},
		FieldRegexStrategy{},
		FragmentStrategy{},
		LineHeuristicStrategy{},
	}
}

type Pipeline struct {
	strategies []Strategy
	logger     *logger.Logger
}

type Result struct {
	Cards []models.Flashcard `json:"cards"`
	Stage string             `json:"stage"`
}

// NewPipeline builds the ingestion cascade. With no strategies given the
// default cascade is used.
func NewPipeline(log *logger.Logger, strategies ...Strategy) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Pipeline{
		strategies: strategies,
		logger:     log,
	}
}

func (p *Pipeline) Parse(raw string) []models.Flashcard {
	return p.ParseDetailed(raw).Cards
}

// ParseDetailed runs the strategies in order and returns the first non-empty
// result together with the name of the stage that produced it. It never fails:
// if every stage comes up empty, or a stage returns the error card, the result
// is a single error card from the "error" stage.
func (p *Pipeline) ParseDetailed(raw string) Result {
	p.logger.Trace("Raw AI response: %s", raw)

	for i, strategy := range p.strategies {
		cards, err := p.run(strategy, raw)
		if err != nil {
			p.logger.Debug("Ingestion stage %q failed: %v", strategy.Name(), err)
			continue
		}
		if len(cards) == 0 {
			p.logger.Debug("Ingestion stage %q produced no cards", strategy.Name())
			continue
		}
		if isErrorResult(cards) {
			break
		}

		if i > 0 {
			p.logger.Info("AI response was malformed; recovered %d cards with the %q stage", len(cards), strategy.Name())
		} else {
			p.logger.Debug("Parsed %d cards from AI response", len(cards))
		}
		return Result{Cards: cards, Stage: strategy.Name()}
	}

	p.logger.Warn("No ingestion stage could recover cards from the AI response")
	return Result{Cards: []models.Flashcard{ErrorCard()}, Stage: "error"}
}

// isErrorResult reports whether a stage gave up and returned the error card
// itself, which counts as no recovery.
func isErrorResult(cards []models.Flashcard) bool {
	return len(cards) == 1 && cards[0].Front == ErrorFront && cards[0].Back == ErrorBack
}

func (p *Pipeline) run(strategy Strategy, raw string) (cards []models.Flashcard, err error) {
	defer func() {
		if r := recover(); r != nil {
			cards = nil
			err = eris.Errorf("ingest: stage %q panicked: %v", strategy.Name(), r)
		}
	}()
	return strategy.Extract(raw)
}
