package workflow

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/internal/ingest"
	"github.com/kpauljoseph/ankiforge/internal/prompt"
	"github.com/kpauljoseph/ankiforge/internal/source"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var ErrEmptyInput = eris.New("workflow: no content to generate cards from")

// Result is the outcome of generating cards from a document.
type Result struct {
	Source models.ParsedSource `json:"-"`
	Format models.Format       `json:"format"`
	Prompt string              `json:"prompt"`
	Stage  string              `json:"stage"`
	Cards  []models.Flashcard  `json:"cards"`
}

type GeneratorOption func(*Generator)

func WithStructurer(s *source.Structurer) GeneratorOption {
	return func(g *Generator) {
		g.structurer = s
	}
}

func WithPipeline(p *ingest.Pipeline) GeneratorOption {
	return func(g *Generator) {
		g.pipeline = p
	}
}

// WithDefaultTags adds tags to every generated card.
func WithDefaultTags(tags ...string) GeneratorOption {
	return func(g *Generator) {
		g.defaultTags = models.UniqueTags(tags)
	}
}

// Generator drives one request from input to cards: structure the input,
// synthesize a prompt, ask the model and ingest whatever comes back.
type Generator struct {
	structurer  *source.Structurer
	completer   ai.Completer
	pipeline    *ingest.Pipeline
	defaultTags []string
	logger      *logger.Logger
}

func NewGenerator(completer ai.Completer, log *logger.Logger, opts ...GeneratorOption) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	g := &Generator{
		completer: completer,
		logger:    log,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.structurer == nil {
		g.structurer = source.NewStructurer(log)
	}
	if g.pipeline == nil {
		g.pipeline = ingest.NewPipeline(log)
	}
	return g
}

// FromText sends pasted text to the model as-is.
func (g *Generator) FromText(ctx context.Context, text string, opts ai.GenerateOptions) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyInput
	}
	src := models.ParsedSource{Format: models.FormatText, Content: text}
	return g.generate(ctx, src, text, opts)
}

// FromFile structures an uploaded document and generates cards from it.
func (g *Generator) FromFile(ctx context.Context, fileName string, data []byte, opts ai.GenerateOptions) (Result, error) {
	if len(data) == 0 {
		return Result{}, eris.Wrapf(ErrEmptyInput, "file %s is empty", fileName)
	}
	src := g.structurer.Parse(ctx, fileName, data)
	return g.generate(ctx, src, prompt.FromSource(src), opts)
}

// Preview structures a document and builds its prompt without calling the
// model.
func (g *Generator) Preview(ctx context.Context, fileName string, data []byte) Result {
	src := g.structurer.Parse(ctx, fileName, data)
	return Result{
		Source: src,
		Format: src.Format,
		Prompt: prompt.FromSource(src),
	}
}

func (g *Generator) generate(ctx context.Context, src models.ParsedSource, userPrompt string, opts ai.GenerateOptions) (Result, error) {
	g.logger.Info("Requesting %d cards from %s content", max(opts.Count, ai.DefaultCount), src.Format)

	raw, err := g.completer.Complete(ctx, userPrompt, opts)
	if err != nil {
		return Result{}, eris.Wrap(err, "workflow: completion failed")
	}

	parsed := g.pipeline.ParseDetailed(raw)
	cards := parsed.Cards
	if len(g.defaultTags) > 0 {
		cards = models.ApplyTags(cards, g.defaultTags)
	}

	g.logger.Info("Generated %d cards (stage: %s)", len(cards), parsed.Stage)
	return Result{
		Source: src,
		Format: src.Format,
		Prompt: userPrompt,
		Stage:  parsed.Stage,
		Cards:  cards,
	}, nil
}
