package main

import (
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/internal/config"
	"github.com/kpauljoseph/ankiforge/internal/workflow"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger

	configPath string
	verbose    bool
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "ankiforge",
	Short: "Generate Anki flashcards from documents with an AI model",
	Long: `Turns text, markdown, CSV, JSON, XLSX and PDF documents into question/answer
flashcards using an OpenAI-compatible chat-completion endpoint, then pushes
them into Anki through the AnkiConnect add-on.

Typical flow:
  ankiforge generate notes.md --out cards.yaml
  $EDITOR cards.yaml
  ankiforge push cards.yaml --deck Biology`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath, config.DefaultEnvFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		log = logger.New(
			logger.WithPrefix("[ankiforge] "),
			logger.WithOutput(os.Stderr),
			logger.WithFormat(cfg.Log.Format),
		)
		level, err := logger.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetVerbose(verbose)
		if debug {
			log.SetLevel(logger.LevelTrace)
		}
		if verbose {
			log.Debug("Verbose logging enabled")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode with trace logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newAnkiClient() *anki.Client {
	return anki.NewClient(log, anki.WithURL(cfg.Anki.ConnectURL))
}

func newCompletionClient() *ai.Client {
	return ai.NewClient(cfg.AI.APIKey,
		ai.WithEndpoint(cfg.AI.APIURL),
		ai.WithModel(cfg.AI.Model),
		ai.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		ai.WithLogger(log),
	)
}

func newGenerator() *workflow.Generator {
	return workflow.NewGenerator(newCompletionClient(), log,
		workflow.WithDefaultTags(cfg.Anki.DefaultTags...),
	)
}
