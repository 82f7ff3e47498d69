package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

const (
	DefaultConfigPath = "ankiforge.yaml"
	DefaultEnvFile    = ".env"

	EnvAIAPIKey       = "ANKIFORGE_AI_API_KEY"
	EnvAIAPIURL       = "ANKIFORGE_AI_API_URL"
	EnvAIModel        = "ANKIFORGE_AI_MODEL"
	EnvAnkiConnectURL = "ANKIFORGE_ANKI_CONNECT_URL"
	EnvLogLevel       = "ANKIFORGE_LOG_LEVEL"

	defaultDeck       = "Default"
	defaultNoteType   = "Basic"
	defaultServerAddr = "127.0.0.1:8080"
	defaultLogFormat  = logger.FormatConsole
	defaultLogLevel   = "info"
	defaultCORSOrigin = "http://localhost:5173"
)

var ErrMissingAPIKey = eris.New("config: an AI API key is required; set ai.api_key or " + EnvAIAPIKey)

type Config struct {
	AI         AIConfig         `yaml:"ai"`
	Anki       AnkiConfig       `yaml:"anki"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

type AIConfig struct {
	APIKey             string `yaml:"api_key"`
	APIURL             string `yaml:"api_url"`
	Model              string `yaml:"model"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

type AnkiConfig struct {
	ConnectURL      string   `yaml:"connect_url"`
	DefaultDeck     string   `yaml:"default_deck"`
	DefaultNoteType string   `yaml:"default_note_type"`
	DefaultTags     []string `yaml:"default_tags"`
	AllowDuplicate  bool     `yaml:"allow_duplicate"`
}

type GenerationConfig struct {
	Count        int    `yaml:"count"`
	Language     string `yaml:"language"`
	Instructions string `yaml:"instructions"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, then applies overrides from the process
// environment and the given .env files, then fills in defaults. A missing
// config file or .env file is not an error.
func Load(path string, envFiles ...string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, eris.Wrapf(err, "parsing config file %s", path)
			}
		case os.IsNotExist(err):
		default:
			return nil, eris.Wrapf(err, "reading config file %s", path)
		}
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return dotenv[key]
	})
	cfg.applyDefaults()

	return &cfg, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, eris.Wrapf(err, "reading env file %s", file)
		}
		for k, v := range values {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}
	return vars, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	overrides := map[string]*string{
		EnvAIAPIKey:       &c.AI.APIKey,
		EnvAIAPIURL:       &c.AI.APIURL,
		EnvAIModel:        &c.AI.Model,
		EnvAnkiConnectURL: &c.Anki.ConnectURL,
		EnvLogLevel:       &c.Log.Level,
	}
	for key, field := range overrides {
		if val := strings.TrimSpace(getenv(key)); val != "" {
			*field = val
		}
	}
}

func (c *Config) applyDefaults() {
	if c.AI.APIURL == "" {
		c.AI.APIURL = ai.DefaultEndpoint
	}
	if c.AI.Model == "" {
		c.AI.Model = ai.DefaultModel
	}
	if c.Anki.ConnectURL == "" {
		c.Anki.ConnectURL = anki.DefaultAnkiConnectURL
	}
	if c.Anki.DefaultDeck == "" {
		c.Anki.DefaultDeck = defaultDeck
	}
	if c.Anki.DefaultNoteType == "" {
		c.Anki.DefaultNoteType = defaultNoteType
	}
	if c.Generation.Count < 1 {
		c.Generation.Count = ai.DefaultCount
	}
	if c.Generation.Language == "" {
		c.Generation.Language = ai.DefaultLanguage
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{defaultCORSOrigin}
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrap(err, "config: log.level")
	}
	if c.Log.Format != logger.FormatConsole && c.Log.Format != logger.FormatJSON {
		return eris.Errorf("config: log.format must be %q or %q, got %q", logger.FormatConsole, logger.FormatJSON, c.Log.Format)
	}
	if c.AI.RequestTimeoutSecs < 0 {
		return eris.New("config: ai.request_timeout_secs cannot be negative")
	}
	return nil
}

// RequireAI is checked only by commands that call the completion endpoint.
func (c *Config) RequireAI() error {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// RequestTimeout is zero when no timeout is configured.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.AI.RequestTimeoutSecs) * time.Second
}

func (c *Config) GenerateOptions() ai.GenerateOptions {
	return ai.GenerateOptions{
		Count:        c.Generation.Count,
		Language:     c.Generation.Language,
		Instructions: c.Generation.Instructions,
	}
}
