// Package config loads openai-chat settings from defaults, an optional .env
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/quells-bot/openai-chat/llm"
)

// Transport names accepted in CHAT_TRANSPORT.
const (
	TransportHTTP    = "http"
	TransportSDK     = "sdk"
	TransportBedrock = "bedrock"
)

type Config struct {
	Token          string        `env:"OPENAI_TOKEN"`     // API credential, required
	Model          string        `env:"OPENAI_MODEL"`     // model identifier
	Endpoint       string        `env:"OPENAI_ENDPOINT"`  // chat completions URL for the http transport
	Timeout        time.Duration `env:"OPENAI_TIMEOUT"`   // round-trip timeout, 0 disables
	Transport      string        `env:"CHAT_TRANSPORT"`   // http|sdk|bedrock
	BedrockModelID string        `env:"BEDROCK_MODEL_ID"` // overrides Model for the bedrock transport
	Debug          bool          `env:"CHAT_DEBUG"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Model:     llm.DefaultModel,
		Endpoint:  llm.DefaultEndpoint,
		Timeout:   2 * time.Minute,
		Transport: TransportHTTP,
	}
}

// Load starts from Defaults, applies the given .env files (".env" when none
// are named) and then the environment. Variables already present in the
// environment win over .env values. A missing .env file is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load env file: %w", err)
	}

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot. The token is not checked
// here; a missing token surfaces from llm.NewSession.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportSDK, TransportBedrock:
	default:
		return fmt.Errorf("unknown transport %q (want http, sdk or bedrock)", c.Transport)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	return nil
}
