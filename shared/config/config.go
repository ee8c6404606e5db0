package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Google      GoogleConfig        `yaml:"google"`
	Transcripts TranscriptsConfig   `yaml:"transcripts"`
	AI          AIConfig            `yaml:"ai"`
	Promotions  map[string][]string `yaml:"promotions"`
}

type GoogleConfig struct {
	ClientID        string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret    string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	CredentialsFile string `yaml:"credentials_file" env:"SHOWLOG_CREDENTIALS_FILE"`
	TokenFile       string `yaml:"token_file" env:"SHOWLOG_TOKEN_FILE"`
}

type TranscriptsConfig struct {
	Languages          []string `yaml:"languages"`
	CookiesFile        string   `yaml:"cookies_file" env:"SHOWLOG_COOKIES_FILE"`
	CookiesFromBrowser string   `yaml:"cookies_from_browser" env:"SHOWLOG_COOKIES_FROM_BROWSER"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Environment variables alone are a complete configuration.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if cfg.Google.ClientID == "" {
		cfg.Google.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.Google.ClientSecret == "" {
		cfg.Google.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if cfg.Google.CredentialsFile == "" {
		cfg.Google.CredentialsFile = os.Getenv("SHOWLOG_CREDENTIALS_FILE")
	}
	if cfg.Google.TokenFile == "" {
		cfg.Google.TokenFile = os.Getenv("SHOWLOG_TOKEN_FILE")
	}
	if cfg.Transcripts.CookiesFile == "" {
		cfg.Transcripts.CookiesFile = os.Getenv("SHOWLOG_COOKIES_FILE")
	}
	if cfg.Transcripts.CookiesFromBrowser == "" {
		cfg.Transcripts.CookiesFromBrowser = os.Getenv("SHOWLOG_COOKIES_FROM_BROWSER")
	}
	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	if cfg.Google.CredentialsFile == "" {
		cfg.Google.CredentialsFile = "credentials.json"
	}
	if cfg.Google.TokenFile == "" {
		cfg.Google.TokenFile = "token.json"
	}
	if len(cfg.Transcripts.Languages) == 0 {
		cfg.Transcripts.Languages = []string{"en", "en-US"}
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.5-flash"
	}
	if len(cfg.Promotions) == 0 {
		cfg.Promotions = map[string][]string{
			"WWE": {"RAW", "SMACKDOWN"},
			"AEW": {"DYNAMITE", "COLLISION"},
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Google.ClientID != "" && c.Google.ClientSecret != "" {
		return nil
	}
	if _, err := os.Stat(c.Google.CredentialsFile); err == nil {
		return nil
	}
	return fmt.Errorf("Google OAuth client is required (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET, or provide %s)", c.Google.CredentialsFile)
}

// AIEnabled reports whether the optional formatting pass can run.
func (c *Config) AIEnabled() bool {
	return c.AI.GeminiAPIKey != ""
}
