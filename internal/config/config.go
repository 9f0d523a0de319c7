// Package config loads server settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	Port      string `env:"PORT"       envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DBPath string `env:"DB_PATH" envDefault:"./data/hurdle.db"`

	JWTSecret      string        `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	TokenTTL       time.Duration `env:"TOKEN_TTL"        envDefault:"24h"`
	CookieSecure   bool          `env:"COOKIE_SECURE"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`

	AnswersFile string `env:"WORDS_ANSWERS_FILE"`
	AllowedFile string `env:"WORDS_ALLOWED_FILE"`

	DictionaryURL       string        `env:"DICTIONARY_URL"`
	DictionaryTimeout   time.Duration `env:"DICTIONARY_TIMEOUT"    envDefault:"3s"`
	DictionaryRPS       float64       `env:"DICTIONARY_RPS"        envDefault:"5"`
	DictionaryCacheSize int           `env:"DICTIONARY_CACHE_SIZE" envDefault:"4096"`
	ProviderAttempts    int           `env:"PROVIDER_ATTEMPTS"     envDefault:"3"`

	MaxAttempts int  `env:"HURDLE_MAX_ATTEMPTS" envDefault:"4"`
	HardMode    bool `env:"HURDLE_HARD_MODE"`
}

// Load reads .env files (missing files are fine) and parses the environment.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges the env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > 4 {
		errs = append(errs, fmt.Errorf("HURDLE_MAX_ATTEMPTS must be 1..4, got %d", c.MaxAttempts))
	}
	if c.ProviderAttempts < 1 {
		errs = append(errs, fmt.Errorf("PROVIDER_ATTEMPTS must be at least 1, got %d", c.ProviderAttempts))
	}
	if c.DictionaryURL != "" && c.DictionaryRPS <= 0 {
		errs = append(errs, fmt.Errorf("DICTIONARY_RPS must be positive, got %g", c.DictionaryRPS))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
