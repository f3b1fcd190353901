package connpass

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds client settings read from the environment.
type Config struct {
	APIKey  string `env:"CONNPASS_API_KEY"`
	BaseURL string `env:"CONNPASS_BASE_URL" envDefault:"https://connpass.com/api/v2/"`
	Timeout Millis `env:"CONNPASS_TIMEOUT_MS" envDefault:"30000"`

	RateLimitEnabled Flag   `env:"CONNPASS_RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitDelay   Millis `env:"CONNPASS_RATE_LIMIT_DELAY_MS" envDefault:"1000"`

	PresentationCacheEnabled Flag   `env:"CONNPASS_PRESENTATION_CACHE_ENABLED" envDefault:"true"`
	PresentationCacheTTL     Millis `env:"CONNPASS_PRESENTATION_CACHE_TTL_MS" envDefault:"3600000"`
	PresentationCachePath    string `env:"CONNPASS_PRESENTATION_CACHE_PATH" envDefault:"data/presentation-cache.json"`

	// PresentationCacheBackend selects the cache store: file, leveldb or
	// sqlite. Only file is built by Options; the others are wired by the
	// caller.
	PresentationCacheBackend string `env:"CONNPASS_PRESENTATION_CACHE_BACKEND" envDefault:"file"`
}

// LoadConfig reads Config from the environment, applying defaults for unset
// variables. Malformed values are an error.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse connpass config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings no client could be built from.
func (c Config) Validate() error {
	switch c.PresentationCacheBackend {
	case "file", "leveldb", "sqlite":
	default:
		return fmt.Errorf("unknown presentation cache backend %q", c.PresentationCacheBackend)
	}
	if c.PresentationCacheEnabled.Bool() && strings.TrimSpace(c.PresentationCachePath) == "" {
		return fmt.Errorf("presentation cache path cannot be empty")
	}
	return nil
}

// Options converts c into client options. Options passed to NewClient after
// these take precedence over them. When the file backend is selected and
// caching is enabled, a TableCache over a FileStore is installed.
func (c Config) Options(logger *slog.Logger) []Option {
	opts := c.ClientOptions(logger)
	if c.PresentationCacheEnabled.Bool() && c.PresentationCacheBackend == "file" {
		opts = append(opts, WithPresentationCache(
			NewTableCache(NewFileStore(c.PresentationCachePath), c.PresentationCacheTTL.Duration(), logger)))
	}
	return opts
}

// ClientOptions is like Options but never installs a presentation cache, for
// callers that build their own.
func (c Config) ClientOptions(logger *slog.Logger) []Option {
	opts := []Option{
		WithBaseURL(c.BaseURL),
		WithTimeout(c.Timeout.Duration()),
		WithRateLimit(c.RateLimitEnabled.Bool(), c.RateLimitDelay.Duration()),
	}
	if c.APIKey != "" {
		opts = append(opts, WithAPIKey(c.APIKey))
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return opts
}

// Flag is a boolean accepting 1/0, true/false, yes/no, y/n and on/off.
type Flag bool

func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "1", "true", "yes", "y", "on":
		*f = true
	case "0", "false", "no", "n", "off":
		*f = false
	default:
		return fmt.Errorf("invalid boolean %q", text)
	}
	return nil
}

func (f Flag) Bool() bool { return bool(f) }

// Millis is a duration written as a whole, non-negative number of
// milliseconds.
type Millis time.Duration

func (m *Millis) UnmarshalText(text []byte) error {
	n, err := strconv.ParseInt(strings.TrimSpace(string(text)), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid milliseconds %q", text)
	}
	if n < 0 {
		return fmt.Errorf("milliseconds cannot be negative, got %d", n)
	}
	*m = Millis(time.Duration(n) * time.Millisecond)
	return nil
}

func (m Millis) Duration() time.Duration { return time.Duration(m) }
