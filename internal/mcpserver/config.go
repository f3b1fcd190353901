package mcpserver

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/lujin3/go-connpass/connpass"
)

// Transport names accepted by Config.Transport.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config holds the MCP server settings read from the environment.
type Config struct {
	// DefaultUserID is used by get_my_upcoming_events when the caller names
	// no user. Zero means unset.
	DefaultUserID int `env:"CONNPASS_DEFAULT_USER_ID"`

	IncludePresentationsDefault connpass.Flag `env:"CONNPASS_INCLUDE_PRESENTATIONS_DEFAULT" envDefault:"false"`
	AppsSDKOutput               connpass.Flag `env:"CONNPASS_ENABLE_APPS_SDK_OUTPUT" envDefault:"false"`

	Transport string `env:"MCP_TRANSPORT" envDefault:"http"`
	BasePath  string `env:"MCP_BASE_PATH" envDefault:"/mcp"`
	Port      int    `env:"PORT" envDefault:"3000"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse mcp server config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.BasePath = NormalizeBasePath(cfg.BasePath)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("unsupported MCP transport %q, use %q or %q", c.Transport, TransportHTTP, TransportStdio)
	}
	if c.DefaultUserID < 0 {
		return fmt.Errorf("CONNPASS_DEFAULT_USER_ID must be a positive number, got %d", c.DefaultUserID)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}

// NormalizeBasePath gives p a leading slash and strips trailing ones. An
// empty path becomes /mcp.
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/mcp"
	}
	if p == "/" {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}
