package mcpserver

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONNPASS_DEFAULT_USER_ID",
		"CONNPASS_INCLUDE_PRESENTATIONS_DEFAULT",
		"CONNPASS_ENABLE_APPS_SDK_OUTPUT",
		"MCP_TRANSPORT",
		"MCP_BASE_PATH",
		"PORT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearServerEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{Transport: TransportHTTP, BasePath: "/mcp", Port: 3000}, cfg)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("CONNPASS_DEFAULT_USER_ID", "42")
	t.Setenv("CONNPASS_INCLUDE_PRESENTATIONS_DEFAULT", "yes")
	t.Setenv("CONNPASS_ENABLE_APPS_SDK_OUTPUT", "1")
	t.Setenv("MCP_TRANSPORT", " STDIO ")
	t.Setenv("MCP_BASE_PATH", "rpc/")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.DefaultUserID)
	assert.True(t, cfg.IncludePresentationsDefault.Bool())
	assert.True(t, cfg.AppsSDKOutput.Bool())
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "/rpc", cfg.BasePath)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"transport", "MCP_TRANSPORT", "sse"},
		{"user id", "CONNPASS_DEFAULT_USER_ID", "abc"},
		{"negative user id", "CONNPASS_DEFAULT_USER_ID", "-1"},
		{"flag", "CONNPASS_ENABLE_APPS_SDK_OUTPUT", "maybe"},
		{"port", "PORT", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServerEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":       "/mcp",
		"  ":     "/mcp",
		"/":      "/",
		"mcp":    "/mcp",
		"/mcp/":  "/mcp",
		"/a/b//": "/a/b",
		"///":    "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBasePath(in), "NormalizeBasePath(%q)", in)
	}
}
