package mcpserver

import (
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// resultKinds names the shape of each tool's data in the structured
// envelope.
var resultKinds = map[string]string{
	"search_events":             "events",
	"get_event_presentations":   "event_presentations",
	"get_my_upcoming_events":    "events",
	"search_groups":             "groups",
	"search_users":              "users",
	"get_user_groups":           "groups",
	"get_user_attended_events":  "events",
	"get_user_presenter_events": "events",
}

// widgetTools are rendered by the events widget.
var widgetTools = map[string]bool{
	"search_events":          true,
	"get_my_upcoming_events": true,
}

// envelope is the structured content sent when Apps SDK output is enabled.
type envelope struct {
	App         string `json:"app"`
	Tool        string `json:"tool"`
	Kind        string `json:"kind"`
	GeneratedAt string `json:"generatedAt"`
	Data        any    `json:"data"`
}

func resultKind(tool string) string {
	if k, ok := resultKinds[tool]; ok {
		return k
	}
	return "generic"
}

func encodeText(v any) (string, error) {
	b, err := json.Marshal(v, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// toolResult renders data as the result of tool. The text content is always
// the indented JSON of data.
func (s *Server) toolResult(tool string, data any) *mcp.CallToolResult {
	text, err := encodeText(data)
	if err != nil {
		return errorResult(fmt.Errorf("encode %s result: %w", tool, err))
	}
	content := &mcp.TextContent{Text: text}
	result := &mcp.CallToolResult{Content: []mcp.Content{content}}

	if !s.cfg.AppsSDKOutput.Bool() {
		return result
	}

	result.StructuredContent = envelope{
		App:         "connpass",
		Tool:        tool,
		Kind:        resultKind(tool),
		GeneratedAt: s.now().UTC().Format(time.RFC3339Nano),
		Data:        data,
	}
	if widgetTools[tool] {
		content.Meta = widgetMeta()
		result.Meta = widgetMeta()
	}
	return result
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
	}
}
