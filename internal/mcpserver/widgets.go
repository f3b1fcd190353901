package mcpserver

import (
	"context"
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	eventsWidgetURI  = "ui://connpass/widgets/events-carousel.html"
	eventsWidgetMIME = "text/html+sky"
)

//go:embed widgets/events-carousel.html
var eventsWidgetHTML string

// widgetMeta is the Apps SDK metadata tying a tool result to the events
// widget.
func widgetMeta() mcp.Meta {
	return mcp.Meta{
		"openai/outputTemplate":         eventsWidgetURI,
		"openai/resultCanProduceWidget": true,
		"openai/widgetAccessible":       true,
		"openai/widgetCategory":         "carousel",
	}
}

// eventsToolMeta is attached to the definitions of tools whose results the
// widget renders.
func eventsToolMeta() mcp.Meta {
	m := widgetMeta()
	m["openai/toolInvocation/invoking"] = "Connpassイベントを検索中…"
	m["openai/toolInvocation/invoked"] = "Connpassイベントを表示しました"
	return m
}

func widgetResourceMeta() mcp.Meta {
	return mcp.Meta{
		"openai/outputTemplate":         eventsWidgetURI,
		"openai/widgetAccessible":       true,
		"openai/resultCanProduceWidget": true,
		"openai/widgetDomain":           "connpass",
		"openai/widgetCSP": map[string]any{
			"connect_domains":  []string{"https://connpass.com"},
			"resource_domains": []string{"https://connpass.com", "https://media.connpass.com"},
			"redirect_domains": []string{"https://connpass.com"},
		},
	}
}

func eventsWidgetResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         eventsWidgetURI,
		Name:        "Connpass events carousel",
		Description: "Inline carousel widget with fullscreen detail view for Connpass events",
		MIMEType:    eventsWidgetMIME,
		Meta:        widgetResourceMeta(),
	}
}

func eventsWidgetHandler() mcp.ResourceHandler {
	return func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		meta := widgetResourceMeta()
		meta["openai/widgetCategory"] = "carousel"
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      eventsWidgetURI,
					MIMEType: eventsWidgetMIME,
					Text:     eventsWidgetHTML,
					Meta:     meta,
				},
			},
		}, nil
	}
}
