// Package mcpserver exposes the connpass client as Model Context Protocol
// tools, with an optional Apps SDK widget for event results.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lujin3/go-connpass/connpass"
)

const (
	// Name identifies this server to MCP clients.
	Name = "connpass-mcp-server"

	tracerName      = "github.com/lujin3/go-connpass/internal/mcpserver"
	shutdownTimeout = 5 * time.Second
)

// Server serves the connpass tools over one MCP transport.
type Server struct {
	client *connpass.Client
	cfg    Config
	server *mcp.Server

	version string
	logger  *log.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for transport and tool failures. Output is
// discarded by default.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for relative dates and result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithTracerProvider sets the provider of the per-tool-call spans. The
// global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// New builds a Server with every tool and the events widget registered.
func New(client *connpass.Client, cfg Config, opts ...Option) (*Server, error) {
	if client == nil {
		return nil, errors.New("connpass client is required")
	}
	cfg.BasePath = NormalizeBasePath(cfg.BasePath)
	if cfg.Transport == "" {
		cfg.Transport = TransportHTTP
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		client:  client,
		cfg:     cfg,
		version: "1.0.0",
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
		tracer:  otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{Name: Name, Version: s.version}, nil)
	s.addEventTools(s.server)
	s.addGroupTools(s.server)
	s.addUserTools(s.server)
	s.server.AddResource(eventsWidgetResource(), eventsWidgetHandler())
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: eventsWidgetURI,
		Name:        "Connpass events carousel",
		Description: "Inline carousel widget with fullscreen detail view for Connpass events",
		MIMEType:    eventsWidgetMIME,
		Meta:        widgetResourceMeta(),
	}, eventsWidgetHandler())

	return s, nil
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// handle adapts fn into a tool handler. A failure becomes an error result
// the model can read instead of a protocol error.
func handle[In any](s *Server, tool string, fn func(context.Context, In) (any, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		ctx, span := s.tracer.Start(ctx, "mcp.tool",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool.name", tool)))
		defer span.End()

		data, err := fn(ctx, in)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Printf("tool %s failed (%s): %v", tool, connpass.KindOf(err), err)
			return errorResult(err), nil, nil
		}
		return s.toolResult(tool, data), nil, nil
	}
}

// Run serves on the configured transport until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Printf("Apps SDK output %s", enabled(s.cfg.AppsSDKOutput.Bool()))

	if s.cfg.Transport == TransportStdio {
		s.logger.Printf("serving MCP over stdio")
		if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("serve stdio: %w", err)
		}
		return nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves streamable HTTP on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("MCP endpoint listening on http://%s%s", ln.Addr(), s.cfg.BasePath)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

// Handler returns the HTTP surface: the MCP endpoint at the base path and a
// health check at /healthz, with permissive CORS.
func (s *Server) Handler() http.Handler {
	stream := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle(s.cfg.BasePath, stream)
	if s.cfg.BasePath != "/" {
		mux.Handle(s.cfg.BasePath+"/", stream)
	}
	return cors(mux)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"ok","transport":"http"}`)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "content-type, mcp-session-id")
		h.Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		h.Set("Access-Control-Expose-Headers", "mcp-session-id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
