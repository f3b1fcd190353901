// Package connpassmcp implements the connpass-mcp command line: serving the
// MCP server, printing its registry manifest and maintaining the
// presentation cache.
package connpassmcp

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/lujin3/go-connpass/connpass"
	"github.com/lujin3/go-connpass/internal/mcpserver"
	"github.com/lujin3/go-connpass/internal/telemetry"
)

const (
	logPrefix         = "[connpass-mcp] "
	telemetryShutdown = 5 * time.Second
)

// NewApp returns the connpass-mcp application. ctx bounds every command;
// cancelling it stops a running server.
func NewApp(ctx context.Context, version string) *cli.App {
	app := cli.NewApp()
	app.Name = "connpass-mcp"
	app.Usage = "MCP server for the connpass event API"
	app.Version = version

	serveFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "transport, t",
			Value: "",
			Usage: " MCP transport `NAME` [http|stdio] (default from MCP_TRANSPORT)",
		},
		cli.StringFlag{
			Name:  "port, p",
			Value: "",
			Usage: " HTTP listen `PORT` (default from PORT)",
		},
		cli.StringFlag{
			Name:  "base-path, b",
			Value: "",
			Usage: " HTTP `PATH` the MCP endpoint is mounted at (default from MCP_BASE_PATH)",
		},
	}

	serve := func(c *cli.Context) error {
		return runServe(ctx, c, version)
	}

	app.Flags = serveFlags
	app.Action = serve
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "run the MCP server (the default)",
			Flags:  serveFlags,
			Action: serve,
		},
		{
			Name:  "manifest",
			Usage: "print the MCP registry server.json for this server",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, n",
					Value: defaultManifestName,
					Usage: " registry server `NAME`",
				},
				cli.StringFlag{
					Name:  "version, V",
					Value: "",
					Usage: " semantic `VERSION` to publish (default the binary version)",
				},
				cli.StringFlag{
					Name:  "description, d",
					Value: defaultManifestDescription,
					Usage: " server `DESCRIPTION`",
				},
				cli.StringFlag{
					Name:  "repository, r",
					Value: defaultRepositoryURL,
					Usage: " source repository `URL`",
				},
				cli.StringFlag{
					Name:  "remote-url, u",
					Value: "",
					Usage: " public streamable HTTP endpoint `URL`",
				},
			},
			Action: func(c *cli.Context) error {
				return runManifest(c, version)
			},
		},
		{
			Name:  "cache",
			Usage: "maintain the presentation cache",
			Subcommands: []cli.Command{
				{
					Name:  "clear",
					Usage: "remove every cached presentation",
					Action: func(c *cli.Context) error {
						return runCacheClear(ctx, c)
					},
				},
			},
		},
	}
	return app
}

func runServe(ctx context.Context, c *cli.Context, version string) error {
	apiCfg, err := connpass.LoadConfig()
	if err != nil {
		return err
	}
	srvCfg, err := mcpserver.LoadConfig()
	if err != nil {
		return err
	}
	if err := applyServeFlags(c, &srvCfg); err != nil {
		return err
	}

	logger := log.New(c.App.ErrWriter, logPrefix, log.LstdFlags)
	slogger := slog.New(slog.NewTextHandler(c.App.ErrWriter, nil))

	shutdown, err := telemetry.Setup(ctx, mcpserver.Name, version)
	if err != nil {
		return fmt.Errorf("set up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdown)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()

	cache, closeCache, err := openCache(ctx, apiCfg, slogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Printf("close presentation cache: %v", err)
		}
	}()

	opts := append(apiCfg.ClientOptions(slogger), connpass.WithPresentationCache(cache))
	client, err := connpass.NewClient(nil, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	srv, err := mcpserver.New(client, srvCfg,
		mcpserver.WithLogger(logger),
		mcpserver.WithVersion(version),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// applyServeFlags overrides the environment configuration with any flag the
// user set, then revalidates it.
func applyServeFlags(c *cli.Context, cfg *mcpserver.Config) error {
	if v, ok := flagValue(c, "transport"); ok {
		cfg.Transport = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := flagValue(c, "port"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid port %q", v)
		}
		cfg.Port = port
	}
	if v, ok := flagValue(c, "base-path"); ok {
		cfg.BasePath = mcpserver.NormalizeBasePath(v)
	}
	return cfg.Validate()
}

// flagValue returns a flag set either on the command itself or, when the
// command runs under the application, on the application.
func flagValue(c *cli.Context, name string) (string, bool) {
	if c.IsSet(name) {
		return c.String(name), true
	}
	if c.GlobalIsSet(name) {
		return c.GlobalString(name), true
	}
	return "", false
}

func runCacheClear(ctx context.Context, c *cli.Context) error {
	cfg, err := connpass.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.PresentationCacheEnabled.Bool() {
		return fmt.Errorf("presentation cache is disabled")
	}

	slogger := slog.New(slog.NewTextHandler(c.App.ErrWriter, nil))
	cache, closeCache, err := openCache(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	clearErr := cache.Clear(ctx)
	if err := closeCache(); err != nil && clearErr == nil {
		clearErr = err
	}
	if clearErr != nil {
		return fmt.Errorf("clear presentation cache: %w", clearErr)
	}

	fmt.Fprintf(c.App.Writer, "cleared %s presentation cache at %s\n",
		cfg.PresentationCacheBackend, storePath(cfg))
	return nil
}
