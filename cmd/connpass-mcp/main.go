package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lujin3/go-connpass/internal/cmd/connpassmcp"
)

// set by the linker: go build -ldflags "-X main.version=M.N.P" ./cmd/connpass-mcp
var version = "1.0.0"

func main() {
	log.SetPrefix("[connpass-mcp] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := connpassmcp.NewApp(ctx, version)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
