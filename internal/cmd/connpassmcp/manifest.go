package connpassmcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	registryv0 "github.com/modelcontextprotocol/registry/pkg/api/v0"
	"github.com/modelcontextprotocol/registry/pkg/model"
	"github.com/urfave/cli"
)

const (
	defaultManifestName        = "io.github.lujin3/connpass-mcp"
	defaultManifestDescription = "Search connpass events, groups, users and presentations."
	defaultRepositoryURL       = "https://github.com/lujin3/go-connpass"

	remoteTypeStreamableHTTP = "streamable-http"
)

type manifestOptions struct {
	Name        string
	Version     string
	Description string
	Repository  string
	RemoteURL   string
}

// buildManifest returns the registry entry describing this server. The
// version must be strict semver: the registry orders versions by it.
func buildManifest(o manifestOptions) (registryv0.ServerJSON, error) {
	name := strings.TrimSpace(o.Name)
	if name == "" || !strings.Contains(name, "/") {
		return registryv0.ServerJSON{}, fmt.Errorf("server name must be namespace/name, got %q", o.Name)
	}
	v, err := semver.StrictNewVersion(strings.TrimSpace(o.Version))
	if err != nil {
		return registryv0.ServerJSON{}, fmt.Errorf("invalid version %q: %w", o.Version, err)
	}

	server := registryv0.ServerJSON{
		Name:        name,
		Version:     v.String(),
		Description: o.Description,
		Repository: model.Repository{
			URL:    o.Repository,
			Source: "github",
		},
	}
	if u := strings.TrimSpace(o.RemoteURL); u != "" {
		server.Remotes = []model.Transport{{Type: remoteTypeStreamableHTTP, URL: u}}
	}
	return server, nil
}

func runManifest(c *cli.Context, version string) error {
	o := manifestOptions{
		Name:        c.String("name"),
		Version:     c.String("version"),
		Description: c.String("description"),
		Repository:  c.String("repository"),
		RemoteURL:   c.String("remote-url"),
	}
	if o.Version == "" {
		o.Version = version
	}

	server, err := buildManifest(o)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(server, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%s\n", out)
	return nil
}
