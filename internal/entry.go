// Package internal wires configuration, logging and the publishing pipelines
// behind the CLI commands.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/supamarker/internal/apperr"
	"github.com/starford/supamarker/internal/mcpserver"
	"github.com/starford/supamarker/internal/publisher"
	"github.com/starford/supamarker/internal/supabase"
	pkgconfig "github.com/starford/supamarker/pkg/config"
)

// DefaultConfigPath is where gen-config writes when no path is given.
const DefaultConfigPath = "config.yaml"

// LoadConfig resolves the configuration: defaults, then the SUPABASE_*
// environment, then the YAML file at path when path is not empty.
func LoadConfig(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := NewDefaultConfig()
	cfg.ApplyEnv(lookup)

	if path != "" {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, &apperr.ConfigError{Err: err}
		}
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, &apperr.ConfigError{Err: err}
	}
	return cfg, nil
}

// App runs one command against the configured project.
type App struct {
	config  *Config
	logger  *slog.Logger
	service *publisher.Service
	out     io.Writer
}

// New builds an App from the given options.
func New(opts ...Option) (*App, error) {
	a := &application{}
	for _, opt := range opts {
		opt(a)
	}

	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.logOutput == nil {
		a.logOutput = os.Stderr
	}

	cfg := a.config

	// Initialize structured JSON logger. stdout is reserved for command output.
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("supabase_url", cfg.Supabase.URL),
		slog.String("bucket", cfg.Supabase.Bucket),
		slog.String("table", cfg.Supabase.Table),
		slog.String("log_level", cfg.App.LogLevel.String()))

	client := supabase.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey,
		supabase.WithHTTPClient(a.httpClient),
		supabase.WithLogger(logger))

	return &App{
		config:  cfg,
		logger:  logger,
		service: publisher.NewService(client, cfg.Supabase.Bucket, cfg.Supabase.Table, logger),
		out:     a.stdout,
	}, nil
}

// Publish publishes the markdown file at path and prints a confirmation.
func (a *App) Publish(ctx context.Context, path string) error {
	res, err := a.service.Publish(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ uploaded markdown to storage as %s\n", res.ObjectPath)
	fmt.Fprintf(a.out, "✓ upserted metadata into %s table for slug `%s`\n", res.Table, res.Slug)
	fmt.Fprintf(a.out, "Published ✅: %s\n", res.Title)
	return nil
}

// Delete removes the post identified by slug and prints a confirmation.
func (a *App) Delete(ctx context.Context, slug string, soft bool) error {
	res, err := a.service.Delete(ctx, slug, soft)
	if err != nil {
		return err
	}
	if res.KeptObject {
		fmt.Fprintf(a.out, "✓ Kept markdown in storage: %s\n", res.ObjectPath)
	} else {
		fmt.Fprintf(a.out, "✓ Deleted markdown from storage: %s\n", res.ObjectPath)
	}
	fmt.Fprintf(a.out, "✓ Deleted metadata from %s table for slug `%s`\n", res.Table, res.Slug)
	fmt.Fprintf(a.out, "Post `%s` deleted successfully ✅\n", res.Slug)
	return nil
}

// List prints every known slug and where it lives.
func (a *App) List(ctx context.Context) error {
	entries, err := a.service.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No slugs found.")
		return nil
	}
	fmt.Fprintf(a.out, "%-32s %s\n", "slug", "location")
	for _, e := range entries {
		fmt.Fprintf(a.out, "%-32s %s\n", e.Slug, e.Location)
	}
	return nil
}

// ServeMCP exposes the pipelines as MCP tools on stdin/stdout until the client disconnects.
func (a *App) ServeMCP(_ context.Context) error {
	a.logger.Info("MCP server starting",
		slog.String("bucket", a.config.Supabase.Bucket),
		slog.String("table", a.config.Supabase.Table))
	return mcpserver.New(a.service).ServeStdio()
}

const sampleHeader = `# supamarker configuration.
# ${VAR} references are expanded from the environment when the file is loaded.
`

// GenerateConfig writes a sample configuration file to path and returns the
// path written. An existing file is never overwritten.
func GenerateConfig(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	sample := NewDefaultConfig()
	sample.App.LogLevel = slog.LevelInfo
	sample.Supabase.URL = "${" + EnvURL + "}"
	sample.Supabase.ServiceKey = "${" + EnvServiceKey + "}"

	if err := pkgconfig.Save(path, sampleHeader, sample); err != nil {
		if errors.Is(err, pkgconfig.ErrExists) {
			return "", fmt.Errorf("%w: %s", apperr.ErrAlreadyExists, path)
		}
		return "", err
	}
	return path, nil
}
