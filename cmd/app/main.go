package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/supamarker/internal"
)

func newApp(cmd *cli.Command) (*internal.App, error) {
	root := cmd.Root()

	cfg, err := internal.LoadConfig(root.String("config"), os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if lvl := root.String("log-level"); lvl != "" {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lvl, err)
		}
	}

	return internal.New(
		internal.WithConfig(cfg),
		internal.WithOutput(root.Writer),
	)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected exactly one <%s> argument", cmd.Name, name)
	}
	return cmd.Args().First(), nil
}

func publish(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.Publish(ctx, path)
}

func deletePost(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.Delete(ctx, slug, cmd.Bool("soft"))
}

func list(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.List(ctx)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.ServeMCP(ctx)
}

func genConfig(_ context.Context, cmd *cli.Command) error {
	p, err := internal.GenerateConfig(cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Sample config written to %s\n", p)
	return nil
}

func newRootCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "supamarker",
		Usage:  "Publish markdown posts to Supabase (storage + posts table)",
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional YAML config file (overrides SUPABASE_* variables)",
				Sources: cli.EnvVars("SUPAMARKER_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("SUPAMARKER_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "publish",
				Usage:     "Publish a local markdown file",
				ArgsUsage: "<path>",
				Action:    publish,
			},
			{
				Name:      "delete",
				Usage:     "Delete a post by slug",
				ArgsUsage: "<slug>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "soft",
						Usage: "Keep the markdown file in storage, delete only the metadata row",
					},
				},
				Action: deletePost,
			},
			{
				Name:   "list",
				Usage:  "List slugs found in the bucket and the table",
				Action: list,
			},
			{
				Name:      "gen-config",
				Usage:     "Write a sample config file",
				ArgsUsage: "[path]",
				Action:    genConfig,
			},
			{
				Name:   "mcp",
				Usage:  "Serve publish/delete/list as MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}
}

func main() {
	if err := newRootCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
