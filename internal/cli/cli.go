// Package cli implements the eduverse command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"eduverse/internal/config"
	"eduverse/internal/logging"
)

type globals struct {
	configPath string
	logLevel   string
	kbPath     string
	watch      bool

	cfg    *config.AppConfig
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func (g *globals) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML or TOML config (default: ./config.yaml or ~/.config/eduverse/config.yaml)",
			Sources:     cli.EnvVars("EDUVERSE_CONFIG"),
			Destination: &g.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "warn",
			Sources:     cli.EnvVars("EDUVERSE_LOG_LEVEL"),
			Destination: &g.logLevel,
		},
		&cli.StringFlag{
			Name:        "kb",
			Usage:       "Knowledge file (.yaml, .txt or .md) replacing the built-in knowledge base",
			Sources:     cli.EnvVars("EDUVERSE_KB"),
			Destination: &g.kbPath,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Usage:       "Reload the knowledge file when it changes",
			Destination: &g.watch,
		},
	}
}

func (g *globals) setup() error {
	// A missing .env is fine; keys may come from the environment.
	_ = godotenv.Load()

	logger, err := logging.New(g.logLevel)
	if err != nil {
		return err
	}
	g.logger = logger

	var cfg *config.AppConfig
	var path string
	if g.configPath == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		path = g.configPath
		cfg, err = config.Load(g.configPath)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to load config")
	}
	if g.kbPath != "" {
		cfg.Knowledge.Path = g.kbPath
	}
	if g.watch {
		cfg.Knowledge.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	logger.Debug("configuration loaded", zap.String("path", path), zap.String("embedder", cfg.Embedder.Type))
	return nil
}

// Run executes the command line in args, writing command output to stdout.
// Errors go to the logger, or to stderr when it could not be built.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	g := &globals{stdout: stdout, stderr: stderr}

	app := &cli.Command{
		Name:  "eduverse",
		Usage: "Graduate admissions advisor for U.S. programs",
		Flags: g.flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, g.setup()
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdChat(g),
			cmdAsk(g),
			cmdKB(g),
			cmdEval(g),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if g.logger != nil {
			g.logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintf(g.stderr, "eduverse: %v\n", err)
		}
		return err
	}
	return nil
}
