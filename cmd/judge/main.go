package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/programme-lv/judge/internal/catalog"
	"github.com/programme-lv/judge/internal/environment"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/logging"
	"github.com/programme-lv/judge/internal/scratch"
	"github.com/programme-lv/judge/internal/testfiles"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "judge",
		Usage: "compile, run and score submissions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Aliases: []string{"c"}, Usage: "problem and language catalog, TOML or JSON"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "scratch-dir", Usage: "where per-job working directories are created"},
			&cli.StringFlag{Name: "cache-dir", Usage: "where decompressed case files are kept"},
		},
		Commands: []*cli.Command{
			serveCmd(),
			submitCmd(),
			behaveCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	cfg     *environment.EnvConfig
	logger  *slog.Logger
	catalog *catalog.Catalog
	files   *testfiles.Store
	engine  *judge.Engine
}

// setup merges flags over the environment and loads the catalog. A non-empty
// catalogPath is used when --catalog is not given.
func setup(cmd *cli.Command, catalogPath string) (*app, error) {
	cfg, err := environment.ReadEnvConfig()
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	if cmd.IsSet("catalog") {
		cfg.CatalogPath = cmd.String("catalog")
	}
	if cmd.IsSet("scratch-dir") {
		cfg.ScratchDir = cmd.String("scratch-dir")
	}
	if cmd.IsSet("cache-dir") {
		cfg.CacheDir = cmd.String("cache-dir")
	}
	if cmd.IsSet("log-level") {
		if cfg.LogLevel, err = logging.ParseLevel(cmd.String("log-level")); err != nil {
			return nil, err
		}
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded", "path", cfg.CatalogPath,
		"problems", len(cat.Problems), "languages", len(cat.Languages))

	files := testfiles.New(cfg.CacheDir, runtime.NumCPU(), logger)
	engine := judge.NewEngine(scratch.New(cfg.ScratchDir),
		judge.WithLogger(logger),
		judge.WithCaseFiles(files),
		judge.WithCompileTimeout(cfg.CompileTimeout),
	)
	return &app{cfg: cfg, logger: logger, catalog: cat, files: files, engine: engine}, nil
}
