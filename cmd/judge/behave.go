package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/programme-lv/judge/internal/behave"
	"github.com/programme-lv/judge/internal/gatherer/termgath"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/store"
	"github.com/urfave/cli/v3"
)

func behaveCmd() *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "run the scenarios of a behaviour file and check their results",
		ArgsUsage: "<behaviour file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only print the summary"},
		},
		Action: runBehave,
	}
}

func runBehave(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one behaviour file, got %d arguments", cmd.Args().Len())
	}
	suite, err := behave.Parse(cmd.Args().First())
	if err != nil {
		return err
	}
	a, err := setup(cmd, suite.CatalogPath)
	if err != nil {
		return err
	}

	st := store.New(a.catalog, a.engine,
		store.WithLogger(a.logger),
		store.WithGatherers(func(*job.Record) judge.Gatherer {
			if cmd.Bool("quiet") {
				return judge.Discard
			}
			return termgath.New(os.Stdout)
		}),
	)

	reports := behave.Run(ctx, st, suite.Cases, a.logger)
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			color.New(color.FgRed).Printf("FAIL %s: %v\n", r.Case.Name, r.Err)
		} else {
			color.New(color.FgGreen).Printf("PASS %s\n", r.Case.Name)
		}
	}
	fmt.Printf("%d passed, %d failed\n", len(reports)-failed, failed)
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
