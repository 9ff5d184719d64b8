package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/programme-lv/judge/internal/gatherer/termgath"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/store"
	"github.com/programme-lv/judge/pkg/verdict"
	"github.com/urfave/cli/v3"
)

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "judge one source file locally",
		ArgsUsage: "<source file>",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "problem", Aliases: []string{"p"}, Usage: "problem id"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "language name", Required: true},
			&cli.BoolFlag{Name: "json", Usage: "print the job document instead of progress"},
		},
		Action: submit,
	}
}

func submit(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one source file, got %d arguments", cmd.Args().Len())
	}
	src, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}

	a, err := setup(cmd, "")
	if err != nil {
		return err
	}

	progress := judge.Discard
	if !cmd.Bool("json") {
		progress = termgath.New(os.Stdout)
	}
	st := store.New(a.catalog, a.engine,
		store.WithLogger(a.logger),
		store.WithGatherers(func(*job.Record) judge.Gatherer { return progress }),
	)

	rec, err := st.Submit(ctx, job.Submission{
		SourceCode: string(src),
		Language:   cmd.String("language"),
		ProblemID:  uint32(cmd.Uint("problem")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec.Response()); err != nil {
			return err
		}
	}
	if rec.Outcome != verdict.Accepted {
		return cli.Exit("", 2)
	}
	return nil
}
