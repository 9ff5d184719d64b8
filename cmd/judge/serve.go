package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/programme-lv/judge/internal/environment"
	"github.com/programme-lv/judge/internal/gatherer/natsgath"
	"github.com/programme-lv/judge/internal/gatherer/promgath"
	"github.com/programme-lv/judge/internal/gatherer/sqsgath"
	"github.com/programme-lv/judge/internal/httpapi"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/store"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, host:port"},
			&cli.StringFlag{Name: "nats-url", Usage: "stream progress to this NATS server"},
			&cli.StringFlag{Name: "sqs-url", Usage: "stream progress to this SQS queue"},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, "")
	if err != nil {
		return err
	}
	logger := a.logger

	addr := cmd.String("addr")
	for _, candidate := range []string{a.cfg.BindAddr, a.catalog.Server.Addr(), environment.DefaultBindAddr} {
		if addr == "" {
			addr = candidate
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := promgath.New(reg)
	factories := []store.GathererFactory{
		func(*job.Record) judge.Gatherer { return metrics.Gatherer() },
	}

	natsURL := a.cfg.NatsURL
	if cmd.IsSet("nats-url") {
		natsURL = cmd.String("nats-url")
	}
	if natsURL != "" {
		nc, err := natsgath.Connect(natsURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		factories = append(factories, natsgath.Factory(nc, a.cfg.NatsSubject, logger))
		logger.Info("streaming progress to nats", "url", natsURL, "subject", a.cfg.NatsSubject)
	}

	sqsURL := a.cfg.SqsURL
	if cmd.IsSet("sqs-url") {
		sqsURL = cmd.String("sqs-url")
	}
	if sqsURL != "" {
		client, err := sqsgath.NewClient(ctx, a.cfg.AwsRegion)
		if err != nil {
			return err
		}
		factories = append(factories, sqsgath.Factory(client, sqsURL, logger))
		logger.Info("streaming progress to sqs", "queue", sqsURL)
	}

	st := store.New(a.catalog, a.engine,
		store.WithLogger(logger),
		store.WithGatherers(func(rec *job.Record) judge.Gatherer {
			gs := make([]judge.Gatherer, len(factories))
			for i, f := range factories {
				gs[i] = f(rec)
			}
			return judge.Multi(gs...)
		}),
	)

	ctx, exit := context.WithCancel(ctx)
	defer exit()
	srv := httpapi.NewServer(addr, st, logger, httpapi.WithMetrics(reg), httpapi.WithExit(exit))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.files.Prefetch(gctx, a.catalog.CaseFiles()); err != nil {
			logger.Warn("case file prefetch incomplete", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := st.Work(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}
