package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/urfave/cli.v1"

	"github.com/hupe1980/agentmarket"
	"github.com/hupe1980/agentmarket/logging"
	"github.com/hupe1980/agentmarket/metrics"
	"github.com/hupe1980/agentmarket/observer"
)

const shutdownTimeout = 10 * time.Second

var (
	durationFlag = cli.DurationFlag{
		Name:  "duration",
		Usage: "stop the simulation after this long (0 runs until interrupted)",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve prometheus metrics on this address, e.g. :9090",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "disable colored console output",
	}
	quietFlag = cli.BoolFlag{
		Name:  "quiet",
		Usage: "log market events instead of printing the console view",
	}

	runCommand = cli.Command{
		Action: run,
		Name:   "run",
		Usage:  "Run the marketplace simulation",
		Flags:  append([]cli.Flag{durationFlag, metricsAddrFlag, noColorFlag, quietFlag}, configFlags...),
		Description: `The run command bootstraps the reference population (auctioneer,
support actors and six bidders), streams market events to the console and
prints a summary when the run ends.`,
	}
)

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer flush()

	var (
		m     *metrics.Metrics
		sinks observer.Fanout
	)

	if ctx.Bool(quietFlag.Name) {
		sinks = append(sinks, observer.NewLoggerSink(logger))
	} else {
		sinks = append(sinks, observer.NewConsoleSink(os.Stdout, ctx.Bool(noColorFlag.Name)))
	}

	if addr := ctx.String(metricsAddrFlag.Name); addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(prometheus.NewGoCollector())

		m = metrics.New(reg)
		sinks = append(sinks, m.Sink())

		stop := serveMetrics(addr, reg, logger)
		defer stop()
	}

	market := agentmarket.New(cfg, func(o *agentmarket.Options) {
		o.Observer = sinks
		o.Logger = logger
		o.Metrics = m
	})

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if d := ctx.Duration(durationFlag.Name); d > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, d)
		defer cancelTimeout()
	}

	logger.Info("starting market", "time_unit", cfg.TimeUnit.String(), "solvency", cfg.Auction.Solvency)

	if err := market.Bootstrap(runCtx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("bootstrap failed", "error", err)
	}

	<-runCtx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := market.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}

	market.Report().Render(os.Stdout)

	return nil
}

func serveMetrics(addr string, g prometheus.Gatherer, logger logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}
