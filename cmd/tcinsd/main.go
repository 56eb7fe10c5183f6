// Command tcinsd runs the tightly-coupled GNSS/INS epoch server: a
// urfave/cli/v2 front-end over the epoch loop and a Prometheus metrics
// listener, with the interactive console intentionally left out of
// scope.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/skywave-nav/tcgnssins/internal/config"
	"github.com/skywave-nav/tcgnssins/internal/metrics"
	"github.com/skywave-nav/tcgnssins/internal/server"
)

func main() {
	app := &cli.App{
		Name:  "tcinsd",
		Usage: "tightly-coupled GNSS/INS positioning server",
		Commands: []*cli.Command{
			runCommand(),
			validateConfigCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "path to the YAML processing configuration",
		Required: true,
	}
}

func validateConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate-config",
		Usage: "load and validate a configuration file without starting the server",
		Flags: []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			fmt.Printf("config ok: elevation_mask=%.1fdeg max_gdop=%.1f iono=%s tropo=%s\n",
				cfg.Processing.ElevationMaskDeg, cfg.Processing.MaxGdop,
				cfg.Processing.IonoOpt, cfg.Processing.TropoOpt)
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "start the epoch server and the metrics listener",
		Flags: []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			log := logrus.New()
			level, err := logrus.ParseLevel(cfg.Server.LogLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.JSONFormatter{})

			reg := prometheus.NewRegistry()
			mc := metrics.NewCollector(reg)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			httpSrv := &http.Server{Addr: cfg.Server.MetricsListen, Handler: mux}
			go func() {
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.WithError(err).Error("metrics listener failed")
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opt := cfg.ToPrcOpt()
			srv := server.New(opt, nil, mc, log)

			epochs := make(chan server.EpochInput, cfg.Server.InputBuffer)
			// Production wiring would start one producer goroutine per
			// configured stream here, each decoding RINEX/RTCM and a
			// SatPosProvider backed by a real ephemeris store, then
			// sending decoded server.EpochInput values into epochs.
			// That decoding stack is an out-of-scope external
			// collaborator; this command only owns the epoch loop and
			// metrics surface.
			defer close(epochs)

			err = srv.Run(ctx, epochs)
			_ = httpSrv.Shutdown(context.Background())
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
}
