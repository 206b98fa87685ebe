// marvind serves the marvin log API that devices send entries to.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli"

	"github.com/merliot/marvin/config"
	"github.com/merliot/marvin/server"
)

var version = "devel"

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "YAML configuration file",
		EnvVar: "MARVIN_CONFIG",
	}
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "listen address",
	}
	levelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(ctx, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "marvind: %v\n", err)
		os.Exit(1)
	}
}

// newApp returns marvind; the server runs until ctx is done
func newApp(ctx context.Context, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "marvind"
	app.Version = version
	app.Usage = "receive log entries from devices"
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{configFlag, addrFlag, levelFlag}

	app.Action = func(c *cli.Context) error {
		cfg, err := config.Load(c.String(configFlag.Name))
		if err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
		if c.IsSet(addrFlag.Name) {
			cfg.Server.Addr = c.String(addrFlag.Name)
		}
		if c.IsSet(levelFlag.Name) {
			cfg.LogLevel = c.String(levelFlag.Name)
		}

		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
		logger := log.NewWithOptions(stderr, log.Options{
			Level:           level,
			Prefix:          "marvind",
			ReportTimestamp: true,
		})

		opts := []server.Option{server.WithLogger(logger)}
		if cfg.Server.MQTT.Broker != "" {
			fwd, err := server.NewMQTTForwarder(cfg.Server.MQTT)
			if err != nil {
				return err
			}
			defer fwd.Close()
			logger.Info("Forwarding to MQTT", "broker", cfg.Server.MQTT.Broker)
			opts = append(opts, server.WithNotifier(fwd))
		}

		s, err := server.New(cfg.Server, opts...)
		if err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
		return s.Run(ctx)
	}
	return app
}
