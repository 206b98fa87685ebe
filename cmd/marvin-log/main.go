// marvin-log sends a log entry to a marvin log API.
//
//	marvin-log --url http://192.168.1.10:4200/api/Log/ --type Warning "door opened"
//	marvin-log echo hello
//	marvin-log time
//
// Options in $MARVIN_OPTS are applied before the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/shlex"
	"github.com/urfave/cli"

	"github.com/merliot/marvin"
	"github.com/merliot/marvin/config"
	"github.com/merliot/marvin/logapi"
	"github.com/merliot/marvin/tinynet"
)

var version = "devel"

func main() {
	args, err := withOpts(os.Args, os.Getenv("MARVIN_OPTS"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "MARVIN_OPTS: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(ctx, os.Stdout, os.Stderr).Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "marvin-log: %v\n", err)
		os.Exit(1)
	}
}

// withOpts inserts the shell-split opts after the program name
func withOpts(args []string, opts string) ([]string, error) {
	extra, err := shlex.Split(opts)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 || len(args) == 0 {
		return args, nil
	}
	out := append([]string{args[0]}, extra...)
	return append(out, args[1:]...), nil
}

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "YAML configuration file",
		EnvVar: "MARVIN_CONFIG",
	}
	urlFlag = cli.StringFlag{
		Name:  "url",
		Usage: "log endpoint, e.g. http://host:4200/api/Log/",
	}
	senderFlag = cli.StringFlag{
		Name:  "sender",
		Usage: "sender name (default: hostname)",
	}
	typeFlag = cli.StringFlag{
		Name:  "type",
		Usage: "log type",
		Value: marvin.DefaultLogType,
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "request timeout",
	}
	getFlag = cli.BoolFlag{
		Name:  "get",
		Usage: "send with GET, the entry encoded in the URL",
	}
	plainFlag = cli.BoolFlag{
		Name:  "plain",
		Usage: "send the message without percent-encoding",
	}
	waitFlag = cli.BoolFlag{
		Name:  "wait-network",
		Usage: "wait for a routable network interface before sending",
	}
	levelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
	}
)

// env carries what every command needs
type env struct {
	client *logapi.Client
	logger *log.Logger
	out    io.Writer
}

func newApp(ctx context.Context, stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "marvin-log"
	app.Version = version
	app.Usage = "send log entries to a marvin log API"
	app.ArgsUsage = "message..."
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{configFlag, urlFlag, senderFlag, typeFlag, timeoutFlag,
		getFlag, plainFlag, waitFlag, levelFlag}

	app.Action = func(c *cli.Context) error {
		e, err := setup(ctx, c, stderr, stdout)
		if err != nil {
			return err
		}
		message := strings.Join(c.Args(), " ")
		if message == "" {
			return cli.NewExitError("missing message", 2)
		}
		entry := marvin.NewEntry(message, "", c.GlobalString(typeFlag.Name))
		if c.GlobalBool(getFlag.Name) {
			if err := e.client.Get(ctx, entry); err != nil {
				e.logger.Error("Error sending log", "err", err)
			}
			return nil
		}
		e.client.SendLog(ctx, entry)
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "echo",
			Usage:     "ask the log API to echo a message back",
			ArgsUsage: "message",
			Action: func(c *cli.Context) error {
				e, err := setup(ctx, c, stderr, stdout)
				if err != nil {
					return err
				}
				echoed, err := e.client.Echo(ctx, strings.Join(c.Args(), " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(e.out, echoed)
				return nil
			},
		},
		{
			Name:  "time",
			Usage: "print the log API's local time",
			Action: func(c *cli.Context) error {
				e, err := setup(ctx, c, stderr, stdout)
				if err != nil {
					return err
				}
				now, err := e.client.LocalTime(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(e.out, now.Format("2006-01-02 15:04:05 -07:00"))
				return nil
			},
		},
	}
	return app
}

// setup loads the configuration, applies the flags and optionally waits
// for the network
func setup(ctx context.Context, c *cli.Context, stderr, stdout io.Writer) (*env, error) {
	cfg, err := config.Load(c.GlobalString(configFlag.Name))
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 2)
	}
	if c.GlobalIsSet(urlFlag.Name) {
		cfg.Log.URL = c.GlobalString(urlFlag.Name)
	}
	if c.GlobalIsSet(senderFlag.Name) {
		cfg.Log.Sender = c.GlobalString(senderFlag.Name)
	}
	if c.GlobalIsSet(timeoutFlag.Name) {
		cfg.Log.Timeout = c.GlobalDuration(timeoutFlag.Name)
	}
	if c.GlobalBool(plainFlag.Name) {
		cfg.Log.PlainMessage = true
	}
	if c.GlobalIsSet(levelFlag.Name) {
		cfg.LogLevel = c.GlobalString(levelFlag.Name)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 2)
	}
	logger := log.NewWithOptions(stderr, log.Options{
		Level:           level,
		Prefix:          "marvin-log",
		ReportTimestamp: true,
	})

	if c.GlobalBool(waitFlag.Name) {
		if err := tinynet.Wait(ctx, tinynet.NewLink(), cfg.Network, tinynet.DefaultInterval, logger); err != nil {
			return nil, err
		}
	}

	client := logapi.New(cfg.Log, logapi.WithLogger(logger))
	logger.Debug("Configured", "url", cfg.Log.URL, "sender", client.Config().Sender, "timeout", cfg.Log.Timeout)
	return &env{client: client, logger: logger, out: stdout}, nil
}
