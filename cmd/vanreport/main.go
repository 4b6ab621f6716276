package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/internal/app"
	"github.com/goliatone/go-vanreport/internal/config"
	"github.com/goliatone/go-vanreport/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line in args and releases everything it opened.
func run(ctx context.Context, args []string, out io.Writer) error {
	c := &cli{logger: zap.NewNop()}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	defer c.close()
	return root.ExecuteContext(ctx)
}

// cli carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
	app        *app.App
}

func (c *cli) rootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
		dataDir   string
		storage   string
		origin    string
	)

	root := &cobra.Command{
		Use:           "vanreport",
		Short:         "Daily van report: templates, offline shell and image export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("storage") {
				cfg.Storage = storage
			}
			if flags.Changed("origin") {
				cfg.Origin = origin
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.cfg = cfg

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (json, console)")
	pf.StringVar(&dataDir, "data-dir", "", "directory holding templates and caches")
	pf.StringVar(&storage, "storage", "", "template storage backend (file, sqlite, memory)")
	pf.StringVar(&origin, "origin", "", "absolute URL the shell is served from")

	root.AddCommand(
		newServeCmd(c),
		newProxyCmd(c),
		newSessionCmd(c),
		newTemplatesCmd(c),
		newCacheCmd(c),
		newExportCmd(c),
	)
	return root
}

// open builds the App once per invocation.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.Open(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.logger.Warn("close app", zap.Error(err))
		}
		c.app = nil
	}
	_ = c.logger.Sync()
}
