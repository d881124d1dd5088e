package fetch

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/ptax/cmd/env"
	"github.com/sig-0/ptax/cmd/setup"
	"github.com/sig-0/ptax/fallback"
	"github.com/sig-0/ptax/storage/csv"
)

// fetchCfg wraps the fetch configuration
type fetchCfg struct {
	configPath string
	outputPath string
	logLevel   string
	noRender   bool
}

// NewFetchCmd creates the fetch subcommand
func NewFetchCmd() *ffcli.Command {
	cfg := &fetchCfg{}

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "fetch",
		ShortUsage: "fetch [flags]",
		LongHelp:   "Runs a single PTAX acquisition, and replaces the output file with the collected quotes",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *fetchCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the TOML configuration, if any",
	)

	fs.StringVar(
		&c.outputPath,
		"output",
		"",
		"the output file path, overriding the configuration",
	)

	fs.StringVar(
		&c.logLevel,
		"log-level",
		"info",
		"the log level (debug, info, warn, error)",
	)

	fs.BoolVar(
		&c.noRender,
		"no-render",
		false,
		"disables the headless browser (rendered strategies always fail)",
	)
}

// exec executes a single acquisition run
func (c *fetchCfg) exec(ctx context.Context, _ []string) error {
	logger, err := setup.Logger(c.logLevel)
	if err != nil {
		return err
	}

	cfg, err := setup.Config(c.configPath, setup.Overrides{
		OutputPath: c.outputPath,
		NoRender:   c.noRender,
	})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(cfg.OutputPath, csv.WithLogger(logger))

	pipeline, err := setup.Pipeline(cfg, logger, fallback.WithWriter(writer))
	if err != nil {
		return err
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	quotes, err := pipeline.Run(runCtx)
	if err != nil {
		return fmt.Errorf("unable to run acquisition: %w", err)
	}

	logger.Info(
		"acquisition finished",
		"quotes", len(quotes),
		"output", cfg.OutputPath,
	)

	return nil
}
