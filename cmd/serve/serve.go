package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/ptax/cmd/env"
	"github.com/sig-0/ptax/cmd/setup"
	"github.com/sig-0/ptax/ingest"
	"github.com/sig-0/ptax/server"
	"github.com/sig-0/ptax/storage"
	"github.com/sig-0/ptax/storage/csv"
	"github.com/sig-0/ptax/storage/memory"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	configPath    string
	outputPath    string
	listenAddress string
	logLevel      string
	noRender      bool
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		LongHelp:   "Runs the PTAX acquisition on a schedule, and serves the collected quotes",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
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
		&c.listenAddress,
		"listen",
		"",
		"the IP:PORT URL for the server, overriding the configuration",
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

// exec executes the serve command
func (c *serveCfg) exec(ctx context.Context, _ []string) error {
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

	serverOpts := []server.Option{
		server.WithLogger(logger),
	}

	if cfg.Server != nil {
		if c.listenAddress != "" {
			cfg.Server.ListenAddress = c.listenAddress
		}

		serverOpts = append(serverOpts, server.WithConfig(cfg.Server))
	}

	// Create an in-memory store, seeded with the last run's output
	store := memory.NewStorage()

	if err := preload(ctx, store, cfg.OutputPath, logger); err != nil {
		return err
	}

	fileWriter := csv.NewWriter(cfg.OutputPath, csv.WithLogger(logger))

	// Create the acquisition scheduler
	pipeline, err := setup.Pipeline(cfg, logger)
	if err != nil {
		return err
	}

	scheduler := ingest.New(
		storage.MultiWriter(fileWriter, store),
		ingest.WithLogger(logger),
	)

	if err := scheduler.Register(pipeline); err != nil {
		return fmt.Errorf("unable to register pipeline: %w", err)
	}

	// Create the server instance
	s, err := server.New(store, serverOpts...)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the acquisition scheduler
	group.Go(func() error {
		return scheduler.Start(gCtx)
	})

	return group.Wait()
}

// preload seeds the store with the quotes of an existing output file, if any
func preload(ctx context.Context, store storage.Writer, path string, logger *slog.Logger) error {
	quotes, err := csv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		logger.Warn(
			"unable to read previous output, starting empty",
			"path", path,
			"err", err,
		)

		return nil
	}

	if err := store.WriteQuotes(ctx, quotes); err != nil {
		return fmt.Errorf("unable to preload quotes: %w", err)
	}

	logger.Info(
		"preloaded previous output",
		"path", path,
		"quotes", len(quotes),
	)

	return nil
}
