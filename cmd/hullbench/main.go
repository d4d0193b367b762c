// Command hullbench compares resolving a service graph through hull with
// building it by hand, or serves the sample controllers over HTTP.
//
// Usage:
//
//	hullbench [-config hullbench.yaml] [-env .env] [-repetitions N] [-serve]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xraph/go-utils/log"

	"github.com/xraph/hull"
	"github.com/xraph/hull/internal/bench"
	"github.com/xraph/hull/internal/config"
	"github.com/xraph/hull/internal/dispatch"
	"github.com/xraph/hull/internal/scenario"
)

// exitError carries a process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	envFile     string
	repetitions int
	serve       bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("hullbench", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML config file.")
	fs.StringVar(&opts.envFile, "env", ".env", "Path to a .env file. Missing files are ignored.")
	fs.IntVar(&opts.repetitions, "repetitions", 0, "Timed calls per case. Overrides the config when set.")
	fs.BoolVar(&opts.serve, "serve", false, "Serve the sample controllers instead of running the benchmark.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &exitError{code: 2, msg: err.Error()}
	}

	return opts, nil
}

// run holds the program logic so it can return errors instead of exiting.
func run(ctx context.Context, out io.Writer, args []string) error {
	opts, err := parseFlags(args, out)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return err
	}
	if opts.repetitions > 0 {
		cfg.Bench.Repetitions = opts.repetitions
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c := hull.New(
		hull.WithLogger(logger.Named("hull")),
		hull.WithMiddleware(hull.LoggingMiddleware(logger.Named("resolve"))),
	)
	if err := scenario.Register(c); err != nil {
		return err
	}
	if err := scenario.RegisterControllers(c); err != nil {
		return err
	}
	if err := c.Seal(); err != nil {
		return fmt.Errorf("container validation: %w", err)
	}

	if opts.serve {
		return serve(ctx, cfg, c, logger)
	}

	runner := bench.NewRunner(
		bench.WithRepetitions(cfg.Bench.Repetitions),
		bench.WithTimeScale(cfg.TimeScale()),
		bench.WithLogger(logger.Named("bench")),
	)

	cases, err := scenario.Cases(c)
	if err != nil {
		return err
	}

	results, err := runner.Run(ctx, cases...)
	if err != nil {
		return err
	}

	return bench.Report(out, results)
}

func serve(ctx context.Context, cfg *config.Config, c *hull.Container, logger log.Logger) error {
	d := dispatch.New(c, logger.Named("dispatch"))
	if err := scenario.Mount(d); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           d,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", log.String("addr", cfg.Serve.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")

	return srv.Shutdown(shutdownCtx)
}
