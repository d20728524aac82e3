package main

import (
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-rfml/internal/observability"
	"github.com/robert-malhotra/go-rfml/rfml"
)

// Output streams, swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// baseCommandRun holds the flags every subcommand shares.
type baseCommandRun struct {
	subcommands.CommandRunBase
	logLevel string
	metrics  bool

	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

func (r *baseCommandRun) init() {
	r.Flags.StringVar(&r.logLevel, "log-level", "warn", "Log level: debug, info, warn or error.")
	r.Flags.BoolVar(&r.metrics, "metrics", false, "Dump Prometheus metrics to stderr on exit.")
	r.stdout, r.stderr = stdout, stderr
}

// start sets up logging and returns the store for the command.
func (r *baseCommandRun) start() *rfml.Store {
	r.logger = observability.InitLogger("rfml", r.logLevel, r.stderr)
	return rfml.New(rfml.WithLogger(r.logger), rfml.WithReclaimer(rfml.Repacker{Logger: r.logger}))
}

// done reports err, dumps metrics if asked and returns the exit code.
func (r *baseCommandRun) done(err error) int {
	if r.metrics {
		if merr := observability.WriteText(r.stderr); merr != nil {
			r.logger.Error().Err(merr).Msg("writing metrics")
		}
	}
	if err != nil {
		fmt.Fprintf(r.stderr, "rfml: %v\n", err)
		return 1
	}
	return 0
}

func (r *baseCommandRun) usage(want string, args []string) error {
	return fmt.Errorf("expected %s, got %d arguments", want, len(args))
}
