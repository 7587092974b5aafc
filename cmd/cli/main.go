package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/pkg/config"
	"github.com/limaJavier/coursetabling/pkg/engine"
	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
	"github.com/limaJavier/coursetabling/pkg/logger"
	"github.com/limaJavier/coursetabling/pkg/model"
	"github.com/limaJavier/coursetabling/pkg/report"
	"github.com/limaJavier/coursetabling/pkg/sat"
)

// Exit codes
const (
	exitValid   = 10 // Complete schedule that passed verification
	exitInvalid = 15 // Complete schedule rejected by verification
	exitNone    = 20 // No schedule, or an incomplete one
	exitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load configuration: %v\n", err)
		return exitFailure
	}

	// Define arguments; only the flags given on the command line override the configuration
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	dataDir := flags.String("data", cfg.DataDir, "Directory holding teachers.json, rooms.json, courses.json and timeslots.json")
	strategy := flags.String("strategy", cfg.Strategy, fmt.Sprintf("Strategy to build the timetable. Allowed values are: %v", strings.Join(engine.Strategies(), ", ")))
	solver := flags.String("solver", cfg.SAT.Solver, fmt.Sprintf("SAT solver used by the \"sat\" strategy. Allowed values are: %v", strings.Join(sat.Solvers(), ", ")))
	solverPath := flags.String("solver-path", cfg.SAT.Path, "Path to the external SAT solver binary; defaults to looking it up in PATH")
	seed := flags.Uint64("seed", cfg.Seed, "Random seed; 0 seeds from the clock")
	population := flags.Int("population", cfg.GreyWolf.Population, "Grey wolf population size")
	iterations := flags.Int("iterations", cfg.GreyWolf.Iterations, "Grey wolf iterations")
	workers := flags.Int("workers", cfg.GreyWolf.Workers, "Wolves updated concurrently")
	maxNodes := flags.Uint64("max-nodes", cfg.Backtracking.MaxNodes, "Backtracking node budget; 0 means unlimited")
	precheck := flags.Bool("precheck", cfg.Backtracking.Precheck, "Run the infeasibility diagnosis before backtracking")
	format := flags.String("format", cfg.Output.Format, "Output format: table, json, csv, pdf or xlsx")
	outFile := flags.String("out", cfg.Output.File, "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	metricsFile := flags.String("metrics", cfg.Output.MetricsFile, "Path to a Prometheus textfile receiving the run metrics")
	verbose := flags.Bool("verbose", cfg.Log.Verbose, "Log solver progress")
	timeout := flags.Duration("timeout", cfg.Timeout, "Abort the search after this duration; 0 disables it")
	_ = flags.Parse(os.Args[1:])

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataDir = *dataDir
		case "strategy":
			cfg.Strategy = strings.ToLower(*strategy)
		case "solver":
			cfg.SAT.Solver = strings.ToLower(*solver)
		case "solver-path":
			cfg.SAT.Path = *solverPath
		case "seed":
			cfg.Seed = *seed
		case "population":
			cfg.GreyWolf.Population = *population
		case "iterations":
			cfg.GreyWolf.Iterations = *iterations
		case "workers":
			cfg.GreyWolf.Workers = *workers
		case "max-nodes":
			cfg.Backtracking.MaxNodes = *maxNodes
		case "precheck":
			cfg.Backtracking.Precheck = *precheck
		case "format":
			cfg.Output.Format = strings.ToLower(*format)
		case "out":
			cfg.Output.File = *outFile
		case "metrics":
			cfg.Output.MetricsFile = *metricsFile
		case "verbose":
			cfg.Log.Verbose = *verbose
		case "timeout":
			cfg.Timeout = *timeout
		}
	})

	// Validate arguments
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitFailure
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build logger: %v\n", err)
		return exitFailure
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Build timetable
	result, input, err := engine.Run(ctx, cfg, cfg.DataDir, log)
	if err != nil {
		log.Error("an error occurred during timetable construction", errorFields(err)...)
		return exitFailure
	}

	if err := writeOutput(cfg, result, input); err != nil {
		log.Error("an error occurred while writing the output", errorFields(err)...)
		return exitFailure
	}

	if cfg.Output.MetricsFile != "" {
		metrics := report.NewMetrics()
		metrics.Observe(result)
		if err := metrics.WriteToTextfile(cfg.Output.MetricsFile); err != nil {
			log.Error("cannot write metrics", append(errorFields(err), zap.String("file", cfg.Output.MetricsFile))...)
			return exitFailure
		}
	}

	return exitCode(result)
}

// errorFields classifies err by its code; errors without one are reported as internal
func errorFields(err error) []zap.Field {
	return []zap.Field{zap.String("code", appErrors.FromError(err).Code), zap.Error(err)}
}

func exitCode(result *report.Run) int {
	switch result.Outcome() {
	case report.OutcomeValid:
		return exitValid
	case report.OutcomeInvalid:
		return exitInvalid
	}
	return exitNone
}

// writeOutput renders the run into the configured file, or into the Standard Output if none is set
func writeOutput(cfg *config.Config, result *report.Run, input model.ModelInput) error {
	var w io.Writer = os.Stdout
	if cfg.Output.File != "" {
		file, err := os.Create(cfg.Output.File)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	return report.Write(w, cfg.Output.Format, result, input)
}
