package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/pkg/config"
	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
	"github.com/limaJavier/coursetabling/pkg/logger"
	"github.com/limaJavier/coursetabling/pkg/model"
	"github.com/limaJavier/coursetabling/pkg/report"
	"github.com/limaJavier/coursetabling/pkg/sat"
)

// Strategies lists the accepted strategy names
func Strategies() []string {
	return []string{config.StrategyBacktracking, config.StrategyGreyWolf, config.StrategySAT}
}

var timetablers = map[string]func(cfg *config.Config, rng *rand.Rand, log *zap.Logger) (model.Timetabler, error){
	config.StrategyBacktracking: func(cfg *config.Config, rng *rand.Rand, log *zap.Logger) (model.Timetabler, error) {
		return model.NewBacktrackingTimetabler(model.BacktrackingParams{
			MaxNodes: cfg.Backtracking.MaxNodes,
			Precheck: cfg.Backtracking.Precheck,
		}, rng, log), nil
	},
	config.StrategyGreyWolf: func(cfg *config.Config, rng *rand.Rand, log *zap.Logger) (model.Timetabler, error) {
		return model.NewGreyWolfTimetabler(model.GreyWolfParams{
			Population:  cfg.GreyWolf.Population,
			Iterations:  cfg.GreyWolf.Iterations,
			Workers:     cfg.GreyWolf.Workers,
			InitTries:   cfg.GreyWolf.InitTries,
			RepairTries: cfg.GreyWolf.RepairTries,
		}, rng, log), nil
	},
	config.StrategySAT: func(cfg *config.Config, _ *rand.Rand, log *zap.Logger) (model.Timetabler, error) {
		solver, err := sat.NewSolver(cfg.SAT.Solver, cfg.SAT.Path)
		if err != nil {
			return nil, err
		}
		return model.NewSatTimetabler(solver, log), nil
	},
}

// NewTimetabler builds the timetabler selected by cfg.Strategy
func NewTimetabler(cfg *config.Config, rng *rand.Rand, log *zap.Logger) (model.Timetabler, error) {
	factory, ok := timetablers[cfg.Strategy]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("unknown strategy \"%v\"", cfg.Strategy))
	}
	return factory(cfg, rng, log)
}

// Seed returns cfg.Seed, or a clock-derived seed when it is 0
func Seed(cfg *config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

// Run loads the instance in dir and solves it once. Exhausted node budgets and timeouts are not errors: the run
// keeps whatever schedule the strategy returned, if any. Other errors are returned.
func Run(ctx context.Context, cfg *config.Config, dir string, log *zap.Logger) (*report.Run, model.ModelInput, error) {
	if log == nil {
		log = zap.NewNop()
	}

	input, err := model.InputFromJson(dir)
	if err != nil {
		return nil, model.ModelInput{}, err
	}

	seed := Seed(cfg)
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	timetabler, err := NewTimetabler(cfg, rng, logger.Solver(log, cfg.Log.Verbose))
	if err != nil {
		return nil, input, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	schedule, err := timetabler.Build(ctx, input)
	duration := time.Since(start)
	if errors.Is(err, appErrors.ErrNodeLimit) || errors.Is(err, context.DeadlineExceeded) {
		// Strategies that stop early may still hand back their best schedule
		log.Warn("search stopped", zap.Error(err), zap.Bool("schedule", schedule != nil))
		err = nil
	}
	if err != nil {
		return nil, input, err
	}

	valid := schedule != nil && timetabler.Verify(schedule, input)
	run := report.NewRun(cfg.Strategy, filepath.Base(dir), seed, duration, schedule, input, valid)
	if !valid {
		if run.Infeasibilities, err = model.Diagnose(input); err != nil {
			return nil, input, err
		}
	}

	log.Info("run finished",
		zap.String("run", run.Id),
		zap.String("strategy", run.Strategy),
		zap.String("instance", run.Instance),
		zap.Uint64("seed", seed),
		zap.Duration("duration", duration),
		zap.Bool("valid", valid),
		zap.Int("assigned", run.Assigned()),
		zap.Int("courses", run.Courses),
		zap.Float64("fitness", run.Fitness.Total))
	return run, input, nil
}
