package model

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

type BacktrackingParams struct {
	MaxNodes uint64 // Maximum number of accepted assignments before giving up; 0 means unlimited (exhaustive search)
	Precheck bool   // Run Diagnose before searching and fail fast on a proven infeasibility
}

type backtrackingTimetabler struct {
	params BacktrackingParams
	rng    *rand.Rand
	logger *zap.Logger
}

// NewBacktrackingTimetabler returns an exhaustive depth-first timetabler. The rng only shuffles the option
// order at each depth; it never affects completeness. A nil rng is seeded from the clock and a nil logger
// disables narration.
func NewBacktrackingTimetabler(params BacktrackingParams, rng *rand.Rand, logger *zap.Logger) Timetabler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &backtrackingTimetabler{
		params: params,
		rng:    newRand(rng),
		logger: logger,
	}
}

type backtrackingState struct {
	ctx       context.Context
	space     *optionSpace
	checker   ConstraintChecker
	courseIds []string
	schedule  *Schedule
	nodes     uint64
}

func (timetabler *backtrackingTimetabler) Build(ctx context.Context, modelInput ModelInput) (*Schedule, error) {
	//** Precheck
	if timetabler.params.Precheck {
		infeasibilities, err := Diagnose(modelInput)
		if err != nil {
			return nil, err
		}
		if len(infeasibilities) > 0 {
			timetabler.logger.Info("instance is infeasible",
				zap.Stringers("reasons", infeasibilities))
			return nil, nil
		}
	}

	//** Order courses by difficulty
	space := newOptionSpace(modelInput)
	courseIds := slices.Clone(modelInput.CourseIds)
	slices.SortStableFunc(courseIds, func(a, b string) int {
		return space.Difficulty(a) - space.Difficulty(b)
	})

	timetabler.logger.Info("searching schedule",
		zap.Int("courses", len(courseIds)),
		zap.Strings("order", lo.Map(lo.Slice(courseIds, 0, 5), func(courseId string, _ int) string {
			return modelInput.Courses[courseId].Name
		})),
	)

	// Difficulty is ascending, so an empty option set surfaces at the first position
	if len(courseIds) > 0 && space.Difficulty(courseIds[0]) == 0 {
		course := modelInput.Courses[courseIds[0]]
		timetabler.logger.Info("course has no options",
			zap.String("course", course.Name),
			zap.String("class", course.StudentClass))
		return nil, nil
	}

	//** Search
	state := &backtrackingState{
		ctx:       ctx,
		space:     space,
		checker:   NewConstraintChecker(modelInput),
		courseIds: courseIds,
		schedule:  NewSchedule(),
	}
	found, err := timetabler.backtrack(state, 0)
	timetabler.logger.Info("search finished", zap.Bool("found", found), zap.Uint64("nodes", state.nodes))
	if err != nil {
		return nil, err
	} else if !found {
		return nil, nil
	}
	return state.schedule, nil
}

func (timetabler *backtrackingTimetabler) backtrack(state *backtrackingState, depth int) (bool, error) {
	if depth >= len(state.courseIds) {
		return true, nil
	}
	if err := state.ctx.Err(); err != nil {
		return false, err
	}

	courseId := state.courseIds[depth]
	options := state.space.Options(courseId)
	if len(options) == 0 {
		return false, nil
	}
	timetabler.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	for _, option := range options {
		candidate := option.assign(courseId)
		if !state.checker.CheckAll(state.schedule, candidate) {
			continue
		}

		if state.nodes++; timetabler.params.MaxNodes > 0 && state.nodes > timetabler.params.MaxNodes {
			return false, appErrors.ErrNodeLimit
		}

		state.schedule.Add(candidate)
		found, err := timetabler.backtrack(state, depth+1)
		if err != nil || found {
			return found, err
		}
		state.schedule.Pop()
	}

	return false, nil
}

func (timetabler *backtrackingTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return verify(schedule, modelInput)
}
