package model

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/pkg/sat"
)

type satTimetabler struct {
	solver sat.SATSolver
	logger *zap.Logger
}

// NewSatTimetabler returns an exact timetabler that encodes the instance as CNF and hands it to solver
func NewSatTimetabler(solver sat.SATSolver, logger *zap.Logger) Timetabler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &satTimetabler{
		solver: solver,
		logger: logger,
	}
}

func (timetabler *satTimetabler) Build(ctx context.Context, modelInput ModelInput) (*Schedule, error) {
	if len(modelInput.CourseIds) == 0 {
		return NewSchedule(), nil
	}
	space := newOptionSpace(modelInput)
	checker := NewConstraintChecker(modelInput)

	//** Extract options
	options := lo.Map(modelInput.CourseIds, func(courseId string, _ int) []Option {
		return space.Options(courseId, func(option Option) bool {
			// Prune rooms rejected by the location policy before the timeslot position is expanded
			return option.RoomId == "" || checker.LocationAllowed(option.assign(courseId))
		})
	})
	for i, courseOptions := range options {
		if len(courseOptions) == 0 {
			course := modelInput.Courses[modelInput.CourseIds[i]]
			timetabler.logger.Info("course has no options",
				zap.String("course", course.Name),
				zap.String("class", course.StudentClass))
			return nil, nil
		}
	}

	//** Build SAT instance
	state, variables := newConstraintState(modelInput, modelInput.CourseIds, options)
	constraints := []func(state constraintState) [][]int64{
		completenessConstraints,
		teacherConstraints,
		roomConstraints,
		studentClassConstraints,
	}
	satInstance := buildSat(variables, constraints, state)
	timetabler.logger.Info("sat instance built",
		zap.Uint64("variables", satInstance.Variables),
		zap.Uint64("optionVariables", state.indexer.Variables()),
		zap.Int("clauses", len(satInstance.Clauses)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//** Solve SAT instance
	solution, err := timetabler.solver.Solve(satInstance)
	if err != nil {
		return nil, err
	} else if solution == nil { // Return nil if the SAT instance is not satisfiable
		timetabler.logger.Info("sat instance is unsatisfiable")
		return nil, nil
	}

	//** Decode the first true option of every course
	chosen := make([]int, len(modelInput.CourseIds))
	for i := range chosen {
		chosen[i] = unset
	}
	for _, variable := range solution {
		// Acknowledge only positive option variables
		if variable <= 0 || uint64(variable) > state.indexer.Variables() {
			continue
		}
		course, option := state.indexer.Attributes(variable)
		if chosen[course] == unset || option < chosen[course] {
			chosen[course] = option
		}
	}

	schedule := NewSchedule()
	for course, option := range chosen {
		if option == unset {
			return nil, nil
		}
		schedule.Add(options[course][option].assign(modelInput.CourseIds[course]))
	}
	return schedule, nil
}

// buildSat runs every constraint function on its own goroutine and concatenates the clauses in constraint order
func buildSat(variables uint64, constraints []func(state constraintState) [][]int64, state constraintState) sat.SAT {
	type generated struct {
		index   int
		clauses [][]int64
	}

	constraintsChannel := make(chan generated) // Channel to collect constraints
	for i, constraint := range constraints {
		go func() {
			constraintsChannel <- generated{index: i, clauses: constraint(state)}
		}()
	}

	collected := make([][][]int64, len(constraints))
	for range constraints {
		result := <-constraintsChannel
		collected[result.index] = result.clauses
	}

	return sat.SAT{
		Variables: variables,
		Clauses:   lo.Flatten(collected),
	}
}

func (timetabler *satTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return verify(schedule, modelInput)
}
