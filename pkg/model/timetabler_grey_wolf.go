package model

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

type GreyWolfParams struct {
	Population  int // Number of wolves
	Iterations  int // Number of hunting rounds
	Workers     int // Wolves updated concurrently within a round; values below 2 update them sequentially
	InitTries   int // Random samples per course while building the initial population and updating wolves
	RepairTries int // Random samples per course while repairing a candidate
}

func DefaultGreyWolfParams() GreyWolfParams {
	return GreyWolfParams{
		Population:  20,
		Iterations:  100,
		Workers:     1,
		InitTries:   200,
		RepairTries: 300,
	}
}

// Probability thresholds for inheriting an assignment from alpha, beta and delta (50%, 30%, 20%)
const (
	alphaThreshold = 0.5
	betaThreshold  = 0.8
)

const progressInterval = 10

type greyWolfTimetabler struct {
	params  GreyWolfParams
	rng     *rand.Rand
	logger  *zap.Logger
	history []float64
}

type GreyWolfTimetabler interface {
	Timetabler
	// Returns the tracked alpha fitness after initialization followed by one value per iteration of the last Build
	History() []float64
}

// NewGreyWolfTimetabler returns a Grey Wolf Optimizer. Build may return an incomplete schedule when repair cannot
// place some course within its retry bound; callers detect it with ConstraintChecker.IsValid or Unassigned.
// When ctx is done between iterations, Build returns the current alpha together with ctx.Err().
func NewGreyWolfTimetabler(params GreyWolfParams, rng *rand.Rand, logger *zap.Logger) GreyWolfTimetabler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &greyWolfTimetabler{
		params: params,
		rng:    newRand(rng),
		logger: logger,
	}
}

// wolfPack is the read-only state shared by every wolf of a round
type wolfPack struct {
	modelInput ModelInput
	space      *optionSpace
	checker    ConstraintChecker
	evaluator  ScheduleEvaluator
	params     GreyWolfParams
}

func (timetabler *greyWolfTimetabler) History() []float64 {
	return slices.Clone(timetabler.history)
}

func (timetabler *greyWolfTimetabler) Build(ctx context.Context, modelInput ModelInput) (*Schedule, error) {
	params := timetabler.params
	if params.Population < 1 || params.Iterations < 0 || params.InitTries < 1 || params.RepairTries < 1 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("invalid grey wolf parameters: %+v", params))
	}

	pack := &wolfPack{
		modelInput: modelInput,
		space:      newOptionSpace(modelInput),
		checker:    NewConstraintChecker(modelInput),
		evaluator:  NewScheduleEvaluator(modelInput),
		params:     params,
	}

	//** Initialize population
	timetabler.logger.Info("initializing pack", zap.Int("population", params.Population))
	population := make([]*Schedule, params.Population)
	fitness := make([]float64, params.Population)
	for i := range population {
		population[i] = pack.randomSchedule(timetabler.rng)
		fitness[i] = pack.evaluator.Evaluate(population[i])
	}

	alphaIndex, betaIndex, deltaIndex := topThree(fitness)
	alpha, beta, delta := population[alphaIndex].Copy(), population[betaIndex].Copy(), population[deltaIndex].Copy()
	alphaFitness := fitness[alphaIndex]
	timetabler.history = []float64{alphaFitness}
	timetabler.logger.Info("initial fitness", zap.Float64("fitness", alphaFitness))

	//** Hunt
	for iteration := range params.Iterations {
		if err := ctx.Err(); err != nil {
			timetabler.logger.Info("hunt interrupted", zap.Int("iteration", iteration), zap.Float64("fitness", alphaFitness))
			return alpha, err
		}

		// The discrete representation does not use the coefficient; it is reported only
		a := 2.0 - 2.0*float64(iteration)/float64(params.Iterations)

		// Wolf RNGs are derived in wolf order so that results do not depend on the number of workers
		rngs := make([]*rand.Rand, params.Population)
		for i := range rngs {
			rngs[i] = rand.New(rand.NewPCG(timetabler.rng.Uint64(), timetabler.rng.Uint64()))
		}

		candidates := make([]*Schedule, params.Population)
		scores := make([]float64, params.Population)
		pack.sweep(params.Workers, params.Population, func(i int) {
			candidate := pack.moveWolf(rngs[i], alpha, beta, delta)
			candidate = pack.repair(rngs[i], candidate)
			candidates[i], scores[i] = candidate, pack.evaluator.Evaluate(candidate)
		})

		for i := range population {
			if scores[i] > fitness[i] {
				population[i], fitness[i] = candidates[i], scores[i]
			}
		}

		alphaIndex, betaIndex, deltaIndex = topThree(fitness)
		if fitness[alphaIndex] > alphaFitness {
			alpha, beta, delta = population[alphaIndex].Copy(), population[betaIndex].Copy(), population[deltaIndex].Copy()
			alphaFitness = fitness[alphaIndex]
		}
		timetabler.history = append(timetabler.history, alphaFitness)

		if (iteration+1)%progressInterval == 0 {
			timetabler.logger.Info("hunting",
				zap.Int("iteration", iteration+1),
				zap.Int("iterations", params.Iterations),
				zap.Float64("a", a),
				zap.Float64("fitness", alphaFitness),
				zap.Int("assigned", alpha.Len()),
				zap.Int("courses", len(modelInput.Courses)),
			)
		}
	}

	timetabler.logger.Info("hunt finished", zap.Float64("fitness", alphaFitness))
	return alpha, nil
}

// sweep runs update for every wolf index, with up to workers goroutines
func (pack *wolfPack) sweep(workers, wolves int, update func(i int)) {
	if workers < 2 {
		for i := range wolves {
			update(i)
		}
		return
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, wolves) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				update(i)
			}
		}()
	}
	for i := range wolves {
		indices <- i
	}
	close(indices)
	wg.Wait()
}

// randomSchedule visits the courses in random order and gives each one a random legal assignment, if one is found
func (pack *wolfPack) randomSchedule(rng *rand.Rand) *Schedule {
	schedule := NewSchedule()
	courseIds := slices.Clone(pack.modelInput.CourseIds)
	rng.Shuffle(len(courseIds), func(i, j int) {
		courseIds[i], courseIds[j] = courseIds[j], courseIds[i]
	})

	for _, courseId := range courseIds {
		if assignment, ok := pack.sample(rng, courseId, schedule, pack.params.InitTries); ok {
			schedule.Add(assignment)
		}
	}
	return schedule
}

// sample draws up to tries random (teacher, room, timeslot) triples for the course and returns the first one
// accepted against schedule
func (pack *wolfPack) sample(rng *rand.Rand, courseId string, schedule *Schedule, tries int) (Assignment, bool) {
	teachers, rooms, timeslots := pack.space.Teachers(courseId), pack.space.Rooms(courseId), pack.space.Timeslots()
	if len(teachers) == 0 || len(rooms) == 0 || len(timeslots) == 0 {
		return Assignment{}, false
	}

	for range tries {
		assignment := Assignment{
			CourseId:   courseId,
			TeacherId:  teachers[rng.IntN(len(teachers))],
			RoomId:     rooms[rng.IntN(len(rooms))],
			TimeslotId: timeslots[rng.IntN(len(timeslots))],
		}
		if pack.checker.CheckAll(schedule, assignment) {
			return assignment, true
		}
	}
	return Assignment{}, false
}

// moveWolf builds a new position by inheriting every course's assignment from the leaders
func (pack *wolfPack) moveWolf(rng *rand.Rand, alpha, beta, delta *Schedule) *Schedule {
	wolf := NewSchedule()
	for _, courseId := range pack.modelInput.CourseIds {
		selected, ok := selectLeader(rng, courseId, alpha, beta, delta)
		if !ok {
			selected, ok = pack.sample(rng, courseId, wolf, pack.params.InitTries)
		}
		if !ok {
			continue
		}

		if pack.checker.CheckAll(wolf, selected) {
			wolf.Add(selected)
		} else if fallback, ok := pack.sample(rng, courseId, wolf, pack.params.InitTries); ok {
			wolf.Add(fallback)
		}
	}
	return wolf
}

// selectLeader picks the course's assignment from alpha (50%), beta (30%) or delta (20%), falling back
// to the first leader that has one
func selectLeader(rng *rand.Rand, courseId string, alpha, beta, delta *Schedule) (Assignment, bool) {
	leaders := []*Schedule{alpha, beta, delta}

	draw := rng.Float64()
	chosen := 2
	if draw < alphaThreshold {
		chosen = 0
	} else if draw < betaThreshold {
		chosen = 1
	}
	if assignment, ok := leaders[chosen].AssignmentFor(courseId); ok {
		return assignment, true
	}

	for _, leader := range leaders {
		if assignment, ok := leader.AssignmentFor(courseId); ok {
			return assignment, true
		}
	}
	return Assignment{}, false
}

// repair keeps, in order, the assignments that still hold against the ones kept before them and then tries to
// place every unassigned course
func (pack *wolfPack) repair(rng *rand.Rand, schedule *Schedule) *Schedule {
	repaired := NewSchedule()
	for _, assignment := range schedule.Assignments {
		if pack.checker.CheckAll(repaired, assignment) {
			repaired.Add(assignment)
		}
	}

	for _, courseId := range pack.checker.Unassigned(repaired) {
		if assignment, ok := pack.sample(rng, courseId, repaired, pack.params.RepairTries); ok {
			repaired.Add(assignment)
		}
	}
	return repaired
}

func (timetabler *greyWolfTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return verify(schedule, modelInput)
}
