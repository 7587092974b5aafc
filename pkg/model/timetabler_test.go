package model

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
	"github.com/limaJavier/coursetabling/pkg/sat"
)

func newRng() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1024))
}

func TestBacktrackingTimetabler(t *testing.T) {
	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, NewBacktrackingTimetabler(BacktrackingParams{Precheck: true}, newRng(), nil))
	})

	t.Run("Unsatisfiable instances", func(t *testing.T) {
		unsatisfiableExecution(t, NewBacktrackingTimetabler(BacktrackingParams{Precheck: true}, newRng(), nil))
	})

	t.Run("Unsatisfiable instances without precheck", func(t *testing.T) {
		unsatisfiableExecution(t, NewBacktrackingTimetabler(BacktrackingParams{}, newRng(), nil))
	})

	t.Run("Trivial instance", func(t *testing.T) {
		//** Arrange
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "trivial"))
		timetabler := NewBacktrackingTimetabler(BacktrackingParams{}, nil, nil)

		//** Act
		schedule, err := timetabler.Build(context.Background(), input)

		//** Assert
		require.Nil(t, err)
		assert.Equal(t, []Assignment{{CourseId: "C1", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"}}, schedule.Assignments)
	})

	t.Run("Same seed, same schedule", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "school"))

		first, err := NewBacktrackingTimetabler(BacktrackingParams{}, newRng(), nil).Build(context.Background(), input)
		require.Nil(t, err)
		second, err := NewBacktrackingTimetabler(BacktrackingParams{}, newRng(), nil).Build(context.Background(), input)
		require.Nil(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Node limit", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "school"))
		timetabler := NewBacktrackingTimetabler(BacktrackingParams{MaxNodes: 1}, newRng(), nil)

		schedule, err := timetabler.Build(context.Background(), input)

		assert.Nil(t, schedule)
		assert.True(t, errors.Is(err, appErrors.ErrNodeLimit))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "school"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		schedule, err := NewBacktrackingTimetabler(BacktrackingParams{Precheck: true}, newRng(), nil).Build(ctx, input)

		assert.Nil(t, schedule)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGreyWolfTimetabler(t *testing.T) {
	params := GreyWolfParams{Population: 10, Iterations: 20, Workers: 1, InitTries: 200, RepairTries: 300}

	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, NewGreyWolfTimetabler(params, newRng(), nil))
	})

	t.Run("Unsatisfiable instances yield incomplete schedules", func(t *testing.T) {
		for _, input := range instances(t, unsatisfiableTestDirectory) {
			timetabler := NewGreyWolfTimetabler(params, newRng(), nil)

			schedule, err := timetabler.Build(context.Background(), input)

			assert.Nil(t, err)
			assert.NotNil(t, schedule)
			assert.False(t, timetabler.Verify(schedule, input))
			// Whatever was placed still holds pairwise
			replayed := NewSchedule()
			checker := NewConstraintChecker(input)
			for _, assignment := range schedule.Assignments {
				assert.True(t, checker.CheckAll(replayed, assignment))
				replayed.Add(assignment)
			}
		}
	})

	t.Run("Alpha fitness never decreases", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "school"))
		timetabler := NewGreyWolfTimetabler(params, newRng(), nil)

		_, err := timetabler.Build(context.Background(), input)
		require.Nil(t, err)
		history := timetabler.History()

		assert.Len(t, history, params.Iterations+1)
		for i := 1; i < len(history); i++ {
			assert.GreaterOrEqual(t, history[i], history[i-1])
		}
	})

	t.Run("Result does not depend on the number of workers", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "school"))
		sequential := NewGreyWolfTimetabler(params, newRng(), nil)
		concurrent := NewGreyWolfTimetabler(GreyWolfParams{Population: 10, Iterations: 20, Workers: 4, InitTries: 200, RepairTries: 300}, newRng(), nil)

		first, err := sequential.Build(context.Background(), input)
		require.Nil(t, err)
		second, err := concurrent.Build(context.Background(), input)
		require.Nil(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, sequential.History(), concurrent.History())
	})

	t.Run("Single wolf without iterations", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "trivial"))
		timetabler := NewGreyWolfTimetabler(GreyWolfParams{Population: 1, Iterations: 0, InitTries: 200, RepairTries: 300}, newRng(), nil)

		schedule, err := timetabler.Build(context.Background(), input)

		require.Nil(t, err)
		assert.True(t, timetabler.Verify(schedule, input))
		assert.Len(t, timetabler.History(), 1)
	})

	t.Run("Invalid parameters", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "trivial"))
		timetabler := NewGreyWolfTimetabler(GreyWolfParams{Population: 0, Iterations: 10, InitTries: 1, RepairTries: 1}, newRng(), nil)

		_, err := timetabler.Build(context.Background(), input)

		assert.True(t, errors.Is(err, appErrors.ErrInvalidParameters))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		input := loadInput(t, filepath.Join(satisfiableTestDirectory, "school"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		timetabler := NewGreyWolfTimetabler(params, newRng(), nil)

		schedule, err := timetabler.Build(ctx, input)

		assert.ErrorIs(t, err, context.Canceled)
		// The initial alpha survives the interruption
		require.NotNil(t, schedule)
		assert.Greater(t, schedule.Len(), 0)
		assert.Len(t, timetabler.History(), 1)
		assert.Equal(t, timetabler.History()[0], NewScheduleEvaluator(input).Evaluate(schedule))
	})
}

func TestSatTimetabler(t *testing.T) {
	timetabler := NewSatTimetabler(sat.NewGiniSolver(), nil)

	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, timetabler)
	})

	t.Run("Unsatisfiable instances", func(t *testing.T) {
		unsatisfiableExecution(t, timetabler)
	})

	t.Run("Empty instance", func(t *testing.T) {
		schedule, err := timetabler.Build(context.Background(), ModelInput{})

		assert.Nil(t, err)
		assert.True(t, timetabler.Verify(schedule, ModelInput{}))
	})
}

func TestVerify(t *testing.T) {
	input := loadInput(t, filepath.Join(unsatisfiableTestDirectory, "unqualified"))
	valid := NewSchedule(
		Assignment{CourseId: "C1", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"},
		Assignment{CourseId: "C2", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS2"},
	)

	// T1 is not qualified for C2 (Hóa học)
	assert.False(t, verify(valid, input))
	assert.False(t, verify(nil, input))

	input.Teachers["T1"] = Teacher{Id: "T1", Name: "Nguyễn Văn An", Courses: []string{"Toán", "Hóa học"}}
	assert.True(t, verify(valid, input))

	clash := NewSchedule(
		Assignment{CourseId: "C1", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"},
		Assignment{CourseId: "C2", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"},
	)
	assert.False(t, verify(clash, input))

	unknown := NewSchedule(
		Assignment{CourseId: "C1", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"},
		Assignment{CourseId: "C2", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS9"},
	)
	assert.False(t, verify(unknown, input))
}

func instances(t *testing.T, directory string) map[string]ModelInput {
	t.Helper()
	entries, err := os.ReadDir(directory)
	require.Nil(t, err)

	inputs := make(map[string]ModelInput, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			inputs[entry.Name()] = loadInput(t, filepath.Join(directory, entry.Name()))
		}
	}
	return inputs
}

func satisfiableExecution(t *testing.T, timetabler Timetabler) {
	for name, input := range instances(t, satisfiableTestDirectory) {
		//** Act
		schedule, err := timetabler.Build(context.Background(), input)

		//** Assert
		assert.Nil(t, err, name)
		assert.NotNil(t, schedule, name)
		assert.True(t, timetabler.Verify(schedule, input), name)
	}
}

func unsatisfiableExecution(t *testing.T, timetabler Timetabler) {
	for name, input := range instances(t, unsatisfiableTestDirectory) {
		schedule, err := timetabler.Build(context.Background(), input)

		assert.Nil(t, err, name)
		assert.Nil(t, schedule, name)
	}
}
