package model

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopThree(t *testing.T) {
	cases := []struct {
		scores             []float64
		alpha, beta, delta int
	}{
		{[]float64{1, 3, 2, 3}, 1, 3, 2},
		{[]float64{5}, 0, 0, 0},
		{[]float64{1, 2}, 1, 0, 0},
		{[]float64{4, 4, 4, 4}, 0, 1, 2},
	}

	for _, c := range cases {
		alpha, beta, delta := topThree(c.scores)

		assert.Equal(t, []int{c.alpha, c.beta, c.delta}, []int{alpha, beta, delta}, "%v", c.scores)
	}
}

func TestSelectLeader(t *testing.T) {
	fromAlpha := Assignment{CourseId: "C1", TeacherId: "T1", RoomId: "R1", TimeslotId: "TS1"}
	fromBeta := Assignment{CourseId: "C1", TeacherId: "T2", RoomId: "R1", TimeslotId: "TS1"}
	fromDelta := Assignment{CourseId: "C1", TeacherId: "T3", RoomId: "R1", TimeslotId: "TS1"}
	rng := rand.New(rand.NewPCG(3, 4))

	t.Run("Missing beta falls back to alpha", func(t *testing.T) {
		//** Arrange
		alpha, beta, delta := NewSchedule(fromAlpha), NewSchedule(), NewSchedule(fromDelta)

		//** Act
		counts := map[Assignment]int{}
		for range 1000 {
			selected, ok := selectLeader(rng, "C1", alpha, beta, delta)
			require.True(t, ok)
			counts[selected]++
		}

		//** Assert
		assert.Greater(t, counts[fromAlpha], 700)
		assert.Greater(t, counts[fromDelta], 100)
		assert.Less(t, counts[fromDelta], 300)
	})

	t.Run("Missing alpha falls back to beta", func(t *testing.T) {
		alpha, beta, delta := NewSchedule(), NewSchedule(fromBeta), NewSchedule(fromDelta)

		counts := map[Assignment]int{}
		for range 1000 {
			selected, _ := selectLeader(rng, "C1", alpha, beta, delta)
			counts[selected]++
		}

		assert.Greater(t, counts[fromBeta], 700)
		assert.Zero(t, counts[fromAlpha])
	})

	t.Run("No leader has the course", func(t *testing.T) {
		_, ok := selectLeader(rng, "C9", NewSchedule(fromAlpha), NewSchedule(fromBeta), NewSchedule(fromDelta))

		assert.False(t, ok)
	})
}

func TestDiagnose(t *testing.T) {
	kinds := func(infeasibilities []Infeasibility) []InfeasibilityKind {
		return lo.Map(infeasibilities, func(infeasibility Infeasibility, _ int) InfeasibilityKind { return infeasibility.Kind })
	}

	t.Run("Satisfiable instances", func(t *testing.T) {
		for name, input := range instances(t, satisfiableTestDirectory) {
			infeasibilities, err := Diagnose(input)

			assert.Nil(t, err)
			assert.Empty(t, infeasibilities, name)
		}
	})

	t.Run("Course without qualified teacher", func(t *testing.T) {
		input := loadInput(t, filepath.Join(unsatisfiableTestDirectory, "unqualified"))

		infeasibilities, err := Diagnose(input)

		require.Nil(t, err)
		require.Len(t, infeasibilities, 1)
		assert.Equal(t, NoOptions, infeasibilities[0].Kind)
		assert.Equal(t, "C2", infeasibilities[0].Subject)
	})

	t.Run("Location policy leaves no room", func(t *testing.T) {
		input := loadInput(t, filepath.Join(unsatisfiableTestDirectory, "location"))

		infeasibilities, err := Diagnose(input)

		require.Nil(t, err)
		assert.Equal(t, []InfeasibilityKind{NoOptions}, kinds(infeasibilities))
	})

	t.Run("Student class with more courses than timeslots", func(t *testing.T) {
		input := loadInput(t, filepath.Join(unsatisfiableTestDirectory, "overloaded"))

		infeasibilities, err := Diagnose(input)

		require.Nil(t, err)
		assert.Contains(t, kinds(infeasibilities), StudentClassOverload)
		assert.Equal(t, "10A1", infeasibilities[0].Subject)
	})

	t.Run("Shared teacher", func(t *testing.T) {
		//** Arrange
		input := newInput(t,
			[]Teacher{{Id: "T1", Name: "An", Courses: []string{"Toán"}}},
			[]Room{{Id: "R1", Name: "Phòng 101", Location: LocationB}, {Id: "R2", Name: "Phòng 102", Location: LocationB}},
			[]Course{
				{Id: "C1", Name: "Toán", StudentClass: "10A1", RequiredLocation: LocationB},
				{Id: "C2", Name: "Toán", StudentClass: "10A2", RequiredLocation: LocationB},
			},
			[]Timeslot{{Id: "TS1", Day: "Thứ 2", Period: 1}},
		)

		//** Act
		infeasibilities, err := Diagnose(input)

		//** Assert
		require.Nil(t, err)
		assert.Equal(t, []InfeasibilityKind{TeacherTimeslotsShort}, kinds(infeasibilities))
	})

	t.Run("Shared room", func(t *testing.T) {
		input := newInput(t,
			[]Teacher{{Id: "T1", Name: "An", Courses: []string{"Toán"}}, {Id: "T2", Name: "Bình", Courses: []string{"Văn"}}},
			[]Room{{Id: "R1", Name: "Phòng 101", Location: LocationB}},
			[]Course{
				{Id: "C1", Name: "Toán", StudentClass: "10A1", RequiredLocation: LocationB},
				{Id: "C2", Name: "Văn", StudentClass: "10A2", RequiredLocation: LocationB},
			},
			[]Timeslot{{Id: "TS1", Day: "Thứ 2", Period: 1}},
		)

		infeasibilities, err := Diagnose(input)

		require.Nil(t, err)
		assert.Equal(t, []InfeasibilityKind{RoomTimeslotsShort}, kinds(infeasibilities))
		assert.Contains(t, infeasibilities[0].String(), "rooms")
	})
}
