package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedule(t *testing.T) {
	first := Assignment{CourseId: "C1", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"}
	second := Assignment{CourseId: "C2", RoomId: "R2", TeacherId: "T2", TimeslotId: "TS1"}

	t.Run("Stack operations", func(t *testing.T) {
		schedule := NewSchedule()
		schedule.Pop()
		assert.Equal(t, 0, schedule.Len())

		schedule.Add(first)
		schedule.Add(second)
		schedule.Pop()

		assert.Equal(t, []Assignment{first}, schedule.Assignments)
	})

	t.Run("Copies are independent", func(t *testing.T) {
		schedule := NewSchedule(first)

		copied := schedule.Copy()
		copied.Add(second)

		assert.Equal(t, 1, schedule.Len())
		assert.Equal(t, 2, copied.Len())
	})

	t.Run("Lookup by course", func(t *testing.T) {
		schedule := NewSchedule(first, second)

		assignment, ok := schedule.AssignmentFor("C2")
		assert.True(t, ok)
		assert.Equal(t, second, assignment)

		_, ok = schedule.AssignmentFor("C3")
		assert.False(t, ok)
	})

	t.Run("Assignments are comparable", func(t *testing.T) {
		seen := map[Assignment]bool{first: true}

		assert.True(t, seen[Assignment{CourseId: "C1", RoomId: "R1", TeacherId: "T1", TimeslotId: "TS1"}])
		assert.False(t, seen[second])
	})
}
