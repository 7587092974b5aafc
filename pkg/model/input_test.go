package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

const (
	satisfiableTestDirectory   = "../../test/data/satisfiable/"
	unsatisfiableTestDirectory = "../../test/data/unsatisfiable/"
)

func TestInputFromJson(t *testing.T) {
	t.Run("School instance", func(t *testing.T) {
		//** Act
		input, err := InputFromJson(filepath.Join(satisfiableTestDirectory, "school"))

		//** Assert
		require.Nil(t, err)
		assert.Equal(t, []string{"T1", "T2", "T3", "T4", "T5"}, input.TeacherIds)
		assert.Equal(t, []string{"R1", "R2", "R3", "R4"}, input.RoomIds)
		assert.Len(t, input.CourseIds, 9)
		assert.Len(t, input.TimeslotIds, 8)

		assert.Equal(t, []string{"Toán", "Tin học"}, input.Teachers["T1"].Courses)
		assert.Equal(t, 80, input.Rooms["R4"].Capacity)
		assert.Equal(t, "A|B", input.Courses["C3"].RequiredLocation)
		assert.Equal(t, "10A2", input.Courses["C6"].StudentClass)
		assert.Equal(t, Timeslot{Id: "TS2", Day: "Thứ 2", Period: 2, Time: "07:50-08:35", Session: "Sáng"}, input.Timeslots["TS2"])
		assert.Equal(t, "", input.Timeslots["TS7"].Session)
	})

	t.Run("English day aliases", func(t *testing.T) {
		input, err := InputFromJson(filepath.Join(unsatisfiableTestDirectory, "overloaded"))

		require.Nil(t, err)
		assert.Equal(t, "Monday", input.Timeslots["TS1"].Day)
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, err := InputFromJson(filepath.Join(satisfiableTestDirectory, "does-not-exist"))
		assert.NotNil(t, err)
	})

	t.Run("Malformed file", func(t *testing.T) {
		//** Arrange
		dir := t.TempDir()
		for _, file := range []string{teachersFile, roomsFile, coursesFile, timeslotsFile} {
			require.Nil(t, os.WriteFile(filepath.Join(dir, file), []byte("[]"), 0o644))
		}
		require.Nil(t, os.WriteFile(filepath.Join(dir, roomsFile), []byte("{not json"), 0o644))

		//** Act
		_, err := InputFromJson(dir)

		//** Assert
		assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
	})
}

func TestNewModelInput(t *testing.T) {
	teachers := []Teacher{{Id: "T1", Name: "An", Courses: []string{"Toán"}}}
	rooms := []Room{{Id: "R1", Name: "Phòng 101", Capacity: 40, Location: "B"}}
	courses := []Course{{Id: "C1", Name: "Toán", StudentClass: "10A1", RequiredLocation: "B"}}
	timeslots := []Timeslot{{Id: "TS1", Day: "Thứ 2", Period: 1}}

	t.Run("Valid entities", func(t *testing.T) {
		input, err := NewModelInput(teachers, rooms, courses, timeslots)

		assert.Nil(t, err)
		assert.Equal(t, []string{"C1"}, input.CourseIds)
		assert.Equal(t, courses[0], input.Courses["C1"])
	})

	t.Run("Unknown weekday", func(t *testing.T) {
		_, err := NewModelInput(teachers, rooms, courses, []Timeslot{{Id: "TS1", Day: "Chủ nhật", Period: 1}})
		assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
	})

	t.Run("Missing required field", func(t *testing.T) {
		_, err := NewModelInput(teachers, []Room{{Id: "R1", Name: "Phòng 101"}}, courses, timeslots)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
	})

	t.Run("Duplicate ids", func(t *testing.T) {
		_, err := NewModelInput(teachers, rooms, append(courses, courses[0]), timeslots)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
	})
}

func loadInput(t *testing.T, dir string) ModelInput {
	t.Helper()
	input, err := InputFromJson(dir)
	require.Nil(t, err)
	return input
}

func newInput(t *testing.T, teachers []Teacher, rooms []Room, courses []Course, timeslots []Timeslot) ModelInput {
	t.Helper()
	input, err := NewModelInput(teachers, rooms, courses, timeslots)
	require.Nil(t, err)
	return input
}
