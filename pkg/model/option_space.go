package model

import (
	"strings"

	"github.com/samber/lo"
)

// Option is a (teacher, room, timeslot) triple that can host a course.
type Option struct {
	TeacherId  string
	RoomId     string
	TimeslotId string
}

func (option Option) assign(courseId string) Assignment {
	return Assignment{
		CourseId:   courseId,
		RoomId:     option.RoomId,
		TeacherId:  option.TeacherId,
		TimeslotId: option.TimeslotId,
	}
}

// optionSpace enumerates the legal candidates of every course: qualified teachers by course name,
// rooms filtered by Course.RequiredLocation and all timeslots.
type optionSpace struct {
	modelInput     ModelInput
	courseTeachers map[string][]string // Course name -> qualified teacher ids, in teacher declaration order
	eligibleRooms  map[string][]string // Course id -> eligible room ids, in room declaration order
}

func newOptionSpace(modelInput ModelInput) *optionSpace {
	courseTeachers := make(map[string][]string)
	for _, teacherId := range modelInput.TeacherIds {
		for _, courseName := range modelInput.Teachers[teacherId].Courses {
			courseTeachers[courseName] = append(courseTeachers[courseName], teacherId)
		}
	}

	eligibleRooms := make(map[string][]string, len(modelInput.CourseIds))
	for _, courseId := range modelInput.CourseIds {
		required := modelInput.Courses[courseId].RequiredLocation
		eligibleRooms[courseId] = lo.Filter(modelInput.RoomIds, func(roomId string, _ int) bool {
			return LocationMatches(modelInput.Rooms[roomId].Location, required)
		})
	}

	return &optionSpace{
		modelInput:     modelInput,
		courseTeachers: courseTeachers,
		eligibleRooms:  eligibleRooms,
	}
}

// LocationMatches reports whether a room location satisfies a required-location specifier,
// either a single tag ("B") or a "|" separated disjunction ("A|B").
func LocationMatches(roomLocation, requiredLocation string) bool {
	if strings.Contains(requiredLocation, "|") {
		return lo.Contains(strings.Split(requiredLocation, "|"), roomLocation)
	}
	return roomLocation == requiredLocation
}

func (space *optionSpace) Teachers(courseId string) []string {
	return space.courseTeachers[space.modelInput.Courses[courseId].Name]
}

func (space *optionSpace) Rooms(courseId string) []string {
	return space.eligibleRooms[courseId]
}

func (space *optionSpace) Timeslots() []string {
	return space.modelInput.TimeslotIds
}

// Difficulty is the size of the course's option set; courses with fewer options are scheduled first.
func (space *optionSpace) Difficulty(courseId string) int {
	return len(space.Teachers(courseId)) * len(space.Rooms(courseId)) * len(space.Timeslots())
}

// Options returns the cartesian product teachers x rooms x timeslots of the course that holds every constraint.
// Constraints receive the partial option; positions not yet fixed are left empty.
func (space *optionSpace) Options(courseId string, constraints ...func(option Option) bool) []Option {
	teachers, rooms, timeslots := space.Teachers(courseId), space.Rooms(courseId), space.Timeslots()

	toOption := func(permutation []int) Option {
		option := Option{}
		if permutation[0] != unset {
			option.TeacherId = teachers[permutation[0]]
		}
		if permutation[1] != unset {
			option.RoomId = rooms[permutation[1]]
		}
		if permutation[2] != unset {
			option.TimeslotId = timeslots[permutation[2]]
		}
		return option
	}

	generator := newPermutationGenerator(len(teachers), len(rooms), len(timeslots))
	permutations := generator.ConstrainedPermutations(lo.Map(constraints, func(constraint func(Option) bool, _ int) func([]int) bool {
		return func(permutation []int) bool {
			return constraint(toOption(permutation))
		}
	}))

	return lo.Map(permutations, func(permutation []int, _ int) Option {
		return toOption(permutation)
	})
}
