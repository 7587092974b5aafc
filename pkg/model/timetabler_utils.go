package model

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// verify checks that schedule is complete, that every id is known, that each teacher is qualified and each
// room eligible for its course, and replays the four hard constraints pairwise.
func verify(schedule *Schedule, modelInput ModelInput) bool {
	if schedule == nil {
		return false
	}

	checker := NewConstraintChecker(modelInput)
	space := newOptionSpace(modelInput)

	if !checker.IsValid(schedule) {
		return false
	}

	replayed := NewSchedule()
	for _, assignment := range schedule.Assignments {
		// Check that:
		// - Teacher and timeslot exist (course and room are covered by the hard constraints)
		// - Teacher is qualified to teach the course
		// - Room matches the course's required location
		// - Teacher, room and student class are free and the location policy holds
		_, teacherOk := modelInput.Teachers[assignment.TeacherId]
		_, timeslotOk := modelInput.Timeslots[assignment.TimeslotId]
		if !teacherOk || !timeslotOk ||
			!slices.Contains(space.Teachers(assignment.CourseId), assignment.TeacherId) ||
			!slices.Contains(space.Rooms(assignment.CourseId), assignment.RoomId) ||
			!checker.CheckAll(replayed, assignment) {
			return false
		}
		replayed.Add(assignment)
	}
	return true
}

// topThree returns the indices of the three highest scores (alpha, beta, delta); ties keep index order.
// With fewer than three scores the missing positions repeat the previous one.
func topThree(scores []float64) (alpha, beta, delta int) {
	indices := lo.Range(len(scores))
	slices.SortStableFunc(indices, func(i, j int) int {
		switch {
		case scores[i] > scores[j]:
			return -1
		case scores[i] < scores[j]:
			return 1
		}
		return 0
	})

	alpha = indices[0]
	beta = alpha
	if len(indices) > 1 {
		beta = indices[1]
	}
	delta = beta
	if len(indices) > 2 {
		delta = indices[2]
	}
	return alpha, beta, delta
}

func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1))
}

type InfeasibilityKind string

const (
	NoOptions             InfeasibilityKind = "no-options"              // A course has an empty option set
	StudentClassOverload  InfeasibilityKind = "student-class-overload"  // A student class has more courses than timeslots
	TeacherTimeslotsShort InfeasibilityKind = "teacher-timeslots-short" // Courses cannot get pairwise distinct (teacher, timeslot) pairs
	RoomTimeslotsShort    InfeasibilityKind = "room-timeslots-short"    // Courses cannot get pairwise distinct (room, timeslot) pairs
)

// Infeasibility is a proof that no complete schedule exists.
type Infeasibility struct {
	Kind    InfeasibilityKind `json:"kind"`
	Subject string            `json:"subject"`
	Detail  string            `json:"detail"`
}

func (infeasibility Infeasibility) String() string {
	return fmt.Sprintf("%v (%v): %v", infeasibility.Kind, infeasibility.Subject, infeasibility.Detail)
}

// Diagnose checks necessary conditions for a complete schedule to exist. An empty result does not
// guarantee feasibility, but any returned Infeasibility proves there is none.
func Diagnose(modelInput ModelInput) ([]Infeasibility, error) {
	space := newOptionSpace(modelInput)
	checker := NewConstraintChecker(modelInput)
	infeasibilities := make([]Infeasibility, 0)

	// Rooms that pass both the required-location filter and the location policy
	gatedRooms := make(map[string][]string, len(modelInput.CourseIds))
	for _, courseId := range modelInput.CourseIds {
		gatedRooms[courseId] = lo.Filter(space.Rooms(courseId), func(roomId string, _ int) bool {
			return checker.LocationAllowed(Assignment{CourseId: courseId, RoomId: roomId})
		})
	}

	//** Empty option sets
	for _, courseId := range modelInput.CourseIds {
		teachers, rooms := len(space.Teachers(courseId)), len(gatedRooms[courseId])
		if teachers*rooms*len(space.Timeslots()) == 0 {
			course := modelInput.Courses[courseId]
			infeasibilities = append(infeasibilities, Infeasibility{
				Kind:    NoOptions,
				Subject: courseId,
				Detail:  fmt.Sprintf("%v - %v: %d teachers, %d rooms, %d timeslots", course.Name, course.StudentClass, teachers, rooms, len(space.Timeslots())),
			})
		}
	}
	if len(infeasibilities) > 0 {
		return infeasibilities, nil
	}

	//** Student classes
	perClass := lo.CountValuesBy(modelInput.CourseIds, func(courseId string) string {
		return modelInput.Courses[courseId].StudentClass
	})
	for _, class := range lo.Uniq(lo.Map(modelInput.CourseIds, func(courseId string, _ int) string { return modelInput.Courses[courseId].StudentClass })) {
		if perClass[class] > len(space.Timeslots()) {
			infeasibilities = append(infeasibilities, Infeasibility{
				Kind:    StudentClassOverload,
				Subject: class,
				Detail:  fmt.Sprintf("%d courses for %d timeslots", perClass[class], len(space.Timeslots())),
			})
		}
	}

	//** Teacher-timeslot and room-timeslot matchings
	teacherPairs := lo.FlatMap(modelInput.TeacherIds, func(teacherId string, _ int) []any {
		return lo.Map(space.Timeslots(), func(timeslotId string, _ int) any { return [2]string{teacherId, timeslotId} })
	})
	matched, err := matchCourses(modelInput.CourseIds, teacherPairs, func(courseId string, pair [2]string) bool {
		return slices.Contains(space.Teachers(courseId), pair[0])
	})
	if err != nil {
		return nil, err
	}
	if matched < len(modelInput.CourseIds) {
		infeasibilities = append(infeasibilities, Infeasibility{
			Kind:    TeacherTimeslotsShort,
			Subject: "teachers",
			Detail:  fmt.Sprintf("at most %d of %d courses can get a distinct teacher-timeslot pair", matched, len(modelInput.CourseIds)),
		})
	}

	roomPairs := lo.FlatMap(modelInput.RoomIds, func(roomId string, _ int) []any {
		return lo.Map(space.Timeslots(), func(timeslotId string, _ int) any { return [2]string{roomId, timeslotId} })
	})
	matched, err = matchCourses(modelInput.CourseIds, roomPairs, func(courseId string, pair [2]string) bool {
		return slices.Contains(gatedRooms[courseId], pair[0])
	})
	if err != nil {
		return nil, err
	}
	if matched < len(modelInput.CourseIds) {
		infeasibilities = append(infeasibilities, Infeasibility{
			Kind:    RoomTimeslotsShort,
			Subject: "rooms",
			Detail:  fmt.Sprintf("at most %d of %d courses can get a distinct room-timeslot pair", matched, len(modelInput.CourseIds)),
		})
	}

	return infeasibilities, nil
}

// matchCourses returns the size of a maximum matching between courses and resource pairs
func matchCourses(courseIds []string, pairs []any, neighbors func(courseId string, pair [2]string) bool) (int, error) {
	if len(courseIds) == 0 {
		return 0, nil
	}

	coursesAny := lo.ToAnySlice(courseIds)
	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, pairs, func(courseAny any, pairAny any) (bool, error) {
		return neighbors(courseAny.(string), pairAny.([2]string)), nil
	})
	if err != nil {
		return 0, err
	}

	return len(graph.LargestMatching()), nil
}
