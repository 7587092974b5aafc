package model

import "github.com/samber/lo"

// ConstraintChecker validates hard constraints. Implementations are stateless and never mutate their inputs.
type ConstraintChecker interface {
	// Checks whether adding candidate to schedule keeps every hard constraint, in this order:
	// teacher conflict, room conflict, student-class conflict and location policy
	CheckAll(schedule *Schedule, candidate Assignment) bool

	// Checks whether no teacher teaches two assignments at the same timeslot
	TeacherFree(schedule *Schedule, candidate Assignment) bool

	// Checks whether no room hosts two assignments at the same timeslot
	RoomFree(schedule *Schedule, candidate Assignment) bool

	// Checks whether the candidate's student class is not already attending another course at the same timeslot
	StudentClassFree(schedule *Schedule, candidate Assignment) bool

	// Checks whether the candidate's room satisfies the location policy of its course
	LocationAllowed(candidate Assignment) bool

	// Checks whether every course is assigned exactly once (pairwise constraints are not re-checked)
	IsValid(schedule *Schedule) bool

	// Returns the ids of the courses without an assignment, in declaration order
	Unassigned(schedule *Schedule) []string
}

// Course names with a dedicated location policy
const (
	PhysicalEducation = "Thể dục"
	English           = "Tiếng Anh"
)

// Location tags
const (
	LocationA = "A"
	LocationB = "B"
	LocationN = "N"
)

type constraintCheckerStandard struct {
	modelInput ModelInput
}

func NewConstraintChecker(modelInput ModelInput) ConstraintChecker {
	return &constraintCheckerStandard{modelInput: modelInput}
}

func (checker *constraintCheckerStandard) CheckAll(schedule *Schedule, candidate Assignment) bool {
	return checker.TeacherFree(schedule, candidate) &&
		checker.RoomFree(schedule, candidate) &&
		checker.StudentClassFree(schedule, candidate) &&
		checker.LocationAllowed(candidate)
}

func (checker *constraintCheckerStandard) TeacherFree(schedule *Schedule, candidate Assignment) bool {
	return !lo.SomeBy(schedule.Assignments, func(assignment Assignment) bool {
		return assignment.TeacherId == candidate.TeacherId && assignment.TimeslotId == candidate.TimeslotId
	})
}

func (checker *constraintCheckerStandard) RoomFree(schedule *Schedule, candidate Assignment) bool {
	return !lo.SomeBy(schedule.Assignments, func(assignment Assignment) bool {
		return assignment.RoomId == candidate.RoomId && assignment.TimeslotId == candidate.TimeslotId
	})
}

func (checker *constraintCheckerStandard) StudentClassFree(schedule *Schedule, candidate Assignment) bool {
	course, ok := checker.modelInput.Courses[candidate.CourseId]
	if !ok {
		return false
	}

	return !lo.SomeBy(schedule.Assignments, func(assignment Assignment) bool {
		existing, ok := checker.modelInput.Courses[assignment.CourseId]
		return ok && existing.StudentClass == course.StudentClass && assignment.TimeslotId == candidate.TimeslotId
	})
}

// The policy is keyed by course name. Course.RequiredLocation only drives room filtering
// during option generation and is not consulted here.
func (checker *constraintCheckerStandard) LocationAllowed(candidate Assignment) bool {
	course, courseOk := checker.modelInput.Courses[candidate.CourseId]
	room, roomOk := checker.modelInput.Rooms[candidate.RoomId]
	if !courseOk || !roomOk {
		return false
	}

	switch course.Name {
	case PhysicalEducation:
		return room.Location == LocationN
	case English:
		return room.Location == LocationA || room.Location == LocationB
	default:
		return room.Location == LocationB
	}
}

func (checker *constraintCheckerStandard) IsValid(schedule *Schedule) bool {
	assigned := make(map[string]bool, schedule.Len())
	for _, assignment := range schedule.Assignments {
		if assigned[assignment.CourseId] {
			return false
		}
		assigned[assignment.CourseId] = true
	}
	return len(assigned) == len(checker.modelInput.Courses)
}

func (checker *constraintCheckerStandard) Unassigned(schedule *Schedule) []string {
	assigned := lo.SliceToMap(schedule.Assignments, func(assignment Assignment) (string, bool) {
		return assignment.CourseId, true
	})
	return lo.Reject(checker.modelInput.CourseIds, func(courseId string, _ int) bool {
		return assigned[courseId]
	})
}
