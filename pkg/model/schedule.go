package model

import "slices"

// Assignment places a course in a room with a teacher at a timeslot.
// It is comparable, so == and map keys are structural over the four ids.
type Assignment struct {
	CourseId   string `json:"course_id"`
	RoomId     string `json:"room_id"`
	TeacherId  string `json:"teacher_id"`
	TimeslotId string `json:"timeslot_id"`
}

// Schedule is an ordered sequence of assignments. During search it is used as a stack and may
// be transiently incomplete; completeness is checked by ConstraintChecker.IsValid.
type Schedule struct {
	Assignments []Assignment `json:"assignments"`
}

func NewSchedule(assignments ...Assignment) *Schedule {
	return &Schedule{Assignments: slices.Clone(assignments)}
}

func (schedule *Schedule) Add(assignment Assignment) {
	schedule.Assignments = append(schedule.Assignments, assignment)
}

// Pop removes the most recently added assignment. It is a no-op on an empty schedule.
func (schedule *Schedule) Pop() {
	if len(schedule.Assignments) == 0 {
		return
	}
	schedule.Assignments = schedule.Assignments[:len(schedule.Assignments)-1]
}

func (schedule *Schedule) Len() int {
	return len(schedule.Assignments)
}

// Copy returns a deep copy that shares no backing array with the receiver.
func (schedule *Schedule) Copy() *Schedule {
	return &Schedule{Assignments: slices.Clone(schedule.Assignments)}
}

// AssignmentFor returns the first assignment of courseId, if any.
func (schedule *Schedule) AssignmentFor(courseId string) (Assignment, bool) {
	for _, assignment := range schedule.Assignments {
		if assignment.CourseId == courseId {
			return assignment, true
		}
	}
	return Assignment{}, false
}
