package report

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/limaJavier/coursetabling/pkg/model"
)

const unknownTimeslotOrder = 999

// Row is one printable assignment with its entities resolved to display values
type Row struct {
	Day      string `json:"day"`
	Session  string `json:"session"`
	Time     string `json:"time"`
	Course   string `json:"course"`
	Class    string `json:"class"`
	Teacher  string `json:"teacher"`
	Room     string `json:"room"`
	CourseId string `json:"course_id"`
}

type Statistics struct {
	Assignments int `json:"assignments"`
	Rooms       int `json:"rooms"`
	Teachers    int `json:"teachers"`
	Timeslots   int `json:"timeslots"`
}

// Run is the outcome of one timetabling attempt
type Run struct {
	Id              string                `json:"id"`
	Strategy        string                `json:"strategy"`
	Instance        string                `json:"instance"`
	Seed            uint64                `json:"seed"`
	Duration        time.Duration         `json:"duration_ns"`
	Found           bool                  `json:"found"`
	Valid           bool                  `json:"valid"`
	Fitness         model.Fitness         `json:"fitness"`
	Statistics      Statistics            `json:"statistics"`
	Courses         int                   `json:"courses"`
	Unassigned      []string              `json:"unassigned"`
	Infeasibilities []model.Infeasibility `json:"infeasibilities,omitempty"`
	Rows            []Row                 `json:"rows"`
	Schedule        *model.Schedule       `json:"-"`
}

// NewRun evaluates schedule against input. A nil schedule records a run that found nothing.
func NewRun(strategy, instance string, seed uint64, duration time.Duration, schedule *model.Schedule, input model.ModelInput, valid bool) *Run {
	run := &Run{
		Id:         uuid.NewString(),
		Strategy:   strategy,
		Instance:   instance,
		Seed:       seed,
		Duration:   duration,
		Found:      schedule != nil,
		Valid:      valid,
		Courses:    len(input.CourseIds),
		Unassigned: input.CourseIds,
		Rows:       []Row{},
		Schedule:   schedule,
	}
	if schedule == nil {
		return run
	}

	run.Fitness = model.NewScheduleEvaluator(input).Breakdown(schedule)
	run.Statistics = NewStatistics(schedule)
	run.Unassigned = model.NewConstraintChecker(input).Unassigned(schedule)
	run.Rows = Rows(schedule, input)
	return run
}

func (run *Run) Assigned() int {
	return run.Courses - len(run.Unassigned)
}

// Run outcomes
const (
	OutcomeValid      = "valid"      // Complete schedule that passed verification
	OutcomeInvalid    = "invalid"    // Complete schedule rejected by verification
	OutcomeIncomplete = "incomplete" // Schedule missing some courses
	OutcomeNone       = "none"       // No schedule
)

func (run *Run) Outcome() string {
	switch {
	case run.Valid:
		return OutcomeValid
	case !run.Found:
		return OutcomeNone
	case len(run.Unassigned) > 0:
		return OutcomeIncomplete
	}
	return OutcomeInvalid
}

func NewStatistics(schedule *model.Schedule) Statistics {
	distinct := func(key func(assignment model.Assignment) string) int {
		return len(lo.Uniq(lo.Map(schedule.Assignments, func(assignment model.Assignment, _ int) string { return key(assignment) })))
	}
	return Statistics{
		Assignments: schedule.Len(),
		Rooms:       distinct(func(assignment model.Assignment) string { return assignment.RoomId }),
		Teachers:    distinct(func(assignment model.Assignment) string { return assignment.TeacherId }),
		Timeslots:   distinct(func(assignment model.Assignment) string { return assignment.TimeslotId }),
	}
}

// Rows resolves the assignments in chronological order. Assignments referring to unknown entities are skipped.
func Rows(schedule *model.Schedule, input model.ModelInput) []Row {
	order := func(assignment model.Assignment) int {
		timeslot, ok := input.Timeslots[assignment.TimeslotId]
		if !ok {
			return unknownTimeslotOrder
		}
		return model.TimeslotOrder(timeslot)
	}

	assignments := slices.Clone(schedule.Assignments)
	slices.SortStableFunc(assignments, func(a, b model.Assignment) int {
		return cmp.Compare(order(a), order(b))
	})

	return lo.FilterMap(assignments, func(assignment model.Assignment, _ int) (Row, bool) {
		return newRow(assignment, input)
	})
}

// CourseRows resolves one assignment per course, sorted by course id
func CourseRows(schedule *model.Schedule, input model.ModelInput) []Row {
	perCourse := lo.SliceToMap(schedule.Assignments, func(assignment model.Assignment) (string, model.Assignment) {
		return assignment.CourseId, assignment
	})
	courseIds := lo.Keys(perCourse)
	slices.Sort(courseIds)

	return lo.FilterMap(courseIds, func(courseId string, _ int) (Row, bool) {
		return newRow(perCourse[courseId], input)
	})
}

func newRow(assignment model.Assignment, input model.ModelInput) (Row, bool) {
	course, courseOk := input.Courses[assignment.CourseId]
	teacher, teacherOk := input.Teachers[assignment.TeacherId]
	room, roomOk := input.Rooms[assignment.RoomId]
	timeslot, timeslotOk := input.Timeslots[assignment.TimeslotId]
	if !courseOk || !teacherOk || !roomOk || !timeslotOk {
		return Row{}, false
	}

	session := timeslot.Session
	if session == "" {
		session = fmt.Sprintf("Tiết %d", timeslot.Period)
	}
	return Row{
		Day:      timeslot.Day,
		Session:  session,
		Time:     timeslot.Time,
		Course:   course.Name,
		Class:    course.StudentClass,
		Teacher:  teacher.Name,
		Room:     room.Name,
		CourseId: course.Id,
	}, true
}
