package model

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

// ScheduleEvaluator scores soft constraints. Higher is better.
type ScheduleEvaluator interface {
	// Returns the fitness of the schedule, in [0, 100]; an empty schedule scores 0
	Evaluate(schedule *Schedule) float64

	// Returns the fitness together with its sub-scores
	Breakdown(schedule *Schedule) Fitness
}

type Fitness struct {
	Consecutive float64 `json:"consecutive"` // Teacher-consecutiveness sub-score, in [0, 50]
	RoomUsage   float64 `json:"room_usage"`  // Room-usage sub-score, in [0, 50]
	Total       float64 `json:"total"`
}

const (
	subScoreMax          = 50.0
	consecutivePenalty   = 8.33
	excessRoomPenalty    = 5.0
	maxConsecutiveRun    = 3 // A run of this many consecutive periods is a violation
	maxFitness           = 100.0
	unknownDayEvaluation = 0
	unknownDayOrdering   = 99
)

var dayIndex = map[string]int{
	"Thứ 2": 0, "Thứ 3": 1, "Thứ 4": 2, "Thứ 5": 3, "Thứ 6": 4, "Thứ 7": 5,
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3, "Friday": 4, "Saturday": 5,
}

var sessionIndex = map[string]int{
	"Sáng": 0, "morning": 0,
	"Chiều": 1, "afternoon": 1,
}

func timeslotKey(timeslot Timeslot, unknownDay int) int {
	day, ok := dayIndex[timeslot.Day]
	if !ok {
		day = unknownDay
	}
	session, ok := sessionIndex[timeslot.Session]
	if !ok {
		session = timeslot.Period
	}
	return day*100 + session*10 + timeslot.Period
}

// TimeslotOrder is the chronological sort key of a timeslot; unknown days sort last.
func TimeslotOrder(timeslot Timeslot) int {
	return timeslotKey(timeslot, unknownDayOrdering)
}

type scheduleEvaluatorStandard struct {
	modelInput ModelInput
}

func NewScheduleEvaluator(modelInput ModelInput) ScheduleEvaluator {
	return &scheduleEvaluatorStandard{modelInput: modelInput}
}

func (evaluator *scheduleEvaluatorStandard) Evaluate(schedule *Schedule) float64 {
	return evaluator.Breakdown(schedule).Total
}

func (evaluator *scheduleEvaluatorStandard) Breakdown(schedule *Schedule) Fitness {
	if schedule == nil || schedule.Len() == 0 {
		return Fitness{}
	}

	consecutive := evaluator.consecutiveScore(schedule)
	roomUsage := evaluator.roomUsageScore(schedule)
	return Fitness{
		Consecutive: consecutive,
		RoomUsage:   roomUsage,
		Total:       math.Min(maxFitness, consecutive+roomUsage),
	}
}

// Counts at most one violation per teacher having a run of three or more strictly consecutive timeslot keys
func (evaluator *scheduleEvaluatorStandard) consecutiveScore(schedule *Schedule) float64 {
	perTeacher := lo.GroupBy(schedule.Assignments, func(assignment Assignment) string {
		return assignment.TeacherId
	})

	violations := 0
	for _, assignments := range perTeacher {
		keys := lo.FilterMap(assignments, func(assignment Assignment, _ int) (int, bool) {
			timeslot, ok := evaluator.modelInput.Timeslots[assignment.TimeslotId]
			if !ok {
				return 0, false
			}
			return timeslotKey(timeslot, unknownDayEvaluation), true
		})
		slices.Sort(keys)

		run := 1
		for i := 0; i+1 < len(keys); i++ {
			if keys[i+1]-keys[i] != 1 {
				run = 1
				continue
			}
			if run++; run >= maxConsecutiveRun {
				violations++
				break
			}
		}
	}

	return math.Max(0, subScoreMax-float64(violations)*consecutivePenalty)
}

func (evaluator *scheduleEvaluatorStandard) roomUsageScore(schedule *Schedule) float64 {
	used := len(lo.Uniq(lo.Map(schedule.Assignments, func(assignment Assignment, _ int) string {
		return assignment.RoomId
	})))
	excess := max(0, used-len(evaluator.modelInput.Courses))
	return math.Max(0, subScoreMax-float64(excess)*excessRoomPenalty)
}
