package model

import "github.com/samber/lo"

// Buckets up to this size get pairwise at-most-one clauses; larger ones a sequential counter
const pairwiseLimit = 6

// bucket holds variables of which at most one may be true
type bucket struct {
	variables []int64
	auxiliary int64 // First auxiliary variable of the sequential counter, 0 when encoded pairwise
}

type constraintState struct {
	modelInput ModelInput
	indexer    indexer
	courseIds  []string
	options    [][]Option // options[i] are the options of courseIds[i]

	teacherBuckets,
	roomBuckets,
	studentClassBuckets []bucket
}

// newConstraintState groups the option variables into teacher, room and student-class buckets and hands out
// auxiliary variables after the option variables. It returns the total number of variables.
func newConstraintState(modelInput ModelInput, courseIds []string, options [][]Option) (constraintState, uint64) {
	state := constraintState{
		modelInput: modelInput,
		indexer:    newIndexer(lo.Map(options, func(courseOptions []Option, _ int) int { return len(courseOptions) })...),
		courseIds:  courseIds,
		options:    options,
	}

	next := int64(state.indexer.Variables()) + 1
	group := func(key func(course int, option Option) string) []bucket {
		keys := make([]string, 0)
		variables := make(map[string][]int64)
		for course, courseOptions := range options {
			for i, option := range courseOptions {
				k := key(course, option)
				if _, ok := variables[k]; !ok {
					keys = append(keys, k)
				}
				variables[k] = append(variables[k], state.indexer.Index(course, i))
			}
		}

		buckets := make([]bucket, 0, len(keys))
		for _, k := range keys {
			if len(variables[k]) < 2 {
				continue
			}
			b := bucket{variables: variables[k]}
			if len(b.variables) > pairwiseLimit {
				b.auxiliary = next
				next += int64(len(b.variables) - 1)
			}
			buckets = append(buckets, b)
		}
		return buckets
	}

	state.teacherBuckets = group(func(_ int, option Option) string {
		return option.TeacherId + "\x00" + option.TimeslotId
	})
	state.roomBuckets = group(func(_ int, option Option) string {
		return option.RoomId + "\x00" + option.TimeslotId
	})
	state.studentClassBuckets = group(func(course int, option Option) string {
		return modelInput.Courses[courseIds[course]].StudentClass + "\x00" + option.TimeslotId
	})

	return state, uint64(next - 1)
}

// Every course takes at least one of its options
func completenessConstraints(state constraintState) [][]int64 {
	return lo.Map(state.options, func(courseOptions []Option, course int) []int64 {
		return lo.Map(courseOptions, func(_ Option, option int) int64 {
			return state.indexer.Index(course, option)
		})
	})
}

// A teacher teaches at most one option per timeslot
func teacherConstraints(state constraintState) [][]int64 {
	return atMostOne(state.teacherBuckets)
}

// A room hosts at most one option per timeslot
func roomConstraints(state constraintState) [][]int64 {
	return atMostOne(state.roomBuckets)
}

// A student class attends at most one option per timeslot
func studentClassConstraints(state constraintState) [][]int64 {
	return atMostOne(state.studentClassBuckets)
}

func atMostOne(buckets []bucket) [][]int64 {
	clauses := make([][]int64, 0)
	for _, b := range buckets {
		x := b.variables
		if b.auxiliary == 0 {
			for i := range len(x) - 1 {
				for j := i + 1; j < len(x); j++ {
					clauses = append(clauses, []int64{-x[i], -x[j]})
				}
			}
			continue
		}

		// s(i) is true when one of x(0..i) is true
		s := func(i int) int64 { return b.auxiliary + int64(i) }
		n := len(x)
		clauses = append(clauses, []int64{-x[0], s(0)})
		for i := 1; i < n-1; i++ {
			clauses = append(clauses,
				[]int64{-x[i], s(i)},
				[]int64{-s(i - 1), s(i)},
				[]int64{-x[i], -s(i - 1)},
			)
		}
		clauses = append(clauses, []int64{-x[n-1], -s(n - 2)})
	}
	return clauses
}
