package model

import "sort"

// indexer interface is design to give a unique SAT variable to every (course, option) pair and vice versa
type indexer interface {
	// Returns the variable of the option-th option of the course-th course
	Index(course, option int) int64
	// Returns the (course, option) pair of a variable
	Attributes(index int64) (course int, option int)
	// Returns the number of option variables
	Variables() uint64
}

// newIndexer lays the options of every course out contiguously; optionCounts[i] is the number of options of course i
func newIndexer(optionCounts ...int) indexer {
	offsets := make([]int64, len(optionCounts)+1)
	for i, count := range optionCounts {
		offsets[i+1] = offsets[i] + int64(count)
	}
	return &indexerImplementation{offsets: offsets}
}

type indexerImplementation struct {
	offsets []int64 // offsets[i] is the number of options of the courses before course i
}

func (indexer *indexerImplementation) Index(course, option int) int64 {
	return indexer.offsets[course] + int64(option) + 1
}

func (indexer *indexerImplementation) Attributes(index int64) (course, option int) {
	index = index - 1
	// First offset past index; courses without options share it with their successor
	course = sort.Search(len(indexer.offsets), func(i int) bool { return indexer.offsets[i] > index }) - 1
	return course, int(index - indexer.offsets[course])
}

func (indexer *indexerImplementation) Variables() uint64 {
	return uint64(indexer.offsets[len(indexer.offsets)-1])
}
