package sat

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// SATSolution holds one signed literal per assigned variable; nil stands for an unsatisfiable instance.
type SATSolution []int64

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Satisfies reports whether solution is consistent (no literal together with its negation) and makes
// every clause true.
func (s SAT) Satisfies(solution SATSolution) bool {
	literals := make(map[int64]bool, len(solution))
	for _, literal := range solution {
		if literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	return lo.EveryBy(s.Clauses, func(clause []int64) bool {
		return lo.SomeBy(clause, func(literal int64) bool { return literals[literal] })
	})
}
