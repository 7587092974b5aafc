package sat

import (
	"fmt"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (these are valid outputs where error shall be nil)
	Solve(SAT) (SATSolution, error)
}

// NewSolver returns the solver registered under name. An empty path runs an external solver from PATH.
func NewSolver(name, path string) (SATSolver, error) {
	if name == "gini" {
		return NewGiniSolver(), nil
	}

	preset, ok := externalSolvers[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("unknown sat solver \"%v\"", name))
	}
	if path == "" {
		path = preset.path
	}
	return NewExternalSolver(name, path, preset.args...), nil
}

// Solvers lists the accepted solver names
func Solvers() []string {
	return []string{"gini", "kissat", "cadical", "cryptominisat"}
}
