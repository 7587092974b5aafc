package sat

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

type externalPreset struct {
	path string
	args []string
}

// Competition-format solvers reading DIMACS from standard input
var externalSolvers = map[string]externalPreset{
	"kissat":        {path: "kissat", args: []string{"-q", "--relaxed"}},
	"cadical":       {path: "cadical", args: []string{"-q"}},
	"cryptominisat": {path: "cryptominisat5", args: []string{"--verb=0"}},
}

// Exit codes of competition-format solvers
const (
	satisfiableExit   = 10
	unsatisfiableExit = 20
)

type externalSolver struct {
	name string
	path string
	args []string
}

// NewExternalSolver runs path with args, feeding the instance on standard input and reading "v" lines back
func NewExternalSolver(name, path string, args ...string) SATSolver {
	return &externalSolver{
		name: name,
		path: path,
		args: args,
	}
}

func (solver *externalSolver) Solve(sat SAT) (SATSolution, error) {
	dimacs := sat.ToDIMACS() // Transform SAT into DIMACS-CNF string format

	cmd := exec.Command(solver.path, solver.args...)
	cmd.Stdin = strings.NewReader(dimacs)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, appErrors.Cause(appErrors.ErrSolver, err, fmt.Sprintf("cannot run %v", solver.name))
	}

	switch cmd.ProcessState.ExitCode() {
	case unsatisfiableExit:
		return nil, nil
	case satisfiableExit:
		solution, err := parseSolution(stdOut.String())
		if err != nil {
			return nil, appErrors.Cause(appErrors.ErrSolver, err, fmt.Sprintf("invalid %v output", solver.name))
		}
		return solution, nil
	}
	return nil, appErrors.Cause(appErrors.ErrSolver, err, fmt.Sprintf("%v exited with code %d: %v", solver.name, cmd.ProcessState.ExitCode(), stderr.String()))
}
