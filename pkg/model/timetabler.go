package model

import "context"

type Timetabler interface {
	// Builds a schedule for modelInput. A nil schedule with a nil error means no schedule could be built
	// (infeasible course or exhausted search); errors are reserved for invalid parameters, cancellation
	// and solver failures. Strategies that may return partial schedules, or a best-so-far schedule along with
	// a cancellation error, document it.
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (schedule *Schedule, err error)

	// Checks the schedule is complete and replays every hard constraint pairwise
	Verify(
		schedule *Schedule,
		modelInput ModelInput,
	) bool
}
