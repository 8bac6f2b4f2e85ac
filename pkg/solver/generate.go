package solver

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
)

type generateSolver struct{}

// NewGenerate returns a solver that calls the gateway exactly once and
// returns its result unchanged.
func NewGenerate() Solver {
	return generateSolver{}
}

func (generateSolver) Name() string { return "generate" }

func (generateSolver) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	return generate(ctx, state)
}

type completeTask struct{}

// CompleteTask returns a solver that sets Completed and returns
// immediately, with no other side effect. The executor stops running
// subsequent steps once it observes the flag.
func CompleteTask() Solver {
	return completeTask{}
}

func (completeTask) Name() string { return "complete_task" }

func (completeTask) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	state.Completed = true
	return state, nil
}
