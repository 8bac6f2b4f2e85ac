package solver

import (
	"context"
	"fmt"

	"github.com/aretw0/inquest/pkg/domain"
)

// Generate requests one model completion through the engine's gateway,
// appending the assistant message to the state and setting its output.
// It is the sole designated suspension point of a plan run: a call may
// wait for admission when the gateway's concurrency budget is exhausted.
type Generate func(ctx context.Context, state *domain.TaskState) (*domain.TaskState, error)

// Solver is a single transformation step over a task state. It may call
// generate zero or more times. A returned error is fatal to the run; the
// executor never retries a step.
type Solver interface {
	Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error)
}

// Func adapts a plain function to the Solver interface.
type Func func(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error)

func (f Func) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	return f(ctx, state, generate)
}

// Namer is optionally implemented by solvers that want a stable name in
// logs, events and errors.
type Namer interface {
	Name() string
}

// Name returns the solver's declared name, falling back to its Go type.
func Name(s Solver) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
