// Package runtime implements the plan executor: the state machine that
// sequences solver steps over one task state.
//
// A run moves through Running(i) -> Finishing -> CleaningUp -> Done. Steps
// execute strictly sequentially; step i's mutations are fully visible to
// step i+1. A step failure skips Finishing but never CleaningUp, and a
// cleanup failure never masks the original error.
package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/solver"
)

// Limits bounds one plan run.
type Limits struct {
	// MaxMessages is the conversation-length ceiling, checked after each
	// step. Exceeding it behaves exactly like a solver setting Completed:
	// graceful early termination, not a failure. Zero falls back to the
	// executor's WithMaxMessages default; a negative value disables the
	// ceiling even when the executor carries a default.
	MaxMessages int
}

// Executor runs plans against task states. It holds no per-run state and
// is safe for concurrent use: many runs may share one Executor, each with
// its own TaskState.
type Executor struct {
	generate    solver.Generate
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	maxMessages int
}

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithMaxMessages sets a default conversation-length ceiling applied when
// a run's Limits leave MaxMessages unset.
func WithMaxMessages(n int) Option {
	return func(e *Executor) {
		e.maxMessages = n
	}
}

// New creates an executor whose solvers generate through the given
// gateway-bound function.
func New(generate solver.Generate, opts ...Option) *Executor {
	e := &Executor{
		generate: generate,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the plan against the initial state and returns the terminal
// state together with at most one error: the first fatal failure, the
// cancellation cause, or a cleanup failure when nothing else went wrong.
// The returned state is always non-nil and reflects the last known state.
func (e *Executor) Run(ctx context.Context, plan *solver.Plan, state *domain.TaskState, limits Limits) (*domain.TaskState, error) {
	start := time.Now()
	maxMessages := limits.MaxMessages
	if maxMessages == 0 {
		maxMessages = e.maxMessages
	}

	state, runErr := e.runSteps(ctx, plan, state, maxMessages)

	// Finishing is skipped on failure and on cancellation: no further
	// solver steps run once either is observed. Cancellation may land
	// during the last step, so the context is re-checked here.
	if runErr == nil {
		runErr = ctx.Err()
	}
	if runErr == nil && plan.Finish() != nil {
		state, runErr = e.step(ctx, plan.Finish(), state, len(plan.Steps()))
	}

	runErr = e.cleanup(ctx, plan, state, runErr)

	e.emitRunEnd(ctx, runErr, time.Since(start))
	return state, runErr
}

// runSteps is the Running(i) portion of the state machine.
func (e *Executor) runSteps(ctx context.Context, plan *solver.Plan, state *domain.TaskState, maxMessages int) (*domain.TaskState, error) {
	for i, step := range plan.Steps() {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		next, err := e.step(ctx, step, state, i)
		if next != nil {
			state = next
		}
		if err != nil {
			return state, err
		}

		// Completed is read from the returned instance after each step.
		if state.Completed {
			e.logger.Debug("task completed early", "step", i, "solver", solver.Name(step))
			return state, nil
		}
		if maxMessages > 0 && len(state.Messages) > maxMessages {
			e.logger.Debug("message limit exceeded",
				"step", i, "messages", len(state.Messages), "max_messages", maxMessages)
			state.Completed = true
			return state, nil
		}
	}
	return state, nil
}

// step runs one solver with hooks, normalizing failures to *SolverError.
func (e *Executor) step(ctx context.Context, s solver.Solver, state *domain.TaskState, index int) (*domain.TaskState, error) {
	name := solver.Name(s)
	e.emitStep(ctx, e.hooks.OnStepStart, domain.EventStepStart, name, index, nil)

	next, err := s.Solve(ctx, state, e.generate)
	if err != nil && !isCancellation(err) {
		err = &domain.SolverError{Solver: name, Step: index, Err: err}
	}

	e.emitStep(ctx, e.hooks.OnStepEnd, domain.EventStepEnd, name, index, err)
	if next == nil {
		next = state
	}
	return next, err
}

// cleanup is the CleaningUp state: it always runs, and its failure never
// replaces a captured one.
func (e *Executor) cleanup(ctx context.Context, plan *solver.Plan, state *domain.TaskState, runErr error) error {
	handler := plan.Cleanup()
	if handler == nil {
		return runErr
	}

	// Cleanup must run even when the run was cancelled.
	if err := handler(context.WithoutCancel(ctx), state); err != nil {
		cleanupErr := &domain.CleanupError{Err: err}
		if runErr != nil {
			e.logger.Error("cleanup failed after run error", "err", cleanupErr, "run_err", runErr)
			return runErr
		}
		return cleanupErr
	}
	return runErr
}

func (e *Executor) emitStep(ctx context.Context, hook func(context.Context, *domain.StepEvent), eventType domain.EventType, name string, index int, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: eventType},
		Solver:    name,
		Step:      index,
		Err:       err,
	})
}

func (e *Executor) emitRunEnd(ctx context.Context, err error, duration time.Duration) {
	if e.hooks.OnRunEnd == nil {
		return
	}
	e.hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunEnd},
		Status:    StatusOf(err),
		Duration:  duration,
		Err:       err,
	})
}

// StatusOf maps a run's terminal error to its status: cancellation is
// graceful-but-incomplete, not a defect.
func StatusOf(err error) domain.RunStatus {
	switch {
	case err == nil:
		return domain.RunStatusSuccess
	case isCancellation(err):
		return domain.RunStatusCancelled
	default:
		return domain.RunStatusError
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
