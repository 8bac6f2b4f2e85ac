package solver

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
)

// CleanupFunc is invoked with the final task state (or the state as of
// failure) exactly once at the very end of every run.
type CleanupFunc func(ctx context.Context, state *domain.TaskState) error

// Plan is an ordered sequence of solvers plus optional finish and cleanup
// hooks. A plan is constructed once per task definition and reused across
// many independent runs; it holds no per-run mutable state.
type Plan struct {
	steps   []Solver
	finish  Solver
	cleanup CleanupFunc
}

// PlanOption configures a Plan at construction time.
type PlanOption func(*Plan)

// WithFinish sets a solver that always runs once after the step loop ends,
// whether by exhausting the steps, by early termination, or by a hard
// limit trip. It does not run when a step failed.
func WithFinish(s Solver) PlanOption {
	return func(p *Plan) {
		p.finish = s
	}
}

// WithCleanup sets a handler that runs exactly once per run regardless of
// success, early termination or failure. Its own error is recorded but
// never masks a prior run failure.
func WithCleanup(fn CleanupFunc) PlanOption {
	return func(p *Plan) {
		p.cleanup = fn
	}
}

// NewPlan builds an immutable plan from the given steps.
func NewPlan(steps []Solver, opts ...PlanOption) *Plan {
	p := &Plan{steps: append([]Solver(nil), steps...)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Steps returns the ordered solver sequence.
func (p *Plan) Steps() []Solver { return p.steps }

// Finish returns the configured finish solver, or nil.
func (p *Plan) Finish() Solver { return p.finish }

// Cleanup returns the configured cleanup handler, or nil.
func (p *Plan) Cleanup() CleanupFunc { return p.cleanup }
