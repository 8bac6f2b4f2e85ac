package domain

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrNoMessages is returned by the gateway when asked to generate on a
// state with an empty conversation.
var ErrNoMessages = errors.New("task state has no messages")

// GenerationError reports a failed model generation. Temporary errors are
// retried by the gateway; once retries are exhausted (or for terminal
// faults such as context-length exceeded) the error propagates to the run
// as fatal.
type GenerationError struct {
	Model     string
	Temporary bool
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("generation failed (model %s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SolverError reports a fatal failure raised by a solver step. The
// executor never retries solver steps.
type SolverError struct {
	Solver string
	Step   int
	Err    error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver %s (step %d): %v", e.Solver, e.Step, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// CleanupError reports a failure raised by a plan's cleanup handler. It
// never masks a prior run failure; when no prior failure exists it becomes
// the run's reported error.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup failed: %v", e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
