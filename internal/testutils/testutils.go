// Package testutils provides shared helpers for Inquest test suites.
package testutils

import (
	"github.com/aretw0/inquest/pkg/domain"
)

// SimpleTaskState builds a state whose last generation produced the given
// completion, the common starting point for scorer and solver tests.
func SimpleTaskState(completion string) *domain.TaskState {
	state := domain.NewTaskState("sample-1", "question")
	output := &domain.ModelOutput{Completion: completion, StopReason: domain.StopReasonStop}
	state.Append(output.Message())
	state.Output = output
	return state
}
