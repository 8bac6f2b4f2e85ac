package solver

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
)

type systemMessage struct {
	message string
}

// SystemMessage returns a solver that inserts a system-role message after
// any pre-existing system messages. It never calls generate.
func SystemMessage(message string) Solver {
	return &systemMessage{message: message}
}

func (s *systemMessage) Name() string { return "system_message" }

func (s *systemMessage) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	insert := 0
	for insert < len(state.Messages) && state.Messages[insert].Role == domain.RoleSystem {
		insert++
	}

	messages := make([]domain.ChatMessage, 0, len(state.Messages)+1)
	messages = append(messages, state.Messages[:insert]...)
	messages = append(messages, domain.SystemMessage(s.message))
	messages = append(messages, state.Messages[insert:]...)
	state.Messages = messages

	return state, nil
}
