package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/inquest/pkg/domain"
)

// scriptedGenerate returns a Generate closure that appends canned
// completions in order, mimicking the gateway contract.
func scriptedGenerate(completions ...string) (Generate, *int) {
	calls := 0
	gen := func(ctx context.Context, state *domain.TaskState) (*domain.TaskState, error) {
		completion := completions[calls%len(completions)]
		calls++
		output := &domain.ModelOutput{Completion: completion, StopReason: domain.StopReasonStop}
		state.Append(output.Message())
		state.Output = output
		return state, nil
	}
	return gen, &calls
}

func TestSystemMessage_InsertsAfterExistingSystemMessages(t *testing.T) {
	state := &domain.TaskState{
		Messages: []domain.ChatMessage{
			domain.SystemMessage("first"),
			domain.UserMessage("2+2?"),
		},
	}

	s := SystemMessage("second")
	state, err := s.Solve(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	roles := []domain.Role{domain.RoleSystem, domain.RoleSystem, domain.RoleUser}
	if len(state.Messages) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(state.Messages))
	}
	for i, role := range roles {
		if state.Messages[i].Role != role {
			t.Errorf("message %d: expected role %s, got %s", i, role, state.Messages[i].Role)
		}
	}
	if state.Messages[1].Content != "second" {
		t.Errorf("expected new system message at index 1, got %q", state.Messages[1].Content)
	}
}

func TestPromptTemplate_SubstitutesPromptAndParams(t *testing.T) {
	state := domain.NewTaskState("s1", "What is 2+2?")

	s := PromptTemplate("{preamble}\n{prompt}", map[string]string{"preamble": "Think hard."})
	state, err := s.Solve(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	prompt, ok := state.UserPrompt()
	if !ok {
		t.Fatal("expected a user prompt")
	}
	if prompt.Content != "Think hard.\nWhat is 2+2?" {
		t.Errorf("unexpected prompt: %q", prompt.Content)
	}
}

func TestPromptTemplate_NoopWithoutUserPrompt(t *testing.T) {
	state := &domain.TaskState{Messages: []domain.ChatMessage{domain.SystemMessage("sys")}}

	s := PromptTemplate("{prompt}!", nil)
	state, err := s.Solve(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(state.Messages) != 1 || state.Messages[0].Content != "sys" {
		t.Errorf("expected untouched state, got %+v", state.Messages)
	}
}

func TestChainOfThought_AsksForAnswerLine(t *testing.T) {
	state := domain.NewTaskState("s1", "What is 2+2?")

	state, err := ChainOfThought().Solve(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	prompt, _ := state.UserPrompt()
	if !strings.Contains(prompt.Content, "What is 2+2?") {
		t.Errorf("prompt lost original question: %q", prompt.Content)
	}
	if !strings.Contains(prompt.Content, `"ANSWER: $ANSWER"`) {
		t.Errorf("prompt missing answer-line instruction: %q", prompt.Content)
	}
}

func TestGenerate_CallsGatewayOnce(t *testing.T) {
	state := domain.NewTaskState("s1", "2+2?")
	gen, calls := scriptedGenerate("4")

	state, err := NewGenerate().Solve(context.Background(), state, gen)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 generate call, got %d", *calls)
	}
	if state.Completion() != "4" {
		t.Errorf("expected completion '4', got %q", state.Completion())
	}
}

func TestCompleteTask_SetsCompletedOnly(t *testing.T) {
	state := domain.NewTaskState("s1", "2+2?")
	gen, calls := scriptedGenerate("never")

	state, err := CompleteTask().Solve(context.Background(), state, gen)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !state.Completed {
		t.Error("expected Completed=true")
	}
	if *calls != 0 {
		t.Errorf("complete_task must not generate, got %d calls", *calls)
	}
	if len(state.Messages) != 1 {
		t.Errorf("expected untouched messages, got %d", len(state.Messages))
	}
}

func TestSelfCritique_AppendsCritiqueAndRegenerates(t *testing.T) {
	state := domain.NewTaskState("s1", "What is 2+2?")
	state.Append(domain.AssistantMessage("5"))
	state.Output = &domain.ModelOutput{Completion: "5"}

	gen, calls := scriptedGenerate("The answer 5 is wrong; 2+2 is 4.", "4")

	s := SelfCritique(SelfCritiqueOptions{})
	state, err := s.Solve(context.Background(), state, gen)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// One critique turn on a scratch conversation, one regeneration.
	if *calls != 2 {
		t.Fatalf("expected 2 generate calls, got %d", *calls)
	}
	if state.Completion() != "4" {
		t.Errorf("expected regenerated completion '4', got %q", state.Completion())
	}

	// user, assistant, critique-completion user message, regenerated assistant.
	if len(state.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(state.Messages))
	}
	critiqueMsg := state.Messages[2]
	if critiqueMsg.Role != domain.RoleUser {
		t.Errorf("expected user-role critique message, got %s", critiqueMsg.Role)
	}
	if !strings.Contains(critiqueMsg.Content, "The answer 5 is wrong") {
		t.Errorf("critique text missing from completion message: %q", critiqueMsg.Content)
	}
	if !strings.Contains(critiqueMsg.Content, "What is 2+2?") {
		t.Errorf("question missing from completion message: %q", critiqueMsg.Content)
	}
}

func TestSelfCritique_RequiresPriorGeneration(t *testing.T) {
	state := domain.NewTaskState("s1", "2+2?")
	gen, _ := scriptedGenerate("anything")

	if _, err := SelfCritique(SelfCritiqueOptions{}).Solve(context.Background(), state, gen); err == nil {
		t.Error("expected error without prior output")
	}
}
