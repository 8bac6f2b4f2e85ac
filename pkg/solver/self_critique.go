package solver

import (
	"context"
	"errors"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
)

const critiqueTemplate = `Given the following question and answer, please critique the answer. A good critique will point out flaws in logic or reasoning, or identify missing information.

[BEGIN DATA]
***
[Question]: {question}
***
[Answer]: {completion}
***
[END DATA]

Critique: `

const critiqueCompletionTemplate = `Given the following question, initial answer and critique please generate an improved answer to the question:

[BEGIN DATA]
***
[Question]: {question}
***
[Answer]: {completion}
***
[Critique]: {critique}
***
[END DATA]

If the original answer is already correct, just repeat the original answer exactly.`

// SelfCritiqueOptions configures the self-critique solver.
type SelfCritiqueOptions struct {
	// CritiqueTemplate overrides the critique prompt. It may reference
	// {question} and {completion}.
	CritiqueTemplate string

	// CompletionTemplate overrides the regeneration prompt appended to
	// the conversation. It may reference {question}, {completion} and
	// {critique}.
	CompletionTemplate string

	// Model is the backend used to produce the critique. When nil the
	// critique runs through the primary gateway on a scratch state, so it
	// shares the engine's admission control.
	Model ports.ModelClient
}

type selfCritique struct {
	critiqueTemplate   string
	completionTemplate string
	model              ports.ModelClient
}

// SelfCritique returns a solver that critiques the current completion,
// appends the critique as a new user message, and regenerates through the
// primary gateway.
func SelfCritique(opts SelfCritiqueOptions) Solver {
	s := &selfCritique{
		critiqueTemplate:   opts.CritiqueTemplate,
		completionTemplate: opts.CompletionTemplate,
		model:              opts.Model,
	}
	if s.critiqueTemplate == "" {
		s.critiqueTemplate = critiqueTemplate
	}
	if s.completionTemplate == "" {
		s.completionTemplate = critiqueCompletionTemplate
	}
	return s
}

func (s *selfCritique) Name() string { return "self_critique" }

func (s *selfCritique) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	if state.Output == nil {
		return nil, errors.New("self critique requires a prior generation")
	}
	prompt, ok := state.UserPrompt()
	if !ok {
		return nil, errors.New("self critique requires a user prompt")
	}
	question := prompt.Content
	completion := state.Completion()

	critique, err := s.critique(ctx, question, completion, generate)
	if err != nil {
		return nil, err
	}

	state.Append(domain.UserMessage(substitute(s.completionTemplate, map[string]string{
		"question":   question,
		"completion": completion,
		"critique":   critique,
	})))

	return generate(ctx, state)
}

// critique runs the critique turn on its own conversation so the main
// history only ever grows by the regeneration exchange.
func (s *selfCritique) critique(ctx context.Context, question, completion string, generate Generate) (string, error) {
	message := domain.UserMessage(substitute(s.critiqueTemplate, map[string]string{
		"question":   question,
		"completion": completion,
	}))

	if s.model != nil {
		output, err := s.model.Generate(ctx, []domain.ChatMessage{message}, ports.GenerateConfig{})
		if err != nil {
			return "", err
		}
		return output.Completion, nil
	}

	scratch := &domain.TaskState{Messages: []domain.ChatMessage{message}}
	scratch, err := generate(ctx, scratch)
	if err != nil {
		return "", err
	}
	return scratch.Completion(), nil
}
