package solver

import (
	"context"
	"strings"

	"github.com/aretw0/inquest/pkg/domain"
)

// substitute replaces {name} placeholders in the template. Placeholders
// with no matching param are left untouched.
func substitute(template string, params map[string]string) string {
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

type promptTemplate struct {
	template string
	params   map[string]string
}

// PromptTemplate returns a solver that rewrites the located user prompt by
// substituting the {prompt} placeholder (set to the prompt's current text)
// and any caller-supplied named placeholders into the template. It is a
// no-op when the state has no user prompt, and never calls generate.
func PromptTemplate(template string, params map[string]string) Solver {
	return &promptTemplate{template: template, params: params}
}

func (s *promptTemplate) Name() string { return "prompt_template" }

func (s *promptTemplate) Solve(ctx context.Context, state *domain.TaskState, generate Generate) (*domain.TaskState, error) {
	prompt, ok := state.UserPrompt()
	if !ok {
		return state, nil
	}

	params := map[string]string{"prompt": prompt.Content}
	for name, value := range s.params {
		params[name] = value
	}
	prompt.Content = substitute(s.template, params)

	return state, nil
}
