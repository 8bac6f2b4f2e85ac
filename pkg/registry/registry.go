// Package registry maps solver names to constructors so plans can be
// assembled from declarative task files.
package registry

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/inquest/pkg/solver"
)

// Constructor builds a solver from the decoded parameters of a plan step.
type Constructor func(params map[string]any) (solver.Solver, error)

// StepSpec is one step of a declarative plan, as it appears in a task file.
type StepSpec struct {
	Use    string         `yaml:"use" json:"use"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// Registry manages the available solver constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Default returns a registry pre-populated with the built-in solvers.
func Default() *Registry {
	r := New()
	r.Register("system_message", buildSystemMessage)
	r.Register("prompt_template", buildPromptTemplate)
	r.Register("chain_of_thought", noParams(solver.ChainOfThought))
	r.Register("generate", noParams(solver.NewGenerate))
	r.Register("complete_task", noParams(solver.CompleteTask))
	r.Register("multiple_choice", buildMultipleChoice)
	r.Register("self_critique", buildSelfCritique)
	return r
}

// Register adds a constructor to the registry.
// If a constructor with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = fn
}

// Build looks up a constructor by name and invokes it.
// Returns an error if the name is not registered.
func (r *Registry) Build(name string, params map[string]any) (solver.Solver, error) {
	r.mu.RLock()
	fn, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("solver not found: %s", name)
	}

	s, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("build solver %q: %w", name, err)
	}
	return s, nil
}

// Names returns the registered solver names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPlan assembles a plan from step specs, resolving each step through
// the registry.
func (r *Registry) BuildPlan(specs []StepSpec, opts ...solver.PlanOption) (*solver.Plan, error) {
	steps := make([]solver.Solver, 0, len(specs))
	for i, spec := range specs {
		if spec.Use == "" {
			return nil, fmt.Errorf("plan step %d has no solver name", i)
		}
		s, err := r.Build(spec.Use, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("plan step %d: %w", i, err)
		}
		steps = append(steps, s)
	}
	return solver.NewPlan(steps, opts...), nil
}

func noParams(fn func() solver.Solver) Constructor {
	return func(params map[string]any) (solver.Solver, error) {
		if len(params) > 0 {
			return nil, fmt.Errorf("unexpected params: %v", paramKeys(params))
		}
		return fn(), nil
	}
}

func buildSystemMessage(params map[string]any) (solver.Solver, error) {
	var cfg struct {
		Message string `mapstructure:"message"`
	}
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if cfg.Message == "" {
		return nil, fmt.Errorf("system_message requires a message")
	}
	return solver.SystemMessage(cfg.Message), nil
}

func buildPromptTemplate(params map[string]any) (solver.Solver, error) {
	var cfg struct {
		Template string            `mapstructure:"template"`
		Params   map[string]string `mapstructure:"params"`
	}
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if cfg.Template == "" {
		return nil, fmt.Errorf("prompt_template requires a template")
	}
	return solver.PromptTemplate(cfg.Template, cfg.Params), nil
}

func buildMultipleChoice(params map[string]any) (solver.Solver, error) {
	var cfg struct {
		Template      string `mapstructure:"template"`
		AnswerPattern string `mapstructure:"answer_pattern"`
		Shuffle       bool   `mapstructure:"shuffle"`
		Seed          *int64 `mapstructure:"seed"`
	}
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	opts := solver.MultipleChoiceOptions{
		Template:      cfg.Template,
		AnswerPattern: cfg.AnswerPattern,
		Shuffle:       cfg.Shuffle,
	}
	if cfg.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*cfg.Seed))
	}
	return solver.MultipleChoice(opts)
}

func buildSelfCritique(params map[string]any) (solver.Solver, error) {
	var cfg struct {
		CritiqueTemplate   string `mapstructure:"critique_template"`
		CompletionTemplate string `mapstructure:"completion_template"`
	}
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return solver.SelfCritique(solver.SelfCritiqueOptions{
		CritiqueTemplate:   cfg.CritiqueTemplate,
		CompletionTemplate: cfg.CompletionTemplate,
	}), nil
}

func decodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("configure param decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

func paramKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
