package inquest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/inquest/pkg/registry"
)

// Sample is one evaluation input.
type Sample struct {
	ID      string   `yaml:"id,omitempty" json:"id,omitempty"`
	Input   string   `yaml:"input" json:"input"`
	Choices []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Target  []string `yaml:"target,omitempty" json:"target,omitempty"`
}

// Task is a declarative evaluation: a plan over a list of samples.
// Tasks are typically loaded from YAML files.
type Task struct {
	Name        string              `yaml:"name" json:"name"`
	Plan        []registry.StepSpec `yaml:"plan" json:"plan"`
	Samples     []Sample            `yaml:"samples" json:"samples"`
	Epochs      int                 `yaml:"epochs,omitempty" json:"epochs,omitempty"`
	MaxMessages int                 `yaml:"max_messages,omitempty" json:"max_messages,omitempty"`
}

// Validate checks the task for structural problems before any run starts.
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task has no name")
	}
	if len(t.Plan) == 0 {
		return fmt.Errorf("task %q has no plan steps", t.Name)
	}
	if len(t.Samples) == 0 {
		return fmt.Errorf("task %q has no samples", t.Name)
	}
	for i, s := range t.Samples {
		if s.Input == "" {
			return fmt.Errorf("task %q: sample %d has no input", t.Name, i)
		}
	}
	return nil
}

// ParseTask decodes a YAML task definition.
func ParseTask(data []byte) (*Task, error) {
	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return &task, nil
}

// LoadTask reads and decodes a YAML task file.
func LoadTask(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return ParseTask(data)
}
