package inquest

import (
	"os"
	"path/filepath"
	"testing"
)

const taskYAML = `name: capitals
epochs: 2
max_messages: 10
plan:
  - use: system_message
    params:
      message: Answer with the city name only.
  - use: chain_of_thought
  - use: generate
samples:
  - id: fr
    input: What is the capital of France?
    target: [Paris]
  - input: What is the capital of Japan?
    target: [Tokyo]
`

func TestParseTask(t *testing.T) {
	task, err := ParseTask([]byte(taskYAML))
	if err != nil {
		t.Fatalf("ParseTask returned error: %v", err)
	}
	if task.Name != "capitals" {
		t.Errorf("Name = %q, want %q", task.Name, "capitals")
	}
	if task.Epochs != 2 {
		t.Errorf("Epochs = %d, want 2", task.Epochs)
	}
	if task.MaxMessages != 10 {
		t.Errorf("MaxMessages = %d, want 10", task.MaxMessages)
	}
	if len(task.Plan) != 3 {
		t.Fatalf("len(Plan) = %d, want 3", len(task.Plan))
	}
	if task.Plan[0].Use != "system_message" {
		t.Errorf("Plan[0].Use = %q, want system_message", task.Plan[0].Use)
	}
	if got := task.Plan[0].Params["message"]; got != "Answer with the city name only." {
		t.Errorf("Plan[0].Params[message] = %v", got)
	}
	if len(task.Samples) != 2 {
		t.Fatalf("len(Samples) = %d, want 2", len(task.Samples))
	}
	if task.Samples[0].Target[0] != "Paris" {
		t.Errorf("Samples[0].Target = %v", task.Samples[0].Target)
	}
}

func TestParseTask_Invalid(t *testing.T) {
	cases := map[string]string{
		"not yaml":    "{{{{",
		"no name":     "plan: [{use: generate}]\nsamples: [{input: hi}]",
		"no plan":     "name: t\nsamples: [{input: hi}]",
		"no samples":  "name: t\nplan: [{use: generate}]",
		"empty input": "name: t\nplan: [{use: generate}]\nsamples: [{id: a}]",
	}
	for name, text := range cases {
		if _, err := ParseTask([]byte(text)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadTask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	if err := os.WriteFile(path, []byte(taskYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	task, err := LoadTask(path)
	if err != nil {
		t.Fatalf("LoadTask returned error: %v", err)
	}
	if task.Name != "capitals" {
		t.Errorf("Name = %q, want %q", task.Name, "capitals")
	}

	if _, err := LoadTask(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
