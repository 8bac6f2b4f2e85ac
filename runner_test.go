package inquest

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/inquest/pkg/adapters/mockmodel"
	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/registry"
	"github.com/aretw0/inquest/pkg/scorer"
)

func simpleTask(samples ...Sample) *Task {
	return &Task{
		Name: "arithmetic",
		Plan: []registry.StepSpec{
			{Use: "system_message", Params: map[string]any{"message": "Answer with a single word."}},
			{Use: "generate"},
		},
		Samples: samples,
	}
}

func TestRunner_RunScoresSamples(t *testing.T) {
	pat, err := scorer.Pattern("(foo)")
	if err != nil {
		t.Fatalf("Pattern returned error: %v", err)
	}
	eng, err := New(mockmodel.Constant("foo"), WithScorer(pat))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	task := simpleTask(
		Sample{ID: "a", Input: "say foo", Target: []string{"foo"}},
		Sample{ID: "b", Input: "say foo again", Target: []string{"bar"}},
	)
	task.Epochs = 2

	report, err := NewRunner(eng).Run(context.Background(), task)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Runs) != 4 {
		t.Fatalf("len(Runs) = %d, want 4", len(report.Runs))
	}

	summary := report.Summarize()
	if summary.Succeeded != 4 {
		t.Errorf("Succeeded = %d, want 4", summary.Succeeded)
	}
	if summary.Scored != 4 {
		t.Errorf("Scored = %d, want 4", summary.Scored)
	}
	if summary.Correct != 2 {
		t.Errorf("Correct = %d, want 2", summary.Correct)
	}

	ids, err := eng.Store().List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(ids) != 4 {
		t.Errorf("stored runs = %d, want 4", len(ids))
	}
	for _, rec := range report.Runs {
		stored, err := eng.Store().Load(context.Background(), rec.ID)
		if err != nil {
			t.Fatalf("Load(%s) returned error: %v", rec.ID, err)
		}
		if stored.Status != domain.RunStatusSuccess {
			t.Errorf("stored run %s status = %q, want success", rec.ID, stored.Status)
		}
	}
}

func TestRunner_RecordsPerRunFailure(t *testing.T) {
	backendErr := errors.New("backend exploded")
	eng, err := New(mockmodel.New([]mockmodel.Step{mockmodel.Fail(backendErr)}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	task := simpleTask(Sample{ID: "a", Input: "hello"})
	report, err := NewRunner(eng).Run(context.Background(), task)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(report.Runs) != 1 {
		t.Fatalf("len(Runs) = %d, want 1", len(report.Runs))
	}
	rec := report.Runs[0]
	if rec.Status != domain.RunStatusError {
		t.Errorf("status = %q, want error", rec.Status)
	}
	if rec.Error == "" {
		t.Error("record has no error text")
	}
}

func TestRunner_FailFastAbortsSiblings(t *testing.T) {
	backendErr := errors.New("backend exploded")
	eng, err := New(mockmodel.New([]mockmodel.Step{mockmodel.Fail(backendErr)}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	task := simpleTask(
		Sample{ID: "a", Input: "one"},
		Sample{ID: "b", Input: "two"},
		Sample{ID: "c", Input: "three"},
	)

	runner := NewRunner(eng, WithConcurrency(1), WithFailFast())
	report, err := runner.Run(context.Background(), task)
	if err == nil {
		t.Fatal("expected fail-fast error")
	}

	// Siblings submitted after the trip observe the cancelled group
	// context; none of them may succeed.
	summary := report.Summarize()
	if summary.Succeeded != 0 {
		t.Errorf("Succeeded = %d, want 0", summary.Succeeded)
	}
	if summary.Failed == 0 {
		t.Error("expected at least one failed run")
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	eng, err := New(mockmodel.Constant("ok"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := simpleTask(Sample{ID: "a", Input: "hello"})
	_, err = NewRunner(eng).Run(ctx, task)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunner_RejectsInvalidTask(t *testing.T) {
	eng, err := New(mockmodel.Constant("ok"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := NewRunner(eng).Run(context.Background(), &Task{Name: "empty"}); err == nil {
		t.Fatal("expected validation error")
	}
}
