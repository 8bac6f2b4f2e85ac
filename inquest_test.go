package inquest

import (
	"context"
	"testing"

	"github.com/aretw0/inquest/pkg/adapters/middleware"
	"github.com/aretw0/inquest/pkg/adapters/mockmodel"
	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/solver"
)

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestEngine_Solve(t *testing.T) {
	eng, err := New(mockmodel.Constant("4"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	plan := solver.NewPlan([]solver.Solver{
		solver.SystemMessage("You are terse."),
		solver.NewGenerate(),
	})

	state, err := eng.Solve(context.Background(), plan, domain.NewTaskState("s1", "2+2?"))
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if got := state.Completion(); got != "4" {
		t.Errorf("completion = %q, want %q", got, "4")
	}
	if len(state.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(state.Messages))
	}
	if state.Messages[0].Role != domain.RoleSystem {
		t.Errorf("first message role = %q, want system", state.Messages[0].Role)
	}
}

func TestEngine_SolveSurfacesSolverFailure(t *testing.T) {
	eng, err := New(mockmodel.Constant("ignored"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// PromptTemplate with no user prompt is a no-op; an empty plan with
	// only a generate against an empty state fails at the gateway.
	plan := solver.NewPlan([]solver.Solver{solver.NewGenerate()})
	state := domain.NewTaskState("s1", "")
	state.Messages = nil

	if _, err := eng.Solve(context.Background(), plan, state); err == nil {
		t.Fatal("expected error generating on empty conversation")
	}
}

func TestEngine_StoreMiddlewareDecoratesDefaultStore(t *testing.T) {
	eng, err := New(mockmodel.Constant("4"),
		WithStoreMiddleware(middleware.NewPIIMiddleware([]string{`\d{3}-\d{2}-\d{4}`})),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := context.Background()
	record := &domain.RunRecord{
		ID:     "r1",
		Status: domain.RunStatusSuccess,
		State:  domain.NewTaskState("s1", "SSN: 999-99-9999"),
	}
	if err := eng.Store().Save(ctx, record); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := eng.Store().Load(ctx, "r1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.State.Input != "SSN: ***" {
		t.Errorf("stored input = %q, want masked", loaded.State.Input)
	}
	if record.State.Input != "SSN: 999-99-9999" {
		t.Error("middleware modified the caller's record")
	}
}

func TestEngine_DefaultRegistryBuildsPlans(t *testing.T) {
	eng, err := New(mockmodel.Constant("ok"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := eng.Registry().Build("generate", nil); err != nil {
		t.Fatalf("default registry missing generate: %v", err)
	}
}
