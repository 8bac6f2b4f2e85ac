// Package inquest is a plan-execution engine for model evaluation tasks.
//
// A plan is an ordered list of solvers that transform a shared TaskState:
// prompt shaping, model generation, critique, early termination. The
// engine binds a model backend behind a generate gateway (admission
// control, retry with backoff) and executes plans with guaranteed cleanup
// and a single terminal outcome per run.
//
// The Engine type is the main entry point:
//
//	eng, err := inquest.New(openai.NewFromEnv())
//	if err != nil { ... }
//	plan := solver.NewPlan([]solver.Solver{
//		solver.SystemMessage("You are terse."),
//		solver.ChainOfThought(),
//		solver.NewGenerate(),
//	})
//	state, err := eng.Solve(ctx, plan, domain.NewTaskState("s1", "2+2?"))
//
// Runner executes a declarative Task (plan steps plus samples, typically
// loaded from YAML) over many samples and epochs with bounded concurrency,
// persisting one RunRecord per run to the configured store.
package inquest
