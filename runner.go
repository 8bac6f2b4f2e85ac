package inquest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/inquest/internal/runtime"
	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/scorer"
	"github.com/aretw0/inquest/pkg/solver"
)

// Runner executes a task's plan over its samples with bounded concurrency.
// Each sample/epoch pair is an independent executor run; one failing run
// does not abort its siblings unless FailFast is set.
type Runner struct {
	engine      *Engine
	concurrency int
	failFast    bool
}

// RunnerOption defines a functional option for configuring the Runner.
type RunnerOption func(*Runner)

// WithConcurrency bounds the number of samples running at once.
// Defaults to 4. Generation concurrency is bounded separately by the
// gateway's admission control.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithFailFast aborts remaining samples after the first failed run.
func WithFailFast() RunnerOption {
	return func(r *Runner) {
		r.failFast = true
	}
}

// NewRunner creates a runner bound to the engine.
func NewRunner(engine *Engine, opts ...RunnerOption) *Runner {
	r := &Runner{engine: engine, concurrency: 4}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report is the aggregate outcome of one task execution.
type Report struct {
	Task    string              `json:"task"`
	Runs    []*domain.RunRecord `json:"runs"`
	Elapsed time.Duration       `json:"elapsed"`
}

// Summary counts run outcomes across the report.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Scored    int `json:"scored"`
	Correct   int `json:"correct"`
}

// Summarize tallies the report's runs.
func (r *Report) Summarize() Summary {
	var s Summary
	for _, run := range r.Runs {
		s.Total++
		switch run.Status {
		case domain.RunStatusSuccess:
			s.Succeeded++
		case domain.RunStatusCancelled:
			s.Cancelled++
		case domain.RunStatusError:
			s.Failed++
		}
		if run.Score != nil {
			s.Scored++
			if run.Score.Value == scorer.CORRECT {
				s.Correct++
			}
		}
	}
	return s
}

// Run executes the task and returns a report with one record per
// sample/epoch pair. The error is non-nil only when the whole execution
// could not proceed (bad plan, fail-fast trip, context cancelled before
// completion); per-run failures are reported in the records.
func (r *Runner) Run(ctx context.Context, task *Task) (*Report, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	plan, err := r.engine.Registry().BuildPlan(task.Plan)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", task.Name, err)
	}
	return r.RunPlan(ctx, task, plan)
}

// RunPlan executes a pre-built plan over the task's samples. Use this
// when the plan was assembled in code rather than from step specs.
func (r *Runner) RunPlan(ctx context.Context, task *Task, plan *solver.Plan) (*Report, error) {
	epochs := task.Epochs
	if epochs < 1 {
		epochs = 1
	}

	start := time.Now()
	records := make([]*domain.RunRecord, len(task.Samples)*epochs)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)

	for epoch := 1; epoch <= epochs; epoch++ {
		for i, sample := range task.Samples {
			slot := (epoch-1)*len(task.Samples) + i
			group.Go(func() error {
				record := r.runSample(gctx, task, plan, sample, epoch)
				records[slot] = record
				if r.failFast && record.Status == domain.RunStatusError {
					return fmt.Errorf("run %s: %s", record.ID, record.Error)
				}
				return nil
			})
		}
	}

	err := group.Wait()
	report := &Report{Task: task.Name, Elapsed: time.Since(start)}
	for _, rec := range records {
		if rec != nil {
			report.Runs = append(report.Runs, rec)
		}
	}
	if err != nil {
		return report, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, ctxErr
	}
	return report, nil
}

func (r *Runner) runSample(ctx context.Context, task *Task, plan *solver.Plan, sample Sample, epoch int) *domain.RunRecord {
	sampleID := sample.ID
	if sampleID == "" {
		sampleID = uuid.NewString()
	}

	record := &domain.RunRecord{
		ID:        uuid.NewString(),
		Task:      task.Name,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.engine.store.Save(ctx, record); err != nil {
		r.engine.logger.Warn("saving pending run failed", "run_id", record.ID, "err", err)
	}

	state := domain.NewTaskState(sampleID, sample.Input)
	state.Epoch = epoch
	state.Choices = sample.Choices
	state.Target = sample.Target

	state, runErr := r.engine.executor.Run(ctx, plan, state, runtime.Limits{MaxMessages: task.MaxMessages})

	record.State = state
	record.Status = runtime.StatusOf(runErr)
	record.CompletedAt = time.Now()
	if runErr != nil {
		record.Error = runErr.Error()
		r.engine.logger.Error("run failed", "run_id", record.ID, "sample", sampleID, "epoch", epoch, "err", runErr)
	} else if r.engine.scorer != nil && len(sample.Target) > 0 {
		score, err := r.engine.scorer.Score(ctx, state, sample.Target)
		if err != nil {
			r.engine.logger.Warn("scoring failed", "run_id", record.ID, "err", err)
		} else {
			record.Score = score
		}
	}

	// Persist the terminal record with a detached context so a cancelled
	// run still gets recorded.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.engine.store.Save(saveCtx, record); err != nil {
		r.engine.logger.Warn("saving run failed", "run_id", record.ID, "err", err)
	}
	return record
}
