package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepStart EventType = "step_start"
	EventStepEnd   EventType = "step_end"
	EventGenerate  EventType = "generate"
	EventRunEnd    EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// StepEvent represents entry to or exit from a solver step.
type StepEvent struct {
	EventBase
	Solver string `json:"solver"`
	Step   int    `json:"step"`
	Err    error  `json:"-"`
}

// GenerateEvent represents one completed gateway call.
type GenerateEvent struct {
	EventBase
	Model    string        `json:"model,omitempty"`
	Duration time.Duration `json:"duration"`
	Retries  int           `json:"retries"`
	Usage    Usage         `json:"usage"`
	Err      error         `json:"-"`
}

// RunEvent represents the terminal outcome of one plan run.
type RunEvent struct {
	EventBase
	Status   RunStatus     `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability. Nil callbacks
// are skipped. Hooks run synchronously on the run's goroutine and must not
// block.
type LifecycleHooks struct {
	OnStepStart func(context.Context, *StepEvent)
	OnStepEnd   func(context.Context, *StepEvent)
	OnGenerate  func(context.Context, *GenerateEvent)
	OnRunEnd    func(context.Context, *RunEvent)
}
