package domain

import "time"

// RunStatus is the terminal disposition of a plan run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSuccess   RunStatus = "success"
	RunStatusError     RunStatus = "error"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunRecord is the persisted outcome of one plan run over one sample.
type RunRecord struct {
	ID          string     `json:"id"`
	Task        string     `json:"task,omitempty"`
	Status      RunStatus  `json:"status"`
	State       *TaskState `json:"state,omitempty"`
	Error       string     `json:"error,omitempty"`
	Score       *Score     `json:"score,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at,omitzero"`
}

// Score is the graded outcome of a run, produced by a scorer.
type Score struct {
	// Value is the score text, conventionally CORRECT or INCORRECT.
	Value string `json:"value"`

	// Answer is the extracted answer the score was based on, if any.
	Answer string `json:"answer,omitempty"`

	// Explanation holds the text the scorer matched against.
	Explanation string `json:"explanation,omitempty"`
}
