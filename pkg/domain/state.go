package domain

// TaskState represents the mutable record threaded through a solver plan.
// It is owned by the executor for the duration of one run and passed by
// pointer so each solver's mutation is visible to the next. Correctness is
// a cooperative contract: any solver may read every field and mutate
// Messages, Output, Completed and Metadata, but the executor itself never
// reorders or rewrites Messages.
type TaskState struct {
	// SampleID identifies the dataset sample this run evaluates.
	SampleID string `json:"sample_id,omitempty"`

	// Epoch is the repetition index when a sample is run multiple times.
	Epoch int `json:"epoch,omitempty"`

	// Input is the raw sample input the initial user prompt was built from.
	Input string `json:"input,omitempty"`

	// Choices holds answer choices for multiple-choice tasks.
	Choices []string `json:"choices,omitempty"`

	// Target holds the expected answer(s) used by scorers.
	Target []string `json:"target,omitempty"`

	// Messages is the ordered conversation history. Append-only in normal
	// operation; prompt-engineering solvers may rewrite an existing
	// prompt's text in place.
	Messages []ChatMessage `json:"messages"`

	// Output is the most recent generation result. Nil until the first
	// successful generation.
	Output *ModelOutput `json:"output,omitempty"`

	// Completed signals early termination. Once true, the executor stops
	// running subsequent solvers.
	Completed bool `json:"completed"`

	// Metadata is an open side channel for solvers to pass auxiliary data
	// forward (e.g. the multiple-choice answer mapping). Keys are
	// solver-defined; there is no global schema.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTaskState creates a state for one sample with the input as the sole
// user message.
func NewTaskState(sampleID string, input string) *TaskState {
	return &TaskState{
		SampleID: sampleID,
		Input:    input,
		Messages: []ChatMessage{UserMessage(input)},
		Metadata: make(map[string]any),
	}
}

// UserPrompt locates the first user-role message without requiring callers
// to skip system messages manually. The second return is false when no
// user message exists; solvers must handle that case explicitly.
func (s *TaskState) UserPrompt() (*ChatMessage, bool) {
	for i := range s.Messages {
		if s.Messages[i].Role == RoleUser {
			return &s.Messages[i], true
		}
	}
	return nil, false
}

// Append adds messages to the end of the conversation.
func (s *TaskState) Append(messages ...ChatMessage) {
	s.Messages = append(s.Messages, messages...)
}

// Completion returns the text of the last generation, or "" if the state
// has no output yet.
func (s *TaskState) Completion() string {
	if s.Output == nil {
		return ""
	}
	return s.Output.Completion
}
