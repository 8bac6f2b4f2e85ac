package domain

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopReasonStop      StopReason = "stop"
	StopReasonMaxTokens StopReason = "max_tokens"
	StopReasonUnknown   StopReason = "unknown"
)

// Usage captures token accounting for a single generation.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ModelOutput is the result of one model generation.
type ModelOutput struct {
	// Model is the identifier of the model that produced the completion.
	Model string `json:"model,omitempty"`

	// Completion is the generated assistant text.
	Completion string `json:"completion"`

	// StopReason indicates why generation ended.
	StopReason StopReason `json:"stop_reason,omitempty"`

	// Usage holds token counts reported by the backend, if any.
	Usage Usage `json:"usage"`
}

// Message returns the completion as an assistant chat message.
func (o *ModelOutput) Message() ChatMessage {
	return AssistantMessage(o.Completion)
}
