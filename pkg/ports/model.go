package ports

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
)

// GenerateConfig carries per-call generation parameters. Zero values mean
// "backend default".
type GenerateConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" mapstructure:"temperature"`
	TopP        float64 `json:"top_p,omitempty" yaml:"top_p,omitempty" mapstructure:"top_p"`
}

// ModelClient is the generation backend interface. Implementations may be
// a remote API, a local model, or a scripted mock; the engine does not
// care. Transient faults should be reported as *domain.GenerationError
// with Temporary set so the gateway can retry them.
type ModelClient interface {
	// Generate produces one completion for the given conversation.
	Generate(ctx context.Context, messages []domain.ChatMessage, config GenerateConfig) (*domain.ModelOutput, error)

	// Name identifies the backing model (for logs and output metadata).
	Name() string
}
