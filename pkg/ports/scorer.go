package ports

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
)

// Scorer grades the terminal state of a run against the sample's target.
// Scoring rules are deliberately outside the engine core; the runner only
// threads final states through whichever scorer the caller configures.
type Scorer interface {
	Score(ctx context.Context, state *domain.TaskState, target []string) (*domain.Score, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, state *domain.TaskState, target []string) (*domain.Score, error)

func (f ScorerFunc) Score(ctx context.Context, state *domain.TaskState, target []string) (*domain.Score, error) {
	return f(ctx, state, target)
}
