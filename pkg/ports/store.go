package ports

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
)

// RunStore defines the interface for persisting run outcomes. This allows
// results to outlive the process and be inspected over the HTTP adapter.
type RunStore interface {
	// Save persists the record under its run ID, overwriting any previous
	// version (runs are saved once as pending and again when terminal).
	Save(ctx context.Context, record *domain.RunRecord) error

	// Load retrieves a record by run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunRecord, error)

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)

	// Delete removes a record by run ID.
	Delete(ctx context.Context, runID string) error
}
