package middleware_test

import (
	"context"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware. It keeps
// raw record pointers so tests can inspect exactly what reached it.
type MockStore struct {
	data map[string]*domain.RunRecord
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.RunRecord),
	}
}

func (s *MockStore) Save(ctx context.Context, record *domain.RunRecord) error {
	s.data[record.ID] = record
	return nil
}

func (s *MockStore) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	record, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return record, nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MockStore) Delete(ctx context.Context, runID string) error {
	delete(s.data, runID)
	return nil
}

var _ ports.RunStore = (*MockStore)(nil)
