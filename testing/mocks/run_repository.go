package mocks

import (
	"github.com/canthus/deploy/domain"
	"github.com/google/uuid"
)

// MockRunRepository implements repository.RunRepository for testing
type MockRunRepository struct {
	CreateFunc         func(run *domain.Run) error
	FindByIDFunc       func(id uuid.UUID) (*domain.Run, error)
	FindByIDPrefixFunc func(prefix string) (*domain.Run, error)
	ListFunc           func(limit int) ([]*domain.Run, error)

	Created []domain.Run
}

func (m *MockRunRepository) Create(run *domain.Run) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(run); err != nil {
			return err
		}
	}
	m.Created = append(m.Created, *run)
	return nil
}

func (m *MockRunRepository) FindByID(id uuid.UUID) (*domain.Run, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, nil
}

func (m *MockRunRepository) FindByIDPrefix(prefix string) (*domain.Run, error) {
	if m.FindByIDPrefixFunc != nil {
		return m.FindByIDPrefixFunc(prefix)
	}
	return nil, nil
}

func (m *MockRunRepository) List(limit int) ([]*domain.Run, error) {
	if m.ListFunc != nil {
		return m.ListFunc(limit)
	}
	return nil, nil
}
