package mocks

import (
	"context"

	"github.com/cinetick/cinetick/internal/domain"
)

type MockShowRepo struct {
	domain.ShowRepository
	GetAllFunc  func(ctx context.Context, pagination domain.Pagination) ([]*domain.Show, *domain.Metadata, error)
	GetByIdFunc func(ctx context.Context, id int) (*domain.Show, error)
	CreateFunc  func(ctx context.Context, show *domain.Show) error
}

func (m *MockShowRepo) GetAll(
	ctx context.Context,
	pagination domain.Pagination) ([]*domain.Show, *domain.Metadata, error) {

	return m.GetAllFunc(ctx, pagination)
}

func (m *MockShowRepo) GetById(ctx context.Context, id int) (*domain.Show, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockShowRepo) Create(ctx context.Context, show *domain.Show) error {
	return m.CreateFunc(ctx, show)
}
