package mocks

import (
	"context"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
)

type MockTheaterRepo struct {
	domain.TheaterRepository
	GetByIdFunc                  func(ctx context.Context, id int) (*domain.Theater, error)
	GetTheatersByShowAndDateFunc func(ctx context.Context, showID int, date time.Time, pagination domain.Pagination) ([]domain.TheaterShowtimes, *domain.Metadata, error)
}

func (m *MockTheaterRepo) GetById(ctx context.Context, id int) (*domain.Theater, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockTheaterRepo) GetTheatersByShowAndDate(
	ctx context.Context,
	showID int,
	date time.Time,
	pagination domain.Pagination) ([]domain.TheaterShowtimes, *domain.Metadata, error) {

	return m.GetTheatersByShowAndDateFunc(ctx, showID, date, pagination)
}
