package mocks

import (
	"context"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
)

type MockShowtimeRepo struct {
	domain.ShowtimeRepository
	GetByIdFunc           func(ctx context.Context, id int) (*domain.Showtime, error)
	GetByShowAndLabelFunc func(ctx context.Context, showID, theaterID int, label string, date time.Time) (*domain.Showtime, error)
	GetSeatMapFunc        func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeatMap, error)
	CreateFunc            func(ctx context.Context, showtime *domain.Showtime) error
}

func (m *MockShowtimeRepo) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockShowtimeRepo) GetByShowAndLabel(
	ctx context.Context,
	showID, theaterID int,
	label string,
	date time.Time) (*domain.Showtime, error) {

	return m.GetByShowAndLabelFunc(ctx, showID, theaterID, label, date)
}

func (m *MockShowtimeRepo) GetSeatMap(ctx context.Context, showtimeID int) (*domain.ShowtimeSeatMap, error) {
	return m.GetSeatMapFunc(ctx, showtimeID)
}

func (m *MockShowtimeRepo) Create(ctx context.Context, showtime *domain.Showtime) error {
	return m.CreateFunc(ctx, showtime)
}
