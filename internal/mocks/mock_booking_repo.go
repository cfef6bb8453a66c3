package mocks

import (
	"context"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/shopspring/decimal"
)

type MockBookingRepo struct {
	domain.BookingRepository
	ReserveFunc              func(ctx context.Context, req domain.ReservationRequest, charge func(total decimal.Decimal) (domain.Payment, error)) ([]*domain.Booking, error)
	CancelFunc               func(ctx context.Context, bookingID, userID int, refund func(domain.Payment) (*domain.Refund, error)) (*domain.Booking, error)
	GetBookedSeatsFunc       func(ctx context.Context, showtimeID int) ([]string, error)
	GetByIdFunc              func(ctx context.Context, id int) (*domain.Booking, error)
	GetSummariesByUserIdFunc func(ctx context.Context, userID int, pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error)
	GetByIdAndUserIdFunc     func(ctx context.Context, bookingID, userID int) (*domain.Booking, error)
}

func (m *MockBookingRepo) Reserve(
	ctx context.Context,
	req domain.ReservationRequest,
	charge func(total decimal.Decimal) (domain.Payment, error)) ([]*domain.Booking, error) {

	return m.ReserveFunc(ctx, req, charge)
}

func (m *MockBookingRepo) Cancel(
	ctx context.Context,
	bookingID, userID int,
	refund func(domain.Payment) (*domain.Refund, error)) (*domain.Booking, error) {

	return m.CancelFunc(ctx, bookingID, userID, refund)
}

func (m *MockBookingRepo) GetBookedSeats(ctx context.Context, showtimeID int) ([]string, error) {
	return m.GetBookedSeatsFunc(ctx, showtimeID)
}

func (m *MockBookingRepo) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockBookingRepo) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	return m.GetSummariesByUserIdFunc(ctx, userID, pagination)
}

func (m *MockBookingRepo) GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	return m.GetByIdAndUserIdFunc(ctx, bookingID, userID)
}
