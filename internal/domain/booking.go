package domain

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusBooked         BookingStatus = "booked"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusCompleted      BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type RefundStatus string

const (
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
)

// Booking reserves exactly one seat of one showtime for one user. Multi-seat
// purchases produce one row per seat, all sharing the same gateway transaction.
// Rows are never deleted; cancellation is a status transition.
type Booking struct {
	ID         int
	UserID     int
	ShowtimeID int
	SeatLabel  string
	Status     BookingStatus
	Reference  string
	Payment    Payment
	Refund     *Refund
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment is the per-booking payment sub-record. It is owned exclusively by
// its booking and persisted inline with it.
type Payment struct {
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Status        PaymentStatus
	Method        string
	Gateway       string
}

type Refund struct {
	RefundID    string
	Amount      decimal.Decimal
	Status      RefundStatus
	Reason      string
	ProcessedAt time.Time
}

// BookingSummary is the flattened projection used for user booking listings.
type BookingSummary struct {
	BookingID   int
	Reference   string
	ShowTitle   string
	PosterUrl   string
	TheaterName string
	ScreenName  string
	StartsAt    time.Time
	SeatLabel   string
	Status      BookingStatus
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

const referenceLength = 5

// NewBookingReference generates the human-presentable booking code, distinct
// from the row id. Eight base32 characters give enough entropy for the unique
// constraint to stay collision-free in practice; the database still enforces it.
func NewBookingReference() (string, error) {
	randomBytes := make([]byte, referenceLength)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	return "BK-" + base32.StdEncoding.EncodeToString(randomBytes), nil
}

// ReservationRequest carries everything the transactional reservation needs.
// Seats are expected to be validated and de-duplicated by the caller.
type ReservationRequest struct {
	UserID   int
	Showtime *Showtime
	Seats    []string
	Method   string
}

type BookingRepository interface {
	// Reserve atomically books every requested seat or none of them. The
	// conflict re-check, the charge callback and the inserts all run inside
	// one transaction; charge receives the total of the per-seat prices
	// (base price plus the seat-type surcharge) and is invoked only when no
	// requested seat has an active booking. A *SeatConflictError is returned
	// when any seat is taken, ErrUnknownShowtime when the showtime row is
	// gone, and ErrRecordNotFound when a seat does not belong to the screen.
	Reserve(ctx context.Context, req ReservationRequest, charge func(total decimal.Decimal) (Payment, error)) ([]*Booking, error)

	// Cancel transitions a booking owned by userID to cancelled, invoking
	// refund inside the same transaction when its payment had succeeded.
	// A refund error is recorded on the booking but does not abort the
	// cancellation.
	Cancel(ctx context.Context, bookingID, userID int, refund func(Payment) (*Refund, error)) (*Booking, error)

	GetBookedSeats(ctx context.Context, showtimeID int) ([]string, error)
	GetById(ctx context.Context, id int) (*Booking, error)
	GetSummariesByUserId(ctx context.Context, userID int, pagination Pagination) ([]BookingSummary, *Metadata, error)
	GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*Booking, error)
}
