package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrUnknownShowtime   = errors.New("showtime is not scheduled for this show")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrPaymentFailed     = errors.New("payment could not be processed")
	ErrSeatConflict      = errors.New("seat(s) are already booked")
)

// SeatConflictError reports which of the requested seats already have an
// active booking. It wraps ErrSeatConflict so callers can match with errors.Is
// while still recovering the seat list.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatConflict
}
