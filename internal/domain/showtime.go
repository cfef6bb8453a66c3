package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Showtime is a concrete scheduled screening: one show on one screen of one
// theater at one start time. Seat occupancy is never stored on the showtime
// itself; it is derived from the booking rows that reference it.
type Showtime struct {
	ID         int
	ShowID     int
	TheaterID  int
	ScreenID   int
	ScreenName string
	Label      string
	Date       time.Time
	StartsAt   time.Time
	BasePrice  decimal.Decimal
	Capacity   int

	// BookedCount is the number of active bookings, populated by listing
	// queries. Zero on showtimes loaded without occupancy data.
	BookedCount int
}

// AvailableSeats derives the free-seat count from the number of active
// bookings, so it can never drift from the booking rows.
func (s Showtime) AvailableSeats(bookedCount int) int {
	if bookedCount > s.Capacity {
		return 0
	}

	return s.Capacity - bookedCount
}

type ShowtimeSeatMap struct {
	ShowtimeID  int
	TheaterID   int
	TheaterName string
	ShowTitle   string
	ScreenName  string
	StartsAt    time.Time
	BasePrice   decimal.Decimal
	Seats       []SeatStatus
}

// SeatStatus is one seat of the map with its type and the surcharge that type
// adds on top of the showtime base price.
type SeatStatus struct {
	Label      string
	Row        string
	Column     int
	Type       string
	ExtraPrice decimal.Decimal
	Available  bool
}

type ShowtimeRepository interface {
	GetById(ctx context.Context, id int) (*Showtime, error)

	// GetByShowAndLabel resolves the showtime a booking request names by its
	// opaque label, matched with exact equality. Returns ErrUnknownShowtime
	// when the label is not scheduled for the show and theater on that date.
	GetByShowAndLabel(ctx context.Context, showID, theaterID int, label string, date time.Time) (*Showtime, error)

	GetSeatMap(ctx context.Context, showtimeID int) (*ShowtimeSeatMap, error)
	Create(ctx context.Context, showtime *Showtime) error
}
