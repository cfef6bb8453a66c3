package domain

import (
	"context"
	"time"
)

type Theater struct {
	ID        int
	Name      string
	Address   string
	City      string
	Amenities []string
	Screens   []Screen
}

type Screen struct {
	ID        int
	TheaterID int
	Name      string
	Type      string
	Capacity  int
}

// TheaterShowtimes groups a theater with the showtimes it runs for one show
// on one date. Used by the show browsing endpoints.
type TheaterShowtimes struct {
	Theater   Theater
	Showtimes []Showtime
}

type TheaterRepository interface {
	GetById(ctx context.Context, id int) (*Theater, error)
	GetTheatersByShowAndDate(ctx context.Context, showID int, date time.Time, pagination Pagination) ([]TheaterShowtimes, *Metadata, error)
}
