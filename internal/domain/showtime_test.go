package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSeats(t *testing.T) {
	tests := []struct {
		name        string
		capacity    int
		bookedCount int
		want        int
	}{
		{"empty showtime", 100, 0, 100},
		{"partially booked", 100, 37, 63},
		{"sold out", 100, 100, 0},
		{"overbooked data never goes negative", 100, 120, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Showtime{Capacity: tt.capacity}

			assert.Equal(t, tt.want, s.AvailableSeats(tt.bookedCount))
		})
	}
}
