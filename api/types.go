// Package api defines the request and response types of the CineTick HTTP
// API. Types are hand-written; field tags carry both the JSON names and the
// validation rules enforced by the handlers.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the JSON envelope for every non-validation error.
type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

// SeatConflictResponse lists the requested seats that were already booked so
// the client can prompt reselection.
type SeatConflictResponse struct {
	Message          string    `json:"message"`
	ConflictingSeats []string  `json:"conflictingSeats"`
	RequestId        string    `json:"requestId,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

// Auth / users

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"version"`
}

type UserActivationRequest struct {
	Token string `json:"token" validate:"required,min=26"`
}

type UserActivationResponse struct {
	Activated bool `json:"activated"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

// Shows and theaters

type Show struct {
	Id          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genres      []string  `json:"genres"`
	Language    string    `json:"language"`
	Duration    int       `json:"duration"`
	PosterUrl   string    `json:"posterUrl"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ShowsResponse struct {
	Shows    []Show   `json:"shows"`
	Metadata Metadata `json:"metadata"`
}

type GetShowsParams struct {
	Page     *int    `validate:"omitempty,min=1"`
	PageSize *int    `validate:"omitempty,min=1,max=100"`
	Term     *string `validate:"omitempty,max=100"`
	Sort     *string `validate:"omitempty,oneof=title rating duration created_at -title -rating -duration -created_at"`
}

type CreateShowRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Genres      []string `json:"genres" validate:"required,min=1,dive,min=2"`
	Language    string   `json:"language" validate:"required,min=2,max=40"`
	Duration    int      `json:"duration" validate:"required,min=1,max=600"`
	PosterUrl   string   `json:"posterUrl" validate:"required,url"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=10"`
}

type Showtime struct {
	Id             int             `json:"id"`
	ScreenName     string          `json:"screenName"`
	Label          string          `json:"label"`
	StartsAt       time.Time       `json:"startsAt"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	AvailableSeats int             `json:"availableSeats"`
}

type TheaterShowtimes struct {
	TheaterId   int        `json:"theaterId"`
	TheaterName string     `json:"theaterName"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Amenities   []string   `json:"amenities"`
	Showtimes   []Showtime `json:"showtimes"`
}

type ShowTheatersResponse struct {
	ShowId   int                `json:"showId"`
	Date     string             `json:"date"`
	Theaters []TheaterShowtimes `json:"theaters"`
	Metadata Metadata           `json:"metadata"`
}

type CreateShowtimeRequest struct {
	ShowId    int             `json:"showId" validate:"required,min=1"`
	TheaterId int             `json:"theaterId" validate:"required,min=1"`
	ScreenId  int             `json:"screenId" validate:"required,min=1"`
	Label     string          `json:"label" validate:"required,max=20"`
	StartsAt  time.Time       `json:"startsAt" validate:"required"`
	BasePrice decimal.Decimal `json:"basePrice" validate:"required"`
}

type ShowtimeResponse struct {
	Showtime Showtime `json:"showtime"`
}

// Seats

type Seat struct {
	Label     string          `json:"label"`
	Row       string          `json:"row"`
	Column    int             `json:"column"`
	SeatType  string          `json:"seatType"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId  int             `json:"showtimeId"`
	TheaterId   int             `json:"theaterId"`
	TheaterName string          `json:"theaterName"`
	ShowTitle   string          `json:"showTitle"`
	ScreenName  string          `json:"screenName"`
	StartsAt    time.Time       `json:"startsAt"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	SeatRows    []SeatRow       `json:"seatRows"`
}

type BookedSeatsResponse struct {
	ShowId   int      `json:"showId"`
	Showtime string   `json:"showtime"`
	Seats    []string `json:"seats"`
}

// Bookings

type CreateBookingRequest struct {
	ShowId        int      `json:"showId" validate:"required,min=1"`
	TheaterId     int      `json:"theaterId" validate:"required,min=1"`
	Showtime      string   `json:"showtime" validate:"required,max=20"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Seats         []string `json:"seats" validate:"required,min=1,max=10,dive,seat_label"`
	PaymentMethod string   `json:"paymentMethod" validate:"required,oneof=card upi wallet"`
}

type Booking struct {
	Id        int             `json:"id"`
	Reference string          `json:"reference"`
	SeatLabel string          `json:"seatLabel"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

type CreateBookingResponse struct {
	Bookings      []Booking       `json:"bookings"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	TransactionId string          `json:"transactionId"`
}

type Refund struct {
	RefundId    string          `json:"refundId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Reason      string          `json:"reason,omitempty"`
	ProcessedAt time.Time       `json:"processedAt"`
}

type CancelBookingResponse struct {
	Id     int     `json:"id"`
	Status string  `json:"status"`
	Refund *Refund `json:"refund,omitempty"`
}

type BookingSummary struct {
	Id          int             `json:"id"`
	Reference   string          `json:"reference"`
	ShowTitle   string          `json:"showTitle"`
	PosterUrl   string          `json:"posterUrl"`
	TheaterName string          `json:"theaterName"`
	ScreenName  string          `json:"screenName"`
	StartsAt    time.Time       `json:"startsAt"`
	SeatLabel   string          `json:"seatLabel"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

type GetUserBookingsParams struct {
	Page     *int `validate:"omitempty,min=1"`
	PageSize *int `validate:"omitempty,min=1,max=100"`
}

type BookingDetailResponse struct {
	Id            int             `json:"id"`
	Reference     string          `json:"reference"`
	ShowtimeId    int             `json:"showtimeId"`
	SeatLabel     string          `json:"seatLabel"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	Refund        *Refund         `json:"refund,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
