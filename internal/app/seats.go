package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
	"github.com/shopspring/decimal"
)

func (app *Application) GetSeatMapByShowtime(w http.ResponseWriter, r *http.Request, showtimeID int) {
	logger := app.contextGetLogger(r)

	seatMap, err := app.showtimeRepo.GetSeatMap(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if len(seatMap.Seats) == 0 {
		logger.Warn("seat map not found for showtime", "showtime_id", showtimeID)
		app.notFoundResponse(w, r)
		return
	}

	resp := toSeatMapResponse(seatMap)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetBookedSeats returns the seats with an active booking for the showtime
// identified by theater, label and date. Cancelled bookings free their seats,
// so they never show up here.
func (app *Application) GetBookedSeats(w http.ResponseWriter, r *http.Request, showID int) {
	theaterId := readIntQuery(r, "theaterId")
	if theaterId == nil || *theaterId < 1 {
		app.badRequestResponse(w, r, fmt.Errorf("theaterId query parameter is required"))
		return
	}

	label := r.URL.Query().Get("showtime")
	if label == "" {
		app.badRequestResponse(w, r, fmt.Errorf("showtime query parameter is required"))
		return
	}

	dateParam := r.URL.Query().Get("date")
	date, err := time.Parse(dateLayout, dateParam)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("date must be in YYYY-MM-DD format"))
		return
	}

	showtime, err := app.showtimeRepo.GetByShowAndLabel(r.Context(), showID, *theaterId, label, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownShowtime):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	seats, err := app.bookingRepo.GetBookedSeats(r.Context(), showtime.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookedSeatsResponse{
		ShowId:   showID,
		Showtime: label,
		Seats:    seats,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(seatMap *domain.ShowtimeSeatMap) api.SeatMapResponse {
	return api.SeatMapResponse{
		ShowtimeId:  seatMap.ShowtimeID,
		TheaterId:   seatMap.TheaterID,
		TheaterName: seatMap.TheaterName,
		ShowTitle:   seatMap.ShowTitle,
		ScreenName:  seatMap.ScreenName,
		StartsAt:    seatMap.StartsAt,
		BasePrice:   seatMap.BasePrice,
		SeatRows:    toSeatRows(seatMap.BasePrice, seatMap.Seats),
	}
}

// toSeatRows groups the flat seat list into rows, preserving the row order
// the repository returns (row, then column). Each seat carries its final
// price, base plus the seat-type surcharge.
func toSeatRows(basePrice decimal.Decimal, seats []domain.SeatStatus) []api.SeatRow {
	seatRows := make([]api.SeatRow, 0)

	for _, seat := range seats {
		apiSeat := api.Seat{
			Label:     seat.Label,
			Row:       seat.Row,
			Column:    seat.Column,
			SeatType:  seat.Type,
			Price:     basePrice.Add(seat.ExtraPrice),
			Available: seat.Available,
		}

		if n := len(seatRows); n > 0 && seatRows[n-1].Row == seat.Row {
			seatRows[n-1].Seats = append(seatRows[n-1].Seats, apiSeat)
			continue
		}

		seatRows = append(seatRows, api.SeatRow{
			Row:   seat.Row,
			Seats: []api.Seat{apiSeat},
		})
	}

	return seatRows
}
