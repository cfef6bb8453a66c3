package app

import (
	"net/http"

	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
)

func (app *Application) CreateShowtime(w http.ResponseWriter, r *http.Request) {
	var input api.CreateShowtimeRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	showtime := domain.Showtime{
		ShowID:    input.ShowId,
		TheaterID: input.TheaterId,
		ScreenID:  input.ScreenId,
		Label:     input.Label,
		StartsAt:  input.StartsAt,
		BasePrice: input.BasePrice,
	}

	err = app.showtimeRepo.Create(r.Context(), &showtime)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// re-read through the screens join so the response carries the screen
	// name and seat availability
	created, err := app.showtimeRepo.GetById(r.Context(), showtime.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimeResponse{
		Showtime: toApiShowtime(*created),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
