package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
)

const dateLayout = "2006-01-02"

func (app *Application) GetTheatersOfShow(w http.ResponseWriter, r *http.Request, showID int) {
	logger := app.contextGetLogger(r)

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		app.badRequestResponse(w, r, fmt.Errorf("date query parameter is required"))
		return
	}

	date, err := time.Parse(dateLayout, dateParam)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("date must be in YYYY-MM-DD format"))
		return
	}

	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if page := readIntQuery(r, "page"); page != nil && *page > 0 {
		pagination.Page = *page
	}
	if pageSize := readIntQuery(r, "pageSize"); pageSize != nil && *pageSize > 0 {
		pagination.PageSize = *pageSize
	}

	theaters, metadata, err := app.theaterRepo.GetTheatersByShowAndDate(r.Context(), showID, date, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(theaters) == 0 {
		logger.Info("no theaters scheduled for show on date", "show_id", showID, "date", dateParam)
	}

	resp := api.ShowTheatersResponse{
		ShowId:   showID,
		Date:     dateParam,
		Theaters: toApiTheaterShowtimes(theaters),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiTheaterShowtimes(theaters []domain.TheaterShowtimes) []api.TheaterShowtimes {
	apiTheaters := make([]api.TheaterShowtimes, len(theaters))

	for i, t := range theaters {
		showtimes := make([]api.Showtime, len(t.Showtimes))
		for j, st := range t.Showtimes {
			showtimes[j] = toApiShowtime(st)
		}

		apiTheaters[i] = api.TheaterShowtimes{
			TheaterId:   t.Theater.ID,
			TheaterName: t.Theater.Name,
			Address:     t.Theater.Address,
			City:        t.Theater.City,
			Amenities:   t.Theater.Amenities,
			Showtimes:   showtimes,
		}
	}

	return apiTheaters
}

func toApiShowtime(st domain.Showtime) api.Showtime {
	return api.Showtime{
		Id:             st.ID,
		ScreenName:     st.ScreenName,
		Label:          st.Label,
		StartsAt:       st.StartsAt,
		BasePrice:      st.BasePrice,
		AvailableSeats: st.AvailableSeats(st.BookedCount),
	}
}
