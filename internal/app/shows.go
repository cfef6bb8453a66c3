package app

import (
	"errors"
	"net/http"

	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSort     = "title"
)

func (app *Application) GetShows(w http.ResponseWriter, r *http.Request, params api.GetShowsParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	pagination := toShowsPagination(params)

	shows, metadata, err := app.showRepo.GetAll(r.Context(), pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowsResponse{
		Shows:    toApiShows(shows),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowById(w http.ResponseWriter, r *http.Request, showID int) {
	show, err := app.showRepo.GetById(r.Context(), showID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiShow(show), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateShow(w http.ResponseWriter, r *http.Request) {
	var input api.CreateShowRequest

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

	show := domain.Show{
		Title:       input.Title,
		Description: input.Description,
		Genres:      input.Genres,
		Language:    input.Language,
		Duration:    input.Duration,
		PosterUrl:   input.PosterUrl,
		Rating:      input.Rating,
	}

	err = app.showRepo.Create(r.Context(), &show)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toApiShow(&show), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toShowsPagination(params api.GetShowsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Sort:     DefaultSort,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}
	if params.Sort != nil {
		pagination.Sort = *params.Sort
	}
	if params.Term != nil {
		pagination.Term = *params.Term
	}

	return pagination
}

func toApiShows(shows []*domain.Show) []api.Show {
	apiShows := make([]api.Show, len(shows))

	for i, show := range shows {
		apiShows[i] = toApiShow(show)
	}

	return apiShows
}

func toApiShow(show *domain.Show) api.Show {
	if show == nil {
		return api.Show{}
	}

	return api.Show{
		Id:          show.ID,
		Title:       show.Title,
		Description: show.Description,
		Genres:      show.Genres,
		Language:    show.Language,
		Duration:    show.Duration,
		PosterUrl:   show.PosterUrl,
		Rating:      show.Rating,
		CreatedAt:   show.CreatedAt,
	}
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
