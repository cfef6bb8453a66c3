package domain

import (
	"context"
	"time"
)

type Show struct {
	ID          int
	Title       string
	Description string
	Genres      []string
	Language    string
	Duration    int
	PosterUrl   string
	Rating      float64
	CreatedAt   time.Time
}

type ShowRepository interface {
	GetAll(ctx context.Context, pagination Pagination) ([]*Show, *Metadata, error)
	GetById(ctx context.Context, id int) (*Show, error)
	Create(ctx context.Context, show *Show) error
}
