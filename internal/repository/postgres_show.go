package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) GetAll(
	ctx context.Context,
	pagination domain.Pagination) ([]*domain.Show, *domain.Metadata, error) {

	sortColumn := "title"
	switch pagination.SortColumn() {
	case "rating", "duration", "created_at":
		sortColumn = pagination.SortColumn()
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*) OVER(), id, title, description, genres, language, duration, poster_url, rating, created_at
		FROM shows
		WHERE (to_tsvector('simple', title) @@ plainto_tsquery('simple', $1) OR $1 = '')
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, sortColumn, pagination.SortDirection())

	rows, err := p.db.Query(ctx, query, pagination.Term, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	shows := make([]*domain.Show, 0)
	totalRecords := 0

	for rows.Next() {
		var show domain.Show
		var rating pgtype.Numeric

		err := rows.Scan(
			&totalRecords,
			&show.ID,
			&show.Title,
			&show.Description,
			&show.Genres,
			&show.Language,
			&show.Duration,
			&show.PosterUrl,
			&rating,
			&show.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		show.Rating, _ = numericToDecimal(rating).Float64()
		shows = append(shows, &show)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return shows, metadata, nil
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int) (*domain.Show, error) {
	query := `
		SELECT id, title, description, genres, language, duration, poster_url, rating, created_at
		FROM shows
		WHERE id = $1
	`

	var show domain.Show
	var rating pgtype.Numeric

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.Title,
		&show.Description,
		&show.Genres,
		&show.Language,
		&show.Duration,
		&show.PosterUrl,
		&rating,
		&show.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	show.Rating, _ = numericToDecimal(rating).Float64()

	return &show, nil
}

func (p *PostgresShowRepository) Create(ctx context.Context, show *domain.Show) error {
	query := `
		INSERT INTO shows (title, description, genres, language, duration, poster_url, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		show.Title,
		show.Description,
		show.Genres,
		show.Language,
		show.Duration,
		show.PosterUrl,
		show.Rating,
	).Scan(&show.ID, &show.CreatedAt)
}
