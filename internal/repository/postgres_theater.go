package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTheaterRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTheaterRepository(db *pgxpool.Pool) *PostgresTheaterRepository {
	return &PostgresTheaterRepository{
		db: db,
	}
}

func (p *PostgresTheaterRepository) GetById(ctx context.Context, id int) (*domain.Theater, error) {
	query := `SELECT id, name, address, city, amenities FROM theaters WHERE id = $1`

	var theater domain.Theater

	err := p.db.QueryRow(ctx, query, id).Scan(
		&theater.ID,
		&theater.Name,
		&theater.Address,
		&theater.City,
		&theater.Amenities,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	screens, err := p.retrieveScreens(ctx, id)
	if err != nil {
		return nil, err
	}

	theater.Screens = screens

	return &theater, nil
}

func (p *PostgresTheaterRepository) retrieveScreens(ctx context.Context, theaterID int) ([]domain.Screen, error) {
	query := `
		SELECT id, theater_id, name, screen_type, capacity
		FROM screens
		WHERE theater_id = $1
		ORDER BY name
	`

	rows, err := p.db.Query(ctx, query, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	screens := make([]domain.Screen, 0)

	for rows.Next() {
		var screen domain.Screen

		err := rows.Scan(&screen.ID, &screen.TheaterID, &screen.Name, &screen.Type, &screen.Capacity)
		if err != nil {
			return nil, err
		}

		screens = append(screens, screen)
	}

	return screens, rows.Err()
}

// GetTheatersByShowAndDate returns the theaters screening a show on a date,
// each with its showtimes ordered by start time.
func (p *PostgresTheaterRepository) GetTheatersByShowAndDate(
	ctx context.Context,
	showID int,
	date time.Time,
	pagination domain.Pagination) ([]domain.TheaterShowtimes, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			t.id, t.name, t.address, t.city, t.amenities,
			st.id, st.screen_id, sc.name, st.label, st.starts_at, st.base_price, sc.capacity,
			(SELECT COUNT(*) FROM bookings b WHERE b.showtime_id = st.id AND b.status = 'booked')
		FROM theaters t
		JOIN showtimes st ON st.theater_id = t.id
		JOIN screens sc ON st.screen_id = sc.id
		WHERE st.show_id = $1 AND st.starts_at::date = $2::date
		ORDER BY t.name, st.starts_at
		LIMIT $3 OFFSET $4
	`

	rows, err := p.db.Query(ctx, query, showID, date, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.TheaterShowtimes, 0)
	totalRecords := 0

	for rows.Next() {
		var theater domain.Theater
		var showtime domain.Showtime
		var basePrice pgtype.Numeric

		err := rows.Scan(
			&totalRecords,
			&theater.ID,
			&theater.Name,
			&theater.Address,
			&theater.City,
			&theater.Amenities,
			&showtime.ID,
			&showtime.ScreenID,
			&showtime.ScreenName,
			&showtime.Label,
			&showtime.StartsAt,
			&basePrice,
			&showtime.Capacity,
			&showtime.BookedCount,
		)
		if err != nil {
			return nil, nil, err
		}

		showtime.ShowID = showID
		showtime.TheaterID = theater.ID
		showtime.BasePrice = numericToDecimal(basePrice)

		if n := len(results); n > 0 && results[n-1].Theater.ID == theater.ID {
			results[n-1].Showtimes = append(results[n-1].Showtimes, showtime)
			continue
		}

		results = append(results, domain.TheaterShowtimes{
			Theater:   theater,
			Showtimes: []domain.Showtime{showtime},
		})
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return results, metadata, nil
}
