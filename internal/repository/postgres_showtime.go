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

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

const showtimeSelect = `
	SELECT st.id, st.show_id, st.theater_id, st.screen_id, sc.name, st.label,
		st.starts_at, st.base_price, sc.capacity
	FROM showtimes st
	JOIN screens sc ON st.screen_id = sc.id
`

func scanShowtime(row pgx.Row) (*domain.Showtime, error) {
	var showtime domain.Showtime
	var basePrice pgtype.Numeric

	err := row.Scan(
		&showtime.ID,
		&showtime.ShowID,
		&showtime.TheaterID,
		&showtime.ScreenID,
		&showtime.ScreenName,
		&showtime.Label,
		&showtime.StartsAt,
		&basePrice,
		&showtime.Capacity,
	)

	if err != nil {
		return nil, err
	}

	showtime.BasePrice = numericToDecimal(basePrice)
	showtime.Date = showtime.StartsAt.Truncate(24 * time.Hour)

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	showtime, err := scanShowtime(p.db.QueryRow(ctx, showtimeSelect+` WHERE st.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return showtime, nil
}

// GetByShowAndLabel matches the opaque showtime label exactly, scoped to the
// show, theater and calendar date of the screening.
func (p *PostgresShowtimeRepository) GetByShowAndLabel(
	ctx context.Context,
	showID, theaterID int,
	label string,
	date time.Time) (*domain.Showtime, error) {

	query := showtimeSelect + `
		WHERE st.show_id = $1 AND st.theater_id = $2 AND st.label = $3 AND st.starts_at::date = $4::date
	`

	showtime, err := scanShowtime(p.db.QueryRow(ctx, query, showID, theaterID, label, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownShowtime
		}

		return nil, err
	}

	return showtime, nil
}

func (p *PostgresShowtimeRepository) GetSeatMap(ctx context.Context, showtimeID int) (*domain.ShowtimeSeatMap, error) {
	query := `
		SELECT t.id, t.name, sh.title, sc.name, st.starts_at, st.base_price,
			se.seat_label, se.seat_row, se.seat_col, se.seat_type, se.extra_price,
			b.id IS NOT NULL AS taken
		FROM showtimes st
		JOIN screens sc ON st.screen_id = sc.id
		JOIN theaters t ON st.theater_id = t.id
		JOIN shows sh ON st.show_id = sh.id
		JOIN seats se ON se.screen_id = sc.id
		LEFT JOIN bookings b
			ON b.showtime_id = st.id AND b.seat_label = se.seat_label AND b.status = 'booked'
		WHERE st.id = $1
		ORDER BY se.seat_row, se.seat_col
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatMap := domain.ShowtimeSeatMap{ShowtimeID: showtimeID}
	var basePrice pgtype.Numeric

	for rows.Next() {
		var seat domain.SeatStatus
		var extraPrice pgtype.Numeric
		var taken bool

		err = rows.Scan(
			&seatMap.TheaterID,
			&seatMap.TheaterName,
			&seatMap.ShowTitle,
			&seatMap.ScreenName,
			&seatMap.StartsAt,
			&basePrice,
			&seat.Label,
			&seat.Row,
			&seat.Column,
			&seat.Type,
			&extraPrice,
			&taken,
		)
		if err != nil {
			return nil, err
		}

		seat.ExtraPrice = numericToDecimal(extraPrice)
		seat.Available = !taken
		seatMap.Seats = append(seatMap.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(seatMap.Seats) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	seatMap.BasePrice = numericToDecimal(basePrice)

	return &seatMap, nil
}

func (p *PostgresShowtimeRepository) Create(ctx context.Context, showtime *domain.Showtime) error {
	query := `
		INSERT INTO showtimes (show_id, theater_id, screen_id, label, starts_at, base_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	return p.db.QueryRow(
		ctx,
		query,
		showtime.ShowID,
		showtime.TheaterID,
		showtime.ScreenID,
		showtime.Label,
		showtime.StartsAt,
		showtime.BasePrice.String(),
	).Scan(&showtime.ID)
}
