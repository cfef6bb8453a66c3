package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Reserve books every requested seat or none of them. Concurrent requests for
// the same showtime are serialized by the row lock on the showtime, so the
// conflict re-check and the inserts below cannot interleave with another
// reservation. The partial unique index on (showtime_id, seat_label) backs
// this up at the constraint level.
func (p *PostgresBookingRepository) Reserve(
	ctx context.Context,
	req domain.ReservationRequest,
	charge func(total decimal.Decimal) (domain.Payment, error)) ([]*domain.Booking, error) {

	bookings := make([]*domain.Booking, 0, len(req.Seats))

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var showtimeID int

		err := tx.QueryRow(ctx, `SELECT id FROM showtimes WHERE id = $1 FOR UPDATE`, req.Showtime.ID).Scan(&showtimeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUnknownShowtime
			}

			return err
		}

		extras, err := p.seatExtras(ctx, tx, req.Showtime.ScreenID, req.Seats)
		if err != nil {
			return err
		}

		amounts := make(map[string]decimal.Decimal, len(req.Seats))
		total := decimal.Zero

		for _, seat := range req.Seats {
			extra, ok := extras[seat]
			if !ok {
				return domain.ErrRecordNotFound
			}

			amounts[seat] = req.Showtime.BasePrice.Add(extra)
			total = total.Add(amounts[seat])
		}

		conflicts, err := p.conflictingSeats(ctx, tx, req.Showtime.ID, req.Seats)
		if err != nil {
			return err
		}

		if len(conflicts) > 0 {
			return &domain.SeatConflictError{Seats: conflicts}
		}

		payment, err := charge(total)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO bookings (
				user_id,
				showtime_id,
				seat_label,
				status,
				reference,
				payment_transaction_id,
				payment_amount,
				payment_currency,
				payment_status,
				payment_method,
				payment_gateway
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at
		`

		for _, seat := range req.Seats {
			reference, err := domain.NewBookingReference()
			if err != nil {
				return err
			}

			// each row records the price of its own seat; the gateway
			// transaction covering the whole group is shared
			seatPayment := payment
			seatPayment.Amount = amounts[seat]

			booking := &domain.Booking{
				UserID:     req.UserID,
				ShowtimeID: req.Showtime.ID,
				SeatLabel:  seat,
				Status:     domain.BookingStatusBooked,
				Reference:  reference,
				Payment:    seatPayment,
			}

			err = tx.QueryRow(
				ctx,
				query,
				booking.UserID,
				booking.ShowtimeID,
				booking.SeatLabel,
				booking.Status,
				booking.Reference,
				booking.Payment.TransactionID,
				booking.Payment.Amount.String(),
				booking.Payment.Currency,
				booking.Payment.Status,
				booking.Payment.Method,
				booking.Payment.Gateway,
			).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
					return &domain.SeatConflictError{Seats: []string{seat}}
				}

				return err
			}

			bookings = append(bookings, booking)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (p *PostgresBookingRepository) conflictingSeats(
	ctx context.Context,
	tx pgx.Tx,
	showtimeID int,
	seats []string) ([]string, error) {

	query := `
		SELECT seat_label
		FROM bookings
		WHERE showtime_id = $1 AND seat_label = ANY($2) AND status = 'booked'
	`

	rows, err := tx.Query(ctx, query, showtimeID, seats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conflicts := make([]string, 0)

	for rows.Next() {
		var seat string

		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}

		conflicts = append(conflicts, seat)
	}

	return conflicts, rows.Err()
}

// seatExtras returns the seat-type surcharge for every requested seat that
// exists on the screen; a label missing from the result is not a seat.
func (p *PostgresBookingRepository) seatExtras(
	ctx context.Context,
	tx pgx.Tx,
	screenID int,
	seats []string) (map[string]decimal.Decimal, error) {

	query := `SELECT seat_label, extra_price FROM seats WHERE screen_id = $1 AND seat_label = ANY($2)`

	rows, err := tx.Query(ctx, query, screenID, seats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	extras := make(map[string]decimal.Decimal, len(seats))

	for rows.Next() {
		var seat string
		var extra pgtype.Numeric

		if err := rows.Scan(&seat, &extra); err != nil {
			return nil, err
		}

		extras[seat] = numericToDecimal(extra)
	}

	return extras, rows.Err()
}

// Cancel flips the booking to cancelled and, when the payment had succeeded,
// runs the refund callback inside the same transaction. The showtime row is
// locked BEFORE the booking row so the lock order matches Reserve; releasing
// the seat and the status change are a single atomic step.
func (p *PostgresBookingRepository) Cancel(
	ctx context.Context,
	bookingID, userID int,
	refund func(domain.Payment) (*domain.Refund, error)) (*domain.Booking, error) {

	var booking *domain.Booking

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var showtimeID int

		err := tx.QueryRow(ctx, `SELECT showtime_id FROM bookings WHERE id = $1 AND user_id = $2`,
			bookingID, userID).Scan(&showtimeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		err = tx.QueryRow(ctx, `SELECT id FROM showtimes WHERE id = $1 FOR UPDATE`, showtimeID).Scan(&showtimeID)
		if err != nil {
			return err
		}

		booking, err = scanBookingRow(tx.QueryRow(ctx, bookingSelect+` WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			bookingID, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if booking.Status == domain.BookingStatusCancelled {
			return domain.ErrAlreadyCancelled
		}

		if booking.Payment.Status == domain.PaymentStatusSucceeded {
			refundResult, refundErr := refund(booking.Payment)
			if refundErr != nil {
				booking.Refund = &domain.Refund{
					Amount:      booking.Payment.Amount,
					Status:      domain.RefundStatusFailed,
					Reason:      refundErr.Error(),
					ProcessedAt: time.Now(),
				}
			} else {
				booking.Refund = refundResult
				booking.Payment.Status = domain.PaymentStatusRefunded
			}
		}

		booking.Status = domain.BookingStatusCancelled

		query := `
			UPDATE bookings
			SET status = $1,
				payment_status = $2,
				refund_id = $3,
				refund_amount = $4,
				refund_status = $5,
				refund_reason = $6,
				refund_processed_at = $7,
				updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`

		var refundID, refundStatus, refundReason *string
		var refundAmount *string
		var refundProcessedAt *time.Time

		if booking.Refund != nil {
			refundID = &booking.Refund.RefundID
			amount := booking.Refund.Amount.String()
			refundAmount = &amount
			status := string(booking.Refund.Status)
			refundStatus = &status
			refundReason = &booking.Refund.Reason
			refundProcessedAt = &booking.Refund.ProcessedAt
		}

		return tx.QueryRow(
			ctx,
			query,
			booking.Status,
			booking.Payment.Status,
			refundID,
			refundAmount,
			refundStatus,
			refundReason,
			refundProcessedAt,
			booking.ID,
		).Scan(&booking.UpdatedAt)
	})

	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) GetBookedSeats(ctx context.Context, showtimeID int) ([]string, error) {
	query := `SELECT seat_label FROM bookings WHERE showtime_id = $1 AND status = 'booked'`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]string, 0)

	for rows.Next() {
		var seat string

		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

const bookingSelect = `
	SELECT id, user_id, showtime_id, seat_label, status, reference,
		payment_transaction_id, payment_amount, payment_currency, payment_status,
		payment_method, payment_gateway,
		refund_id, refund_amount, refund_status, refund_reason, refund_processed_at,
		created_at, updated_at
	FROM bookings
`

func scanBookingRow(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var paymentAmount pgtype.Numeric
	var refundID, refundStatus, refundReason *string
	var refundAmount pgtype.Numeric
	var refundProcessedAt *time.Time

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowtimeID,
		&booking.SeatLabel,
		&booking.Status,
		&booking.Reference,
		&booking.Payment.TransactionID,
		&paymentAmount,
		&booking.Payment.Currency,
		&booking.Payment.Status,
		&booking.Payment.Method,
		&booking.Payment.Gateway,
		&refundID,
		&refundAmount,
		&refundStatus,
		&refundReason,
		&refundProcessedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	booking.Payment.Amount = numericToDecimal(paymentAmount)

	if refundID != nil {
		booking.Refund = &domain.Refund{
			RefundID: *refundID,
			Amount:   numericToDecimal(refundAmount),
			Status:   domain.RefundStatus(*refundStatus),
		}

		if refundReason != nil {
			booking.Refund.Reason = *refundReason
		}
		if refundProcessedAt != nil {
			booking.Refund.ProcessedAt = *refundProcessedAt
		}
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	booking, err := scanBookingRow(p.db.QueryRow(ctx, bookingSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	booking, err := scanBookingRow(p.db.QueryRow(ctx, bookingSelect+` WHERE id = $1 AND user_id = $2`,
		bookingID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			b.reference,
			sh.title,
			sh.poster_url,
			t.name,
			sc.name,
			st.starts_at,
			b.seat_label,
			b.status,
			b.payment_amount,
			b.created_at
		FROM bookings b
		JOIN showtimes st ON b.showtime_id = st.id
		JOIN shows sh ON st.show_id = sh.id
		JOIN theaters t ON st.theater_id = t.id
		JOIN screens sc ON st.screen_id = sc.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	summaries := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var summary domain.BookingSummary
		var amount pgtype.Numeric

		err := rows.Scan(
			&totalRecords,
			&summary.BookingID,
			&summary.Reference,
			&summary.ShowTitle,
			&summary.PosterUrl,
			&summary.TheaterName,
			&summary.ScreenName,
			&summary.StartsAt,
			&summary.SeatLabel,
			&summary.Status,
			&amount,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		summary.Amount = numericToDecimal(amount)
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}
