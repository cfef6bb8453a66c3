package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateBooking books one or more seats of a showtime in a single all-or-nothing
// step. The seat conflict check, the charge and the inserts run in one database
// transaction, so two users racing for the same seat can never both win: the
// loser gets a 409 listing the seats that were taken.
func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	userId := app.contextGetUserId(r)

	var input api.CreateBookingRequest

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

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("date must be in YYYY-MM-DD format"))
		return
	}

	seats := dedupeSeats(input.Seats)

	showtime, err := app.showtimeRepo.GetByShowAndLabel(r.Context(), input.ShowId, input.TheaterId, input.Showtime, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownShowtime):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// One charge covers the whole seat group; chargeReference ties the gateway
	// transaction back to this purchase on the receipt.
	chargeReference, err := domain.NewBookingReference()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	req := domain.ReservationRequest{
		UserID:   userId,
		Showtime: showtime,
		Seats:    seats,
		Method:   input.PaymentMethod,
	}

	// total arrives from the reservation itself, which prices each seat as
	// base price plus its seat-type surcharge inside the transaction.
	charge := func(total decimal.Decimal) (domain.Payment, error) {
		result, chargeErr := app.paymentGateway.Charge(r.Context(), domain.ChargeRequest{
			Amount:    total,
			Currency:  app.config.Currency,
			Method:    input.PaymentMethod,
			Reference: chargeReference,
			UserEmail: user.Email,
		})
		if chargeErr != nil {
			return domain.Payment{}, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, chargeErr)
		}
		if result.Status != domain.PaymentStatusSucceeded {
			return domain.Payment{}, domain.ErrPaymentFailed
		}

		return domain.Payment{
			TransactionID: result.TransactionID,
			Amount:        total,
			Currency:      app.config.Currency,
			Status:        result.Status,
			Method:        input.PaymentMethod,
			Gateway:       app.paymentGateway.Name(),
		}, nil
	}

	bookings, err := app.bookingRepo.Reserve(r.Context(), req, charge)
	if err != nil {
		var seatConflict *domain.SeatConflictError

		switch {
		case errors.As(err, &seatConflict):
			logger.Info("seat conflict on booking attempt",
				"showtime_id", showtime.ID, "seats", seatConflict.Seats)
			app.seatConflictResponse(w, r, seatConflict.Seats)
		case errors.Is(err, domain.ErrPaymentFailed):
			logger.Warn("payment declined during booking", "showtime_id", showtime.ID)
			app.paymentRequiredResponse(w, r)
		case errors.Is(err, domain.ErrUnknownShowtime):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.badRequestResponse(w, r, fmt.Errorf("one or more seats do not exist for this screen"))
		default:
			logger.Error("failed to create booking", "error", err)
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	totalAmount := decimal.Zero
	for _, booking := range bookings {
		totalAmount = totalAmount.Add(booking.Payment.Amount)
	}

	go func(ctx context.Context) {
		gLogger := app.contextGetLogger(r.WithContext(ctx))

		defer func() {
			if err := recover(); err != nil {
				gLogger.Error("panic occurred during sending booking confirmation mail", "panic", err)
			}
		}()

		theaterName := ""
		if theater, err := app.theaterRepo.GetById(ctx, showtime.TheaterID); err == nil {
			theaterName = theater.Name
		}

		showTitle := ""
		if show, err := app.showRepo.GetById(ctx, showtime.ShowID); err == nil {
			showTitle = show.Title
		}

		data := map[string]any{
			"movie":     showTitle,
			"theater":   theaterName,
			"showtime":  fmt.Sprintf("%s %s", input.Date, showtime.Label),
			"seats":     seats,
			"amount":    totalAmount.String(),
			"currency":  app.config.Currency,
			"reference": chargeReference,
		}

		if err := app.mailer.Send(user.Email, "booking_confirmation.tmpl", data); err != nil {
			gLogger.Error("failed to send booking confirmation email", "error", err)
		}
	}(context.WithoutCancel(r.Context()))

	resp := api.CreateBookingResponse{
		Bookings:      toApiBookings(bookings),
		TotalAmount:   totalAmount,
		Currency:      app.config.Currency,
		TransactionId: bookings[0].Payment.TransactionID,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CancelBooking releases the seat and refunds the payment when one was taken.
// Cancelling twice is reported as a conflict, not silently ignored.
func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request, bookingID int) {
	logger := app.contextGetLogger(r)
	userId := app.contextGetUserId(r)

	refund := func(payment domain.Payment) (*domain.Refund, error) {
		result, err := app.paymentGateway.Refund(r.Context(), payment.TransactionID, payment.Amount)
		if err != nil {
			return nil, err
		}
		if result.Status != domain.RefundStatusSucceeded {
			return nil, fmt.Errorf("refund declined by %s", app.paymentGateway.Name())
		}

		return &domain.Refund{
			RefundID:    result.RefundID,
			Amount:      payment.Amount,
			Status:      result.Status,
			ProcessedAt: time.Now(),
		}, nil
	}

	booking, err := app.bookingRepo.Cancel(r.Context(), bookingID, userId, refund)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrAlreadyCancelled):
			app.errorResponse(w, r, http.StatusConflict, "Booking is already cancelled")
		default:
			logger.Error("failed to cancel booking", "error", err, "booking_id", bookingID)
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if booking.Refund != nil && booking.Refund.Status == domain.RefundStatusFailed {
		logger.Warn("refund failed during cancellation",
			"booking_id", booking.ID, "reason", booking.Refund.Reason)
	}

	go func(ctx context.Context) {
		gLogger := app.contextGetLogger(r.WithContext(ctx))

		defer func() {
			if err := recover(); err != nil {
				gLogger.Error("panic occurred during sending cancellation mail", "panic", err)
			}
		}()

		user, err := app.userRepo.GetById(ctx, userId)
		if err != nil {
			gLogger.Error("failed to load user for cancellation email", "error", err)
			return
		}

		showTitle := ""
		if showtime, err := app.showtimeRepo.GetById(ctx, booking.ShowtimeID); err == nil {
			if show, err := app.showRepo.GetById(ctx, showtime.ShowID); err == nil {
				showTitle = show.Title
			}
		}

		data := map[string]any{
			"reference": booking.Reference,
			"movie":     showTitle,
			"seat":      booking.SeatLabel,
			"amount":    booking.Payment.Amount.String(),
			"currency":  booking.Payment.Currency,
			"refunded":  booking.Refund != nil && booking.Refund.Status == domain.RefundStatusSucceeded,
		}

		if err := app.mailer.Send(user.Email, "booking_cancellation.tmpl", data); err != nil {
			gLogger.Error("failed to send booking cancellation email", "error", err)
		}
	}(context.WithoutCancel(r.Context()))

	resp := api.CancelBookingResponse{
		Id:     booking.ID,
		Status: string(booking.Status),
		Refund: toApiRefund(booking.Refund),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingsOfUser(w http.ResponseWriter, r *http.Request, params api.GetUserBookingsParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	pagination := toBookingsPagination(params)

	summaries, metadata, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toApiBookingSummaries(summaries),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetUserBookingById(w http.ResponseWriter, r *http.Request, bookingID int) {
	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.GetByIdAndUserId(r.Context(), bookingID, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.BookingDetailResponse{
		Id:            booking.ID,
		Reference:     booking.Reference,
		ShowtimeId:    booking.ShowtimeID,
		SeatLabel:     booking.SeatLabel,
		Status:        string(booking.Status),
		Amount:        booking.Payment.Amount,
		Currency:      booking.Payment.Currency,
		PaymentMethod: booking.Payment.Method,
		PaymentStatus: string(booking.Payment.Status),
		Refund:        toApiRefund(booking.Refund),
		CreatedAt:     booking.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// dedupeSeats drops repeated labels while keeping the first occurrence order,
// so asking for A1 twice books A1 once.
func dedupeSeats(seats []string) []string {
	seen := make(map[string]bool, len(seats))
	deduped := make([]string, 0, len(seats))

	for _, seat := range seats {
		if seen[seat] {
			continue
		}

		seen[seat] = true
		deduped = append(deduped, seat)
	}

	return deduped
}

func toApiBookings(bookings []*domain.Booking) []api.Booking {
	apiBookings := make([]api.Booking, len(bookings))

	for i, b := range bookings {
		apiBookings[i] = api.Booking{
			Id:        b.ID,
			Reference: b.Reference,
			SeatLabel: b.SeatLabel,
			Status:    string(b.Status),
			Amount:    b.Payment.Amount,
		}
	}

	return apiBookings
}

func toApiBookingSummaries(summaries []domain.BookingSummary) []api.BookingSummary {
	apiSummaries := make([]api.BookingSummary, len(summaries))

	for i, s := range summaries {
		apiSummaries[i] = api.BookingSummary{
			Id:          s.BookingID,
			Reference:   s.Reference,
			ShowTitle:   s.ShowTitle,
			PosterUrl:   s.PosterUrl,
			TheaterName: s.TheaterName,
			ScreenName:  s.ScreenName,
			StartsAt:    s.StartsAt,
			SeatLabel:   s.SeatLabel,
			Status:      string(s.Status),
			Amount:      s.Amount,
			CreatedAt:   s.CreatedAt,
		}
	}

	return apiSummaries
}

func toApiRefund(refund *domain.Refund) *api.Refund {
	if refund == nil {
		return nil
	}

	return &api.Refund{
		RefundId:    refund.RefundID,
		Amount:      refund.Amount,
		Status:      string(refund.Status),
		Reason:      refund.Reason,
		ProcessedAt: refund.ProcessedAt,
	}
}

func toBookingsPagination(params api.GetUserBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}
