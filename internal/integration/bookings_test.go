package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingsTestSuite struct {
	BaseSuite

	showId     int
	theaterId  int
	showtimeId int
	cookie     *http.Cookie
}

func TestBookingsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(BookingsTestSuite))
}

func (s *BookingsTestSuite) SetupSuite() {
	s.BaseSuite.SetupSuite()

	// card payments succeed, upi payments are declined; this lets every test
	// share the one gateway mock wired into the app
	s.app.Gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req domain.ChargeRequest) bool {
		return req.Method == "card"
	})).Return(&domain.ChargeResult{
		TransactionID: "txn_test_123",
		Status:        domain.PaymentStatusSucceeded,
	}, nil)

	s.app.Gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req domain.ChargeRequest) bool {
		return req.Method == "upi"
	})).Return(nil, fmt.Errorf("insufficient funds"))

	s.app.Gateway.On("Refund", mock.Anything, "txn_test_123", mock.Anything).
		Return(&domain.RefundResult{
			RefundID: "re_test_456",
			Status:   domain.RefundStatusSucceeded,
		}, nil)
}

func (s *BookingsTestSuite) SetupTest() {
	truncateAll(s.T(), s.app.DB)
	seedUser(s.T(), s.app.DB)
	s.showId, s.theaterId, s.showtimeId = seedShowtime(s.T(), s.app.DB)
	s.app.Mailer.Reset()
	s.cookie = loginUser(s.T(), s.app, TestUserEmail, TestUserPassword)
}

func (s *BookingsTestSuite) bookSeats(cookie *http.Cookie, method string, seats ...string) *http.Response {
	body, err := json.Marshal(api.CreateBookingRequest{
		ShowId:        s.showId,
		TheaterId:     s.theaterId,
		Showtime:      TestShowtimeLabel,
		Date:          TestShowtimeDate,
		Seats:         seats,
		PaymentMethod: method,
	})
	s.Require().NoError(err)

	req, err := prepareRequest("POST", "/bookings", bytes.NewReader(body), nil, []*http.Cookie{cookie})
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(rec, req)

	return rec.Result()
}

func (s *BookingsTestSuite) activeSeatCount(seat string) int {
	var count int
	err := s.app.DB.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM bookings
		WHERE showtime_id = $1 AND seat_label = $2 AND status = 'booked'
	`, s.showtimeId, seat).Scan(&count)
	s.Require().NoError(err)

	return count
}

func (s *BookingsTestSuite) TestBookingPersistsOneRowPerSeat() {
	res := s.bookSeats(s.cookie, "card", "A1", "A2")
	defer res.Body.Close()

	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var resp api.CreateBookingResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&resp))

	s.Len(resp.Bookings, 2)
	s.Equal("txn_test_123", resp.TransactionId)
	s.Equal("USD", resp.Currency)
	s.True(resp.TotalAmount.Equal(decimal.NewFromInt(24)), "total = %s", resp.TotalAmount)

	s.Equal(1, s.activeSeatCount("A1"))
	s.Equal(1, s.activeSeatCount("A2"))

	var txnCount int
	err := s.app.DB.QueryRow(context.Background(), `
		SELECT COUNT(DISTINCT payment_transaction_id) FROM bookings WHERE showtime_id = $1
	`, s.showtimeId).Scan(&txnCount)
	s.Require().NoError(err)
	s.Equal(1, txnCount, "all seats of one purchase share the transaction")

	s.Eventually(func() bool {
		return len(s.app.Mailer.GetSentEmails()) == 1
	}, 2*time.Second, 50*time.Millisecond, "confirmation email should be sent")
}

func (s *BookingsTestSuite) TestPremiumSeatChargesSurcharge() {
	res := s.bookSeats(s.cookie, "card", "A1", "B1")
	defer res.Body.Close()

	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var resp api.CreateBookingResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&resp))

	// A1 is standard (12.00), B1 premium (12.00 + 3.00)
	s.True(resp.TotalAmount.Equal(decimal.NewFromInt(27)), "total = %s, want 27", resp.TotalAmount)

	var premiumAmount decimal.Decimal
	err := s.app.DB.QueryRow(context.Background(), `
		SELECT payment_amount FROM bookings WHERE showtime_id = $1 AND seat_label = 'B1'
	`, s.showtimeId).Scan(&premiumAmount)
	s.Require().NoError(err)
	s.True(premiumAmount.Equal(decimal.NewFromInt(15)), "B1 row amount = %s, want 15", premiumAmount)
}

func (s *BookingsTestSuite) TestBookingUnknownSeatBooksNothing() {
	res := s.bookSeats(s.cookie, "card", "A1", "Z99")
	defer res.Body.Close()

	s.Require().Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal(0, s.activeSeatCount("A1"), "partial bookings must not survive")
}

func (s *BookingsTestSuite) TestDoubleBookingReturnsConflict() {
	res := s.bookSeats(s.cookie, "card", "A1")
	res.Body.Close()
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	res = s.bookSeats(s.cookie, "card", "A1", "A2")
	defer res.Body.Close()

	s.Require().Equal(http.StatusConflict, res.StatusCode)

	var conflict api.SeatConflictResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&conflict))
	s.Equal([]string{"A1"}, conflict.ConflictingSeats)

	s.Equal(1, s.activeSeatCount("A1"))
	s.Equal(0, s.activeSeatCount("A2"), "no seat of a conflicting request may be booked")
}

func (s *BookingsTestSuite) TestDeclinedPaymentBooksNothing() {
	res := s.bookSeats(s.cookie, "upi", "A1")
	defer res.Body.Close()

	s.Require().Equal(http.StatusPaymentRequired, res.StatusCode)
	s.Equal(0, s.activeSeatCount("A1"))
}

func (s *BookingsTestSuite) TestCancelFreesSeatAndRecordsRefund() {
	res := s.bookSeats(s.cookie, "card", "A1")
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var created api.CreateBookingResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()
	s.Require().Len(created.Bookings, 1)

	req, err := prepareRequest("DELETE", fmt.Sprintf("/bookings/%d", created.Bookings[0].Id), nil, nil, []*http.Cookie{s.cookie})
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(rec, req)

	cancelRes := rec.Result()
	defer cancelRes.Body.Close()
	s.Require().Equal(http.StatusOK, cancelRes.StatusCode)

	var cancelled api.CancelBookingResponse
	s.Require().NoError(json.NewDecoder(cancelRes.Body).Decode(&cancelled))
	s.Equal("cancelled", cancelled.Status)
	s.Require().NotNil(cancelled.Refund)
	s.Equal("re_test_456", cancelled.Refund.RefundId)

	var refundId string
	err = s.app.DB.QueryRow(context.Background(), `
		SELECT refund_id FROM bookings WHERE id = $1
	`, created.Bookings[0].Id).Scan(&refundId)
	s.Require().NoError(err)
	s.Equal("re_test_456", refundId)

	// the freed seat can be booked again
	res = s.bookSeats(s.cookie, "card", "A1")
	defer res.Body.Close()
	s.Equal(http.StatusCreated, res.StatusCode)
	s.Equal(1, s.activeSeatCount("A1"))
}

func (s *BookingsTestSuite) TestCancelTwiceReturnsConflict() {
	res := s.bookSeats(s.cookie, "card", "A1")
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var created api.CreateBookingResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()

	cancel := func() int {
		req, err := prepareRequest("DELETE", fmt.Sprintf("/bookings/%d", created.Bookings[0].Id), nil, nil, []*http.Cookie{s.cookie})
		s.Require().NoError(err)

		rec := httptest.NewRecorder()
		s.app.App.Routes().ServeHTTP(rec, req)
		return rec.Code
	}

	s.Equal(http.StatusOK, cancel())
	s.Equal(http.StatusConflict, cancel())
}

// TestConcurrentBookingOfSameSeat hammers one seat from many goroutines and
// requires that exactly one request wins. The row lock on the showtime plus
// the partial unique index on active bookings are what make this hold.
func (s *BookingsTestSuite) TestConcurrentBookingOfSameSeat() {
	const attempts = 8

	var wg sync.WaitGroup
	statuses := make([]int, attempts)

	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			res := s.bookSeats(s.cookie, "card", "B5")
			defer res.Body.Close()

			statuses[i] = res.StatusCode
		}(i)
	}

	wg.Wait()

	created, conflicted := 0, 0
	for _, status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			s.T().Errorf("unexpected status %d", status)
		}
	}

	require.Equal(s.T(), 1, created, "exactly one attempt may win the seat")
	require.Equal(s.T(), attempts-1, conflicted)
	s.Equal(1, s.activeSeatCount("B5"))
}

func (s *BookingsTestSuite) TestGetUserBookings() {
	res := s.bookSeats(s.cookie, "card", "A1", "A2")
	res.Body.Close()
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	req, err := prepareRequest("GET", "/users/me/bookings", nil, nil, []*http.Cookie{s.cookie})
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)

	var resp api.UserBookingsResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))

	s.Len(resp.Bookings, 2)
	s.Equal(2, resp.Metadata.TotalRecords)
	s.Equal(TestShowTitle, resp.Bookings[0].ShowTitle)
	s.Equal(TestTheaterName, resp.Bookings[0].TheaterName)
}
