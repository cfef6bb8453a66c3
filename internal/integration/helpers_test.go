package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"startsAt":  {},
	"reference": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// loginUser performs a real login through the router and returns the session
// cookie for follow-up authenticated requests.
func loginUser(t testing.TB, testApp *TestApp, email, password string) *http.Cookie {
	body := strings.NewReader(fmt.Sprintf(`{"email": %q, "password": %q}`, email, password))

	req, err := prepareRequest("POST", "/auth/login", body, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	testApp.App.Routes().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode, "login must succeed before the scenario runs")

	for _, c := range res.Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}

	t.Fatal("no session cookie returned by login")
	return nil
}

func seedUser(t testing.TB, db *pgxpool.Pool) int {
	var user domain.User
	require.NoError(t, user.Password.Set(TestUserPassword))

	var userId int
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (first_name, last_name, email, password_hash, activated)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id
	`, TestUserFirstName, TestUserLastName, TestUserEmail, user.Password.Hash).Scan(&userId)
	require.NoError(t, err)

	return userId
}

// seedShowtime inserts a show, a theater with one screen and its seats, and a
// showtime on that screen. It returns the ids a booking request needs.
func seedShowtime(t testing.TB, db *pgxpool.Pool) (showId, theaterId, showtimeId int) {
	ctx := context.Background()

	err := db.QueryRow(ctx, `
		INSERT INTO shows (title, description, genres, language, duration, poster_url, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, TestShowTitle, TestShowDescription, TestShowGenres, TestShowLanguage, TestShowDuration, TestShowPosterUrl, TestShowRating).Scan(&showId)
	require.NoError(t, err)

	err = db.QueryRow(ctx, `
		INSERT INTO theaters (name, address, city, amenities)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, TestTheaterName, TestTheaterAddress, TestTheaterCity, TestTheaterAmenities).Scan(&theaterId)
	require.NoError(t, err)

	var screenId int
	err = db.QueryRow(ctx, `
		INSERT INTO screens (theater_id, name, capacity)
		VALUES ($1, $2, $3)
		RETURNING id
	`, theaterId, "Screen 1", 20).Scan(&screenId)
	require.NoError(t, err)

	// row A is standard seating at the base price, row B premium with a
	// 3.00 surcharge
	for _, row := range []string{"A", "B"} {
		seatType, extraPrice := "standard", "0.00"
		if row == "B" {
			seatType, extraPrice = "premium", "3.00"
		}

		for col := 1; col <= 10; col++ {
			_, err = db.Exec(ctx, `
				INSERT INTO seats (screen_id, seat_label, seat_row, seat_col, seat_type, extra_price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, screenId, fmt.Sprintf("%s%d", row, col), row, col, seatType, extraPrice)
			require.NoError(t, err)
		}
	}

	startsAt := time.Date(2026, 9, 1, 19, 30, 0, 0, time.UTC)

	err = db.QueryRow(ctx, `
		INSERT INTO showtimes (show_id, theater_id, screen_id, label, starts_at, base_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, showId, theaterId, screenId, TestShowtimeLabel, startsAt, "12.00").Scan(&showtimeId)
	require.NoError(t, err)

	return showId, theaterId, showtimeId
}

func truncateAll(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(), `
		TRUNCATE bookings, showtimes, seats, screens, theaters, shows, tokens, users RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
}
