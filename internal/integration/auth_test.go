package integration_test

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	BaseSuite
}

func TestAuthSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(AuthTestSuite))
}

func (s *AuthTestSuite) TestRegisterUser() {
	scenarios := []Scenario{
		{
			Name:             "returns 400 for request with malformed JSON",
			Method:           "POST",
			URL:              "/auth/register",
			Body:             strings.NewReader(`{"bad":"json"`),
			ExpectedStatus:   400,
			ExpectedResponse: `{"message": "body contains badly-formed JSON"}`,
		},
		{
			Name:   "returns 422 for invalid input data",
			Method: "POST",
			URL:    "/auth/register",
			Body: strings.NewReader(`{
				"email": "invalid-email",
				"firstName": "J",
				"lastName": "D",
				"password": "123"
			}`),
			ExpectedStatus: 422,
			ExpectedResponse: `{
				"message": "Validation failed",
				"validationErrors": [
					{"field": "FirstName", "issue": "must be at least 2 characters long"},
					{"field": "LastName", "issue": "must be at least 2 characters long"},
					{"field": "Email", "issue": "must be a valid email address"},
					{"field": "Password", "issue": "must be 8-25 characters and include at least one uppercase letter, one lowercase letter, one number, and one special character (!@#$%^&*)"}
				]
			}`,
		},
		{
			Name:   "returns 400 when email already exists",
			Method: "POST",
			URL:    "/auth/register",
			Body: strings.NewReader(`{
				"email": "test@example.com",
				"firstName": "John",
				"lastName": "Doe",
				"password": "Test123!@#"
			}`),
			ExpectedStatus: 400,
			ExpectedResponse: `{
				"message": "invalid input data"
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				truncateAll(t, app.DB)
				seedUser(t, app.DB)
				app.Mailer.Reset()
			},
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var userCount int
				err := app.DB.QueryRow(context.Background(),
					"SELECT COUNT(*) FROM users WHERE email = $1", TestUserEmail).Scan(&userCount)
				require.NoError(t, err)
				require.Equal(t, 1, userCount, "should not create a new user")

				require.Empty(t, app.Mailer.GetSentEmails(), "should not send any emails")
			},
		},
		{
			Name:   "successfully registers a new user",
			Method: "POST",
			URL:    "/auth/register",
			Body: strings.NewReader(`{
				"email": "new@example.com",
				"firstName": "Jane",
				"lastName": "Doe",
				"password": "Test123!@#"
			}`),
			ExpectedStatus: 202,
			ExpectedResponse: `{
				"id": 1,
				"firstName": "Jane",
				"lastName": "Doe",
				"email": "new@example.com",
				"activated": false,
				"version": 1
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				truncateAll(t, app.DB)
				app.Mailer.Reset()
			},
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var tokenCount int
				err := app.DB.QueryRow(context.Background(), `
					SELECT COUNT(*) FROM tokens
					WHERE user_id = (SELECT id FROM users WHERE email = $1) AND scope = $2
				`, "new@example.com", domain.UserActivationScope).Scan(&tokenCount)
				require.NoError(t, err)
				require.Equal(t, 1, tokenCount, "should create one activation token")

				require.Eventually(t, func() bool {
					return len(app.Mailer.GetSentEmails()) == 1
				}, 2*time.Second, 50*time.Millisecond, "should send the welcome email")
			},
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *AuthTestSuite) TestActivateUser() {
	activationToken := "r8zEhnVzNTZDf8WypfYBTU_FkFUm9jXnTmMrK-WuFQ8"

	seedToken := func(t testing.TB, app *TestApp, userId int) {
		hash := sha256.Sum256([]byte(activationToken))

		_, err := app.DB.Exec(context.Background(), `
			INSERT INTO tokens (hash, user_id, expiry, scope)
			VALUES ($1, $2, $3, $4)
		`, hash[:], userId, time.Now().Add(domain.ActivationTokenTTL), domain.UserActivationScope)
		require.NoError(t, err)
	}

	scenarios := []Scenario{
		{
			Name:           "returns 404 for unknown token",
			Method:         "PUT",
			URL:            "/auth/activate",
			Body:           strings.NewReader(`{"token": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`),
			ExpectedStatus: 404,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				truncateAll(t, app.DB)
			},
		},
		{
			Name:           "activates a user with a valid token",
			Method:         "PUT",
			URL:            "/auth/activate",
			Body:           strings.NewReader(`{"token": "` + activationToken + `"}`),
			ExpectedStatus: 200,
			ExpectedResponse: `{
				"activated": true
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				truncateAll(t, app.DB)

				var userId int
				var user domain.User
				require.NoError(t, user.Password.Set(TestUserPassword))

				err := app.DB.QueryRow(context.Background(), `
					INSERT INTO users (first_name, last_name, email, password_hash, activated)
					VALUES ($1, $2, $3, $4, false)
					RETURNING id
				`, TestUserFirstName, TestUserLastName, TestUserEmail, user.Password.Hash).Scan(&userId)
				require.NoError(t, err)

				seedToken(t, app, userId)
			},
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var activated bool
				err := app.DB.QueryRow(context.Background(),
					"SELECT activated FROM users WHERE email = $1", TestUserEmail).Scan(&activated)
				require.NoError(t, err)
				require.True(t, activated)
			},
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *AuthTestSuite) TestLoginAndLogout() {
	s.Run("login with valid credentials sets a session cookie", func() {
		truncateAll(s.T(), s.app.DB)
		seedUser(s.T(), s.app.DB)

		cookie := loginUser(s.T(), s.app, TestUserEmail, TestUserPassword)
		s.NotEmpty(cookie.Value)
	})

	s.Run("login with wrong password returns 401", func() {
		truncateAll(s.T(), s.app.DB)
		seedUser(s.T(), s.app.DB)

		scenario := Scenario{
			Name:           "wrong password",
			Method:         "POST",
			URL:            "/auth/login",
			Body:           strings.NewReader(`{"email": "test@example.com", "password": "WrongPass1!"}`),
			ExpectedStatus: 401,
			ExpectedResponse: `{
				"message": "Invalid credentials"
			}`,
		}
		scenario.Run(s.T(), s.app)
	})

	s.Run("logout destroys the session", func() {
		truncateAll(s.T(), s.app.DB)
		seedUser(s.T(), s.app.DB)

		cookie := loginUser(s.T(), s.app, TestUserEmail, TestUserPassword)

		scenario := Scenario{
			Name:           "logout",
			Method:         "POST",
			URL:            "/auth/logout",
			Cookies:        []*http.Cookie{cookie},
			ExpectedStatus: 204,
		}
		scenario.Run(s.T(), s.app)

		// the old session must no longer grant access
		scenario = Scenario{
			Name:           "session gone after logout",
			Method:         "GET",
			URL:            "/users/me",
			Cookies:        []*http.Cookie{cookie},
			ExpectedStatus: 401,
		}
		scenario.Run(s.T(), s.app)
	})
}
