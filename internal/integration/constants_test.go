package integration_test

const (
	TestUserFirstName = "John"
	TestUserLastName  = "Doe"
	TestUserEmail     = "test@example.com"
	TestUserPassword  = "Test123!@#"

	TestShowTitle       = "Test Show"
	TestShowDescription = "A test show description."
	TestShowLanguage    = "English"
	TestShowDuration    = 120
	TestShowPosterUrl   = "https://example.com/poster.jpg"
	TestShowRating      = 7.5

	TestTheaterName    = "Test Theater"
	TestTheaterAddress = "1 Test Street"
	TestTheaterCity    = "Testville"

	TestShowtimeLabel = "7:30 PM"
	TestShowtimeDate  = "2026-09-01"
)

var (
	TestShowGenres       = []string{"Action", "Drama"}
	TestTheaterAmenities = []string{"IMAX", "Parking"}
)
