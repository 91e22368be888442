package integration_test

import "time"

const (
	// users_up.sql
	TestUserId      = 1
	OtherUserId     = 2
	StaffUserId     = 3
	TestUserEmail   = "test@example.com"
	TestUserPass    = "Test123!@#"
	TestUserFirst   = "John"
	TestUserLast    = "Doe"
	UnknownUserMail = "nobody@example.com"

	// catalog_up.sql
	TestMovieId       = 1
	TestMovieSlug     = "test-movie"
	TestMovieLanguage = "English"
	TestMovieDuration = 120 * time.Minute
	ShortMovieId      = 2
	ShortMovieSlug    = "short-movie"
	ShortDuration     = 90 * time.Minute
	TestCinemaId      = 1
	TestCinemaSlug    = "grand-hall"
	TestCinemaRows    = 5
	TestCinemaPerRow  = 8
	OtherCinemaId     = 2
)

// upcoming is a showtime far enough ahead that it is outside the
// cancellation cutoff, aligned to the hour so overlaps are easy to reason
// about.
func upcoming() time.Time {
	return time.Now().UTC().Truncate(time.Hour).Add(72 * time.Hour)
}
