package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(
	method, path string,
	body io.Reader,
	headers map[string]string,
	cookies []*http.Cookie) (*http.Request, error) {

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

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore nondeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func decodeBody[T any](t testing.TB, res *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	sql, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(sql))
	require.NoError(t, err, "failed to execute %s", path)
}

func flushAllCache(t testing.TB, client *redis.Client) {
	t.Helper()

	require.NoError(t, client.FlushAll(context.Background()).Err())
}

// resetState empties every table and loads the shared catalogue fixtures.
func resetState(t testing.TB, app *TestApp) {
	t.Helper()

	executeSQLFile(t, app.DB, "testdata/reset.sql")
	flushAllCache(t, app.RedisClient)

	executeSQLFile(t, app.DB, "testdata/users_up.sql")
	executeSQLFile(t, app.DB, "testdata/catalog_up.sql")
}

func bearer(t testing.TB, app *TestApp, userId int) map[string]string {
	t.Helper()

	token, _, err := app.Tokens.Issue(auth.Identity{UserID: userId})
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token}
}

// insertSlot schedules a showtime directly, bypassing the overlap checks.
func insertSlot(
	t testing.TB,
	db *pgxpool.Pool,
	cinemaId, movieId int,
	start time.Time,
	duration time.Duration,
	price string) int {

	t.Helper()

	var id int
	err := db.QueryRow(
		context.Background(),
		`INSERT INTO slots (cinema_id, movie_id, language, date_time, ends_at, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		cinemaId,
		movieId,
		TestMovieLanguage,
		start,
		start.Add(duration),
		decimal.RequireFromString(price),
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func activeSeatCount(t testing.TB, db *pgxpool.Pool, slotId int) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		context.Background(),
		`SELECT COUNT(*) FROM booking_seats WHERE slot_id = $1 AND active`,
		slotId,
	).Scan(&count)
	require.NoError(t, err)

	return count
}

func seatsBody(slotId int, seats ...[2]int) string {
	body := fmt.Sprintf(`{"slotId": %d, "seats": [`, slotId)
	for i, seat := range seats {
		if i > 0 {
			body += ", "
		}
		body += fmt.Sprintf(`{"row": %d, "number": %d}`, seat[0], seat[1])
	}

	return body + "]}"
}
