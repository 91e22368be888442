package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/mocks"
	"github.com/metinatakli/movie-booking-system/internal/validator"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config:         Config{Env: "test"},
		validator:      validator.NewValidator(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionManager: scs.New(),
		tokens:         auth.NewTokenManager(testSecret, time.Hour),
		limiter:        newClientLimiter(1, 1),
		now:            func() time.Time { return testNow },
		userRepo:       &mocks.MockUserRepo{},
		movieRepo:      &mocks.MockMovieRepo{},
		cinemaRepo:     &mocks.MockCinemaRepo{},
		slotRepo:       &mocks.MockSlotRepo{},
		bookingService: &mocks.MockBookingService{},
		slotService:    &mocks.MockSlotService{},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func setupTestSession(t *testing.T, app *Application, r *http.Request, userId int) *http.Request {
	ctx, err := app.sessionManager.Load(r.Context(), "session")
	if err != nil {
		t.Errorf("Failed to load session: %v", err)
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)

	return r.WithContext(ctx)
}

func authorize(t *testing.T, app *Application, r *http.Request, userId int) {
	token, _, err := app.tokens.Issue(auth.Identity{UserID: userId})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	r.Header.Set("Authorization", "Bearer "+token)
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

type errorExpectation struct {
	wantStatus     int
	wantCode       api.ErrorCode
	wantErrMessage string
}

// checkErrorResponse matches wantErrMessage against the top level message or
// any field issue of a validation error.
func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt errorExpectation) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	var resp api.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantCode != "" && resp.Code != tt.wantCode {
		t.Errorf("Error code = %v, want %v", resp.Code, tt.wantCode)
	}

	if tt.wantErrMessage == "" || resp.Message == tt.wantErrMessage {
		return
	}

	for _, vErr := range resp.ValidationErrors {
		if vErr.Issue == tt.wantErrMessage {
			return
		}
	}

	t.Errorf("Error message = %q (issues %v), want %q", resp.Message, resp.ValidationErrors, tt.wantErrMessage)
}

func ptr[T any](v T) *T {
	return &v
}
