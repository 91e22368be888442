package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/metinatakli/movie-booking-system/internal/auth"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
)

func (s sessionKey) String() string {
	return string(s)
}

type contextKey string

const (
	identityContextKey = contextKey("identity")
	loggerContextKey   = contextKey("logger")
)

func contextSetIdentity(r *http.Request, identity auth.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityContextKey, identity)
	return r.WithContext(ctx)
}

func (app *Application) contextGetIdentity(r *http.Request) auth.Identity {
	identity, ok := r.Context().Value(identityContextKey).(auth.Identity)
	if !ok {
		panic("missing identity from context")
	}

	return identity
}

func (app *Application) contextGetUserId(r *http.Request) int {
	return app.contextGetIdentity(r).UserID
}

func contextSetLogger(r *http.Request, logger *slog.Logger) *http.Request {
	ctx := context.WithValue(r.Context(), loggerContextKey, logger)
	return r.WithContext(ctx)
}

// contextGetLogger returns the request-scoped logger, or the application
// logger outside of a request chain.
func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}
