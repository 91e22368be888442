package app

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) injectLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, contextSetLogger(r, logger))
	})
}

// rateLimit throttles state-changing requests per client address. Reads are
// never limited.
func (app *Application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.Limiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !app.limiter.allow(ip) {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuthentication resolves the caller from the session cookie or, when
// there is no session, from a bearer token.
func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
		if userId != 0 {
			app.serveAuthenticated(w, r, next, auth.Identity{UserID: userId})
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		identity, err := app.tokens.Parse(token)
		if err != nil {
			app.contextGetLogger(r).Warn("rejected bearer token", "error", err)
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		app.serveAuthenticated(w, r, next, identity)
	})
}

func (app *Application) serveAuthenticated(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	identity auth.Identity) {

	r = contextSetIdentity(r, identity)
	r = contextSetLogger(r, app.contextGetLogger(r).With("user_id", identity.UserID))

	next.ServeHTTP(w, r)
}

// requireStaff admits authenticated users whose account is currently flagged
// as staff. The flag is read from the database, not from token claims.
func (app *Application) requireStaff(next http.Handler) http.Handler {
	return app.requireAuthentication(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				app.unauthorizedAccessResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}

			return
		}

		if !user.IsStaff {
			app.contextGetLogger(r).Warn("non-staff user attempted a staff operation")
			app.forbiddenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	}))
}
