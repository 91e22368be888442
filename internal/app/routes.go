package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-booking-system/internal/metrics"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(app.injectLogger)
	r.Use(app.rateLimit)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/openapi.yaml", app.GetOpenAPISpec)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", app.RegisterUser)
		r.Post("/login", app.Login)
		r.Post("/logout", app.Logout)
	})

	r.Get("/movies", app.GetMovies)
	r.Get("/movies/{slug}", app.GetMovie)
	r.Get("/movies/{slug}/slots", app.GetMovieSlots)

	r.Get("/cinemas", app.GetCinemas)
	r.Get("/cinemas/{slug}/slots", app.GetCinemaSlots)

	r.Get("/slots/{slotId}", app.GetSlot)
	r.Get("/slots/{slotId}/seats", app.GetBookedSeats)

	r.Group(func(r chi.Router) {
		r.Use(app.requireStaff)

		r.Post("/slots", app.CreateSlot)
		r.Put("/slots/{slotId}", app.UpdateSlot)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.Post("/bookings", app.CreateBooking)
		r.Get("/bookings/history", app.GetBookingHistory)
		r.Get("/bookings/{bookingId}", app.GetBooking)
		r.Patch("/bookings/{bookingId}/cancel", app.CancelBooking)

		r.Get("/users/me", app.GetCurrentUser)
	})

	return r
}
