package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	appvalidator "github.com/metinatakli/movie-booking-system/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrMethodNotAllowed   = "The %s method is not supported for this resource"
	ErrUnauthorizedAccess = "You must be authenticated to access this resource"
	ErrInvalidCredentials = "Invalid authentication credentials"
	ErrInvalidToken       = "Invalid or missing authentication token"
	ErrForbidden          = "Your user account doesn't have the necessary permissions to access this resource"
	ErrRateLimitExceeded  = "Rate limit exceeded"
	ErrFailedValidation   = "One or more fields have invalid values"
	ErrInvalidInput       = "invalid input data"
	ErrSlotInactive       = "The slot is not available for booking"
	ErrSeatConflict       = "One or more of the selected seats are already booked"
	ErrSlotOverlap        = "The slot overlaps with another slot in the same cinema"
	ErrBookingNotFound    = "Booking not found or cannot be cancelled"
	ErrCutoffViolation    = "Bookings can only be cancelled at least 4 hours before showtime"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

// errorResponse sends a JSON-formatted error with a stable code and message.
func (app *Application) errorResponse(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	code api.ErrorCode,
	message string) {

	resp := api.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, api.InternalErrorCode, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, api.NotFoundCode, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf(ErrMethodNotAllowed, r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, api.NotFoundCode, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, api.ValidationErrorCode, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, api.UnauthorizedCode, ErrUnauthorizedAccess)
}

func (app *Application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, api.UnauthorizedCode, ErrInvalidCredentials)
}

func (app *Application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, api.UnauthorizedCode, ErrInvalidToken)
}

func (app *Application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, api.ForbiddenCode, ErrForbidden)
}

func (app *Application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, api.RateLimitedCode, ErrRateLimitExceeded)
}

// failedValidationResponse reports request body or parameter validation
// failures field by field.
func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Code:             api.ValidationErrorCode,
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, len(validationErrs)),
	}

	for i, fieldErr := range validationErrs {
		resp.ValidationErrors[i] = api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	err = app.writeJSON(w, http.StatusBadRequest, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// domainErrorResponse maps booking and scheduling errors to their HTTP form.
// Anything it does not recognise is a server error.
func (app *Application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrSlotInactive):
		app.errorResponse(w, r, http.StatusBadRequest, api.SlotInactiveCode, ErrSlotInactive)
	case errors.Is(err, domain.ErrSeatConflict):
		app.errorResponse(w, r, http.StatusBadRequest, api.SeatConflictCode, ErrSeatConflict)
	case errors.Is(err, domain.ErrSlotOverlap):
		app.errorResponse(w, r, http.StatusBadRequest, api.SlotOverlapCode, ErrSlotOverlap)
	case errors.Is(err, domain.ErrCutoffViolation):
		app.errorResponse(w, r, http.StatusBadRequest, api.CutoffViolationCode, ErrCutoffViolation)
	case errors.Is(err, domain.ErrBookingNotFound):
		app.errorResponse(w, r, http.StatusNotFound, api.NotFoundCode, ErrBookingNotFound)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
