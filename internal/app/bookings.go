package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	booking, err := app.bookingService.Book(r.Context(), userId, input.SlotId, toDomainSeats(input.Seats))
	if err != nil {
		if !errors.Is(err, domain.ErrSeatConflict) && !errors.Is(err, domain.ErrSlotInactive) &&
			!errors.Is(err, domain.ErrValidation) {

			logger.Error("failed to create booking", "slot_id", input.SlotId, "error", err)
		}

		app.domainErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%d", booking.ID))

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(*booking), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingHistory(w http.ResponseWriter, r *http.Request) {
	var params api.PaginationParams

	err := bindPagination(r, &params)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	bookings, metadata, err := app.bookingService.ListForUser(r.Context(), userId, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingListResponse{
		Bookings: make([]api.BookingResponse, len(bookings)),
		Metadata: toApiMetadata(metadata),
	}

	for i, booking := range bookings {
		resp.Bookings[i] = toBookingResponse(booking)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIntParam(r, "bookingId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	booking, err := app.bookingService.Get(r.Context(), app.contextGetUserId(r), bookingId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(*booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIntParam(r, "bookingId")
	if err != nil {
		app.errorResponse(w, r, http.StatusNotFound, api.NotFoundCode, ErrBookingNotFound)
		return
	}

	booking, err := app.bookingService.Cancel(r.Context(), app.contextGetUserId(r), bookingId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.CancelBookingResponse{
		Id:     booking.ID,
		Status: api.BookingStatus(booking.Status.String()),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toDomainSeats(seats []api.Seat) []domain.SeatPosition {
	positions := make([]domain.SeatPosition, len(seats))

	for i, seat := range seats {
		positions[i] = domain.SeatPosition{Row: seat.Row, Number: seat.Number}
	}

	return positions
}

func toApiSeats(seats []domain.SeatPosition) []api.Seat {
	apiSeats := make([]api.Seat, len(seats))

	for i, seat := range seats {
		apiSeats[i] = api.Seat{Row: seat.Row, Number: seat.Number}
	}

	return apiSeats
}

func toBookingResponse(booking domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Id:           booking.ID,
		SlotId:       booking.SlotID,
		Status:       api.BookingStatus(booking.Status.String()),
		Seats:        toApiSeats(booking.Seats),
		TotalPrice:   booking.TotalPrice().StringFixed(2),
		SlotDateTime: booking.SlotDateTime,
		CreatedAt:    booking.CreatedAt,
	}
}

func toPagination(params api.PaginationParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
