package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

func (app *Application) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotId, err := app.readIntParam(r, "slotId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	slot, err := app.slotService.Get(r.Context(), slotId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := toSlotResponse(slot.Slot)
	resp.MovieName = slot.MovieName
	resp.MovieSlug = slot.MovieSlug
	resp.CinemaName = slot.Cinema.Name

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetBookedSeats lists the seats of a slot held by active bookings.
func (app *Application) GetBookedSeats(w http.ResponseWriter, r *http.Request) {
	slotId, err := app.readIntParam(r, "slotId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	seats, err := app.bookingService.BookedSeats(r.Context(), slotId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.BookedSeatsResponse{
		SlotId: slotId,
		Seats:  toApiSeats(seats),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := app.readSlotRequest(w, r)
	if !ok {
		return
	}

	created, err := app.slotService.Create(r.Context(), slot)
	if err != nil {
		app.slotErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toSlotResponse(*created), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	slotId, err := app.readIntParam(r, "slotId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	slot, ok := app.readSlotRequest(w, r)
	if !ok {
		return
	}

	slot.ID = slotId

	updated, err := app.slotService.Update(r.Context(), slot)
	if err != nil {
		app.slotErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSlotResponse(*updated), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) readSlotRequest(w http.ResponseWriter, r *http.Request) (domain.Slot, bool) {
	var input api.SlotRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return domain.Slot{}, false
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return domain.Slot{}, false
	}

	// the price tag has already checked the format
	price, err := decimal.NewFromString(input.Price)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return domain.Slot{}, false
	}

	return domain.Slot{
		CinemaID: input.CinemaId,
		MovieID:  input.MovieId,
		Language: input.Language,
		DateTime: input.DateTime,
		Price:    price,
	}, true
}

func (app *Application) slotErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrSlotOverlap) {
		// the message names the conflicting neighbour's boundary
		app.errorResponse(w, r, http.StatusBadRequest, api.SlotOverlapCode, err.Error())
		return
	}

	app.domainErrorResponse(w, r, err)
}

func toSlotResponse(slot domain.Slot) api.SlotResponse {
	return api.SlotResponse{
		Id:       slot.ID,
		MovieId:  slot.MovieID,
		CinemaId: slot.CinemaID,
		Language: slot.Language,
		DateTime: slot.DateTime,
		EndsAt:   slot.EndsAt(),
		Price:    slot.Price.StringFixed(2),
	}
}
