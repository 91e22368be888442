package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

func (app *Application) GetCinemas(w http.ResponseWriter, r *http.Request) {
	var params api.GetCinemasParams

	err := errors.Join(
		bindPagination(r, &params.PaginationParams),
		bindQuery(r, "city", &params.City),
	)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	filters := domain.CinemaFilters{Pagination: toPagination(params.PaginationParams)}
	if params.City != nil {
		filters.City = *params.City
	}

	cinemas, metadata, err := app.cinemaRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CinemaListResponse{
		Cinemas:  make([]api.CinemaSummary, len(cinemas)),
		Metadata: toApiMetadata(metadata),
	}

	for i, cinema := range cinemas {
		resp.Cinemas[i] = toCinemaSummary(cinema)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetCinemaSlots lists the upcoming showtimes of a cinema grouped by movie.
func (app *Application) GetCinemaSlots(w http.ResponseWriter, r *http.Request) {
	cinema, err := app.cinemaRepo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	slots, err := app.slotRepo.GetByCinemaFrom(r.Context(), cinema.ID, app.now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CinemaSlotsResponse{
		Cinema: toCinemaSummary(*cinema),
		Movies: groupSlotsByMovie(slots),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toCinemaSummary(cinema domain.Cinema) api.CinemaSummary {
	return api.CinemaSummary{
		Id:       cinema.ID,
		Name:     cinema.Name,
		Slug:     cinema.Slug,
		Location: cinema.Location,
		City:     cinema.City,
	}
}

func groupSlotsByMovie(slots []domain.SlotDetail) []api.MovieSlots {
	groups := make([]api.MovieSlots, 0)
	index := make(map[int]int)

	for _, slot := range slots {
		i, ok := index[slot.MovieID]
		if !ok {
			i = len(groups)
			index[slot.MovieID] = i
			groups = append(groups, api.MovieSlots{
				Movie: api.MovieRef{Id: slot.MovieID, Name: slot.MovieName, Slug: slot.MovieSlug},
				Slots: make([]api.SlotTime, 0),
			})
		}

		groups[i].Slots = append(groups[i].Slots, toSlotTime(slot.Slot))
	}

	return groups
}
