package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/oapi-codegen/runtime/types"
)

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	var params api.GetMoviesParams

	err := errors.Join(
		bindPagination(r, &params.PaginationParams),
		bindQuery(r, "language", &params.Language),
		bindQuery(r, "genre", &params.Genre),
		bindQuery(r, "releaseDate", &params.ReleaseDate),
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

	movies, metadata, err := app.movieRepo.GetAll(r.Context(), toMovieFilters(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies:   make([]api.MovieSummary, len(movies)),
		Metadata: toApiMetadata(metadata),
	}

	for i, movie := range movies {
		resp.Movies[i] = toMovieSummary(movie)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := app.movieRepo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.MovieDetailResponse{
		MovieSummary: toMovieSummary(*movie),
		Description:  movie.Description,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetMovieSlots lists a movie's showtimes on one day, grouped by cinema. For
// the current day only showtimes that have not started are included.
func (app *Application) GetMovieSlots(w http.ResponseWriter, r *http.Request) {
	var params api.GetMovieSlotsParams

	err := bindQuery(r, "date", &params.Date)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	now := app.now().UTC()
	today := startOfDay(now)

	day := today
	if params.Date != nil {
		day = startOfDay(params.Date.Time)
	}

	if day.Before(today) {
		app.badRequestResponse(w, r, errors.New("date cannot be in the past"))
		return
	}

	movie, err := app.movieRepo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	from := day
	if from.Before(now) {
		from = now
	}
	to := day.AddDate(0, 0, 1).Add(-time.Microsecond)

	slots, err := app.slotRepo.GetByMovieBetween(r.Context(), movie.ID, from, to)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieSlotsResponse{
		Movie:   toMovieSummary(*movie),
		Date:    types.Date{Time: day},
		Cinemas: groupSlotsByCinema(slots),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieFilters(params api.GetMoviesParams) domain.MovieFilters {
	filters := domain.MovieFilters{
		Pagination: toPagination(params.PaginationParams),
	}

	if params.Language != nil {
		filters.Languages = splitList(*params.Language)
	}
	if params.Genre != nil {
		filters.Genres = splitList(*params.Genre)
	}
	if params.ReleaseDate != nil {
		releasedAfter := params.ReleaseDate.Time
		filters.ReleasedAfter = &releasedAfter
	}

	return filters
}

func toMovieSummary(movie domain.Movie) api.MovieSummary {
	return api.MovieSummary{
		Id:              movie.ID,
		Name:            movie.Name,
		Slug:            movie.Slug,
		PosterUrl:       movie.PosterUrl,
		DurationMinutes: int(movie.Duration / time.Minute),
		ReleaseDate:     types.Date{Time: movie.ReleaseDate},
		Languages:       nonNil(movie.Languages),
		Genres:          nonNil(movie.Genres),
	}
}

func groupSlotsByCinema(slots []domain.SlotDetail) []api.CinemaSlots {
	groups := make([]api.CinemaSlots, 0)
	index := make(map[int]int)

	for _, slot := range slots {
		i, ok := index[slot.CinemaID]
		if !ok {
			i = len(groups)
			index[slot.CinemaID] = i
			groups = append(groups, api.CinemaSlots{
				Cinema: toCinemaSummary(slot.Cinema),
				Slots:  make([]api.SlotTime, 0),
			})
		}

		groups[i].Slots = append(groups[i].Slots, toSlotTime(slot.Slot))
	}

	return groups
}

func toSlotTime(slot domain.Slot) api.SlotTime {
	return api.SlotTime{
		Id:       slot.ID,
		DateTime: slot.DateTime,
		Language: slot.Language,
		Price:    slot.Price.StringFixed(2),
	}
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
