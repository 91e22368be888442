package domain

import "context"

type Cinema struct {
	ID          int
	Name        string
	Slug        string
	Location    string
	City        string
	Rows        int
	SeatsPerRow int
}

// Contains reports whether the seat lies inside the cinema's 1-based grid.
func (c Cinema) Contains(seat SeatPosition) bool {
	return seat.Row >= 1 && seat.Row <= c.Rows &&
		seat.Number >= 1 && seat.Number <= c.SeatsPerRow
}

type CinemaFilters struct {
	Pagination
	City string
}

type CinemaRepository interface {
	GetAll(ctx context.Context, filters CinemaFilters) ([]Cinema, *Metadata, error)
	GetBySlug(ctx context.Context, slug string) (*Cinema, error)
}
