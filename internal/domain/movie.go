package domain

import (
	"context"
	"slices"
	"time"
)

type Movie struct {
	ID          int
	Name        string
	Slug        string
	Description string
	Duration    time.Duration
	PosterUrl   string
	ReleaseDate time.Time
	Languages   []string
	Genres      []string
}

func (m Movie) SupportsLanguage(language string) bool {
	return slices.Contains(m.Languages, language)
}

// ReleasedBy reports whether a showing at t is on or after the release day.
func (m Movie) ReleasedBy(t time.Time) bool {
	y, mo, d := t.UTC().Date()
	showDay := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)

	ry, rmo, rd := m.ReleaseDate.Date()
	releaseDay := time.Date(ry, rmo, rd, 0, 0, 0, 0, time.UTC)

	return !showDay.Before(releaseDay)
}

type MovieFilters struct {
	Pagination
	Languages     []string
	Genres        []string
	ReleasedAfter *time.Time
}

type MovieRepository interface {
	GetAll(ctx context.Context, filters MovieFilters) ([]Movie, *Metadata, error)
	GetBySlug(ctx context.Context, slug string) (*Movie, error)
}
