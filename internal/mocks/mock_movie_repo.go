package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-system/internal/domain"
)

type MockMovieRepo struct {
	domain.MovieRepository
	GetAllFunc    func(ctx context.Context, filters domain.MovieFilters) ([]domain.Movie, *domain.Metadata, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*domain.Movie, error)
}

func (m *MockMovieRepo) GetAll(ctx context.Context, filters domain.MovieFilters) ([]domain.Movie, *domain.Metadata, error) {
	return m.GetAllFunc(ctx, filters)
}

func (m *MockMovieRepo) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	return m.GetBySlugFunc(ctx, slug)
}

type MockCinemaRepo struct {
	domain.CinemaRepository
	GetAllFunc    func(ctx context.Context, filters domain.CinemaFilters) ([]domain.Cinema, *domain.Metadata, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*domain.Cinema, error)
}

func (m *MockCinemaRepo) GetAll(ctx context.Context, filters domain.CinemaFilters) ([]domain.Cinema, *domain.Metadata, error) {
	return m.GetAllFunc(ctx, filters)
}

func (m *MockCinemaRepo) GetBySlug(ctx context.Context, slug string) (*domain.Cinema, error) {
	return m.GetBySlugFunc(ctx, slug)
}
