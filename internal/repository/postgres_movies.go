package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

const movieColumns = `id, name, slug, description, duration_minutes, poster_url, release_date, languages, genres`

func (p *PostgresMovieRepository) GetAll(
	ctx context.Context,
	filters domain.MovieFilters) ([]domain.Movie, *domain.Metadata, error) {

	query := `
		SELECT count(*) OVER(), ` + movieColumns + `
		FROM movies
		WHERE (cardinality($1::text[]) = 0 OR languages && $1::text[])
			AND (cardinality($2::text[]) = 0 OR genres && $2::text[])
			AND ($3::date IS NULL OR release_date >= $3::date)
		ORDER BY release_date DESC, id
		LIMIT $4 OFFSET $5
	`

	languages := filters.Languages
	if languages == nil {
		languages = []string{}
	}

	genres := filters.Genres
	if genres == nil {
		genres = []string{}
	}

	rows, err := p.db.Query(
		ctx,
		query,
		languages,
		genres,
		filters.ReleasedAfter,
		filters.Limit(),
		filters.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	movies := []domain.Movie{}

	for rows.Next() {
		movie, err := scanMovie(rows, &totalRecords)
		if err != nil {
			return nil, nil, err
		}

		movies = append(movies, *movie)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	return movies, domain.NewMetadata(totalRecords, filters.Pagination), nil
}

func (p *PostgresMovieRepository) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE slug = $1`

	movie, err := scanMovie(p.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return movie, nil
}

func scanMovie(row pgx.Row, leading ...any) (*domain.Movie, error) {
	var (
		movie           domain.Movie
		durationMinutes int
	)

	dest := append(leading,
		&movie.ID,
		&movie.Name,
		&movie.Slug,
		&movie.Description,
		&durationMinutes,
		&movie.PosterUrl,
		&movie.ReleaseDate,
		&movie.Languages,
		&movie.Genres,
	)

	err := row.Scan(dest...)
	if err != nil {
		return nil, err
	}

	movie.Duration = time.Duration(durationMinutes) * time.Minute

	return &movie, nil
}
