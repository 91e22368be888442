package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

type PostgresCinemaRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCinemaRepository(db *pgxpool.Pool) *PostgresCinemaRepository {
	return &PostgresCinemaRepository{
		db: db,
	}
}

func (p *PostgresCinemaRepository) GetAll(
	ctx context.Context,
	filters domain.CinemaFilters) ([]domain.Cinema, *domain.Metadata, error) {

	query := `
		SELECT count(*) OVER(), id, name, slug, location, city, seat_rows, seats_per_row
		FROM cinemas
		WHERE ($1 = '' OR lower(city) = lower($1))
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, filters.City, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	cinemas := []domain.Cinema{}

	for rows.Next() {
		var cinema domain.Cinema

		err := rows.Scan(
			&totalRecords,
			&cinema.ID,
			&cinema.Name,
			&cinema.Slug,
			&cinema.Location,
			&cinema.City,
			&cinema.Rows,
			&cinema.SeatsPerRow,
		)
		if err != nil {
			return nil, nil, err
		}

		cinemas = append(cinemas, cinema)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	return cinemas, domain.NewMetadata(totalRecords, filters.Pagination), nil
}

func (p *PostgresCinemaRepository) GetBySlug(ctx context.Context, slug string) (*domain.Cinema, error) {
	query := `
		SELECT id, name, slug, location, city, seat_rows, seats_per_row
		FROM cinemas
		WHERE slug = $1
	`

	var cinema domain.Cinema

	err := p.db.QueryRow(ctx, query, slug).Scan(
		&cinema.ID,
		&cinema.Name,
		&cinema.Slug,
		&cinema.Location,
		&cinema.City,
		&cinema.Rows,
		&cinema.SeatsPerRow,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &cinema, nil
}
