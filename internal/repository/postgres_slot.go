package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const (
	slotOverlapConstraint = "slots_no_overlap_excl"
	slotUniqueConstraint  = "slots_date_time_movie_cinema_key"
)

type PostgresSlotRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSlotRepository(db *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{
		db: db,
	}
}

func (p *PostgresSlotRepository) Create(
	ctx context.Context,
	slot *domain.Slot,
	validate func(domain.SlotSchedule) error) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		schedule, err := p.lockSchedule(ctx, tx, slot)
		if err != nil {
			return err
		}

		err = validate(*schedule)
		if err != nil {
			return err
		}

		slot.Duration = schedule.Movie.Duration

		query := `
			INSERT INTO slots (cinema_id, movie_id, language, date_time, ends_at, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		err = tx.QueryRow(
			ctx,
			query,
			slot.CinemaID,
			slot.MovieID,
			slot.Language,
			slot.DateTime,
			slot.EndsAt(),
			slot.Price).Scan(&slot.ID)

		return mapSlotWriteError(err)
	})
}

func (p *PostgresSlotRepository) Update(
	ctx context.Context,
	slot *domain.Slot,
	validate func(domain.SlotSchedule) error) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var id int

		err := tx.QueryRow(ctx, `SELECT id FROM slots WHERE id = $1 FOR UPDATE`, slot.ID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		schedule, err := p.lockSchedule(ctx, tx, slot)
		if err != nil {
			return err
		}

		err = validate(*schedule)
		if err != nil {
			return err
		}

		err = p.checkBookedSeatsFit(ctx, tx, slot)
		if err != nil {
			return err
		}

		slot.Duration = schedule.Movie.Duration

		query := `
			UPDATE slots
			SET cinema_id = $2, movie_id = $3, language = $4, date_time = $5, ends_at = $6, price = $7,
				updated_at = NOW()
			WHERE id = $1
		`

		_, err = tx.Exec(
			ctx,
			query,
			slot.ID,
			slot.CinemaID,
			slot.MovieID,
			slot.Language,
			slot.DateTime,
			slot.EndsAt(),
			slot.Price)

		return mapSlotWriteError(err)
	})
}

// checkBookedSeatsFit rejects moving a slot to a cinema whose grid does not
// contain every seat still held on it. The slot row is locked by the caller,
// which keeps new bookings out until the update commits.
func (p *PostgresSlotRepository) checkBookedSeatsFit(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error {
	query := `
		SELECT COUNT(*)
		FROM booking_seats bs
		JOIN cinemas c ON c.id = $2
		WHERE bs.slot_id = $1 AND bs.active
			AND (bs.seat_row > c.seat_rows OR bs.seat_number > c.seats_per_row)
	`

	var outside int

	err := tx.QueryRow(ctx, query, slot.ID, slot.CinemaID).Scan(&outside)
	if err != nil {
		return err
	}

	if outside > 0 {
		return fmt.Errorf("%w: %d booked seats do not exist in cinema %d", domain.ErrValidation, outside, slot.CinemaID)
	}

	return nil
}

// lockSchedule serializes schedule changes per cinema by locking the cinema
// row, then loads the candidate's movie and its neighbouring slots.
func (p *PostgresSlotRepository) lockSchedule(
	ctx context.Context,
	tx pgx.Tx,
	slot *domain.Slot) (*domain.SlotSchedule, error) {

	var cinemaId int

	err := tx.QueryRow(ctx, `SELECT id FROM cinemas WHERE id = $1 FOR UPDATE`, slot.CinemaID).Scan(&cinemaId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cinema %d: %w", slot.CinemaID, domain.ErrRecordNotFound)
		}

		return nil, err
	}

	var (
		schedule        domain.SlotSchedule
		durationMinutes int
	)

	query := `
		SELECT id, name, slug, duration_minutes, release_date, languages
		FROM movies
		WHERE id = $1
	`

	err = tx.QueryRow(ctx, query, slot.MovieID).Scan(
		&schedule.Movie.ID,
		&schedule.Movie.Name,
		&schedule.Movie.Slug,
		&durationMinutes,
		&schedule.Movie.ReleaseDate,
		&schedule.Movie.Languages,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("movie %d: %w", slot.MovieID, domain.ErrRecordNotFound)
		}

		return nil, err
	}

	schedule.Movie.Duration = time.Duration(durationMinutes) * time.Minute

	prevQuery := `
		SELECT id, cinema_id, movie_id, language, date_time, ends_at, price
		FROM slots
		WHERE cinema_id = $1 AND date_time <= $2 AND id <> $3
		ORDER BY date_time DESC
		LIMIT 1
	`

	schedule.Prev, err = scanNeighbour(tx.QueryRow(ctx, prevQuery, slot.CinemaID, slot.DateTime, slot.ID))
	if err != nil {
		return nil, err
	}

	nextQuery := `
		SELECT id, cinema_id, movie_id, language, date_time, ends_at, price
		FROM slots
		WHERE cinema_id = $1 AND date_time > $2 AND id <> $3
		ORDER BY date_time ASC
		LIMIT 1
	`

	schedule.Next, err = scanNeighbour(tx.QueryRow(ctx, nextQuery, slot.CinemaID, slot.DateTime, slot.ID))
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}

func scanNeighbour(row pgx.Row) (*domain.Slot, error) {
	var (
		slot   domain.Slot
		endsAt time.Time
	)

	err := row.Scan(
		&slot.ID,
		&slot.CinemaID,
		&slot.MovieID,
		&slot.Language,
		&slot.DateTime,
		&endsAt,
		&slot.Price,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	slot.Duration = endsAt.Sub(slot.DateTime)

	return &slot, nil
}

func mapSlotWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case isExclusionViolation(err, slotOverlapConstraint), isUniqueViolation(err, slotUniqueConstraint):
		return domain.ErrSlotOverlap
	case isForeignKeyViolation(err):
		return domain.ErrRecordNotFound
	default:
		return err
	}
}

const slotDetailSelect = `
	SELECT
		s.id,
		s.cinema_id,
		s.movie_id,
		s.language,
		s.date_time,
		s.ends_at,
		s.price,
		m.name,
		m.slug,
		c.id,
		c.name,
		c.slug,
		c.location,
		c.city,
		c.seat_rows,
		c.seats_per_row
	FROM slots s
	JOIN movies m ON m.id = s.movie_id
	JOIN cinemas c ON c.id = s.cinema_id
`

func (p *PostgresSlotRepository) GetById(ctx context.Context, id int) (*domain.SlotDetail, error) {
	query := slotDetailSelect + `WHERE s.id = $1`

	slot, err := scanSlotDetail(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return slot, nil
}

func (p *PostgresSlotRepository) GetByMovieBetween(
	ctx context.Context,
	movieId int,
	from, to time.Time) ([]domain.SlotDetail, error) {

	query := slotDetailSelect + `
		WHERE s.movie_id = $1 AND s.date_time >= $2 AND s.date_time <= $3
		ORDER BY s.date_time, c.name
	`

	return p.querySlotDetails(ctx, query, movieId, from, to)
}

func (p *PostgresSlotRepository) GetByCinemaFrom(
	ctx context.Context,
	cinemaId int,
	from time.Time) ([]domain.SlotDetail, error) {

	query := slotDetailSelect + `
		WHERE s.cinema_id = $1 AND s.date_time >= $2
		ORDER BY s.date_time
	`

	return p.querySlotDetails(ctx, query, cinemaId, from)
}

func (p *PostgresSlotRepository) querySlotDetails(
	ctx context.Context,
	query string,
	args ...any) ([]domain.SlotDetail, error) {

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.SlotDetail, 0)

	for rows.Next() {
		slot, err := scanSlotDetail(rows)
		if err != nil {
			return nil, err
		}

		slots = append(slots, *slot)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

func scanSlotDetail(row pgx.Row) (*domain.SlotDetail, error) {
	var (
		slot   domain.SlotDetail
		endsAt time.Time
	)

	err := row.Scan(
		&slot.ID,
		&slot.CinemaID,
		&slot.MovieID,
		&slot.Language,
		&slot.DateTime,
		&endsAt,
		&slot.Price,
		&slot.MovieName,
		&slot.MovieSlug,
		&slot.Cinema.ID,
		&slot.Cinema.Name,
		&slot.Cinema.Slug,
		&slot.Cinema.Location,
		&slot.Cinema.City,
		&slot.Cinema.Rows,
		&slot.Cinema.SeatsPerRow,
	)
	if err != nil {
		return nil, err
	}

	slot.Duration = endsAt.Sub(slot.DateTime)

	return &slot, nil
}
