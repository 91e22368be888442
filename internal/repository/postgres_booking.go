package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const activeSeatConstraint = "booking_seats_active_slot_seat_key"

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking, now time.Time) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		// FOR SHARE holds off slot updates until this booking commits, so
		// the start time and the seat grid checked here are the ones the
		// seats are written against
		lockQuery := `
			SELECT s.date_time, c.id, c.name, c.seat_rows, c.seats_per_row
			FROM slots s
			JOIN cinemas c ON c.id = s.cinema_id
			WHERE s.id = $1
			FOR SHARE OF s
		`

		var (
			startsAt time.Time
			cinema   domain.Cinema
		)

		err := tx.QueryRow(ctx, lockQuery, booking.SlotID).Scan(
			&startsAt,
			&cinema.ID,
			&cinema.Name,
			&cinema.Rows,
			&cinema.SeatsPerRow,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrSlotInactive
			}

			return err
		}

		if !startsAt.After(now) {
			return domain.ErrSlotInactive
		}

		err = domain.ValidateSeatsInCinema(booking.Seats, cinema)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO bookings (user_id, slot_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.UserID,
			booking.SlotID,
			int(domain.BookingStatusBooked)).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
		if err != nil {
			return err
		}

		booking.SlotDateTime = startsAt

		rows := make([][]any, 0, len(booking.Seats))
		for _, seat := range booking.Seats {
			rows = append(rows, []any{
				booking.ID,
				booking.SlotID,
				seat.Row,
				seat.Number,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "slot_id", "seat_row", "seat_number"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			if isUniqueViolation(err, activeSeatConstraint) {
				return domain.ErrSeatConflict
			}

			return err
		}

		booking.Status = domain.BookingStatusBooked

		return nil
	})
}

const bookingColumns = `
	b.id,
	b.user_id,
	b.slot_id,
	b.status,
	b.created_at,
	b.updated_at,
	s.date_time,
	s.price,
	COALESCE(array_agg(bs.seat_row ORDER BY bs.seat_row, bs.seat_number)
		FILTER (WHERE bs.id IS NOT NULL), '{}'),
	COALESCE(array_agg(bs.seat_number ORDER BY bs.seat_row, bs.seat_number)
		FILTER (WHERE bs.id IS NOT NULL), '{}')
`

func (p *PostgresBookingRepository) GetByIdAndUserId(
	ctx context.Context,
	bookingId,
	userId int) (*domain.Booking, error) {

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		LEFT JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.id = $1 AND b.user_id = $2
		GROUP BY b.id, s.id
	`

	booking, err := scanBooking(p.db.QueryRow(ctx, query, bookingId, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) Cancel(ctx context.Context, bookingId, userId int, now time.Time) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings b
			SET status = $3, updated_at = NOW()
			FROM slots s
			WHERE b.id = $1 AND b.user_id = $2 AND b.status = $4
				AND s.id = b.slot_id AND s.date_time >= $5
		`

		tag, err := tx.Exec(
			ctx,
			query,
			bookingId,
			userId,
			int(domain.BookingStatusCancelled),
			int(domain.BookingStatusBooked),
			now.Add(domain.CancellationCutoff))
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return p.cancelRejection(ctx, tx, bookingId, userId)
		}

		_, err = tx.Exec(ctx, `UPDATE booking_seats SET active = FALSE WHERE booking_id = $1`, bookingId)

		return err
	})
}

// cancelRejection tells a booking whose slot moved inside the cutoff apart
// from one that is missing or was cancelled concurrently.
func (p *PostgresBookingRepository) cancelRejection(ctx context.Context, tx pgx.Tx, bookingId, userId int) error {
	var status int

	err := tx.QueryRow(
		ctx,
		`SELECT status FROM bookings WHERE id = $1 AND user_id = $2`,
		bookingId,
		userId).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}

		return err
	}

	if domain.BookingStatus(status) == domain.BookingStatusBooked {
		return domain.ErrCutoffViolation
	}

	return domain.ErrBookingNotFound
}

func (p *PostgresBookingRepository) GetByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT COUNT(*) OVER(), ` + bookingColumns + `
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		LEFT JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.user_id = $1
		GROUP BY b.id, s.id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userId, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		booking, err := scanBooking(rows, &totalRecords)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, *booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	return bookings, domain.NewMetadata(totalRecords, pagination), nil
}

func (p *PostgresBookingRepository) GetBookedSeats(ctx context.Context, slotId int) ([]domain.SeatPosition, error) {
	query := `
		SELECT seat_row, seat_number
		FROM booking_seats
		WHERE slot_id = $1 AND active
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, slotId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.SeatPosition, 0)

	for rows.Next() {
		var seat domain.SeatPosition

		err = rows.Scan(&seat.Row, &seat.Number)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

// scanBooking reads bookingColumns, optionally preceded by extra leading
// destinations such as a window count.
func scanBooking(row pgx.Row, leading ...any) (*domain.Booking, error) {
	var (
		booking     domain.Booking
		status      int
		seatRows    []int32
		seatNumbers []int32
	)

	dest := append(leading,
		&booking.ID,
		&booking.UserID,
		&booking.SlotID,
		&status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.SlotDateTime,
		&booking.SlotPrice,
		&seatRows,
		&seatNumbers,
	)

	err := row.Scan(dest...)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	booking.Seats = make([]domain.SeatPosition, len(seatRows))

	for i := range seatRows {
		booking.Seats[i] = domain.SeatPosition{Row: int(seatRows[i]), Number: int(seatNumbers[i])}
	}

	return &booking, nil
}
