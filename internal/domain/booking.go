package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const CancellationCutoff = 4 * time.Hour

type BookingStatus int

const (
	BookingStatusCancelled BookingStatus = 0
	BookingStatusBooked    BookingStatus = 1
)

func (s BookingStatus) String() string {
	switch s {
	case BookingStatusBooked:
		return "BOOKED"
	case BookingStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("BookingStatus(%d)", int(s))
	}
}

type SeatPosition struct {
	Row    int
	Number int
}

type Booking struct {
	ID           int
	UserID       int
	SlotID       int
	Status       BookingStatus
	Seats        []SeatPosition
	SlotDateTime time.Time
	SlotPrice    decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TotalPrice is derived from the slot's current price, never stored.
func (b Booking) TotalPrice() decimal.Decimal {
	return b.SlotPrice.Mul(decimal.NewFromInt(int64(len(b.Seats))))
}

// ValidateSeatRequest checks the shape of a seat selection independent of any
// cinema: it must be non-empty, positive and free of duplicates.
func ValidateSeatRequest(seats []SeatPosition) error {
	if len(seats) == 0 {
		return fmt.Errorf("%w: at least one seat must be selected", ErrValidation)
	}

	seen := make(map[SeatPosition]struct{}, len(seats))

	for _, seat := range seats {
		if seat.Row < 1 || seat.Number < 1 {
			return fmt.Errorf("%w: seat row and number must be positive", ErrValidation)
		}

		if _, ok := seen[seat]; ok {
			return fmt.Errorf("%w: seat row %d number %d is selected more than once",
				ErrValidation, seat.Row, seat.Number)
		}

		seen[seat] = struct{}{}
	}

	return nil
}

func ValidateSeatsInCinema(seats []SeatPosition, cinema Cinema) error {
	for _, seat := range seats {
		if !cinema.Contains(seat) {
			return fmt.Errorf("%w: seat row %d number %d does not exist in cinema %q",
				ErrValidation, seat.Row, seat.Number, cinema.Name)
		}
	}

	return nil
}

// CheckCancellable enforces the lifecycle rules for a cancellation request.
// Only bookings still in BOOKED state qualify, and only while the showtime is
// at least CancellationCutoff away.
func CheckCancellable(b Booking, now time.Time) error {
	if b.Status != BookingStatusBooked {
		return ErrBookingNotFound
	}

	if b.SlotDateTime.Sub(now) < CancellationCutoff {
		return ErrCutoffViolation
	}

	return nil
}

type BookingRepository interface {
	// Create inserts the booking and its seats atomically. It fails with
	// ErrSlotInactive when the slot does not start after now, with
	// ErrValidation when a seat lies outside the slot's cinema and with
	// ErrSeatConflict when any seat is held by another active booking.
	Create(ctx context.Context, booking *Booking, now time.Time) error
	GetByIdAndUserId(ctx context.Context, bookingId, userId int) (*Booking, error)
	// Cancel flips a BOOKED booking to CANCELLED and releases its seats,
	// provided its slot still starts at least CancellationCutoff after now.
	Cancel(ctx context.Context, bookingId, userId int, now time.Time) error
	GetByUserId(ctx context.Context, userId int, pagination Pagination) ([]Booking, *Metadata, error)
	GetBookedSeats(ctx context.Context, slotId int) ([]SeatPosition, error)
}

// SeatCache holds a short-lived copy of the booked seats of a slot.
//
// Every Invalidate bumps the slot's version. A reader takes the version
// before loading seats from the database and Set stores them only while
// that version is still current, so a load that raced a write is dropped.
type SeatCache interface {
	Get(ctx context.Context, slotId int) ([]SeatPosition, bool, error)
	Version(ctx context.Context, slotId int) (int64, error)
	Set(ctx context.Context, slotId int, version int64, seats []SeatPosition) error
	Invalidate(ctx context.Context, slotId int) error
}
