package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Slot struct {
	ID       int
	CinemaID int
	MovieID  int
	Language string
	DateTime time.Time
	// Duration is the runtime of the slot's movie.
	Duration time.Duration
	Price    decimal.Decimal
}

func (s Slot) EndsAt() time.Time {
	return s.DateTime.Add(s.Duration)
}

type SlotDetail struct {
	Slot
	MovieName string
	MovieSlug string
	Cinema    Cinema
}

// SlotSchedule is what a candidate slot is checked against: its movie and the
// nearest slots of the same cinema around the candidate's start. Prev is the
// latest slot starting at or before the candidate, Next the earliest starting
// after it. The candidate itself is never its own neighbour.
type SlotSchedule struct {
	Movie Movie
	Prev  *Slot
	Next  *Slot
}

// ValidateSlot applies the creation rules for a showtime.
func ValidateSlot(candidate Slot, schedule SlotSchedule, now time.Time) error {
	candidate.Duration = schedule.Movie.Duration

	if !candidate.DateTime.After(now) {
		return fmt.Errorf("%w: cannot create slot for past dates", ErrValidation)
	}

	if !schedule.Movie.ReleasedBy(candidate.DateTime) {
		return fmt.Errorf("%w: cannot create slot for a movie before its release date", ErrValidation)
	}

	if !schedule.Movie.SupportsLanguage(candidate.Language) {
		return fmt.Errorf("%w: language %q is not one of the movie's languages", ErrValidation, candidate.Language)
	}

	return CheckOverlap(candidate, schedule.Prev, schedule.Next)
}

// CheckOverlap rejects a candidate whose half-open interval [start, end)
// intersects a neighbour. Back-to-back slots do not conflict.
func CheckOverlap(candidate Slot, prev, next *Slot) error {
	if prev != nil && prev.EndsAt().After(candidate.DateTime) {
		return fmt.Errorf("%w: previous movie ends at %s",
			ErrSlotOverlap, prev.EndsAt().UTC().Format(time.RFC3339))
	}

	if next != nil && candidate.EndsAt().After(next.DateTime) {
		return fmt.Errorf("%w: next movie starts at %s",
			ErrSlotOverlap, next.DateTime.UTC().Format(time.RFC3339))
	}

	return nil
}

type SlotRepository interface {
	// Create and Update run validate inside the write transaction, after the
	// cinema's schedule has been locked.
	Create(ctx context.Context, slot *Slot, validate func(SlotSchedule) error) error
	Update(ctx context.Context, slot *Slot, validate func(SlotSchedule) error) error
	GetById(ctx context.Context, id int) (*SlotDetail, error)
	GetByMovieBetween(ctx context.Context, movieId int, from, to time.Time) ([]SlotDetail, error)
	GetByCinemaFrom(ctx context.Context, cinemaId int, from time.Time) ([]SlotDetail, error)
}
