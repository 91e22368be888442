package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/metrics"
)

type BookingService struct {
	bookings  domain.BookingRepository
	slots     domain.SlotRepository
	cache     domain.SeatCache
	publisher domain.EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	// tracks in-flight event publications
	pending sync.WaitGroup
}

type BookingOption func(*BookingService)

// WithBookingClock overrides the time source used for slot activity and
// cancellation cutoff checks.
func WithBookingClock(now func() time.Time) BookingOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBookingService(
	bookings domain.BookingRepository,
	slots domain.SlotRepository,
	cache domain.SeatCache,
	publisher domain.EventPublisher,
	logger *slog.Logger,
	opts ...BookingOption,
) *BookingService {
	s := &BookingService{
		bookings:  bookings,
		slots:     slots,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Book reserves the given seats of a slot for a user in a single atomic write.
func (s *BookingService) Book(
	ctx context.Context,
	userId, slotId int,
	seats []domain.SeatPosition) (*domain.Booking, error) {

	err := domain.ValidateSeatRequest(seats)
	if err != nil {
		metrics.BookingFailed(failureReason(err))
		return nil, err
	}

	slot, err := s.slots.GetById(ctx, slotId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			metrics.BookingFailed(failureReason(domain.ErrSlotInactive))
			return nil, fmt.Errorf("%w: invalid slot", domain.ErrSlotInactive)
		}

		return nil, fmt.Errorf("get slot: %w", err)
	}

	now := s.now()

	if !slot.DateTime.After(now) {
		metrics.BookingFailed(failureReason(domain.ErrSlotInactive))
		return nil, domain.ErrSlotInactive
	}

	err = domain.ValidateSeatsInCinema(seats, slot.Cinema)
	if err != nil {
		metrics.BookingFailed(failureReason(err))
		return nil, err
	}

	booking := &domain.Booking{
		UserID:       userId,
		SlotID:       slotId,
		Seats:        seats,
		SlotDateTime: slot.DateTime,
		SlotPrice:    slot.Price,
	}

	err = s.bookings.Create(ctx, booking, now)
	if err != nil {
		if errors.Is(err, domain.ErrSeatConflict) ||
			errors.Is(err, domain.ErrSlotInactive) ||
			errors.Is(err, domain.ErrValidation) {
			metrics.BookingFailed(failureReason(err))
			return nil, err
		}

		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.BookingCreated(len(booking.Seats))

	s.logger.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"slot_id", slotId,
		"user_id", userId,
		"seats", len(booking.Seats))

	s.afterWrite(ctx, domain.BookingCreated, booking)

	return booking, nil
}

// Cancel moves a user's BOOKED booking to CANCELLED, releasing its seats.
// Bookings that are missing, foreign or already cancelled are reported as
// ErrBookingNotFound.
func (s *BookingService) Cancel(ctx context.Context, userId, bookingId int) (*domain.Booking, error) {
	booking, err := s.bookings.GetByIdAndUserId(ctx, bookingId, userId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, fmt.Errorf("get booking: %w", err)
	}

	now := s.now()

	err = domain.CheckCancellable(*booking, now)
	if err != nil {
		return nil, err
	}

	err = s.bookings.Cancel(ctx, bookingId, userId, now)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) || errors.Is(err, domain.ErrCutoffViolation) {
			return nil, err
		}

		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	booking.Status = domain.BookingStatusCancelled

	metrics.BookingCancelled()

	s.logger.InfoContext(ctx, "booking cancelled",
		"booking_id", booking.ID,
		"slot_id", booking.SlotID,
		"user_id", userId)

	s.afterWrite(ctx, domain.BookingCancelled, booking)

	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, userId, bookingId int) (*domain.Booking, error) {
	booking, err := s.bookings.GetByIdAndUserId(ctx, bookingId, userId)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return booking, nil
}

func (s *BookingService) ListForUser(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	bookings, metadata, err := s.bookings.GetByUserId(ctx, userId, pagination)
	if err != nil {
		return nil, nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, metadata, nil
}

// BookedSeats returns the seats held by active bookings of a slot. A cached
// copy is served until the next booking or cancellation of the slot
// invalidates it. Results only lag writes by the cache TTL when that
// invalidation fails.
func (s *BookingService) BookedSeats(ctx context.Context, slotId int) ([]domain.SeatPosition, error) {
	seats, ok, err := s.cache.Get(ctx, slotId)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "booked seat cache read failed", "slot_id", slotId, "error", err)
	case ok:
		return seats, nil
	}

	// taken before the database read so a write committed meanwhile
	// prevents this load from being cached
	version, err := s.cache.Version(ctx, slotId)
	fill := err == nil
	if err != nil {
		s.logger.WarnContext(ctx, "booked seat cache version read failed", "slot_id", slotId, "error", err)
	}

	_, err = s.slots.GetById(ctx, slotId)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	seats, err = s.bookings.GetBookedSeats(ctx, slotId)
	if err != nil {
		return nil, fmt.Errorf("get booked seats: %w", err)
	}

	if fill {
		err = s.cache.Set(ctx, slotId, version, seats)
		if err != nil {
			s.logger.WarnContext(ctx, "booked seat cache write failed", "slot_id", slotId, "error", err)
		}
	}

	return seats, nil
}

// Wait blocks until all in-flight event publications have finished.
func (s *BookingService) Wait() {
	s.pending.Wait()
}

func (s *BookingService) afterWrite(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) {
	err := s.cache.Invalidate(ctx, booking.SlotID)
	if err != nil {
		s.logger.WarnContext(ctx, "booked seat cache invalidation failed", "slot_id", booking.SlotID, "error", err)
	}

	event := domain.BookingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		SlotID:     booking.SlotID,
		Seats:      booking.Seats,
		OccurredAt: s.now(),
	}

	s.pending.Add(1)

	go func(ctx context.Context) {
		defer s.pending.Done()

		defer func() {
			if r := recover(); r != nil {
				s.logger.ErrorContext(ctx, "panic while publishing booking event", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := s.publisher.Publish(ctx, event)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish booking event",
				"event_id", event.ID,
				"type", event.Type,
				"error", err)
		}
	}(context.WithoutCancel(ctx))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSeatConflict):
		return "seat_conflict"
	case errors.Is(err, domain.ErrSlotInactive):
		return "slot_inactive"
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrSlotOverlap):
		return "slot_overlap"
	case errors.Is(err, domain.ErrRecordNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
