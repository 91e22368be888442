package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/metrics"
)

// SlotService owns showtime creation and rescheduling.
type SlotService struct {
	slots  domain.SlotRepository
	logger *slog.Logger
	now    func() time.Time
}

type SlotOption func(*SlotService)

func WithSlotClock(now func() time.Time) SlotOption {
	return func(s *SlotService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSlotService(slots domain.SlotRepository, logger *slog.Logger, opts ...SlotOption) *SlotService {
	s := &SlotService{
		slots:  slots,
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SlotService) Create(ctx context.Context, slot domain.Slot) (*domain.Slot, error) {
	now := s.now()

	err := s.slots.Create(ctx, &slot, func(schedule domain.SlotSchedule) error {
		return domain.ValidateSlot(slot, schedule, now)
	})
	if err != nil {
		return nil, s.rejected(ctx, "create", slot, err)
	}

	s.logger.InfoContext(ctx, "slot created",
		"slot_id", slot.ID,
		"cinema_id", slot.CinemaID,
		"movie_id", slot.MovieID,
		"date_time", slot.DateTime)

	return &slot, nil
}

func (s *SlotService) Update(ctx context.Context, slot domain.Slot) (*domain.Slot, error) {
	now := s.now()

	err := s.slots.Update(ctx, &slot, func(schedule domain.SlotSchedule) error {
		return domain.ValidateSlot(slot, schedule, now)
	})
	if err != nil {
		return nil, s.rejected(ctx, "update", slot, err)
	}

	s.logger.InfoContext(ctx, "slot updated", "slot_id", slot.ID, "date_time", slot.DateTime)

	return &slot, nil
}

func (s *SlotService) Get(ctx context.Context, id int) (*domain.SlotDetail, error) {
	slot, err := s.slots.GetById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return slot, nil
}

func (s *SlotService) rejected(ctx context.Context, op string, slot domain.Slot, err error) error {
	if errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrSlotOverlap) ||
		errors.Is(err, domain.ErrRecordNotFound) {

		metrics.SlotRejected(failureReason(err))
		s.logger.InfoContext(ctx, "slot rejected", "op", op, "cinema_id", slot.CinemaID, "reason", err.Error())

		return err
	}

	return fmt.Errorf("%s slot: %w", op, err)
}
