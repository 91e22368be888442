package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockSlotRepo runs the validate callback against Schedule before consulting
// the recorded expectations, mirroring the real repository's transaction.
type MockSlotRepo struct {
	mock.Mock
	domain.SlotRepository
	Schedule domain.SlotSchedule
}

func (m *MockSlotRepo) Create(ctx context.Context, slot *domain.Slot, validate func(domain.SlotSchedule) error) error {
	if err := validate(m.Schedule); err != nil {
		return err
	}

	slot.Duration = m.Schedule.Movie.Duration

	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSlotRepo) Update(ctx context.Context, slot *domain.Slot, validate func(domain.SlotSchedule) error) error {
	if err := validate(m.Schedule); err != nil {
		return err
	}

	slot.Duration = m.Schedule.Movie.Duration

	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSlotRepo) GetById(ctx context.Context, id int) (*domain.SlotDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SlotDetail), args.Error(1)
}

func (m *MockSlotRepo) GetByMovieBetween(
	ctx context.Context,
	movieId int,
	from, to time.Time) ([]domain.SlotDetail, error) {

	args := m.Called(ctx, movieId, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SlotDetail), args.Error(1)
}

func (m *MockSlotRepo) GetByCinemaFrom(ctx context.Context, cinemaId int, from time.Time) ([]domain.SlotDetail, error) {
	args := m.Called(ctx, cinemaId, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SlotDetail), args.Error(1)
}
