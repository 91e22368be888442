package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) Get(ctx context.Context, slotId int) ([]domain.SeatPosition, bool, error) {
	args := m.Called(ctx, slotId)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.SeatPosition), args.Bool(1), args.Error(2)
}

func (m *MockSeatCache) Version(ctx context.Context, slotId int) (int64, error) {
	args := m.Called(ctx, slotId)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatCache) Set(ctx context.Context, slotId int, version int64, seats []domain.SeatPosition) error {
	args := m.Called(ctx, slotId, version, seats)
	return args.Error(0)
}

func (m *MockSeatCache) Invalidate(ctx context.Context, slotId int) error {
	args := m.Called(ctx, slotId)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
