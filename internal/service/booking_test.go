package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type BookingServiceTestSuite struct {
	suite.Suite
	bookingRepo *mocks.MockBookingRepo
	slotRepo    *mocks.MockSlotRepo
	cache       *mocks.MockSeatCache
	publisher   *mocks.MockEventPublisher
	service     *BookingService
}

func (s *BookingServiceTestSuite) SetupTest() {
	s.bookingRepo = new(mocks.MockBookingRepo)
	s.slotRepo = new(mocks.MockSlotRepo)
	s.cache = new(mocks.MockSeatCache)
	s.publisher = new(mocks.MockEventPublisher)

	s.service = NewBookingService(
		s.bookingRepo,
		s.slotRepo,
		s.cache,
		s.publisher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithBookingClock(func() time.Time { return testNow }),
	)
}

func (s *BookingServiceTestSuite) assertMocks() {
	s.service.Wait()

	s.bookingRepo.AssertExpectations(s.T())
	s.slotRepo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func TestBookingServiceSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func testSlot(dateTime time.Time) *domain.SlotDetail {
	return &domain.SlotDetail{
		Slot: domain.Slot{
			ID:       3,
			CinemaID: 1,
			MovieID:  2,
			Language: "English",
			DateTime: dateTime,
			Duration: 2 * time.Hour,
			Price:    decimal.RequireFromString("12.50"),
		},
		MovieName: "Inception",
		Cinema:    domain.Cinema{ID: 1, Name: "Grand", Rows: 10, SeatsPerRow: 12},
	}
}

func (s *BookingServiceTestSuite) TestBook() {
	seats := []domain.SeatPosition{{Row: 2, Number: 3}, {Row: 2, Number: 4}}

	tests := []struct {
		name      string
		seats     []domain.SeatPosition
		setupMock func()
		wantErr   error
	}{
		{
			name:    "empty seat list",
			seats:   nil,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "duplicate seats",
			seats:   []domain.SeatPosition{{Row: 1, Number: 1}, {Row: 1, Number: 1}},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "unknown slot",
			seats: seats,
			setupMock: func() {
				s.slotRepo.On("GetById", mock.Anything, 3).Return(nil, domain.ErrRecordNotFound)
			},
			wantErr: domain.ErrSlotInactive,
		},
		{
			name:  "slot already started",
			seats: seats,
			setupMock: func() {
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(-time.Minute)), nil)
			},
			wantErr: domain.ErrSlotInactive,
		},
		{
			name:  "seat outside cinema",
			seats: []domain.SeatPosition{{Row: 11, Number: 1}},
			setupMock: func() {
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(24*time.Hour)), nil)
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "seat already booked",
			seats: seats,
			setupMock: func() {
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(24*time.Hour)), nil)
				s.bookingRepo.On("Create", mock.Anything, mock.Anything, testNow).Return(domain.ErrSeatConflict)
			},
			wantErr: domain.ErrSeatConflict,
		},
		{
			name:  "seat outside the grid of the locked cinema",
			seats: seats,
			setupMock: func() {
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(24*time.Hour)), nil)
				s.bookingRepo.On("Create", mock.Anything, mock.Anything, testNow).
					Return(fmt.Errorf("%w: seat row 2 number 4 does not exist", domain.ErrValidation))
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "slot started before insert",
			seats: seats,
			setupMock: func() {
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(time.Second)), nil)
				s.bookingRepo.On("Create", mock.Anything, mock.Anything, testNow).Return(domain.ErrSlotInactive)
			},
			wantErr: domain.ErrSlotInactive,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.assertMocks()

			if tt.setupMock != nil {
				tt.setupMock()
			}

			booking, err := s.service.Book(context.Background(), 5, 3, tt.seats)

			s.Nil(booking)
			s.ErrorIs(err, tt.wantErr)
		})
	}
}

func (s *BookingServiceTestSuite) TestBookSuccess() {
	seats := []domain.SeatPosition{{Row: 2, Number: 3}, {Row: 2, Number: 4}}
	showtime := testNow.Add(48 * time.Hour)

	s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(showtime), nil)
	s.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.UserID == 5 && b.SlotID == 3 && len(b.Seats) == 2
	}), testNow).Run(func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		b.ID = 10
		b.Status = domain.BookingStatusBooked
		b.CreatedAt = testNow
	}).Return(nil)
	s.cache.On("Invalidate", mock.Anything, 3).Return(errors.New("redis down"))
	s.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.BookingEvent) bool {
		return e.Type == domain.BookingCreated && e.BookingID == 10 && e.SlotID == 3 && e.ID != ""
	})).Return(nil)

	booking, err := s.service.Book(context.Background(), 5, 3, seats)

	s.Require().NoError(err)
	s.Equal(10, booking.ID)
	s.Equal(domain.BookingStatusBooked, booking.Status)
	s.Equal(showtime, booking.SlotDateTime)
	s.True(decimal.RequireFromString("25").Equal(booking.TotalPrice()))

	s.assertMocks()
}

func (s *BookingServiceTestSuite) TestBookSucceedsWhenPublishFails() {
	s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(48*time.Hour)), nil)
	s.bookingRepo.On("Create", mock.Anything, mock.Anything, testNow).Return(nil)
	s.cache.On("Invalidate", mock.Anything, 3).Return(nil)
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	booking, err := s.service.Book(context.Background(), 5, 3, []domain.SeatPosition{{Row: 1, Number: 1}})

	s.Require().NoError(err)
	s.NotNil(booking)

	s.assertMocks()
}

func (s *BookingServiceTestSuite) TestCancel() {
	booked := func(showtime time.Time) *domain.Booking {
		return &domain.Booking{
			ID:           10,
			UserID:       5,
			SlotID:       3,
			Status:       domain.BookingStatusBooked,
			Seats:        []domain.SeatPosition{{Row: 1, Number: 1}},
			SlotDateTime: showtime,
			SlotPrice:    decimal.NewFromInt(10),
		}
	}

	tests := []struct {
		name       string
		setupMock  func()
		wantErr    error
		wantStatus domain.BookingStatus
	}{
		{
			name: "booking does not exist or belongs to someone else",
			setupMock: func() {
				s.bookingRepo.On("GetByIdAndUserId", mock.Anything, 10, 5).Return(nil, domain.ErrRecordNotFound)
			},
			wantErr: domain.ErrBookingNotFound,
		},
		{
			name: "booking already cancelled",
			setupMock: func() {
				b := booked(testNow.Add(24 * time.Hour))
				b.Status = domain.BookingStatusCancelled
				s.bookingRepo.On("GetByIdAndUserId", mock.Anything, 10, 5).Return(b, nil)
			},
			wantErr: domain.ErrBookingNotFound,
		},
		{
			name: "inside the cutoff window",
			setupMock: func() {
				s.bookingRepo.On("GetByIdAndUserId", mock.Anything, 10, 5).
					Return(booked(testNow.Add(3*time.Hour+59*time.Minute)), nil)
			},
			wantErr: domain.ErrCutoffViolation,
		},
		{
			name: "concurrent cancellation won",
			setupMock: func() {
				s.bookingRepo.On("GetByIdAndUserId", mock.Anything, 10, 5).Return(booked(testNow.Add(24*time.Hour)), nil)
				s.bookingRepo.On("Cancel", mock.Anything, 10, 5, testNow).Return(domain.ErrBookingNotFound)
			},
			wantErr: domain.ErrBookingNotFound,
		},
		{
			name: "slot moved inside the cutoff before the write",
			setupMock: func() {
				s.bookingRepo.On("GetByIdAndUserId", mock.Anything, 10, 5).Return(booked(testNow.Add(24*time.Hour)), nil)
				s.bookingRepo.On("Cancel", mock.Anything, 10, 5, testNow).Return(domain.ErrCutoffViolation)
			},
			wantErr: domain.ErrCutoffViolation,
		},
		{
			name: "exactly at the cutoff",
			setupMock: func() {
				s.bookingRepo.On("GetByIdAndUserId", mock.Anything, 10, 5).
					Return(booked(testNow.Add(domain.CancellationCutoff)), nil)
				s.bookingRepo.On("Cancel", mock.Anything, 10, 5, testNow).Return(nil)
				s.cache.On("Invalidate", mock.Anything, 3).Return(nil)
				s.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.BookingEvent) bool {
					return e.Type == domain.BookingCancelled && e.BookingID == 10
				})).Return(nil)
			},
			wantStatus: domain.BookingStatusCancelled,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.assertMocks()

			tt.setupMock()

			booking, err := s.service.Cancel(context.Background(), 5, 10)

			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				s.Nil(booking)
				return
			}

			s.Require().NoError(err)
			s.Equal(tt.wantStatus, booking.Status)
		})
	}
}

func (s *BookingServiceTestSuite) TestBookedSeats() {
	seats := []domain.SeatPosition{{Row: 1, Number: 2}}

	tests := []struct {
		name      string
		setupMock func()
		want      []domain.SeatPosition
		wantErr   error
	}{
		{
			name: "served from cache",
			setupMock: func() {
				s.cache.On("Get", mock.Anything, 3).Return(seats, true, nil)
			},
			want: seats,
		},
		{
			name: "cache miss loads and stores",
			setupMock: func() {
				s.cache.On("Get", mock.Anything, 3).Return(nil, false, nil)
				s.cache.On("Version", mock.Anything, 3).Return(int64(2), nil)
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow), nil)
				s.bookingRepo.On("GetBookedSeats", mock.Anything, 3).Return(seats, nil)
				s.cache.On("Set", mock.Anything, 3, int64(2), seats).Return(nil)
			},
			want: seats,
		},
		{
			name: "cache failures fall back to the database",
			setupMock: func() {
				s.cache.On("Get", mock.Anything, 3).Return(nil, false, errors.New("timeout"))
				s.cache.On("Version", mock.Anything, 3).Return(int64(0), nil)
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow), nil)
				s.bookingRepo.On("GetBookedSeats", mock.Anything, 3).Return([]domain.SeatPosition{}, nil)
				s.cache.On("Set", mock.Anything, 3, int64(0), []domain.SeatPosition{}).Return(errors.New("timeout"))
			},
			want: []domain.SeatPosition{},
		},
		{
			name: "no fill without a version",
			setupMock: func() {
				s.cache.On("Get", mock.Anything, 3).Return(nil, false, nil)
				s.cache.On("Version", mock.Anything, 3).Return(int64(0), errors.New("timeout"))
				s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow), nil)
				s.bookingRepo.On("GetBookedSeats", mock.Anything, 3).Return(seats, nil)
			},
			want: seats,
		},
		{
			name: "unknown slot",
			setupMock: func() {
				s.cache.On("Get", mock.Anything, 3).Return(nil, false, nil)
				s.cache.On("Version", mock.Anything, 3).Return(int64(0), nil)
				s.slotRepo.On("GetById", mock.Anything, 3).Return(nil, domain.ErrRecordNotFound)
			},
			wantErr: domain.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.assertMocks()

			tt.setupMock()

			got, err := s.service.BookedSeats(context.Background(), 3)

			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

// versionedSeatCache keeps entries in memory with the same version rules as
// the Redis cache.
type versionedSeatCache struct {
	mu       sync.Mutex
	entries  map[int][]domain.SeatPosition
	versions map[int]int64
}

func newVersionedSeatCache() *versionedSeatCache {
	return &versionedSeatCache{
		entries:  make(map[int][]domain.SeatPosition),
		versions: make(map[int]int64),
	}
}

func (c *versionedSeatCache) Get(_ context.Context, slotId int) ([]domain.SeatPosition, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seats, ok := c.entries[slotId]
	return seats, ok, nil
}

func (c *versionedSeatCache) Version(_ context.Context, slotId int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.versions[slotId], nil
}

func (c *versionedSeatCache) Set(_ context.Context, slotId int, version int64, seats []domain.SeatPosition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versions[slotId] == version {
		c.entries[slotId] = seats
	}

	return nil
}

func (c *versionedSeatCache) Invalidate(_ context.Context, slotId int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[slotId]++
	delete(c.entries, slotId)

	return nil
}

func (s *BookingServiceTestSuite) TestBookedSeatsLoadRacingABooking() {
	ctx := context.Background()
	seat := []domain.SeatPosition{{Row: 4, Number: 3}}

	service := NewBookingService(
		s.bookingRepo,
		s.slotRepo,
		newVersionedSeatCache(),
		s.publisher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithBookingClock(func() time.Time { return testNow }),
	)

	loaded := make(chan struct{})
	release := make(chan struct{})

	s.slotRepo.On("GetById", mock.Anything, 3).Return(testSlot(testNow.Add(48*time.Hour)), nil)
	// the first read takes its snapshot before the booking commits
	s.bookingRepo.On("GetBookedSeats", mock.Anything, 3).Run(func(mock.Arguments) {
		close(loaded)
		<-release
	}).Return([]domain.SeatPosition{}, nil).Once()
	s.bookingRepo.On("GetBookedSeats", mock.Anything, 3).Return(seat, nil).Once()
	s.bookingRepo.On("Create", mock.Anything, mock.Anything, testNow).Return(nil)
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	type result struct {
		seats []domain.SeatPosition
		err   error
	}

	racing := make(chan result, 1)
	go func() {
		seats, err := service.BookedSeats(ctx, 3)
		racing <- result{seats, err}
	}()

	<-loaded

	_, err := service.Book(ctx, 5, 3, seat)
	s.Require().NoError(err)

	close(release)

	before := <-racing
	s.Require().NoError(before.err)
	s.Empty(before.seats)

	after, err := service.BookedSeats(ctx, 3)
	s.Require().NoError(err)
	s.Equal(seat, after)

	service.Wait()
	s.bookingRepo.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func (s *BookingServiceTestSuite) TestListForUser() {
	pagination := domain.Pagination{Page: 1, PageSize: 10}
	bookings := []domain.Booking{{ID: 2}, {ID: 1}}
	metadata := domain.NewMetadata(2, pagination)

	s.bookingRepo.On("GetByUserId", mock.Anything, 5, pagination).Return(bookings, metadata, nil)

	got, gotMetadata, err := s.service.ListForUser(context.Background(), 5, pagination)

	s.Require().NoError(err)
	s.Equal(bookings, got)
	s.Equal(metadata, gotMetadata)

	s.assertMocks()
}
