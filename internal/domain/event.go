package domain

import (
	"context"
	"time"
)

type BookingEventType string

const (
	BookingCreated   BookingEventType = "booking.created"
	BookingCancelled BookingEventType = "booking.cancelled"
)

type BookingEvent struct {
	ID         string
	Type       BookingEventType
	BookingID  int
	UserID     int
	SlotID     int
	Seats      []SeatPosition
	OccurredAt time.Time
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
