// Package events publishes booking lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

type seatMessage struct {
	Row    int `json:"row"`
	Number int `json:"number"`
}

type bookingMessage struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	BookingID  int           `json:"bookingId"`
	UserID     int           `json:"userId"`
	SlotID     int           `json:"slotId"`
	Seats      []seatMessage `json:"seats"`
	OccurredAt time.Time     `json:"occurredAt"`
}

func encode(event domain.BookingEvent) ([]byte, error) {
	seats := make([]seatMessage, len(event.Seats))
	for i, v := range event.Seats {
		seats[i] = seatMessage{Row: v.Row, Number: v.Number}
	}

	return json.Marshal(bookingMessage{
		ID:         event.ID,
		Type:       string(event.Type),
		BookingID:  event.BookingID,
		UserID:     event.UserID,
		SlotID:     event.SlotID,
		Seats:      seats,
		OccurredAt: event.OccurredAt.UTC(),
	})
}

// AMQPPublisher sends each event to a durable queue named after its type.
type AMQPPublisher struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	for _, queue := range []domain.BookingEventType{domain.BookingCreated, domain.BookingCancelled} {
		_, err = ch.QueueDeclare(string(queue), true, false, false, false, nil)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err := <-closed; err != nil {
			logger.Error("rabbitmq connection closed", "error", err)
		}
	}()

	return &AMQPPublisher{
		conn: conn,
		ch:   ch,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt.UTC(),
		Type:         string(event.Type),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, "", string(event.Type), false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	chErr := p.ch.Close()
	connErr := p.conn.Close()
	if chErr != nil {
		return chErr
	}

	return connErr
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	p.logger.InfoContext(ctx, "booking event",
		"event_id", event.ID,
		"type", event.Type,
		"booking_id", event.BookingID,
		"slot_id", event.SlotID)

	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
