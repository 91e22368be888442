package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultSeatCacheTTL = 30 * time.Second

// seatVersionTTL keeps a slot's version around far longer than any cached
// entry or in-flight database read.
const seatVersionTTL = 24 * time.Hour

type cachedSeat struct {
	Row    int `json:"r"`
	Number int `json:"n"`
}

type RedisSeatCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisSeatCache(client redis.UniversalClient, ttl time.Duration) *RedisSeatCache {
	if ttl <= 0 {
		ttl = DefaultSeatCacheTTL
	}

	return &RedisSeatCache{
		client: client,
		ttl:    ttl,
	}
}

func bookedSeatsKey(slotId int) string {
	return fmt.Sprintf("booked_seats:%d", slotId)
}

func bookedSeatsVersionKey(slotId int) string {
	return fmt.Sprintf("booked_seats_ver:%d", slotId)
}

func readVersion(ctx context.Context, client redis.Cmdable, slotId int) (int64, error) {
	version, err := client.Get(ctx, bookedSeatsVersionKey(slotId)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return version, nil
}

func (c *RedisSeatCache) Get(ctx context.Context, slotId int) ([]domain.SeatPosition, bool, error) {
	data, err := c.client.Get(ctx, bookedSeatsKey(slotId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var cached []cachedSeat

	err = json.Unmarshal(data, &cached)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached seats: %w", err)
	}

	seats := make([]domain.SeatPosition, len(cached))
	for i, v := range cached {
		seats[i] = domain.SeatPosition{Row: v.Row, Number: v.Number}
	}

	return seats, true, nil
}

func (c *RedisSeatCache) Version(ctx context.Context, slotId int) (int64, error) {
	return readVersion(ctx, c.client, slotId)
}

// Set stores seats loaded under version. It is a no-op when the slot has
// been invalidated since, either before the WATCH or before EXEC.
func (c *RedisSeatCache) Set(ctx context.Context, slotId int, version int64, seats []domain.SeatPosition) error {
	cached := make([]cachedSeat, len(seats))
	for i, v := range seats {
		cached[i] = cachedSeat{Row: v.Row, Number: v.Number}
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, slotId)
		if err != nil {
			return err
		}

		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bookedSeatsKey(slotId), data, c.ttl)
			return nil
		})

		return err
	}, bookedSeatsVersionKey(slotId))

	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}

	return err
}

func (c *RedisSeatCache) Invalidate(ctx context.Context, slotId int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, bookedSeatsVersionKey(slotId))
		pipe.Expire(ctx, bookedSeatsVersionKey(slotId), seatVersionTTL)
		pipe.Del(ctx, bookedSeatsKey(slotId))
		return nil
	})

	return err
}
