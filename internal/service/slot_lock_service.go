package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotLocked is returned when another booking holds the slot lock
var ErrSlotLocked = errors.New("time block is being booked by another request")

// SlotKey identifies one doctor's time block on one date
type SlotKey struct {
	DoctorID    int64
	Date        time.Time
	TimeBlockID string
}

func (k SlotKey) String() string {
	return fmt.Sprintf("lock:slot:%d:%s:%s", k.DoctorID, k.Date.Format("2006-01-02"), k.TimeBlockID)
}

// SlotLocker guards the check-then-write critical section of a booking
type SlotLocker interface {
	WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error
}

// unlockScript deletes the key only if we still own it.
// A lock that expired and was re-acquired by someone else is left alone.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisSlotLocker creates a locker that uses one Redis key per slot
func NewRedisSlotLocker(client *redis.Client, ttl time.Duration, log *logrus.Logger) SlotLocker {
	return &redisSlotLocker{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error {
	redisKey := key.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrSlotLocked
	}

	defer func() {
		// Release with a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.release(releaseCtx, redisKey, token); err != nil {
			l.log.Warnf("Failed to release slot lock %s: %+v", redisKey, err)
		}
	}()

	lockedCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockedCtx)
}

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

type noopSlotLocker struct{}

// NewNoopSlotLocker runs fn without any mutual exclusion. Concurrent bookings of
// the last slot can both succeed.
func NewNoopSlotLocker() SlotLocker {
	return noopSlotLocker{}
}

func (noopSlotLocker) WithSlotLock(ctx context.Context, _ SlotKey, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
