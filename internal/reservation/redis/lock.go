package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
)

// LockStore keeps seat locks in Redis. One key per (bus, date, seat),
// value is the owning locker id, expiry handled by Redis key TTL.
// Mutual exclusion rests on SETNX being atomic; there is no
// read-then-write window for two sessions to both claim a free seat.
type LockStore struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewLockStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *LockStore {
	return &LockStore{Client: client, TTL: ttl, Logger: log}
}

func lockKey(busID, date string, seat int) string {
	return fmt.Sprintf("seat_lock:%s:%s:%d", busID, date, seat)
}

func lockPrefix(busID, date string) string {
	return fmt.Sprintf("seat_lock:%s:%s:", busID, date)
}

// unavailable tags a transport failure so the HTTP layer can answer 503
// instead of a generic 500.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", reservation.ErrStoreUnavailable, err)
}

func (s *LockStore) Acquire(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, lockKey(busID, date, seat), lockerID, s.TTL).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (s *LockStore) Refresh(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	key := lockKey(busID, date, seat)
	val, err := s.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Expired between the failed acquire and now; claim it fresh.
		return s.Acquire(ctx, busID, date, seat, lockerID)
	}
	if err != nil {
		return false, unavailable(err)
	}
	if val != lockerID {
		return false, nil
	}
	if err := s.Client.Set(ctx, key, lockerID, s.TTL).Err(); err != nil {
		return false, unavailable(err)
	}
	return true, nil
}

// releaseScript deletes the key only while it still holds the caller's
// value. GET then DEL as two commands leaves a window where the lock
// expires and another session re-acquires it in between, so the DEL
// would remove the new owner's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (s *LockStore) Release(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	deleted, err := releaseScript.Run(ctx, s.Client, []string{lockKey(busID, date, seat)}, lockerID).Int()
	if err != nil {
		return false, unavailable(err)
	}
	return deleted == 1, nil
}

func (s *LockStore) Active(ctx context.Context, busID, date string) ([]models.SeatLock, error) {
	prefix := lockPrefix(busID, date)

	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.Client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, unavailable(err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	locks := make([]models.SeatLock, 0, len(keys))
	for _, key := range keys {
		seat, err := strconv.Atoi(strings.TrimPrefix(key, prefix))
		if err != nil {
			continue
		}
		lockerID, err := s.Client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // expired mid-scan
		}
		if err != nil {
			return nil, unavailable(err)
		}
		locks = append(locks, models.SeatLock{
			BusID:      busID,
			Date:       date,
			SeatNumber: seat,
			LockerID:   lockerID,
		})
	}
	return locks, nil
}
