// Package memory holds the process-local stores used when Redis or
// Postgres are unreachable. The service then runs in a visible demo
// degradation: nothing here survives a restart, and state is discarded
// rather than merged back once the real stores return.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ms-reservation/internal/models"
)

type lockEntry struct {
	lockerID  string
	createdAt time.Time
}

// LockStore emulates the Redis lock semantics in application logic:
// the mutex around the map stands in for SETNX atomicity, and expiry
// is checked against createdAt+TTL on every read.
type LockStore struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	ttl   time.Duration

	now func() time.Time
}

func NewLockStore(ttl time.Duration) *LockStore {
	return &LockStore{
		locks: make(map[string]lockEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func key(busID, date string, seat int) string {
	return fmt.Sprintf("%s:%s:%d", busID, date, seat)
}

// live returns the entry if present and unexpired, pruning it otherwise.
// Callers must hold the mutex.
func (s *LockStore) live(k string) (lockEntry, bool) {
	entry, ok := s.locks[k]
	if !ok {
		return lockEntry{}, false
	}
	if s.now().Sub(entry.createdAt) >= s.ttl {
		delete(s.locks, k)
		return lockEntry{}, false
	}
	return entry, true
}

func (s *LockStore) Acquire(_ context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(busID, date, seat)
	if _, held := s.live(k); held {
		return false, nil
	}
	s.locks[k] = lockEntry{lockerID: lockerID, createdAt: s.now()}
	return true, nil
}

func (s *LockStore) Refresh(_ context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(busID, date, seat)
	entry, held := s.live(k)
	if !held {
		s.locks[k] = lockEntry{lockerID: lockerID, createdAt: s.now()}
		return true, nil
	}
	if entry.lockerID != lockerID {
		return false, nil
	}
	s.locks[k] = lockEntry{lockerID: lockerID, createdAt: s.now()}
	return true, nil
}

func (s *LockStore) Release(_ context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(busID, date, seat)
	entry, held := s.live(k)
	if !held || entry.lockerID != lockerID {
		return false, nil
	}
	delete(s.locks, k)
	return true, nil
}

func (s *LockStore) Active(_ context.Context, busID, date string) ([]models.SeatLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := fmt.Sprintf("%s:%s:", busID, date)
	var locks []models.SeatLock
	for k := range s.locks {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		entry, held := s.live(k)
		if !held {
			continue
		}
		seat, err := strconv.Atoi(strings.TrimPrefix(k, prefix))
		if err != nil {
			continue
		}
		locks = append(locks, models.SeatLock{
			BusID:      busID,
			Date:       date,
			SeatNumber: seat,
			LockerID:   entry.lockerID,
		})
	}
	return locks, nil
}
