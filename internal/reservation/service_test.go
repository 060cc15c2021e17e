package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
)

// Mock implementations
type MockLockStore struct {
	mock.Mock
}

func (m *MockLockStore) Acquire(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	args := m.Called(busID, date, seat, lockerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockStore) Refresh(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	args := m.Called(busID, date, seat, lockerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockStore) Release(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error) {
	args := m.Called(busID, date, seat, lockerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockStore) Active(ctx context.Context, busID, date string) ([]models.SeatLock, error) {
	args := m.Called(busID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeatLock), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetBus(ctx context.Context, busID string) (*models.Bus, error) {
	args := m.Called(busID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bus), args.Error(1)
}

func (m *MockCatalog) UpdateSeatStatus(ctx context.Context, busID string, seat int, status string) error {
	args := m.Called(busID, seat, status)
	return args.Error(0)
}

// spyNotifier records events; delivery happens off the request path so
// assertions go through Events with Eventually.
type spyNotifier struct {
	mu     sync.Mutex
	events []models.SeatUpdateEvent
}

func (n *spyNotifier) SeatUpdate(busID string, event models.SeatUpdateEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *spyNotifier) Events() []models.SeatUpdateEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.SeatUpdateEvent, len(n.events))
	copy(out, n.events)
	return out
}

func testBus() *models.Bus {
	return &models.Bus{
		ID:            "bus-1",
		Name:          "City Express",
		DepartureTime: "07:30",
		TotalSeats:    40,
	}
}

func TestLock_FreshClaim(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	notifier := &spyNotifier{}
	svc := reservation.NewService(locks, catalog, notifier, nil)

	catalog.On("GetBus", "bus-1").Return(testBus(), nil)
	locks.On("Acquire", "bus-1", "2026-09-15", 12, "lkr_aaa").Return(true, nil)

	result, err := svc.Lock(context.Background(), "bus-1", "2026-09-15", 12, "lkr_aaa")
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusLocked, result.Status)
	assert.Equal(t, "lkr_aaa", result.LockerID)

	assert.Eventually(t, func() bool {
		events := notifier.Events()
		return len(events) == 1 && events[0].Status == models.SeatEventLocked && events[0].SeatNumber == 12
	}, time.Second, 10*time.Millisecond, "A Locked event should be broadcast")

	locks.AssertExpectations(t)
}

func TestLock_SelfRelockRefreshes(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	svc := reservation.NewService(locks, catalog, &spyNotifier{}, nil)

	catalog.On("GetBus", "bus-1").Return(testBus(), nil)
	locks.On("Acquire", "bus-1", "2026-09-15", 12, "lkr_aaa").Return(false, nil)
	locks.On("Refresh", "bus-1", "2026-09-15", 12, "lkr_aaa").Return(true, nil)

	result, err := svc.Lock(context.Background(), "bus-1", "2026-09-15", 12, "lkr_aaa")
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusLocked, result.Status, "Re-locking an owned seat succeeds via refresh")

	locks.AssertExpectations(t)
}

func TestLock_ForeignHolderConflicts(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	notifier := &spyNotifier{}
	svc := reservation.NewService(locks, catalog, notifier, nil)

	catalog.On("GetBus", "bus-1").Return(testBus(), nil)
	locks.On("Acquire", "bus-1", "2026-09-15", 12, "lkr_bbb").Return(false, nil)
	locks.On("Refresh", "bus-1", "2026-09-15", 12, "lkr_bbb").Return(false, nil)

	result, err := svc.Lock(context.Background(), "bus-1", "2026-09-15", 12, "lkr_bbb")
	require.NoError(t, err, "A conflict is a normal result, not an error")
	assert.Equal(t, reservation.StatusConflict, result.Status)

	// No broadcast for a claim that changed nothing
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, notifier.Events())
}

func TestLock_Validation(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	svc := reservation.NewService(locks, catalog, &spyNotifier{}, nil)

	catalog.On("GetBus", "bus-1").Return(testBus(), nil)
	catalog.On("GetBus", "no-such-bus").Return(nil, reservation.ErrBusNotFound)

	_, err := svc.Lock(context.Background(), "bus-1", "2026-09-15", 12, "")
	assert.ErrorIs(t, err, reservation.ErrLockerIDRequired)

	_, err = svc.Lock(context.Background(), "bus-1", "15-09-2026", 12, "lkr_aaa")
	assert.ErrorIs(t, err, reservation.ErrInvalidDate)

	_, err = svc.Lock(context.Background(), "no-such-bus", "2026-09-15", 12, "lkr_aaa")
	assert.ErrorIs(t, err, reservation.ErrBusNotFound)

	_, err = svc.Lock(context.Background(), "bus-1", "2026-09-15", 41, "lkr_aaa")
	assert.ErrorIs(t, err, reservation.ErrSeatOutOfRange)

	_, err = svc.Lock(context.Background(), "bus-1", "2026-09-15", 0, "lkr_aaa")
	assert.ErrorIs(t, err, reservation.ErrSeatOutOfRange)

	locks.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLock_StoreErrorSurfaces(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	svc := reservation.NewService(locks, catalog, &spyNotifier{}, nil)

	catalog.On("GetBus", "bus-1").Return(testBus(), nil)
	locks.On("Acquire", "bus-1", "2026-09-15", 12, "lkr_aaa").Return(false, errors.New("connection refused"))

	_, err := svc.Lock(context.Background(), "bus-1", "2026-09-15", 12, "lkr_aaa")
	assert.Error(t, err)
}

func TestUnlock_ReleasedBroadcastsAvailable(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	notifier := &spyNotifier{}
	svc := reservation.NewService(locks, catalog, notifier, nil)

	locks.On("Release", "bus-1", "2026-09-15", 12, "lkr_aaa").Return(true, nil)

	err := svc.Unlock(context.Background(), "bus-1", "2026-09-15", 12, "lkr_aaa")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		events := notifier.Events()
		return len(events) == 1 && events[0].Status == models.SeatEventAvailable
	}, time.Second, 10*time.Millisecond)
}

func TestUnlock_NoopStillSucceeds(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	notifier := &spyNotifier{}
	svc := reservation.NewService(locks, catalog, notifier, nil)

	locks.On("Release", "bus-1", "2026-09-15", 12, "lkr_bbb").Return(false, nil)

	err := svc.Unlock(context.Background(), "bus-1", "2026-09-15", 12, "lkr_bbb")
	require.NoError(t, err, "Unlocking a seat held by someone else is a quiet no-op")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, notifier.Events(), "A no-op unlock must not broadcast Available")
}

func TestUnlock_RequiresLockerID(t *testing.T) {
	svc := reservation.NewService(new(MockLockStore), new(MockCatalog), &spyNotifier{}, nil)

	err := svc.Unlock(context.Background(), "bus-1", "2026-09-15", 12, "")
	assert.ErrorIs(t, err, reservation.ErrLockerIDRequired)
}

func TestMarkCash(t *testing.T) {
	locks := new(MockLockStore)
	catalog := new(MockCatalog)
	notifier := &spyNotifier{}
	svc := reservation.NewService(locks, catalog, notifier, nil)

	catalog.On("GetBus", "bus-1").Return(testBus(), nil)
	catalog.On("UpdateSeatStatus", "bus-1", 7, models.SeatStatusCash).Return(nil)

	require.NoError(t, svc.MarkCash(context.Background(), "bus-1", 7))

	assert.Eventually(t, func() bool {
		events := notifier.Events()
		return len(events) == 1 && events[0].Status == models.SeatEventCash && events[0].SeatNumber == 7
	}, time.Second, 10*time.Millisecond)

	err := svc.MarkCash(context.Background(), "bus-1", 99)
	assert.ErrorIs(t, err, reservation.ErrSeatOutOfRange)

	catalog.AssertExpectations(t)
}
