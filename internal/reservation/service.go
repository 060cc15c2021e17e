package reservation

import (
	"context"
	"fmt"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

// LockStore holds the transient seat claims. Acquire must be atomic
// create-if-absent: a plain read-then-write races when two callers go
// for the same never-locked seat.
type LockStore interface {
	// Acquire creates the lock when no live lock exists. Returns false
	// without mutating anything when the seat is already held.
	Acquire(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error)
	// Refresh resets the TTL when the live lock is owned by lockerID,
	// or claims the seat fresh when no live lock exists. Returns false
	// only when another session holds the lock.
	Refresh(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error)
	// Release deletes the lock only when owned by lockerID. Reports
	// whether a lock was actually deleted; never an error for "nothing
	// to unlock".
	Release(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error)
	// Active lists the live locks for a bus and travel date.
	Active(ctx context.Context, busID, date string) ([]models.SeatLock, error)
}

// Catalog is the read/update surface of the bus fleet this service needs.
type Catalog interface {
	GetBus(ctx context.Context, busID string) (*models.Bus, error)
	UpdateSeatStatus(ctx context.Context, busID string, seat int, status string) error
}

// BookingReader exposes the sold seats for a bus and travel date,
// flattened from payment-completed bookings.
type BookingReader interface {
	BookedSeats(ctx context.Context, busID, date string) ([]int, error)
}

// Notifier pushes advisory seat-update events to subscribers of a bus.
type Notifier interface {
	SeatUpdate(busID string, event models.SeatUpdateEvent)
}

type LockStatus string

const (
	// StatusLocked means the caller now holds the seat, whether by a
	// fresh claim or by refreshing its own.
	StatusLocked LockStatus = "Locked"
	// StatusConflict means another session holds the seat. This is a
	// normal result, not an error: the seat-selection UI shows the seat
	// as unavailable.
	StatusConflict LockStatus = "Conflict"
)

type LockResult struct {
	Status   LockStatus `json:"status"`
	LockerID string     `json:"lockerId"`
}

// Service owns the lock/unlock protocol. It is the only writer to the
// lock store; the reconciler only reads it.
type Service struct {
	Locks    LockStore
	Catalog  Catalog
	Notifier Notifier
	Logger   *logger.Logger
}

func NewService(locks LockStore, catalog Catalog, notifier Notifier, log *logger.Logger) *Service {
	return &Service{Locks: locks, Catalog: catalog, Notifier: notifier, Logger: log}
}

func (s *Service) validate(ctx context.Context, busID, date string, seat int, lockerID string) error {
	if lockerID == "" {
		return ErrLockerIDRequired
	}
	if _, err := utils.ParseTravelDate(date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	bus, err := s.Catalog.GetBus(ctx, busID)
	if err != nil {
		return err
	}
	if seat < 1 || seat > bus.TotalSeats {
		return fmt.Errorf("%w: seat %d, bus has %d seats", ErrSeatOutOfRange, seat, bus.TotalSeats)
	}
	return nil
}

// Lock claims a seat for lockerID. Re-locking a seat the caller already
// holds refreshes the TTL and succeeds; a seat held by another session
// yields StatusConflict without touching the existing lock.
func (s *Service) Lock(ctx context.Context, busID, date string, seat int, lockerID string) (*LockResult, error) {
	if err := s.validate(ctx, busID, date, seat, lockerID); err != nil {
		return nil, err
	}

	acquired, err := s.Locks.Acquire(ctx, busID, date, seat, lockerID)
	if err != nil {
		return nil, fmt.Errorf("acquire seat lock: %w", err)
	}
	if !acquired {
		refreshed, err := s.Locks.Refresh(ctx, busID, date, seat, lockerID)
		if err != nil {
			return nil, fmt.Errorf("refresh seat lock: %w", err)
		}
		if !refreshed {
			s.Logger.LogLock("CONFLICT", busID, seat, "seat already locked by another session")
			return &LockResult{Status: StatusConflict, LockerID: lockerID}, nil
		}
	}

	s.Logger.LogLock("LOCK", busID, seat, "locked by "+lockerID)
	s.notify(busID, models.SeatUpdateEvent{
		SeatNumber: seat,
		Status:     models.SeatEventLocked,
		Date:       date,
		LockerID:   lockerID,
	})
	return &LockResult{Status: StatusLocked, LockerID: lockerID}, nil
}

// Unlock releases the caller's lock on a seat. Unlocking a seat that is
// not locked, already expired, or held by someone else is a no-op that
// still succeeds.
func (s *Service) Unlock(ctx context.Context, busID, date string, seat int, lockerID string) error {
	if lockerID == "" {
		return ErrLockerIDRequired
	}
	if _, err := utils.ParseTravelDate(date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	released, err := s.Locks.Release(ctx, busID, date, seat, lockerID)
	if err != nil {
		return fmt.Errorf("release seat lock: %w", err)
	}
	if released {
		s.Logger.LogLock("UNLOCK", busID, seat, "released by "+lockerID)
		s.notify(busID, models.SeatUpdateEvent{
			SeatNumber: seat,
			Status:     models.SeatEventAvailable,
			Date:       date,
		})
	}
	return nil
}

// MarkCash records a walk-up cash sale on a seat. The marker is
// informational; it does not claim the seat against online bookings.
func (s *Service) MarkCash(ctx context.Context, busID string, seat int) error {
	bus, err := s.Catalog.GetBus(ctx, busID)
	if err != nil {
		return err
	}
	if seat < 1 || seat > bus.TotalSeats {
		return fmt.Errorf("%w: seat %d, bus has %d seats", ErrSeatOutOfRange, seat, bus.TotalSeats)
	}
	if err := s.Catalog.UpdateSeatStatus(ctx, busID, seat, models.SeatStatusCash); err != nil {
		return fmt.Errorf("mark cash sale: %w", err)
	}
	s.notify(busID, models.SeatUpdateEvent{SeatNumber: seat, Status: models.SeatEventCash})
	return nil
}

// notify fans the event out without blocking the request path. The
// real-time surface is advisory only, so a lost event is harmless.
func (s *Service) notify(busID string, event models.SeatUpdateEvent) {
	if s.Notifier == nil {
		return
	}
	go s.Notifier.SeatUpdate(busID, event)
}
