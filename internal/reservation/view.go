package reservation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

// Reconciler merges the seat catalog, the live locks and the confirmed
// bookings into one authoritative availability view for a bus and date.
type Reconciler struct {
	Locks    LockStore
	Catalog  Catalog
	Bookings BookingReader

	// ReservedReleaseWindow downgrades reserved-category seats to
	// general availability once departure is this close.
	ReservedReleaseWindow time.Duration

	// Now is swappable in tests.
	Now func() time.Time
}

func NewReconciler(locks LockStore, catalog Catalog, bookings BookingReader, releaseWindow time.Duration) *Reconciler {
	return &Reconciler{
		Locks:                 locks,
		Catalog:               catalog,
		Bookings:              bookings,
		ReservedReleaseWindow: releaseWindow,
		Now:                   time.Now,
	}
}

// SeatView classifies every seat of the bus for the travel date as
// Booked, Locked or Available. Booked wins over a simultaneously
// present lock record: a real booking has already cleared its lock, so
// a leftover one is stale.
func (r *Reconciler) SeatView(ctx context.Context, busID, date, callerLockerID string) (*models.SeatView, error) {
	if _, err := utils.ParseTravelDate(date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	bus, err := r.Catalog.GetBus(ctx, busID)
	if err != nil {
		return nil, err
	}

	locks, err := r.Locks.Active(ctx, busID, date)
	if err != nil {
		return nil, fmt.Errorf("load active locks: %w", err)
	}
	lockBySeat := make(map[int]models.SeatLock, len(locks))
	for _, l := range locks {
		lockBySeat[l.SeatNumber] = l
	}

	bookedSeats, err := r.Bookings.BookedSeats(ctx, busID, date)
	if err != nil {
		return nil, fmt.Errorf("load booked seats: %w", err)
	}
	booked := make(map[int]bool, len(bookedSeats))
	for _, seat := range bookedSeats {
		booked[seat] = true
	}

	releaseReserved := r.withinReleaseWindow(date, bus.DepartureTime)

	catalogSeat := make(map[int]models.BusSeat, len(bus.Seats))
	for _, seat := range bus.Seats {
		catalogSeat[seat.Number] = seat
	}

	view := &models.SeatView{
		BusID:       busID,
		Date:        date,
		Seats:       make([]models.SeatState, 0, bus.TotalSeats),
		ActiveLocks: locks,
		BookedSeats: bookedSeats,
	}

	for number := 1; number <= bus.TotalSeats; number++ {
		state := models.SeatState{
			Number:      number,
			State:       models.SeatAvailable,
			ReservedFor: models.CategoryGeneral,
		}
		if cs, ok := catalogSeat[number]; ok {
			state.ReservedFor = cs.ReservedFor
			state.WalkUpStatus = cs.Status
		}
		if releaseReserved && state.ReservedFor != models.CategoryGeneral {
			state.OriginalReservedFor = state.ReservedFor
			state.ReservedFor = models.CategoryGeneral
		}

		switch {
		case booked[number]:
			state.State = models.SeatBooked
		case lockBySeat[number].LockerID != "":
			lock := lockBySeat[number]
			state.State = models.SeatLocked
			state.LockerID = lock.LockerID
			state.LockedByCaller = callerLockerID != "" && lock.LockerID == callerLockerID
		}

		view.Seats = append(view.Seats, state)
	}

	sort.Ints(view.BookedSeats)
	sort.Slice(view.ActiveLocks, func(i, j int) bool {
		return view.ActiveLocks[i].SeatNumber < view.ActiveLocks[j].SeatNumber
	})
	return view, nil
}

func (r *Reconciler) withinReleaseWindow(date, departureTime string) bool {
	departure, err := utils.DepartureAt(date, departureTime)
	if err != nil {
		return false
	}
	return departure.Sub(r.Now()) <= r.ReservedReleaseWindow
}
