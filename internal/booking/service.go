package booking

import (
	"context"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
	"ms-reservation/internal/utils"
)

var (
	// ErrBookingNotFound means no booking exists for the given PNR.
	ErrBookingNotFound = errors.New("booking not found")

	ErrNoPassengers = errors.New("booking needs at least one passenger")
	// ErrSeatUnavailable means a requested seat is already sold or held
	// by another seat-selection session.
	ErrSeatUnavailable = errors.New("seat unavailable")
	// ErrInvalidTransition means the requested status change would move
	// the booking backwards or resurrect a terminal one.
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// statusRank orders the forward-only lifecycle. Cancelled is a terminal
// branch reachable only before boarding.
var statusRank = map[string]int{
	models.BookingUpcoming:  0,
	models.BookingConfirmed: 1,
	models.BookingBoarded:   2,
	models.BookingCompleted: 3,
}

type Store interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetByPNR(ctx context.Context, pnr string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, pnr, status, paymentStatus string) error
	BookedSeats(ctx context.Context, busID, date string) ([]int, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
}

type SeatLocks interface {
	Release(ctx context.Context, busID, date string, seat int, lockerID string) (bool, error)
	Active(ctx context.Context, busID, date string) ([]models.SeatLock, error)
}

type Catalog interface {
	GetBus(ctx context.Context, busID string) (*models.Bus, error)
}

type Notifier interface {
	SeatUpdate(busID string, event models.SeatUpdateEvent)
}

type CreateBookingRequest struct {
	UserID     string             `json:"user_id"`
	BusID      string             `json:"bus_id"`
	Date       string             `json:"date"`
	LockerID   string             `json:"lockerId"`
	Amount     float64            `json:"amount"`
	Passengers []models.Passenger `json:"passengers"`
}

// Service runs the booking workflow: durable seat assignment once
// payment settles, release of the checkout locks, and the Booked
// broadcast. Seat numbers inside a booking are immutable once payment
// completes.
type Service struct {
	Store    Store
	Locks    SeatLocks
	Catalog  Catalog
	Notifier Notifier
	Logger   *logger.Logger
}

func NewService(store Store, locks SeatLocks, catalog Catalog, notifier Notifier, log *logger.Logger) *Service {
	return &Service{Store: store, Locks: locks, Catalog: catalog, Notifier: notifier, Logger: log}
}

// CreateBooking validates the requested seats against sold seats and
// foreign locks, then writes a Pending booking under a fresh PNR.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if len(req.Passengers) == 0 {
		return nil, ErrNoPassengers
	}
	if _, err := utils.ParseTravelDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %q", reservation.ErrInvalidDate, req.Date)
	}
	bus, err := s.Catalog.GetBus(ctx, req.BusID)
	if err != nil {
		return nil, err
	}

	requested := make(map[int]bool, len(req.Passengers))
	for _, p := range req.Passengers {
		if p.SeatNumber < 1 || p.SeatNumber > bus.TotalSeats {
			return nil, fmt.Errorf("%w: seat %d, bus has %d seats", reservation.ErrSeatOutOfRange, p.SeatNumber, bus.TotalSeats)
		}
		if requested[p.SeatNumber] {
			return nil, fmt.Errorf("%w: seat %d requested twice", ErrSeatUnavailable, p.SeatNumber)
		}
		requested[p.SeatNumber] = true
	}

	sold, err := s.Store.BookedSeats(ctx, req.BusID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("check sold seats: %w", err)
	}
	for _, seat := range sold {
		if requested[seat] {
			return nil, fmt.Errorf("%w: seat %d already booked", ErrSeatUnavailable, seat)
		}
	}

	// A seat locked by a different checkout session cannot be booked;
	// the caller's own locks are exactly what a booking is meant to
	// convert.
	locks, err := s.Locks.Active(ctx, req.BusID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("check seat locks: %w", err)
	}
	for _, lock := range locks {
		if requested[lock.SeatNumber] && lock.LockerID != req.LockerID {
			return nil, fmt.Errorf("%w: seat %d locked by another session", ErrSeatUnavailable, lock.SeatNumber)
		}
	}

	booking := &models.Booking{
		PNR:           utils.GeneratePNR(),
		UserID:        req.UserID,
		BusID:         req.BusID,
		Date:          req.Date,
		Amount:        req.Amount,
		Status:        models.BookingUpcoming,
		PaymentStatus: models.PaymentPending,
		LockerID:      req.LockerID,
		Passengers:    req.Passengers,
	}
	if err := s.Store.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.Logger.LogBooking("CREATE", booking.PNR, fmt.Sprintf("bus=%s date=%s seats=%v", req.BusID, req.Date, booking.SeatNumbers()))
	return booking, nil
}

// ConfirmPayment marks the booking paid, releases the checkout locks
// and broadcasts the sold seats. The booking write and the lock
// deletions are treated as a unit: if a release fails, the stale lock
// just blocks the seat until its TTL, and the reconciler already gives
// booked status priority, so this is logged and tolerated.
func (s *Service) ConfirmPayment(ctx context.Context, pnr string) (*models.Booking, error) {
	booking, err := s.Store.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		return booking, nil // settlement already recorded
	}
	if booking.Status == models.BookingCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", ErrInvalidTransition, pnr)
	}

	// The create-time seat check only sees what was sold then. Two
	// Pending bookings for the same seat can coexist, so the sold set
	// is re-read at settlement and only the first confirm wins.
	sold, err := s.Store.BookedSeats(ctx, booking.BusID, booking.Date)
	if err != nil {
		return nil, fmt.Errorf("check sold seats: %w", err)
	}
	soldNow := make(map[int]bool, len(sold))
	for _, seat := range sold {
		soldNow[seat] = true
	}
	for _, seat := range booking.SeatNumbers() {
		if soldNow[seat] {
			s.Logger.LogBooking("CONFIRM_REJECTED", pnr, fmt.Sprintf("seat %d sold while payment was pending", seat))
			return nil, fmt.Errorf("%w: seat %d was sold while payment was pending", ErrSeatUnavailable, seat)
		}
	}

	if err := s.Store.UpdateStatus(ctx, pnr, models.BookingConfirmed, models.PaymentCompleted); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	booking.Status = models.BookingConfirmed
	booking.PaymentStatus = models.PaymentCompleted

	for _, seat := range booking.SeatNumbers() {
		if booking.LockerID != "" {
			if _, err := s.Locks.Release(ctx, booking.BusID, booking.Date, seat, booking.LockerID); err != nil {
				s.Logger.Warn("BOOKING", fmt.Sprintf("stale lock left on bus=%s seat=%d: %v", booking.BusID, seat, err))
			}
		}
		s.notify(booking.BusID, models.SeatUpdateEvent{
			SeatNumber: seat,
			Status:     models.SeatEventBooked,
			Date:       booking.Date,
		})
	}

	s.Logger.LogBooking("CONFIRM", pnr, "payment completed, seats booked")
	return booking, nil
}

// MarkPaymentFailed records a failed settlement; the booking stays
// Upcoming and its seats remain claimable once the locks expire.
func (s *Service) MarkPaymentFailed(ctx context.Context, pnr string) error {
	booking, err := s.Store.GetByPNR(ctx, pnr)
	if err != nil {
		return err
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		return fmt.Errorf("%w: payment already completed for %s", ErrInvalidTransition, pnr)
	}
	if err := s.Store.UpdateStatus(ctx, pnr, booking.Status, models.PaymentFailed); err != nil {
		return err
	}
	s.Logger.LogBooking("PAYMENT_FAILED", pnr, "settlement failed")
	return nil
}

// UpdateStatus moves a booking forward through its lifecycle. Moving
// backwards, or out of Cancelled/Completed, is rejected.
func (s *Service) UpdateStatus(ctx context.Context, pnr, next string) (*models.Booking, error) {
	booking, err := s.Store.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}

	current := booking.Status
	if current == models.BookingCancelled || current == models.BookingCompleted {
		return nil, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current)
	}

	if next == models.BookingCancelled {
		if statusRank[current] >= statusRank[models.BookingBoarded] {
			return nil, fmt.Errorf("%w: cannot cancel after boarding", ErrInvalidTransition)
		}
	} else {
		nextRank, known := statusRank[next]
		if !known || nextRank <= statusRank[current] {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
		}
	}

	if err := s.Store.UpdateStatus(ctx, pnr, next, booking.PaymentStatus); err != nil {
		return nil, err
	}
	booking.Status = next
	s.Logger.LogBooking("STATUS", pnr, current+" -> "+next)
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, pnr string) (*models.Booking, error) {
	return s.Store.GetByPNR(ctx, pnr)
}

func (s *Service) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Store.ListByUser(ctx, userID)
}

// TicketQR renders the boarding-pass QR for a paid booking as PNG bytes.
func (s *Service) TicketQR(ctx context.Context, pnr string) ([]byte, error) {
	booking, err := s.Store.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentCompleted {
		return nil, ErrPaymentNotCompleted
	}
	payload := fmt.Sprintf("%s|%s|%s", booking.PNR, booking.BusID, booking.Date)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode ticket qr: %w", err)
	}
	return png, nil
}

func (s *Service) notify(busID string, event models.SeatUpdateEvent) {
	if s.Notifier == nil {
		return
	}
	go s.Notifier.SeatUpdate(busID, event)
}
