package memory

import (
	"context"
	"errors"
	"sync"

	"ms-reservation/internal/booking"
	"ms-reservation/internal/models"
)

// BookingStore holds bookings in process memory for degraded mode.
// It emulates the same reads and writes as the bun-backed store.
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]*models.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[string]*models.Booking)}
}

func (s *BookingStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[booking.PNR]; exists {
		return errors.New("booking already exists")
	}
	s.bookings[booking.PNR] = booking
	return nil
}

func (s *BookingStore) GetByPNR(_ context.Context, pnr string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[pnr]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

func (s *BookingStore) UpdateStatus(_ context.Context, pnr, status, paymentStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[pnr]
	if !ok {
		return booking.ErrBookingNotFound
	}
	b.Status = status
	b.PaymentStatus = paymentStatus
	return nil
}

func (s *BookingStore) BookedSeats(_ context.Context, busID, date string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seats := []int{}
	for _, booking := range s.bookings {
		if booking.BusID != busID || booking.Date != date {
			continue
		}
		if booking.PaymentStatus != models.PaymentCompleted || booking.Status == models.BookingCancelled {
			continue
		}
		seats = append(seats, booking.SeatNumbers()...)
	}
	return seats, nil
}

func (s *BookingStore) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Booking{}
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			result = append(result, *booking)
		}
	}
	return result, nil
}
