package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservation/internal/booking"
	"ms-reservation/internal/models"
)

func seedBooking(pnr, userID, busID, date, status, paymentStatus string, seats ...int) *models.Booking {
	b := &models.Booking{
		PNR:           pnr,
		UserID:        userID,
		BusID:         busID,
		Date:          date,
		Status:        status,
		PaymentStatus: paymentStatus,
	}
	for _, n := range seats {
		b.Passengers = append(b.Passengers, models.Passenger{PNR: pnr, Name: "P", SeatNumber: n})
	}
	return b
}

func TestBookingStore_CreateAndGet(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()

	b := seedBooking("BUSABC12345", "user-1", "bus-1", "2026-09-15", models.BookingUpcoming, models.PaymentPending, 4, 5)
	require.NoError(t, s.CreateBooking(ctx, b))

	got, err := s.GetByPNR(ctx, "BUSABC12345")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, got.SeatNumbers())

	err = s.CreateBooking(ctx, b)
	assert.Error(t, err, "Duplicate PNR should be rejected")

	_, err = s.GetByPNR(ctx, "BUSNOPE0000")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestBookingStore_UpdateStatus(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()

	b := seedBooking("BUSABC12345", "user-1", "bus-1", "2026-09-15", models.BookingUpcoming, models.PaymentPending, 4)
	require.NoError(t, s.CreateBooking(ctx, b))

	require.NoError(t, s.UpdateStatus(ctx, "BUSABC12345", models.BookingConfirmed, models.PaymentCompleted))

	got, err := s.GetByPNR(ctx, "BUSABC12345")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.Equal(t, models.PaymentCompleted, got.PaymentStatus)

	err = s.UpdateStatus(ctx, "BUSNOPE0000", models.BookingConfirmed, models.PaymentCompleted)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestBookingStore_BookedSeatsOnlyPaidUncancelled(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()

	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSPAID0001", "u1", "bus-1", "2026-09-15", models.BookingConfirmed, models.PaymentCompleted, 1, 2)))
	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSPEND0002", "u2", "bus-1", "2026-09-15", models.BookingUpcoming, models.PaymentPending, 3)))
	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSCANC0003", "u3", "bus-1", "2026-09-15", models.BookingCancelled, models.PaymentCompleted, 4)))
	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSDATE0004", "u4", "bus-1", "2026-09-16", models.BookingConfirmed, models.PaymentCompleted, 5)))
	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSOTHR0005", "u5", "bus-2", "2026-09-15", models.BookingConfirmed, models.PaymentCompleted, 6)))

	seats, err := s.BookedSeats(ctx, "bus-1", "2026-09-15")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, seats,
		"Only payment-completed, uncancelled bookings for the bus and date count as sold")
}

func TestBookingStore_ListByUser(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()

	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSAAA00001", "u1", "bus-1", "2026-09-15", models.BookingConfirmed, models.PaymentCompleted, 1)))
	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSAAA00002", "u1", "bus-2", "2026-09-16", models.BookingUpcoming, models.PaymentPending, 2)))
	require.NoError(t, s.CreateBooking(ctx, seedBooking("BUSBBB00003", "u2", "bus-1", "2026-09-15", models.BookingConfirmed, models.PaymentCompleted, 3)))

	mine, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := s.ListByUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}
