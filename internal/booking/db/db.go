package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-reservation/internal/booking"
	"ms-reservation/internal/models"
)

// DB is the bun-backed booking store. Bookings are the durable source
// of truth for sold seats; only the booking workflow writes here.
type DB struct {
	Bun *bun.DB
}

// CreateBooking inserts the booking and its passenger rows as a unit.
func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(booking).Exec(ctx); err != nil {
			return err
		}
		for i := range booking.Passengers {
			booking.Passengers[i].PNR = booking.PNR
		}
		_, err := tx.NewInsert().Model(&booking.Passengers).Exec(ctx)
		return err
	})
}

// GetByPNR fetches one booking with its passenger list.
func (d *DB) GetByPNR(ctx context.Context, pnr string) (*models.Booking, error) {
	var found models.Booking
	err := d.Bun.NewSelect().
		Model(&found).
		Relation("Passengers").
		Where("booking.pnr = ?", pnr).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// UpdateStatus sets the booking and payment status. Transition ordering
// is enforced by the booking service, not here.
func (d *DB) UpdateStatus(ctx context.Context, pnr, status, paymentStatus string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("status = ?", status).
		Set("payment_status = ?", paymentStatus).
		Where("pnr = ?", pnr).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// BookedSeats flattens the passenger seat numbers of payment-completed,
// non-cancelled bookings for a bus and travel date.
func (d *DB) BookedSeats(ctx context.Context, busID, date string) ([]int, error) {
	var seats []int
	err := d.Bun.NewSelect().
		ColumnExpr("p.seat_number").
		TableExpr("booking_passengers AS p").
		Join("JOIN bookings AS b ON b.pnr = p.pnr").
		Where("b.bus_id = ?", busID).
		Where("b.date = ?", date).
		Where("b.payment_status = ?", models.PaymentCompleted).
		Where("b.status != ?", models.BookingCancelled).
		Scan(ctx, &seats)
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// ListByUser fetches a user's bookings, newest first.
func (d *DB) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Relation("Passengers").
		Where("booking.user_id = ?", userID).
		Order("booking.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
