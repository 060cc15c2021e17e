package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking lifecycle statuses. Transitions only move forward; a
// cancelled or completed booking is never resurrected.
const (
	BookingUpcoming  = "Upcoming"
	BookingConfirmed = "Confirmed"
	BookingBoarded   = "Boarded"
	BookingCompleted = "Completed"
	BookingCancelled = "Cancelled"
)

const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	PNR           string    `bun:"pnr,pk" json:"pnr"`
	UserID        string    `bun:"user_id,notnull" json:"user_id"`
	BusID         string    `bun:"bus_id,notnull" json:"bus_id"`
	Date          string    `bun:"date,notnull" json:"date"` // travel date, YYYY-MM-DD
	Amount        float64   `bun:"amount,notnull" json:"amount"`
	Status        string    `bun:"status,notnull" json:"status"`
	PaymentStatus string    `bun:"payment_status,notnull" json:"payment_status"`
	LockerID      string    `bun:"locker_id,nullzero" json:"-"` // seat-selection session that held the locks
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Passengers []Passenger `bun:"rel:has-many,join:pnr=pnr" json:"passengers,omitempty"`
}

type Passenger struct {
	bun.BaseModel `bun:"table:booking_passengers"`

	ID         int64  `bun:"id,pk,autoincrement" json:"-"`
	PNR        string `bun:"pnr,notnull" json:"-"`
	Name       string `bun:"name,notnull" json:"name"`
	Age        int    `bun:"age,notnull" json:"age"`
	Gender     string `bun:"gender,notnull" json:"gender"`
	SeatNumber int    `bun:"seat_number,notnull" json:"seat_number"`
}

// SeatNumbers returns the seats covered by the booking, in passenger order.
func (b *Booking) SeatNumbers() []int {
	seats := make([]int, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		seats = append(seats, p.SeatNumber)
	}
	return seats
}
