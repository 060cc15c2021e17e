package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Seat categories a seat can be reserved for. Reserved seats open up to
// general passengers close to departure.
const (
	CategoryGeneral  = "general"
	CategoryWomen    = "women"
	CategoryElderly  = "elderly"
	CategoryDisabled = "disabled"
)

// SeatStatusCash marks a seat sold on-board for cash by an employee.
// It is informational only: availability is decided by bookings and locks.
const SeatStatusCash = "Cash"

type Bus struct {
	bun.BaseModel `bun:"table:buses"`

	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	RegNumber     string    `bun:"reg_number,notnull" json:"reg_number"`
	Route         string    `bun:"route,notnull" json:"route"`
	DepartureTime string    `bun:"departure_time,notnull" json:"departure_time"` // HH:MM, 24h clock
	TotalSeats    int       `bun:"total_seats,notnull" json:"total_seats"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Seats []BusSeat `bun:"rel:has-many,join:id=bus_id" json:"seats,omitempty"`
}

// BusSeat is one physical seat of a bus. Seat numbers are a dense
// range 1..TotalSeats.
type BusSeat struct {
	bun.BaseModel `bun:"table:bus_seats"`

	ID          int64  `bun:"id,pk,autoincrement" json:"-"`
	BusID       string `bun:"bus_id,notnull" json:"bus_id"`
	Number      int    `bun:"number,notnull" json:"number"`
	ReservedFor string `bun:"reserved_for,notnull,default:'general'" json:"reserved_for"`
	Status      string `bun:"status,nullzero" json:"status,omitempty"` // walk-up sales marker, e.g. Cash
}
