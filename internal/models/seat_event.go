package models

// Seat-update statuses carried on the real-time surface. Advisory UI
// refresh signals only, never the source of truth.
const (
	SeatEventLocked    = "Locked"
	SeatEventAvailable = "Available"
	SeatEventCash      = "Cash"
	SeatEventBooked    = "Booked"
)

// SeatUpdateEvent is broadcast to subscribers of a bus room whenever a
// seat transitions between locked/available/cash/booked.
type SeatUpdateEvent struct {
	SeatNumber int    `json:"seatNumber"`
	Status     string `json:"status"`
	Date       string `json:"date,omitempty"`
	LockerID   string `json:"lockerId,omitempty"`
}
