package models

// SeatLock is a short-lived exclusive claim on one seat of one bus for
// one travel date. The store enforces at most one live lock per
// (bus, date, seat) and expires entries on its own after the TTL.
type SeatLock struct {
	BusID      string `json:"bus_id"`
	Date       string `json:"date"`
	SeatNumber int    `json:"seatNumber"`
	LockerID   string `json:"lockerId"`
}
