package models

// Seat states in the reconciled view.
const (
	SeatAvailable = "Available"
	SeatLocked    = "Locked"
	SeatBooked    = "Booked"
)

// SeatState is the reconciled classification of a single seat for one
// bus and travel date. Booked wins over Locked when both records exist.
type SeatState struct {
	Number         int    `json:"number"`
	State          string `json:"state"`
	LockedByCaller bool   `json:"locked_by_caller,omitempty"`
	LockerID       string `json:"lockerId,omitempty"`
	ReservedFor    string `json:"reserved_for"`
	// OriginalReservedFor keeps the configured category after the
	// close-to-departure downgrade to general, for display.
	OriginalReservedFor string `json:"original_reserved_for,omitempty"`
	WalkUpStatus        string `json:"status,omitempty"`
}

// SeatView is the point-in-time availability snapshot for a bus and
// date. It is not transactionally consistent with later mutations; the
// lock operation re-validates on its own.
type SeatView struct {
	BusID       string      `json:"bus_id"`
	Date        string      `json:"date"`
	Seats       []SeatState `json:"seats"`
	ActiveLocks []SeatLock  `json:"activeLocks"`
	BookedSeats []int       `json:"bookedSeats"`
}
