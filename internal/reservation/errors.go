package reservation

import "errors"

var (
	// ErrBusNotFound means the referenced bus does not exist.
	ErrBusNotFound = errors.New("bus not found")
	// ErrSeatOutOfRange means the seat number is outside 1..totalSeats.
	ErrSeatOutOfRange = errors.New("seat number out of range")
	// ErrInvalidDate means the travel date is not canonical YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid travel date")
	// ErrLockerIDRequired means the caller supplied an empty locker id.
	ErrLockerIDRequired = errors.New("locker id is required")
	// ErrStoreUnavailable means the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)
