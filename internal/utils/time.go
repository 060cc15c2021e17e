package utils

import (
	"fmt"
	"time"
)

const TravelDateLayout = "2006-01-02"

// ParseTravelDate validates a canonical YYYY-MM-DD travel date.
func ParseTravelDate(date string) (time.Time, error) {
	return time.Parse(TravelDateLayout, date)
}

// DepartureAt combines a travel date with a bus's HH:MM departure clock.
func DepartureAt(date, departureTime string) (time.Time, error) {
	d, err := time.Parse(TravelDateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid travel date %q: %w", date, err)
	}
	clock, err := time.Parse("15:04", departureTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid departure time %q: %w", departureTime, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

// Today returns the current travel date in canonical form.
func Today() string {
	return time.Now().Format(TravelDateLayout)
}
