package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
)

// DB is the bun-backed bus catalog store.
type DB struct {
	Bun *bun.DB
}

// GetBus fetches one bus with its seat layout.
func (d *DB) GetBus(ctx context.Context, busID string) (*models.Bus, error) {
	var bus models.Bus
	err := d.Bun.NewSelect().
		Model(&bus).
		Relation("Seats").
		Where("bus.id = ?", busID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrBusNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bus, nil
}

// ListBuses fetches the whole fleet without seat layouts.
func (d *DB) ListBuses(ctx context.Context) ([]*models.Bus, error) {
	var buses []*models.Bus
	err := d.Bun.NewSelect().
		Model(&buses).
		Order("name").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return buses, nil
}

// CreateBus registers a bus and materializes its dense 1..TotalSeats
// layout. Seats not described in the request default to general.
func (d *DB) CreateBus(ctx context.Context, bus *models.Bus) error {
	if bus.TotalSeats < 1 {
		return fmt.Errorf("bus %s: total seats must be positive", bus.ID)
	}

	categories := make(map[int]string, len(bus.Seats))
	for _, seat := range bus.Seats {
		if seat.Number < 1 || seat.Number > bus.TotalSeats {
			return fmt.Errorf("bus %s: %w: seat %d", bus.ID, reservation.ErrSeatOutOfRange, seat.Number)
		}
		categories[seat.Number] = seat.ReservedFor
	}

	seats := make([]models.BusSeat, 0, bus.TotalSeats)
	for n := 1; n <= bus.TotalSeats; n++ {
		reservedFor := categories[n]
		if reservedFor == "" {
			reservedFor = models.CategoryGeneral
		}
		seats = append(seats, models.BusSeat{BusID: bus.ID, Number: n, ReservedFor: reservedFor})
	}
	bus.Seats = seats

	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(bus).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&bus.Seats).Exec(ctx)
		return err
	})
}

// UpdateSeatStatus records the walk-up sales marker on a single seat.
func (d *DB) UpdateSeatStatus(ctx context.Context, busID string, seat int, status string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.BusSeat)(nil)).
		Set("status = ?", status).
		Where("bus_id = ?", busID).
		Where("number = ?", seat).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return reservation.ErrBusNotFound
	}
	return nil
}
