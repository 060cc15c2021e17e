package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
)

func TestCatalog_DemoFleetSeeded(t *testing.T) {
	c := NewCatalog()
	ctx := context.Background()

	buses, err := c.ListBuses(ctx)
	require.NoError(t, err)
	assert.Len(t, buses, 2)

	bus, err := c.GetBus(ctx, "demo-express-01")
	require.NoError(t, err)
	assert.Equal(t, 40, bus.TotalSeats)
	require.Len(t, bus.Seats, 40)

	// Front rows carry the reserved categories
	assert.Equal(t, models.CategoryWomen, bus.Seats[0].ReservedFor)
	assert.Equal(t, models.CategoryWomen, bus.Seats[3].ReservedFor)
	assert.Equal(t, models.CategoryElderly, bus.Seats[4].ReservedFor)
	assert.Equal(t, models.CategoryElderly, bus.Seats[5].ReservedFor)
	assert.Equal(t, models.CategoryGeneral, bus.Seats[6].ReservedFor)
}

func TestCatalog_GetBusUnknown(t *testing.T) {
	c := NewCatalog()

	_, err := c.GetBus(context.Background(), "no-such-bus")
	assert.ErrorIs(t, err, reservation.ErrBusNotFound)
}

func TestCatalog_CreateBusMaterializesSeats(t *testing.T) {
	c := NewCatalog()
	ctx := context.Background()

	bus := &models.Bus{ID: "tiny-03", Name: "Tiny", TotalSeats: 4}
	require.NoError(t, c.CreateBus(ctx, bus))

	got, err := c.GetBus(ctx, "tiny-03")
	require.NoError(t, err)
	require.Len(t, got.Seats, 4)
	for i, seat := range got.Seats {
		assert.Equal(t, i+1, seat.Number)
		assert.Equal(t, models.CategoryGeneral, seat.ReservedFor)
	}

	err = c.CreateBus(ctx, &models.Bus{ID: "tiny-03", TotalSeats: 4})
	assert.Error(t, err, "Duplicate bus id should be rejected")
}

func TestCatalog_UpdateSeatStatus(t *testing.T) {
	c := NewCatalog()
	ctx := context.Background()

	require.NoError(t, c.UpdateSeatStatus(ctx, "demo-express-01", 10, models.SeatStatusCash))

	bus, err := c.GetBus(ctx, "demo-express-01")
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusCash, bus.Seats[9].Status)

	err = c.UpdateSeatStatus(ctx, "demo-express-01", 99, models.SeatStatusCash)
	assert.ErrorIs(t, err, reservation.ErrSeatOutOfRange)

	err = c.UpdateSeatStatus(ctx, "no-such-bus", 1, models.SeatStatusCash)
	assert.ErrorIs(t, err, reservation.ErrBusNotFound)
}
