package memory

import (
	"context"
	"errors"
	"sync"

	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
)

// Catalog serves a small fixed demo fleet while Postgres is down.
type Catalog struct {
	mu    sync.RWMutex
	buses map[string]*models.Bus
}

// NewCatalog seeds the demo fleet the degraded mode serves.
func NewCatalog() *Catalog {
	c := &Catalog{buses: make(map[string]*models.Bus)}
	for _, bus := range demoFleet() {
		c.buses[bus.ID] = bus
	}
	return c
}

func demoFleet() []*models.Bus {
	express := &models.Bus{
		ID:            "demo-express-01",
		Name:          "City Express",
		RegNumber:     "KA-01-F-8344",
		Route:         "Bengaluru - Mysuru",
		DepartureTime: "07:30",
		TotalSeats:    40,
	}
	night := &models.Bus{
		ID:            "demo-sleeper-02",
		Name:          "Night Rider",
		RegNumber:     "KA-05-N-1129",
		Route:         "Bengaluru - Goa",
		DepartureTime: "21:15",
		TotalSeats:    30,
	}
	for _, bus := range []*models.Bus{express, night} {
		for n := 1; n <= bus.TotalSeats; n++ {
			seat := models.BusSeat{BusID: bus.ID, Number: n, ReservedFor: models.CategoryGeneral}
			// Front rows stay reserved for women and elderly passengers.
			switch {
			case n <= 4:
				seat.ReservedFor = models.CategoryWomen
			case n <= 6:
				seat.ReservedFor = models.CategoryElderly
			}
			bus.Seats = append(bus.Seats, seat)
		}
	}
	return []*models.Bus{express, night}
}

func (c *Catalog) GetBus(_ context.Context, busID string) (*models.Bus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bus, ok := c.buses[busID]
	if !ok {
		return nil, reservation.ErrBusNotFound
	}
	return bus, nil
}

func (c *Catalog) ListBuses(_ context.Context) ([]*models.Bus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buses := make([]*models.Bus, 0, len(c.buses))
	for _, bus := range c.buses {
		buses = append(buses, bus)
	}
	return buses, nil
}

func (c *Catalog) CreateBus(_ context.Context, bus *models.Bus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.buses[bus.ID]; exists {
		return errors.New("bus already exists")
	}
	if len(bus.Seats) == 0 {
		for n := 1; n <= bus.TotalSeats; n++ {
			bus.Seats = append(bus.Seats, models.BusSeat{
				BusID:       bus.ID,
				Number:      n,
				ReservedFor: models.CategoryGeneral,
			})
		}
	}
	c.buses[bus.ID] = bus
	return nil
}

func (c *Catalog) UpdateSeatStatus(_ context.Context, busID string, seat int, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	bus, ok := c.buses[busID]
	if !ok {
		return reservation.ErrBusNotFound
	}
	for i := range bus.Seats {
		if bus.Seats[i].Number == seat {
			bus.Seats[i].Status = status
			return nil
		}
	}
	return reservation.ErrSeatOutOfRange
}
