// Package notifier fans seat-update events out to the real-time
// surfaces: the per-bus WebSocket rooms and the Kafka topic. Delivery
// is fire-and-forget; the reconciled seat view is the source of truth.
package notifier

import (
	"fmt"

	"ms-reservation/internal/kafka"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
)

type Target interface {
	SeatUpdate(busID string, event models.SeatUpdateEvent)
}

// Fanout delivers each event to every configured target.
type Fanout struct {
	targets []Target
}

func NewFanout(targets ...Target) *Fanout {
	return &Fanout{targets: targets}
}

func (f *Fanout) SeatUpdate(busID string, event models.SeatUpdateEvent) {
	for _, t := range f.targets {
		t.SeatUpdate(busID, event)
	}
}

// KafkaTarget adapts the Kafka producer to the notifier surface,
// logging publish failures instead of surfacing them.
type KafkaTarget struct {
	Producer *kafka.Producer
	Logger   *logger.Logger
}

func (k *KafkaTarget) SeatUpdate(busID string, event models.SeatUpdateEvent) {
	if err := k.Producer.PublishSeatUpdate(busID, event); err != nil {
		k.Logger.Error("KAFKA", fmt.Sprintf("publish seat update for bus %s: %v", busID, err))
	}
}
