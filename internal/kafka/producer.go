package kafka

import (
	"context"
	"encoding/json"

	kafka "github.com/segmentio/kafka-go"

	"ms-reservation/internal/models"
)

// Producer streams seat-update events to Kafka for downstream
// consumers (tracking dashboards, notification workers).
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

type seatUpdateMessage struct {
	BusID string `json:"bus_id"`
	models.SeatUpdateEvent
}

// PublishSeatUpdate streams one seat transition, keyed by bus so
// consumers see per-bus ordering.
func (p *Producer) PublishSeatUpdate(busID string, event models.SeatUpdateEvent) error {
	msgBytes, err := json.Marshal(seatUpdateMessage{BusID: busID, SeatUpdateEvent: event})
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(busID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
