// Package events publishes storefront facts for downstream consumers
// (notifications, analytics). Publishing is best-effort: callers log
// failures and move on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type OrderPlaced struct {
	OrderNumbers  []string  `json:"orderNumbers"`
	BuyerID       string    `json:"buyerId"`
	City          string    `json:"city"`
	PaymentMethod string    `json:"paymentMethod"`
	Total         float64   `json:"total"`
	PlacedAt      time.Time `json:"placedAt"`
}

type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(brokers ...string) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "storefront.order-placed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Kafka{writer: w}
}

func (k *Kafka) OrderPlaced(ctx context.Context, ev OrderPlaced) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	key := ev.BuyerID
	if len(ev.OrderNumbers) > 0 {
		key = ev.OrderNumbers[0]
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish order event failed: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
