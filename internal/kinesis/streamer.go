package kinesis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"fuel-station/internal/storage"

	"github.com/aws/aws-sdk-go-v2/service/kinesis"
)

// Station event types
const (
	EventRegistered = "registered"
	EventFilled     = "filled"
	EventFundsAdded = "funds_added"
)

// KinesisAPI interface for mocking
type KinesisAPI interface {
	PutRecord(ctx context.Context, params *kinesis.PutRecordInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error)
}

type Streamer struct {
	client     KinesisAPI
	streamName string
}

// StationEvent is the record written to the stream after a customer changes
type StationEvent struct {
	CustomerID      string    `json:"customer_id"`
	EventType       string    `json:"event_type"` // registered, filled, funds_added
	Timestamp       time.Time `json:"timestamp"`
	Money           float64   `json:"money"`
	FuelRemains     float64   `json:"fuel_remains"`
	MaxTankCapacity float64   `json:"max_tank_capacity"`
	Liters          float64   `json:"liters,omitempty"`
	Amount          float64   `json:"amount,omitempty"`
}

func NewStreamer(client KinesisAPI, streamName string) *Streamer {
	return &Streamer{
		client:     client,
		streamName: streamName,
	}
}

// StreamStationEvent publishes a customer change. liters and amount are
// only meaningful for fills (liters poured, cost) and top-ups (amount added).
func (s *Streamer) StreamStationEvent(ctx context.Context, eventType string, customer *storage.Customer, liters, amount float64) {
	if s == nil || s.client == nil {
		return // Kinesis not enabled
	}

	event := StationEvent{
		CustomerID:      customer.ID,
		EventType:       eventType,
		Timestamp:       time.Now().UTC(),
		Money:           customer.Money,
		FuelRemains:     customer.Vehicle.FuelRemains,
		MaxTankCapacity: customer.Vehicle.MaxTankCapacity,
		Liters:          liters,
		Amount:          amount,
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal station event", "customer_id", customer.ID, "error", err)
		return
	}

	partitionKey := customer.ID
	_, err = s.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   &s.streamName,
		Data:         data,
		PartitionKey: &partitionKey,
	})

	if err != nil {
		slog.Error("Failed to stream station event", "customer_id", customer.ID, "event_type", eventType, "error", err)
	} else {
		slog.Debug("Streamed station event", "customer_id", customer.ID, "event_type", eventType)
	}
}
