package service

import (
	"context"
	"testing"
	"time"

	"fuel-station/internal/storage"
)

func TestDemoTrafficGenerator_SimulateVisit(t *testing.T) {
	memStorage := storage.NewMemoryCustomerStorage()
	station := NewStationService(memStorage, nil)
	generator := NewDemoTrafficGenerator(station, time.Second)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		generator.simulateVisit()
	}

	customers, err := station.GetAllCustomers(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(customers) != 10 {
		t.Fatalf("Expected 10 demo customers, got %d", len(customers))
	}

	for _, c := range customers {
		if c.Vehicle.FuelRemains > c.Vehicle.MaxTankCapacity {
			t.Errorf("Customer %s overfilled: %.1f > %.1f", c.ID, c.Vehicle.FuelRemains, c.Vehicle.MaxTankCapacity)
		}
		if c.Money < 0 {
			t.Errorf("Customer %s overdrawn: %.2f", c.ID, c.Money)
		}
	}

	sales := station.GetSales()
	if sales.Fills+sales.SkippedFills != 10 {
		t.Errorf("Expected 10 fill attempts, got %d", sales.Fills+sales.SkippedFills)
	}
}

func TestDemoTrafficGenerator_CustomerLimit(t *testing.T) {
	memStorage := storage.NewMemoryCustomerStorage()
	station := NewStationService(memStorage, nil)

	generator := &DemoTrafficGenerator{
		station:      station,
		interval:     10 * time.Millisecond,
		maxCustomers: 3, // Low limit for testing
	}

	generator.Start()
	if !generator.IsRunning() {
		t.Fatal("Expected generator to be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, _ := station.GetCustomerCount(context.Background())
		if count >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Give the loop a few more ticks to prove it stops registering
	time.Sleep(50 * time.Millisecond)
	generator.Stop()

	count, err := station.GetCustomerCount(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 3 {
		t.Errorf("Expected exactly 3 demo customers, got %d", count)
	}

	if generator.IsRunning() {
		t.Error("Expected generator to be stopped")
	}

	// Stop is idempotent and Start works again after a stop
	generator.Stop()
	generator.Start()
	generator.Stop()
}

func TestDemoTrafficGenerator_NewDemoTrafficGenerator(t *testing.T) {
	station := NewStationService(storage.NewMemoryCustomerStorage(), nil)

	generator := NewDemoTrafficGenerator(station, 5*time.Second)

	if generator.station != station {
		t.Error("Expected station service to be set")
	}

	if generator.interval != 5*time.Second {
		t.Errorf("Expected interval 5s, got %v", generator.interval)
	}

	if generator.maxCustomers != 50 {
		t.Errorf("Expected max customers 50, got %d", generator.maxCustomers)
	}

	if generator.IsRunning() {
		t.Error("Expected new generator to be idle")
	}
}
