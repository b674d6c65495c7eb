package service

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// DemoTrafficGenerator simulates drivers pulling up to the pump for demo purposes
type DemoTrafficGenerator struct {
	station      *StationService
	mu           sync.Mutex
	isRunning    bool
	stopChan     chan struct{}
	interval     time.Duration
	maxCustomers int
}

// NewDemoTrafficGenerator creates a new demo traffic generator
func NewDemoTrafficGenerator(station *StationService, interval time.Duration) *DemoTrafficGenerator {
	return &DemoTrafficGenerator{
		station:      station,
		interval:     interval,
		maxCustomers: 50, // Stop registering drivers past 50 for the demo
	}
}

// Start begins generating random customers and fills
func (d *DemoTrafficGenerator) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return
	}

	d.isRunning = true
	d.stopChan = make(chan struct{})
	stop := d.stopChan
	slog.Info("Demo traffic generator started", "max_customers", d.maxCustomers, "interval", d.interval)

	go func() {
		for {
			wait := d.interval
			count, err := d.station.GetCustomerCount(context.Background())
			switch {
			case err != nil:
				slog.Error("Failed to get customer count", "error", err)
			case count >= d.maxCustomers:
				slog.Info("Demo customer limit reached, pausing generation", "customers", count, "max_customers", d.maxCustomers)
			default:
				d.simulateVisit()
				// Add jitter: up to half an interval either way
				if half := int64(d.interval / 2); half > 0 {
					wait = d.interval/2 + time.Duration(rand.Int63n(2*half))
				}
			}

			select {
			case <-stop:
				return
			case <-time.After(wait):
			}
		}
	}()
}

// Stop stops generating traffic
func (d *DemoTrafficGenerator) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return
	}

	d.isRunning = false
	close(d.stopChan)
	slog.Info("Demo traffic generator stopped")
}

// IsRunning returns whether the generator is active
func (d *DemoTrafficGenerator) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}

// simulateVisit registers a random driver and fills their tank
func (d *DemoTrafficGenerator) simulateVisit() {
	ctx := context.Background()

	name := demoDrivers[rand.Intn(len(demoDrivers))]
	capacity := demoTankSizes[rand.Intn(len(demoTankSizes))]
	fuelRemains := float64(rand.Intn(int(capacity)))
	money := float64(5 + rand.Intn(200))

	customer, err := d.station.RegisterCustomer(ctx, name, money, capacity, fuelRemains)
	if err != nil {
		slog.Error("Failed to register demo customer", "error", err)
		return
	}

	// Half the drivers ask to fill up, the rest ask for a fixed amount
	var amount *float64
	if rand.Float64() < 0.5 {
		liters := float64(1 + rand.Intn(40))
		amount = &liters
	}

	outcome, err := d.station.FillTank(ctx, customer.ID, nil, amount)
	if err != nil {
		slog.Error("Failed to fill demo customer", "customer_id", customer.ID, "error", err)
		return
	}

	slog.Info("Demo visit",
		"customer", name,
		"customer_id", customer.ID,
		"poured", outcome.Poured,
		"liters", outcome.Liters,
		"cost", outcome.Cost)
}

var demoTankSizes = []float64{40, 45, 50, 55, 60, 70, 80}

var demoDrivers = []string{
	"alex-chen", "sarah-johnson", "mike-rodriguez", "emma-davis",
	"james-wilson", "lisa-anderson", "david-brown", "maria-garcia",
	"chris-taylor", "jennifer-white", "robert-lee", "amanda-clark",
	"kevin-martinez", "stephanie-lewis", "brian-hall", "nicole-young",
	"delivery-van", "airport-shuttle", "rideshare-driver", "road-tripper",
}
