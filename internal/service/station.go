package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fuel-station/internal/kinesis"
	"fuel-station/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCustomer = errors.New("invalid customer")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// FillOutcome is the result of a fill at the station, including the updated customer
type FillOutcome struct {
	FillResult
	FuelPrice float64           `json:"fuel_price"`
	Customer  *storage.Customer `json:"customer"`
}

// SalesSummary aggregates pump activity since the service started
type SalesSummary struct {
	Fills        int     `json:"fills"`
	SkippedFills int     `json:"skipped_fills"`
	LitersSold   float64 `json:"liters_sold"`
	Revenue      float64 `json:"revenue"`
}

// StationService handles customer and pump operations
type StationService struct {
	storage  storage.CustomerStorage
	pricing  *PricingConfig
	streamer *kinesis.Streamer

	// mu serializes read-modify-write cycles on customer balances and tanks
	mu           sync.Mutex
	fills        int
	skippedFills int
	litersSold   decimal.Decimal
	revenue      decimal.Decimal
}

// NewStationService creates a new station service instance
func NewStationService(storage storage.CustomerStorage, pricing *PricingConfig) *StationService {
	if pricing == nil {
		pricing = DefaultPricingConfig()
	}
	return &StationService{
		storage: storage,
		pricing: pricing,
	}
}

// SetKinesisStreamer sets the Kinesis streamer for station events
func (s *StationService) SetKinesisStreamer(streamer *kinesis.Streamer) {
	s.streamer = streamer
}

// FuelPrice returns the station's current price per liter
func (s *StationService) FuelPrice() float64 {
	return s.pricing.FuelPricePerLiter
}

// RegisterCustomer creates a customer with their vehicle. Money is kept to the cent.
func (s *StationService) RegisterCustomer(ctx context.Context, name string, money, maxTankCapacity, fuelRemains float64) (*storage.Customer, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCustomer)
	case !finite(money, maxTankCapacity, fuelRemains):
		return nil, fmt.Errorf("%w: values must be finite", ErrInvalidCustomer)
	case money < 0:
		return nil, fmt.Errorf("%w: money cannot be negative", ErrInvalidCustomer)
	case maxTankCapacity <= 0:
		return nil, fmt.Errorf("%w: tank capacity must be positive", ErrInvalidCustomer)
	case fuelRemains < 0 || fuelRemains > maxTankCapacity:
		return nil, fmt.Errorf("%w: fuel remains must be between 0 and tank capacity", ErrInvalidCustomer)
	}

	customer := &storage.Customer{
		ID:    uuid.NewString(),
		Name:  name,
		Money: decimal.NewFromFloat(money).Round(moneyPrecision).InexactFloat64(),
		Vehicle: storage.Vehicle{
			MaxTankCapacity: maxTankCapacity,
			FuelRemains:     fuelRemains,
		},
		CreatedAt: time.Now(),
	}

	if err := s.storage.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	slog.Info("Customer registered",
		"customer_id", customer.ID,
		"money", customer.Money,
		"max_tank_capacity", maxTankCapacity,
		"fuel_remains", fuelRemains)

	s.streamer.StreamStationEvent(ctx, kinesis.EventRegistered, customer, 0, 0)
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *StationService) GetCustomer(ctx context.Context, customerID string) (*storage.Customer, error) {
	return s.storage.GetCustomer(ctx, customerID)
}

// GetAllCustomers returns all customers
func (s *StationService) GetAllCustomers(ctx context.Context) ([]*storage.Customer, error) {
	return s.storage.GetAllCustomers(ctx)
}

// GetCustomerCount returns how many customers are registered
func (s *StationService) GetCustomerCount(ctx context.Context) (int, error) {
	customers, err := s.storage.GetAllCustomers(ctx)
	if err != nil {
		return 0, err
	}
	return len(customers), nil
}

// AddFunds credits a customer's balance
func (s *StationService) AddFunds(ctx context.Context, customerID string, amount float64) (*storage.Customer, error) {
	if !(amount > 0) || !finite(amount) {
		return nil, fmt.Errorf("%w: top-up must be positive", ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.storage.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	credit := decimal.NewFromFloat(amount).Round(moneyPrecision)
	customer.Money = decimal.NewFromFloat(customer.Money).Add(credit).InexactFloat64()

	if err := s.storage.UpdateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	slog.Info("Funds added", "customer_id", customerID, "amount", credit.InexactFloat64(), "money", customer.Money)
	s.streamer.StreamStationEvent(ctx, kinesis.EventFundsAdded, customer, 0, credit.InexactFloat64())
	return customer, nil
}

// FillTank pours fuel for a stored customer. priceOverride replaces the
// station price for this fill; a nil amount fills the tank to full.
// A fill below the minimum pour is not an error: the outcome reports
// Poured=false and nothing is written.
func (s *StationService) FillTank(ctx context.Context, customerID string, priceOverride, amount *float64) (*FillOutcome, error) {
	price, err := s.pricing.ResolvePrice(priceOverride)
	if err != nil {
		return nil, err
	}
	if amount != nil && (!finite(*amount) || *amount < 0) {
		return nil, fmt.Errorf("%w: requested liters cannot be negative", ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.storage.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	result := FillTank(customer, price, amount)
	outcome := &FillOutcome{FillResult: result, FuelPrice: price, Customer: customer}

	if !result.Poured {
		s.skippedFills++
		slog.Info("Fill skipped below minimum pour",
			"customer_id", customerID,
			"free_space", customer.Vehicle.FreeSpace(),
			"money", customer.Money,
			"fuel_price", price,
			"minimum_liters", MinimumPourLiters)
		return outcome, nil
	}

	if err := s.storage.UpdateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.fills++
	s.litersSold = s.litersSold.Add(decimal.NewFromFloat(result.Liters))
	s.revenue = s.revenue.Add(decimal.NewFromFloat(result.Cost))

	slog.Info("Tank filled",
		"customer_id", customerID,
		"liters", result.Liters,
		"cost", result.Cost,
		"fuel_price", price,
		"fuel_remains", customer.Vehicle.FuelRemains,
		"money", customer.Money)

	s.streamer.StreamStationEvent(ctx, kinesis.EventFilled, customer, result.Liters, result.Cost)
	return outcome, nil
}

// GetSales returns pump totals since startup
func (s *StationService) GetSales() SalesSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SalesSummary{
		Fills:        s.fills,
		SkippedFills: s.skippedFills,
		LitersSold:   s.litersSold.InexactFloat64(),
		Revenue:      s.revenue.InexactFloat64(),
	}
}
