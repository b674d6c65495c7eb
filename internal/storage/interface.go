package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
)

// Vehicle is the tank a customer brings to the pump
type Vehicle struct {
	MaxTankCapacity float64 `json:"max_tank_capacity" dynamodbav:"max_tank_capacity"` // liters
	FuelRemains     float64 `json:"fuel_remains" dynamodbav:"fuel_remains"`           // liters
}

// FreeSpace returns the liters that still fit in the tank
func (v Vehicle) FreeSpace() float64 {
	return v.MaxTankCapacity - v.FuelRemains
}

// Customer represents a station customer and the vehicle they own
type Customer struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Money     float64   `json:"money" dynamodbav:"money"`
	Vehicle   Vehicle   `json:"vehicle" dynamodbav:"vehicle"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// CustomerStorage defines the interface for customer data operations
type CustomerStorage interface {
	// CreateCustomer adds a new customer
	CreateCustomer(ctx context.Context, customer *Customer) error

	// GetCustomer retrieves a customer by ID
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	// UpdateCustomer replaces an existing customer record
	UpdateCustomer(ctx context.Context, customer *Customer) error

	// GetAllCustomers returns every stored customer
	GetAllCustomers(ctx context.Context) ([]*Customer, error)
}
