package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryCustomerStorage implements CustomerStorage using an in-memory map.
// Records are copied on the way in and out so callers never share state with the store.
type MemoryCustomerStorage struct {
	customers map[string]*Customer
	mu        sync.RWMutex
}

// NewMemoryCustomerStorage creates a new in-memory storage instance
func NewMemoryCustomerStorage() *MemoryCustomerStorage {
	return &MemoryCustomerStorage{
		customers: make(map[string]*Customer),
	}
}

func (m *MemoryCustomerStorage) CreateCustomer(ctx context.Context, customer *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.customers[customer.ID]; exists {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrCustomerExists)
	}

	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}
	customer.UpdatedAt = customer.CreatedAt

	stored := *customer
	m.customers[customer.ID] = &stored
	return nil
}

func (m *MemoryCustomerStorage) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customer, exists := m.customers[customerID]
	if !exists {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrCustomerNotFound)
	}

	result := *customer
	return &result, nil
}

func (m *MemoryCustomerStorage) UpdateCustomer(ctx context.Context, customer *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.customers[customer.ID]; !exists {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrCustomerNotFound)
	}

	customer.UpdatedAt = time.Now()
	stored := *customer
	m.customers[customer.ID] = &stored
	return nil
}

// GetAllCustomers returns customers ordered by creation time
func (m *MemoryCustomerStorage) GetAllCustomers(ctx context.Context) ([]*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Customer, 0, len(m.customers))
	for _, customer := range m.customers {
		c := *customer
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
