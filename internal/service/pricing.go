package service

import (
	"errors"
	"fmt"
)

var ErrInvalidPrice = errors.New("fuel price must be a positive number")

// PricingConfig holds pump pricing parameters
type PricingConfig struct {
	FuelPricePerLiter float64 // Flat rate charged per liter
}

// DefaultPricingConfig returns the standard pump price
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		FuelPricePerLiter: 1.85, // $1.85 per liter
	}
}

// NewPricingConfig builds a config for a station-wide price
func NewPricingConfig(pricePerLiter float64) (*PricingConfig, error) {
	if !(pricePerLiter > 0) || !finite(pricePerLiter) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPrice, pricePerLiter)
	}
	return &PricingConfig{FuelPricePerLiter: pricePerLiter}, nil
}

// ResolvePrice picks the per-request price override when given, otherwise the station price
func (p *PricingConfig) ResolvePrice(override *float64) (float64, error) {
	price := p.FuelPricePerLiter
	if override != nil {
		price = *override
	}

	if !(price > 0) || !finite(price) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidPrice, price)
	}
	return price, nil
}
