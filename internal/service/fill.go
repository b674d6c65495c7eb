package service

import (
	"math"

	"fuel-station/internal/storage"

	"github.com/shopspring/decimal"
)

const (
	// MinimumPourLiters is the smallest fill the pump will dispense
	MinimumPourLiters = 2.0

	literPrecision int32 = 1 // pour in tenths of a liter
	moneyPrecision int32 = 2 // charge in cents
)

var minimumPour = decimal.NewFromFloat(MinimumPourLiters)

// FillResult describes what a single FillTank call dispensed
type FillResult struct {
	Poured bool    `json:"poured"`
	Liters float64 `json:"liters"`
	Cost   float64 `json:"cost"`
}

// FillTank pours as much fuel as the request, the free tank space and the
// customer's funds allow, then updates the vehicle's fuel level and the
// customer's money in place. A nil amount means fill to full.
//
// The poured volume is truncated to 0.1 L; anything under MinimumPourLiters
// leaves the customer untouched. The cost is rounded half away from zero to
// the cent. Non-positive or non-finite inputs are treated as a no-op.
func FillTank(customer *storage.Customer, fuelPrice float64, amount *float64) FillResult {
	if customer == nil || !(fuelPrice > 0) || !finite(fuelPrice, customer.Money, customer.Vehicle.MaxTankCapacity, customer.Vehicle.FuelRemains) {
		return FillResult{}
	}
	if amount != nil && !finite(*amount) {
		return FillResult{}
	}

	vehicle := &customer.Vehicle
	remains := decimal.NewFromFloat(vehicle.FuelRemains)
	money := decimal.NewFromFloat(customer.Money)
	price := decimal.NewFromFloat(fuelPrice)

	freeSpace := decimal.NewFromFloat(vehicle.MaxTankCapacity).Sub(remains)

	requested := freeSpace
	if amount != nil {
		requested = decimal.NewFromFloat(*amount)
	}

	// Quotient truncated straight to the pour precision, so a ratio such
	// as 109.9/10 is never nudged across a tenth by rounding.
	affordable, _ := money.QuoRem(price, literPrecision)

	pourable := decimal.Min(requested, freeSpace, affordable).Truncate(literPrecision)
	if pourable.LessThan(minimumPour) {
		return FillResult{}
	}

	cost := pourable.Mul(price).Round(moneyPrecision)
	// Only reachable with sub-cent balances, where rounding up would overdraw.
	if cost.GreaterThan(money) {
		cost = money
	}

	vehicle.FuelRemains = remains.Add(pourable).InexactFloat64()
	customer.Money = money.Sub(cost).InexactFloat64()

	return FillResult{
		Poured: true,
		Liters: pourable.InexactFloat64(),
		Cost:   cost.InexactFloat64(),
	}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
