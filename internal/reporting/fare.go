package reporting

import "github.com/shopspring/decimal"

// PricingConfig holds the distance-tiered tariff.
type PricingConfig struct {
	BaseFare       float64 // Flat fare for trips shorter than one unit
	RatePerUnit    float64 // Added per unit once a trip reaches one unit
	UnitKm         float64 // Kilometres per distance unit
	ServiceFeeRate float64 // Company share taken on top of the base cost
}

// DefaultPricingConfig returns the standard tricycle tariff.
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		BaseFare:       15.00,
		RatePerUnit:    1.50,
		UnitKm:         2,
		ServiceFeeRate: 0.10,
	}
}

// FareBreakdown is the split of a single ride's fare.
type FareBreakdown struct {
	DistanceKm      float64 `json:"distance_km"`
	BaseRideCost    float64 `json:"base_ride_cost"`
	ServiceFee      float64 `json:"service_fee"`
	SpecialAmount   float64 `json:"special_amount"`
	TotalFare       float64 `json:"total_fare"`
	DriverEarnings  float64 `json:"driver_earnings"`
	CompanyEarnings float64 `json:"company_earnings"`
}

// EnrichedRide pairs a normalized ride with its computed fare.
type EnrichedRide struct {
	Ride
	Fare FareBreakdown `json:"fare"`
}

// FareCalculator computes fare breakdowns from distance and priority. It is
// the single pricing authority for every report.
type FareCalculator struct {
	pricing PricingConfig
}

// NewFareCalculator creates a calculator; a nil config selects the defaults.
func NewFareCalculator(pricing *PricingConfig) *FareCalculator {
	if pricing == nil {
		pricing = DefaultPricingConfig()
	}
	return &FareCalculator{pricing: *pricing}
}

// Pricing returns a copy of the tariff in use.
func (c *FareCalculator) Pricing() PricingConfig {
	return c.pricing
}

// Calculate prices a ride. Only the special priority adds the special amount;
// urgent and priority bookings are charged as regular rides.
func (c *FareCalculator) Calculate(ride Ride) FareBreakdown {
	km := dec(ride.DistanceMeters).Div(decimal.NewFromInt(1000))

	base := dec(c.pricing.BaseFare)
	if c.pricing.UnitKm > 0 {
		units := km.Div(dec(c.pricing.UnitKm))
		if units.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			base = base.Add(units.Mul(dec(c.pricing.RatePerUnit)))
		}
	}

	// Outputs are rounded individually; the fee and total use the exact base.
	fee := base.Mul(dec(c.pricing.ServiceFeeRate))
	special := dec(ride.SpecialAmount).Round(2)
	if special.IsNegative() {
		special = decimal.Zero
	}

	total := base.Add(fee)
	driver := base
	if ride.PriorityType == PrioritySpecial {
		total = total.Add(special)
		driver = driver.Add(special)
	}

	return FareBreakdown{
		DistanceKm:      cents(km),
		BaseRideCost:    cents(base),
		ServiceFee:      cents(fee),
		SpecialAmount:   cents(special),
		TotalFare:       cents(total),
		DriverEarnings:  cents(driver),
		CompanyEarnings: cents(fee),
	}
}

// Enrich prices every ride once so aggregators share the same numbers.
func (c *FareCalculator) Enrich(rides []Ride) []EnrichedRide {
	out := make([]EnrichedRide, 0, len(rides))
	for _, r := range rides {
		out = append(out, EnrichedRide{Ride: r, Fare: c.Calculate(r)})
	}
	return out
}
