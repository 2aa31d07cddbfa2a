package tax

import (
	"context"
	"math"
)

// PercentageCalculator estimates tax as a flat percentage of the subtotal.
// The result is a display estimate; authoritative tax is whatever the payment
// gateway's own configuration produces at capture time.
type PercentageCalculator struct {
	rate float64 // e.g., 0.08 for 8%
}

// NewPercentageCalculator creates a new percentage-based tax calculator.
func NewPercentageCalculator(rate float64) Calculator {
	return &PercentageCalculator{rate: rate}
}

// CalculateTax computes tax on the subtotal using the configured rate,
// rounded to the nearest cent.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params Params) (*Result, error) {
	taxCents := int64(math.Round(float64(params.SubtotalCents) * c.rate))

	return &Result{
		TaxCents:   taxCents,
		Rate:       c.rate,
		IsEstimate: true,
	}, nil
}
