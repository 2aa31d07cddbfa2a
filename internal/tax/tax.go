package tax

import "context"

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator.
type Calculator interface {
	// CalculateTax computes tax for a cart subtotal.
	// Returns tax amount in cents.
	CalculateTax(ctx context.Context, params Params) (*Result, error)
}

// Params contains the information needed for tax calculation.
type Params struct {
	SubtotalCents int64
}

// Result contains the calculated tax amount.
type Result struct {
	TaxCents   int64
	Rate       float64
	IsEstimate bool
}
