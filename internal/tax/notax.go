package tax

import "context"

// NoTaxCalculator always returns zero tax. Used when the gateway is the sole
// tax authority and the storefront shows pre-tax estimates.
type NoTaxCalculator struct{}

// NewNoTaxCalculator creates a calculator that returns zero tax.
func NewNoTaxCalculator() Calculator {
	return &NoTaxCalculator{}
}

// CalculateTax returns zero tax.
func (c *NoTaxCalculator) CalculateTax(ctx context.Context, params Params) (*Result, error) {
	return &Result{
		TaxCents:   0,
		Rate:       0,
		IsEstimate: true,
	}, nil
}
