package pricing

import (
	"context"

	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/shipping"
	"github.com/torsore/storefront/internal/tax"
)

// EstimatedTotals is the pre-checkout price breakdown shown to the shopper.
// These are display estimates only; the amounts actually charged come from
// the gateway and are recorded as billing.CapturedTotals.
type EstimatedTotals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	TotalCents    int64 `json:"totalCents"`
}

// Estimator derives an estimated price breakdown from cart contents.
// Shipping uses the standard option (free at or above the configured
// threshold); tax comes from the configured calculator.
type Estimator struct {
	menu shipping.Menu
	tax  tax.Calculator
}

// NewEstimator creates a pricing estimator.
func NewEstimator(menu shipping.Menu, calc tax.Calculator) *Estimator {
	return &Estimator{menu: menu, tax: calc}
}

// Estimate computes subtotal, shipping, tax, and total for a cart.
// An empty cart estimates to the flat shipping rate plus zero tax; callers
// gate checkout on emptiness, not this layer.
func (e *Estimator) Estimate(ctx context.Context, cart domain.Cart) (*EstimatedTotals, error) {
	subtotal := cart.SubtotalCents()
	shippingCents := e.menu.StandardCostCents(subtotal)

	taxResult, err := e.tax.CalculateTax(ctx, tax.Params{SubtotalCents: subtotal})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "pricing.estimate", "failed to calculate tax")
	}

	return &EstimatedTotals{
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TaxCents:      taxResult.TaxCents,
		TotalCents:    subtotal + shippingCents + taxResult.TaxCents,
	}, nil
}

// ShippingOptions returns the shipping menu for a cart. The same menu is
// offered to the gateway at session creation.
func (e *Estimator) ShippingOptions(cart domain.Cart) []shipping.Option {
	return e.menu.Options(cart.SubtotalCents())
}
