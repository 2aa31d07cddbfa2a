package shipping

import "time"

// Service codes for the storefront's shipping options.
const (
	CodeStandard = "STD"
	CodeExpress  = "EXP"
)

// Option is a single shipping choice offered to the shopper at checkout.
type Option struct {
	ServiceName           string
	ServiceCode           string
	CostCents             int64
	DaysMin               int
	DaysMax               int
	EstimatedDeliveryDate time.Time
}

// Free reports whether the option costs nothing.
func (o Option) Free() bool {
	return o.CostCents == 0
}

// Menu computes the fixed shipping options offered for a cart. Standard
// shipping is free at or above the configured subtotal threshold; express is
// always a flat rate.
type Menu struct {
	FreeThresholdCents int64
	StandardRateCents  int64
	ExpressRateCents   int64
}

// NewMenu creates a shipping menu from configured rates.
func NewMenu(freeThresholdCents, standardRateCents, expressRateCents int64) Menu {
	return Menu{
		FreeThresholdCents: freeThresholdCents,
		StandardRateCents:  standardRateCents,
		ExpressRateCents:   expressRateCents,
	}
}

// StandardCostCents returns the standard shipping cost for a subtotal.
// An empty cart still pays the flat rate; the threshold is the only discount.
func (m Menu) StandardCostCents(subtotalCents int64) int64 {
	if subtotalCents >= m.FreeThresholdCents {
		return 0
	}
	return m.StandardRateCents
}

// Options returns the shipping menu for a subtotal. Standard is listed first
// and is the default selection; express is an alternative, never auto-selected.
func (m Menu) Options(subtotalCents int64) []Option {
	standardCost := m.StandardCostCents(subtotalCents)
	standardName := "Standard Shipping"
	if standardCost == 0 {
		standardName = "Free Shipping"
	}

	now := time.Now()
	return []Option{
		{
			ServiceName:           standardName,
			ServiceCode:           CodeStandard,
			CostCents:             standardCost,
			DaysMin:               5,
			DaysMax:               7,
			EstimatedDeliveryDate: now.AddDate(0, 0, 7),
		},
		{
			ServiceName:           "Express Shipping",
			ServiceCode:           CodeExpress,
			CostCents:             m.ExpressRateCents,
			DaysMin:               2,
			DaysMax:               3,
			EstimatedDeliveryDate: now.AddDate(0, 0, 3),
		},
	}
}
