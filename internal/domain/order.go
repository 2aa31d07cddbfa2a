package domain

import (
	"context"

	"github.com/torsore/storefront/internal/repository"
)

// =============================================================================
// ORDER DOMAIN ERRORS
// =============================================================================

var (
	ErrOrderNotFound           = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrSessionAlreadyProcessed = &Error{Code: ECONFLICT, Message: "Checkout session already processed"}
	ErrPaymentNotCompleted     = &Error{Code: EPAYMENT, Message: "Payment has not completed"}
	ErrTerminalStatus          = &Error{Code: ECONFLICT, Message: "Order is in a terminal status"}
	ErrInvalidStatus           = &Error{Code: EINVALID, Message: "Unknown order status"}
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every valid status, in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// Any non-terminal status may move to any other status; terminal statuses
// (delivered, cancelled, refunded) accept no outgoing transitions.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return false
	}
	return !from.IsTerminal()
}

// OrderService manages durable order records and their lifecycle.
type OrderService interface {
	// CreateOrderFromCheckoutSession creates an order from a completed
	// checkout session. Idempotent on the session ID: a session that has
	// already produced an order returns ErrSessionAlreadyProcessed.
	CreateOrderFromCheckoutSession(ctx context.Context, sessionID string) (*OrderDetail, error)

	// GetOrder retrieves a single order with its items.
	GetOrder(ctx context.Context, orderID string) (*OrderDetail, error)

	// ListOrders retrieves orders, newest first, optionally filtered by status.
	ListOrders(ctx context.Context, params ListOrdersParams) ([]repository.Order, error)

	// SetStatus transitions an order to a new status. Updates the
	// updated_at timestamp and nothing else; monetary fields are immutable.
	SetStatus(ctx context.Context, orderID string, status OrderStatus) (*repository.Order, error)
}

// ListOrdersParams filters and pages an order listing.
type ListOrdersParams struct {
	Status OrderStatus // empty means all statuses
	Limit  int
	Offset int
}

// OrderDetail aggregates an order record with its items.
type OrderDetail struct {
	Order repository.Order
	Items []repository.OrderItem
}

// OrderReconciler resolves a checkout session to its authoritative outcome.
type OrderReconciler interface {
	// GetOrderDetails queries the gateway for the session's resolved outcome
	// and returns a confirmation view. The durable order record may not
	// exist yet (the webhook races the redirect); the view is built from the
	// gateway's answer either way. Unknown or unpaid sessions return a
	// neutral ENOTFOUND.
	GetOrderDetails(ctx context.Context, sessionID string) (*OrderDetailsView, error)
}

// Address is a structured postal address as captured by the gateway.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// ChargedLineItem is a line item as actually charged by the gateway.
type ChargedLineItem struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amountCents"`
}

// OrderDetailsView is the confirmation view shown after a successful payment.
// It exposes a shortened order reference and display fields only; raw gateway
// identifiers stay server-side.
type OrderDetailsView struct {
	OrderRef        string            `json:"orderRef"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerName    string            `json:"customerName,omitempty"`
	CustomerPhone   string            `json:"customerPhone,omitempty"`
	ShippingAddress *Address          `json:"shippingAddress,omitempty"`
	ShippingMethod  string            `json:"shippingMethod,omitempty"`
	LineItems       []ChargedLineItem `json:"lineItems"`
	SubtotalCents   int64             `json:"subtotalCents"`
	ShippingCents   int64             `json:"shippingCents"`
	TaxCents        int64             `json:"taxCents"`
	TotalCents      int64             `json:"totalCents"`
}
