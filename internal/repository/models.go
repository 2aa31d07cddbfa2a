package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Order is a durable order record.
type Order struct {
	ID              pgtype.UUID
	UserID          pgtype.Text // null for guest orders
	SessionID       string      // gateway checkout session id, unique
	Status          string
	CustomerEmail   pgtype.Text
	CustomerName    pgtype.Text
	CustomerPhone   pgtype.Text
	SubtotalCents   int64
	ShippingCents   int64
	TaxCents        int64
	TotalCents      int64
	Currency        string
	ShippingAddress []byte // jsonb, nullable
	BillingAddress  []byte // jsonb, nullable
	ShippingMethod  pgtype.Text
	PaymentRef      pgtype.Text
	Notes           pgtype.Text
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

// OrderItem is a line item captured at payment time.
type OrderItem struct {
	ID             pgtype.UUID
	OrderID        pgtype.UUID
	ProductID      string
	Name           string
	Size           pgtype.Text
	Color          pgtype.Text
	UnitPriceCents int64
	Quantity       int32
	AmountCents    int64
	CreatedAt      pgtype.Timestamptz
}

// CartLine is a persisted cart line for an authenticated shopper.
type CartLine struct {
	CartID         string
	UserID         pgtype.Text
	ProductID      string
	Size           string
	Color          string
	Name           string
	UnitPriceCents int64
	Quantity       int32
	ImageUrl       pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// WebhookEvent records a processed gateway event for idempotency.
type WebhookEvent struct {
	ID         string // gateway event id
	EventType  string
	ReceivedAt pgtype.Timestamptz
}
