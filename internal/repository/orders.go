package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    user_id, session_id, status,
    customer_email, customer_name, customer_phone,
    subtotal_cents, shipping_cents, tax_cents, total_cents, currency,
    shipping_address, billing_address, shipping_method, payment_ref, notes
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
)
RETURNING id, user_id, session_id, status, customer_email, customer_name, customer_phone,
    subtotal_cents, shipping_cents, tax_cents, total_cents, currency,
    shipping_address, billing_address, shipping_method, payment_ref, notes,
    created_at, updated_at
`

type CreateOrderParams struct {
	UserID          pgtype.Text
	SessionID       string
	Status          string
	CustomerEmail   pgtype.Text
	CustomerName    pgtype.Text
	CustomerPhone   pgtype.Text
	SubtotalCents   int64
	ShippingCents   int64
	TaxCents        int64
	TotalCents      int64
	Currency        string
	ShippingAddress []byte
	BillingAddress  []byte
	ShippingMethod  pgtype.Text
	PaymentRef      pgtype.Text
	Notes           pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.UserID,
		arg.SessionID,
		arg.Status,
		arg.CustomerEmail,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.SubtotalCents,
		arg.ShippingCents,
		arg.TaxCents,
		arg.TotalCents,
		arg.Currency,
		arg.ShippingAddress,
		arg.BillingAddress,
		arg.ShippingMethod,
		arg.PaymentRef,
		arg.Notes,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CustomerEmail,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.SubtotalCents,
		&i.ShippingCents,
		&i.TaxCents,
		&i.TotalCents,
		&i.Currency,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.ShippingMethod,
		&i.PaymentRef,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    order_id, product_id, name, size, color, unit_price_cents, quantity, amount_cents
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING id, order_id, product_id, name, size, color, unit_price_cents, quantity, amount_cents, created_at
`

type CreateOrderItemParams struct {
	OrderID        pgtype.UUID
	ProductID      string
	Name           string
	Size           pgtype.Text
	Color          pgtype.Text
	UnitPriceCents int64
	Quantity       int32
	AmountCents    int64
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Name,
		arg.Size,
		arg.Color,
		arg.UnitPriceCents,
		arg.Quantity,
		arg.AmountCents,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Name,
		&i.Size,
		&i.Color,
		&i.UnitPriceCents,
		&i.Quantity,
		&i.AmountCents,
		&i.CreatedAt,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, user_id, session_id, status, customer_email, customer_name, customer_phone,
    subtotal_cents, shipping_cents, tax_cents, total_cents, currency,
    shipping_address, billing_address, shipping_method, payment_ref, notes,
    created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id pgtype.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CustomerEmail,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.SubtotalCents,
		&i.ShippingCents,
		&i.TaxCents,
		&i.TotalCents,
		&i.Currency,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.ShippingMethod,
		&i.PaymentRef,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderBySessionID = `-- name: GetOrderBySessionID :one
SELECT id, user_id, session_id, status, customer_email, customer_name, customer_phone,
    subtotal_cents, shipping_cents, tax_cents, total_cents, currency,
    shipping_address, billing_address, shipping_method, payment_ref, notes,
    created_at, updated_at
FROM orders
WHERE session_id = $1
`

func (q *Queries) GetOrderBySessionID(ctx context.Context, sessionID string) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderBySessionID, sessionID)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CustomerEmail,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.SubtotalCents,
		&i.ShippingCents,
		&i.TaxCents,
		&i.TotalCents,
		&i.Currency,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.ShippingMethod,
		&i.PaymentRef,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderItems = `-- name: GetOrderItems :many
SELECT id, order_id, product_id, name, size, color, unit_price_cents, quantity, amount_cents, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Name,
			&i.Size,
			&i.Color,
			&i.UnitPriceCents,
			&i.Quantity,
			&i.AmountCents,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listOrders = `-- name: ListOrders :many
SELECT id, user_id, session_id, status, customer_email, customer_name, customer_phone,
    subtotal_cents, shipping_cents, tax_cents, total_cents, currency,
    shipping_address, billing_address, shipping_method, payment_ref, notes,
    created_at, updated_at
FROM orders
WHERE ($1::text = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListOrdersParams struct {
	Status string // empty matches all statuses
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.SessionID,
			&i.Status,
			&i.CustomerEmail,
			&i.CustomerName,
			&i.CustomerPhone,
			&i.SubtotalCents,
			&i.ShippingCents,
			&i.TaxCents,
			&i.TotalCents,
			&i.Currency,
			&i.ShippingAddress,
			&i.BillingAddress,
			&i.ShippingMethod,
			&i.PaymentRef,
			&i.Notes,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, user_id, session_id, status, customer_email, customer_name, customer_phone,
    subtotal_cents, shipping_cents, tax_cents, total_cents, currency,
    shipping_address, billing_address, shipping_method, payment_ref, notes,
    created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID     pgtype.UUID
	Status string
}

// UpdateOrderStatus changes only the status and updated_at columns.
// Monetary columns are never touched after order creation.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CustomerEmail,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.SubtotalCents,
		&i.ShippingCents,
		&i.TaxCents,
		&i.TotalCents,
		&i.Currency,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.ShippingMethod,
		&i.PaymentRef,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
