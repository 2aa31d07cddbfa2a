package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the storage interface used by the service layer.
type Querier interface {
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	GetOrder(ctx context.Context, id pgtype.UUID) (Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (Order, error)
	GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error)
	ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error)

	GetCartLines(ctx context.Context, cartID string) ([]CartLine, error)
	UpsertCartLine(ctx context.Context, arg UpsertCartLineParams) error
	DeleteCartLines(ctx context.Context, cartID string) error

	InsertWebhookEvent(ctx context.Context, arg InsertWebhookEventParams) (bool, error)
}

var _ Querier = (*Queries)(nil)
