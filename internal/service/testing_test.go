package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/torsore/storefront/internal/repository"
)

// fakeQuerier is an in-memory repository.Querier for service tests.
type fakeQuerier struct {
	orders    []repository.Order
	items     map[string][]repository.OrderItem // keyed by order id
	cartLines map[string][]repository.CartLine
	events    map[string]string

	// optional error overrides
	getOrderErr    error
	createOrderErr error
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		items:     make(map[string][]repository.OrderItem),
		cartLines: make(map[string][]repository.CartLine),
		events:    make(map[string]string),
	}
}

func newUUID() pgtype.UUID {
	u := uuid.New()
	var id pgtype.UUID
	copy(id.Bytes[:], u[:])
	id.Valid = true
	return id
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func (f *fakeQuerier) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	if f.createOrderErr != nil {
		return repository.Order{}, f.createOrderErr
	}
	now := time.Now()
	order := repository.Order{
		ID:              newUUID(),
		UserID:          arg.UserID,
		SessionID:       arg.SessionID,
		Status:          arg.Status,
		CustomerEmail:   arg.CustomerEmail,
		CustomerName:    arg.CustomerName,
		CustomerPhone:   arg.CustomerPhone,
		SubtotalCents:   arg.SubtotalCents,
		ShippingCents:   arg.ShippingCents,
		TaxCents:        arg.TaxCents,
		TotalCents:      arg.TotalCents,
		Currency:        arg.Currency,
		ShippingAddress: arg.ShippingAddress,
		BillingAddress:  arg.BillingAddress,
		ShippingMethod:  arg.ShippingMethod,
		PaymentRef:      arg.PaymentRef,
		Notes:           arg.Notes,
		CreatedAt:       ts(now),
		UpdatedAt:       ts(now),
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeQuerier) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	item := repository.OrderItem{
		ID:             newUUID(),
		OrderID:        arg.OrderID,
		ProductID:      arg.ProductID,
		Name:           arg.Name,
		Size:           arg.Size,
		Color:          arg.Color,
		UnitPriceCents: arg.UnitPriceCents,
		Quantity:       arg.Quantity,
		AmountCents:    arg.AmountCents,
		CreatedAt:      ts(time.Now()),
	}
	key := uuidString(arg.OrderID)
	f.items[key] = append(f.items[key], item)
	return item, nil
}

func (f *fakeQuerier) GetOrder(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if f.getOrderErr != nil {
		return repository.Order{}, f.getOrderErr
	}
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (f *fakeQuerier) GetOrderBySessionID(ctx context.Context, sessionID string) (repository.Order, error) {
	for _, o := range f.orders {
		if o.SessionID == sessionID {
			return o, nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (f *fakeQuerier) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
	return f.items[uuidString(orderID)], nil
}

func (f *fakeQuerier) ListOrders(ctx context.Context, arg repository.ListOrdersParams) ([]repository.Order, error) {
	var result []repository.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if arg.Status != "" && o.Status != arg.Status {
			continue
		}
		result = append(result, o)
	}
	start := int(arg.Offset)
	if start > len(result) {
		start = len(result)
	}
	end := start + int(arg.Limit)
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

func (f *fakeQuerier) UpdateOrderStatus(ctx context.Context, arg repository.UpdateOrderStatusParams) (repository.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == arg.ID {
			f.orders[i].Status = arg.Status
			f.orders[i].UpdatedAt = ts(time.Now())
			return f.orders[i], nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (f *fakeQuerier) GetCartLines(ctx context.Context, cartID string) ([]repository.CartLine, error) {
	return f.cartLines[cartID], nil
}

func (f *fakeQuerier) UpsertCartLine(ctx context.Context, arg repository.UpsertCartLineParams) error {
	f.cartLines[arg.CartID] = append(f.cartLines[arg.CartID], repository.CartLine{
		CartID:         arg.CartID,
		UserID:         arg.UserID,
		ProductID:      arg.ProductID,
		Size:           arg.Size,
		Color:          arg.Color,
		Name:           arg.Name,
		UnitPriceCents: arg.UnitPriceCents,
		Quantity:       arg.Quantity,
		ImageUrl:       arg.ImageUrl,
	})
	return nil
}

func (f *fakeQuerier) DeleteCartLines(ctx context.Context, cartID string) error {
	delete(f.cartLines, cartID)
	return nil
}

func (f *fakeQuerier) InsertWebhookEvent(ctx context.Context, arg repository.InsertWebhookEventParams) (bool, error) {
	if _, seen := f.events[arg.ID]; seen {
		return false, nil
	}
	f.events[arg.ID] = arg.EventType
	return true, nil
}

var _ repository.Querier = (*fakeQuerier)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
