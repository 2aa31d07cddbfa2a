package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/torsore/storefront/internal/billing"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/repository"
)

type orderService struct {
	db       *pgxpool.Pool // nil when repo is a test fake
	repo     repository.Querier
	provider billing.Provider
	logger   *slog.Logger
}

// Compile-time check that orderService implements domain.OrderService.
var _ domain.OrderService = (*orderService)(nil)

// NewOrderService creates an OrderService instance.
func NewOrderService(db *pgxpool.Pool, provider billing.Provider, logger *slog.Logger) domain.OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{
		db:       db,
		repo:     repository.New(db),
		provider: provider,
		logger:   logger.With("service", "order"),
	}
}

// withTx runs fn against a transactional Querier when a pool is available.
func (s *orderService) withTx(ctx context.Context, fn func(q repository.Querier) error) error {
	if s.db == nil {
		return fn(s.repo)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to create order")
	}
	defer tx.Rollback(ctx)

	if err := fn(repository.New(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateOrderFromCheckoutSession creates a durable order from a completed
// checkout session. The gateway's captured amounts are authoritative; nothing
// from the client is trusted. Idempotent on the session ID: a session that
// already produced an order returns that order with ErrSessionAlreadyProcessed.
func (s *orderService) CreateOrderFromCheckoutSession(ctx context.Context, sessionID string) (*domain.OrderDetail, error) {
	outcome, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, billing.ErrSessionNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("failed to retrieve checkout session",
			"session_id", sessionID,
			"error", err)
		return nil, domain.Internal(err, "order.create", "Payment processing is temporarily unavailable")
	}

	if !outcome.Paid() {
		return nil, ErrPaymentNotCompleted
	}

	shippingJSON, err := marshalAddress(outcome.ShippingAddress)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to encode shipping address")
	}
	billingJSON, err := marshalAddress(outcome.BillingAddress)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to encode billing address")
	}

	var detail *domain.OrderDetail
	txErr := s.withTx(ctx, func(q repository.Querier) error {
		// Duplicate webhook deliveries land here: the session already has
		// an order, so hand it back without creating another.
		if existing, err := q.GetOrderBySessionID(ctx, sessionID); err == nil {
			items, itemsErr := q.GetOrderItems(ctx, existing.ID)
			if itemsErr != nil {
				return domain.Internal(itemsErr, "order.create", "failed to load order items")
			}
			detail = &domain.OrderDetail{Order: existing, Items: items}
			return ErrSessionAlreadyProcessed
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Internal(err, "order.create", "failed to check for existing order")
		}

		order, err := q.CreateOrder(ctx, repository.CreateOrderParams{
			UserID:          textOrNull(outcome.Metadata["user_id"]),
			SessionID:       sessionID,
			Status:          string(domain.OrderStatusPending),
			CustomerEmail:   textOrNull(outcome.CustomerEmail),
			CustomerName:    textOrNull(outcome.CustomerName),
			CustomerPhone:   textOrNull(outcome.CustomerPhone),
			SubtotalCents:   outcome.Totals.SubtotalCents,
			ShippingCents:   outcome.Totals.ShippingCents,
			TaxCents:        outcome.Totals.TaxCents,
			TotalCents:      outcome.Totals.TotalCents,
			Currency:        "usd",
			ShippingAddress: shippingJSON,
			BillingAddress:  billingJSON,
			ShippingMethod:  textOrNull(outcome.ShippingMethod),
			PaymentRef:      textOrNull(outcome.PaymentRef),
		})
		if err != nil {
			return domain.Internal(err, "order.create", "failed to create order")
		}

		items := make([]repository.OrderItem, 0, len(outcome.LineItems))
		for _, li := range outcome.LineItems {
			unitPrice := int64(0)
			if li.Quantity > 0 {
				unitPrice = li.AmountCents / li.Quantity
			}
			productID := li.ProductID
			if productID == "" {
				// Sessions created before product metadata was attached.
				productID = li.Name
			}
			item, err := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:        order.ID,
				ProductID:      productID,
				Name:           li.Name,
				Size:           textOrNull(li.Size),
				Color:          textOrNull(li.Color),
				UnitPriceCents: unitPrice,
				Quantity:       int32(li.Quantity),
				AmountCents:    li.AmountCents,
			})
			if err != nil {
				return domain.Internal(err, "order.create", "failed to create order item")
			}
			items = append(items, item)
		}

		detail = &domain.OrderDetail{Order: order, Items: items}
		return nil
	})
	if txErr != nil {
		return detail, txErr
	}

	s.logger.Info("order created from checkout session",
		"order_id", uuidString(detail.Order.ID),
		"session_id", sessionID,
		"total_cents", detail.Order.TotalCents)

	return detail, nil
}

// GetOrder retrieves a single order with its items.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	id, err := parseUUID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}

	items, err := s.repo.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to load order items")
	}

	return &domain.OrderDetail{Order: order, Items: items}, nil
}

// ListOrders retrieves orders, newest first, optionally filtered by status.
func (s *orderService) ListOrders(ctx context.Context, params domain.ListOrdersParams) ([]repository.Order, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	orders, err := s.repo.ListOrders(ctx, repository.ListOrdersParams{
		Status: string(params.Status),
		Limit:  int32(limit),
		Offset: int32(params.Offset),
	})
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return orders, nil
}

// SetStatus transitions an order to a new status. Terminal statuses accept no
// outgoing transitions; setting the current status again is a no-op. Only the
// status and updated_at columns change.
func (s *orderService) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*repository.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	id, err := parseUUID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.set_status", "failed to load order")
	}

	current := domain.OrderStatus(order.Status)
	if current == status {
		return &order, nil
	}
	if !domain.CanTransition(current, status) {
		return nil, ErrTerminalStatus
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
		ID:     id,
		Status: string(status),
	})
	if err != nil {
		return nil, domain.Internal(err, "order.set_status", "failed to update order status")
	}

	s.logger.Info("order status updated",
		"order_id", orderID,
		"from", string(current),
		"to", string(status))

	return &updated, nil
}

func marshalAddress(addr *billing.Address) ([]byte, error) {
	if addr == nil {
		return nil, nil
	}
	return json.Marshal(domain.Address{
		Name:       addr.Name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	})
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func parseUUID(s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(s); err != nil {
		return id, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func uuidString(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
