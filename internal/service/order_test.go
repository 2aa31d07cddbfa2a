package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torsore/storefront/internal/billing"
	"github.com/torsore/storefront/internal/domain"
)

func newTestOrderService(repo *fakeQuerier, provider billing.Provider) *orderService {
	return &orderService{
		repo:     repo,
		provider: provider,
		logger:   discardLogger(),
	}
}

func paidOutcome(sessionID string) *billing.SessionOutcome {
	return &billing.SessionOutcome{
		SessionID:     sessionID,
		PaymentStatus: billing.PaymentStatusPaid,
		CustomerEmail: "shopper@example.com",
		CustomerName:  "Sam Shopper",
		CustomerPhone: "+12065550100",
		ShippingAddress: &billing.Address{
			Name:       "Sam Shopper",
			Line1:      "123 Main St",
			City:       "Seattle",
			State:      "WA",
			PostalCode: "98101",
			Country:    "US",
		},
		ShippingMethod: "Standard Shipping",
		LineItems: []billing.ChargedItem{
			{ProductID: "p1", Name: "Wool Overshirt", Size: "M", Color: "Rust", Quantity: 2, AmountCents: 24000},
		},
		Totals: billing.CapturedTotals{
			SubtotalCents: 24000,
			ShippingCents: 0,
			TaxCents:      1920,
			TotalCents:    25920,
		},
		PaymentRef: "pi_123",
	}
}

func TestOrderService_CreateOrderFromCheckoutSession(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	detail, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	order := detail.Order
	assert.Equal(t, "cs_1", order.SessionID)
	assert.Equal(t, string(domain.OrderStatusPending), order.Status)
	assert.Equal(t, int64(24000), order.SubtotalCents)
	assert.Equal(t, int64(0), order.ShippingCents)
	assert.Equal(t, int64(1920), order.TaxCents)
	assert.Equal(t, int64(25920), order.TotalCents)
	assert.Equal(t, "shopper@example.com", order.CustomerEmail.String)
	assert.NotEmpty(t, order.ShippingAddress, "shipping address should be stored")

	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Wool Overshirt", detail.Items[0].Name)
	assert.Equal(t, int32(2), detail.Items[0].Quantity)
	assert.Equal(t, int64(24000), detail.Items[0].AmountCents)
	assert.Equal(t, int64(12000), detail.Items[0].UnitPriceCents)
}

func TestOrderService_CreateOrderFromCheckoutSession_ItemSnapshot(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	detail, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	// The persisted item carries the catalog snapshot, not just the display
	// name the gateway charged under.
	require.Len(t, detail.Items, 1)
	item := detail.Items[0]
	assert.Equal(t, "p1", item.ProductID)
	require.True(t, item.Size.Valid, "size must be persisted")
	assert.Equal(t, "M", item.Size.String)
	require.True(t, item.Color.Valid, "color must be persisted")
	assert.Equal(t, "Rust", item.Color.String)
}

func TestOrderService_CreateOrderFromCheckoutSession_ItemSnapshotFallback(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	outcome := paidOutcome("cs_1")
	outcome.LineItems = []billing.ChargedItem{
		{Name: "Wool Overshirt", Quantity: 2, AmountCents: 24000},
	}
	provider.Sessions["cs_1"] = outcome
	svc := newTestOrderService(repo, provider)

	detail, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	// Sessions without product metadata fall back to the display name and
	// leave the variant columns null.
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Wool Overshirt", detail.Items[0].ProductID)
	assert.False(t, detail.Items[0].Size.Valid)
	assert.False(t, detail.Items[0].Color.Valid)
}

func TestOrderService_CreateOrderFromCheckoutSession_UserIDFromMetadata(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	outcome := paidOutcome("cs_1")
	outcome.Metadata = map[string]string{"cart_id": "cart-1", "user_id": "user-1"}
	provider.Sessions["cs_1"] = outcome
	svc := newTestOrderService(repo, provider)

	detail, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	require.True(t, detail.Order.UserID.Valid, "signed-in checkouts must link the order to the user")
	assert.Equal(t, "user-1", detail.Order.UserID.String)
}

func TestOrderService_CreateOrderFromCheckoutSession_GuestHasNoUserID(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	detail, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.False(t, detail.Order.UserID.Valid, "guest orders keep user_id null")
}

func TestOrderService_CreateOrderFromCheckoutSession_Duplicate(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	first, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	second, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrSessionAlreadyProcessed)
	assert.True(t, domain.IsCode(err, domain.ECONFLICT))
	require.NotNil(t, second, "duplicate processing still returns the existing order")
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, repo.orders, 1, "no second order may be created")
}

func TestOrderService_CreateOrderFromCheckoutSession_Unpaid(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	outcome := paidOutcome("cs_1")
	outcome.PaymentStatus = billing.PaymentStatusUnpaid
	provider.Sessions["cs_1"] = outcome
	svc := newTestOrderService(repo, provider)

	_, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Empty(t, repo.orders)
}

func TestOrderService_CreateOrderFromCheckoutSession_UnknownSession(t *testing.T) {
	svc := newTestOrderService(newFakeQuerier(), billing.NewMockProvider())

	_, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetOrder(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	created, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	detail, err := svc.GetOrder(context.Background(), uuidString(created.Order.ID))
	require.NoError(t, err)
	assert.Equal(t, created.Order.ID, detail.Order.ID)
	assert.Len(t, detail.Items, 1)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	svc := newTestOrderService(newFakeQuerier(), billing.NewMockProvider())

	_, err := svc.GetOrder(context.Background(), "5d9e2a60-1111-4222-8333-444455556666")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_SetStatus_LifecycleUpdatesTimestampsOnly(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	created, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	orderID := uuidString(created.Order.ID)

	prev := created.Order
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		time.Sleep(time.Millisecond)
		updated, err := svc.SetStatus(context.Background(), orderID, status)
		require.NoError(t, err)

		assert.Equal(t, string(status), updated.Status)
		assert.True(t, updated.UpdatedAt.Time.After(prev.UpdatedAt.Time),
			"updated_at must advance on each transition")

		// Monetary fields stay byte-identical through the lifecycle.
		assert.Equal(t, prev.SubtotalCents, updated.SubtotalCents)
		assert.Equal(t, prev.ShippingCents, updated.ShippingCents)
		assert.Equal(t, prev.TaxCents, updated.TaxCents)
		assert.Equal(t, prev.TotalCents, updated.TotalCents)

		prev = *updated
	}
}

func TestOrderService_SetStatus_TerminalStatusIsFinal(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	created, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	orderID := uuidString(created.Order.ID)

	_, err = svc.SetStatus(context.Background(), orderID, domain.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), orderID, domain.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrTerminalStatus)
	assert.True(t, domain.IsCode(err, domain.ECONFLICT))
}

func TestOrderService_SetStatus_SameStatusIsNoOp(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	svc := newTestOrderService(repo, provider)

	created, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), uuidString(created.Order.ID), domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, created.Order.UpdatedAt, updated.UpdatedAt, "same-status set does not touch the row")
}

func TestOrderService_SetStatus_Validation(t *testing.T) {
	svc := newTestOrderService(newFakeQuerier(), billing.NewMockProvider())

	_, err := svc.SetStatus(context.Background(), "5d9e2a60-1111-4222-8333-444455556666", domain.OrderStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(context.Background(), "5d9e2a60-1111-4222-8333-444455556666", domain.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListOrders(t *testing.T) {
	repo := newFakeQuerier()
	provider := billing.NewMockProvider()
	provider.Sessions["cs_1"] = paidOutcome("cs_1")
	provider.Sessions["cs_2"] = paidOutcome("cs_2")
	svc := newTestOrderService(repo, provider)

	_, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	second, err := svc.CreateOrderFromCheckoutSession(context.Background(), "cs_2")
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), uuidString(second.Order.ID), domain.OrderStatusShipped)
	require.NoError(t, err)

	all, err := svc.ListOrders(context.Background(), domain.ListOrdersParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	shipped, err := svc.ListOrders(context.Background(), domain.ListOrdersParams{Status: domain.OrderStatusShipped})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, second.Order.ID, shipped[0].ID)

	_, err = svc.ListOrders(context.Background(), domain.ListOrdersParams{Status: domain.OrderStatus("bogus")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
