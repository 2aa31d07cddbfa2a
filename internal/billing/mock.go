package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates hosted checkout flows without calling the Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSessionFunc allows customizing session retrieval behavior
	GetCheckoutSessionFunc func(ctx context.Context, sessionID string) (*SessionOutcome, error)

	// GetCustomerByEmailFunc allows customizing customer lookup behavior
	GetCustomerByEmailFunc func(ctx context.Context, email string) (*Customer, error)

	// VerifyWebhookFunc allows customizing webhook verification behavior
	VerifyWebhookFunc func(payload []byte, signature string) (*WebhookEvent, error)

	// Sessions stores created sessions for retrieval
	Sessions map[string]*SessionOutcome

	// Customers stores customers keyed by email for lookup
	Customers map[string]*Customer

	// CreatedParams records the params of every created session
	CreatedParams []CreateCheckoutSessionParams

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// Compile-time check that MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions:  make(map[string]*SessionOutcome),
		Customers: make(map[string]*Customer),
		CallLog:   []string{},
	}
}

// Calls returns how many times the named method was called.
func (m *MockProvider) Calls(method string) int {
	count := 0
	for _, entry := range m.CallLog {
		if len(entry) >= len(method) && entry[:len(method)] == method {
			count++
		}
	}
	return count
}

// CreateCheckoutSession creates a mock session. The session is stored unpaid;
// tests flip PaymentStatus to simulate a completed payment.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%d items)", len(params.LineItems)))
	m.CreatedParams = append(m.CreatedParams, params)

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	id := "cs_test_" + uuid.New().String()

	var subtotal int64
	items := make([]ChargedItem, len(params.LineItems))
	for i, li := range params.LineItems {
		amount := li.UnitAmountCents * li.Quantity
		subtotal += amount
		items[i] = ChargedItem{
			ProductID:   li.ProductID,
			Name:        li.Name,
			Size:        li.Size,
			Color:       li.Color,
			Quantity:    li.Quantity,
			AmountCents: amount,
		}
	}

	var shippingCents int64
	shippingMethod := ""
	if len(params.ShippingOptions) > 0 {
		shippingCents = params.ShippingOptions[0].AmountCents
		shippingMethod = params.ShippingOptions[0].DisplayName
	}

	m.Sessions[id] = &SessionOutcome{
		SessionID:      id,
		PaymentStatus:  PaymentStatusUnpaid,
		CustomerEmail:  params.CustomerEmail,
		ShippingMethod: shippingMethod,
		LineItems:      items,
		Metadata:       params.Metadata,
		Totals: CapturedTotals{
			SubtotalCents: subtotal,
			ShippingCents: shippingCents,
			TotalCents:    subtotal + shippingCents,
		},
		PaymentRef: "pi_" + uuid.New().String(),
		CreatedAt:  time.Now(),
	}

	return &CheckoutSession{
		ID:  id,
		URL: "https://checkout.example.com/pay/" + id,
	}, nil
}

// MarkPaid marks a stored session as paid, simulating a completed payment.
func (m *MockProvider) MarkPaid(sessionID string) {
	if s, ok := m.Sessions[sessionID]; ok {
		s.PaymentStatus = PaymentStatusPaid
	}
}

// GetCheckoutSession retrieves a mock session outcome.
func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*SessionOutcome, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCheckoutSession(%s)", sessionID))

	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}

	outcome, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return outcome, nil
}

// GetCustomerByEmail looks up a stored mock customer.
func (m *MockProvider) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCustomerByEmail(%s)", email))

	if m.GetCustomerByEmailFunc != nil {
		return m.GetCustomerByEmailFunc(ctx, email)
	}

	if c, ok := m.Customers[email]; ok {
		return c, nil
	}
	return nil, nil
}

// VerifyWebhook accepts any payload with the signature "valid".
func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	m.CallLog = append(m.CallLog, "VerifyWebhook")

	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(payload, signature)
	}

	if signature != "valid" {
		return nil, ErrInvalidWebhookSignature
	}
	return &WebhookEvent{ID: "evt_" + uuid.New().String()}, nil
}
