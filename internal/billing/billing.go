package billing

import (
	"context"
	"time"
)

// Provider defines the interface for hosted-checkout payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreateCheckoutSession opens a hosted checkout session for the given
	// line items and shipping menu. Returns the session ID and the URL the
	// shopper is redirected to.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves the resolved outcome of a session:
	// payment status, customer contact, shipping address, the line items
	// actually charged, and captured totals.
	GetCheckoutSession(ctx context.Context, sessionID string) (*SessionOutcome, error)

	// GetCustomerByEmail searches for an existing customer by email.
	// Used to reuse gateway customer records instead of creating duplicates.
	// Returns nil, nil if no customer found (not an error).
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)

	// VerifyWebhook verifies a webhook request's signature and parses it.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutLineItem is a cart line presented to the gateway for charging.
// Amounts are integer minor currency units (cents).
type CheckoutLineItem struct {
	ProductID       string
	Name            string
	Size            string
	Color           string
	ImageURL        string
	UnitAmountCents int64
	Quantity        int64
}

// ShippingChoice is one entry in the shipping menu offered at the gateway.
type ShippingChoice struct {
	DisplayName string
	AmountCents int64
	DaysMin     int64
	DaysMax     int64
}

// CreateCheckoutSessionParams contains parameters for opening a session.
type CreateCheckoutSessionParams struct {
	LineItems       []CheckoutLineItem
	ShippingOptions []ShippingChoice

	// CustomerID reuses an existing gateway customer when set; otherwise
	// CustomerEmail prefills the payment page.
	CustomerID    string
	CustomerEmail string

	// SuccessURL is the redirect target after payment. The provider appends
	// the gateway's session-id placeholder; the gateway substitutes the
	// real session ID at redirect time.
	SuccessURL string
	CancelURL  string

	// Metadata is attached to the session for later reconciliation.
	Metadata map[string]string
}

// CheckoutSession is a newly created hosted checkout session.
type CheckoutSession struct {
	ID  string
	URL string
}

// Customer represents a gateway customer record.
type Customer struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Address is a postal address as captured by the gateway.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ChargedItem is a line item as actually charged by the gateway. The product
// snapshot fields come back from the metadata attached at session creation.
type ChargedItem struct {
	ProductID   string
	Name        string
	Size        string
	Color       string
	Quantity    int64
	AmountCents int64
}

// CapturedTotals are the amounts the gateway actually captured. These are
// authoritative; the storefront's pre-checkout numbers are estimates only.
type CapturedTotals struct {
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

// Payment statuses reported by the gateway for a session.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// SessionOutcome is the gateway-authoritative view of a checkout session.
type SessionOutcome struct {
	SessionID     string
	PaymentStatus string

	CustomerEmail string
	CustomerName  string
	CustomerPhone string

	ShippingAddress *Address
	BillingAddress  *Address
	ShippingMethod  string

	LineItems []ChargedItem
	Totals    CapturedTotals

	// Metadata echoes the key/value pairs attached at session creation.
	Metadata map[string]string

	// PaymentRef is the gateway's payment identifier, kept server-side.
	PaymentRef string

	CreatedAt time.Time
}

// Paid reports whether the session's payment completed.
func (o *SessionOutcome) Paid() bool {
	return o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusNoPaymentRequired
}

// Webhook event types the storefront consumes.
const (
	EventCheckoutCompleted = "checkout.session.completed"
)

// WebhookEvent is a verified, parsed gateway event.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string // set for checkout session events
}
