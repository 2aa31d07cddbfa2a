package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
	checkoutsession "github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/customer"
	"github.com/stripe/stripe-go/v83/webhook"
	"github.com/torsore/storefront/internal/telemetry"
)

func observeGatewayLatency(operation string, start time.Time) {
	if telemetry.Business != nil {
		telemetry.Business.GatewayLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// StripeProvider implements Provider using Stripe hosted checkout.
type StripeProvider struct {
	config StripeConfig
}

// Compile-time check that StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a new Stripe billing provider and configures the
// SDK's API key.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Currency == "" {
		config.Currency = "usd"
	}
	if len(config.AllowedShippingCountries) == 0 {
		config.AllowedShippingCountries = DefaultShippingCountries
	}

	stripe.Key = config.APIKey
	return &StripeProvider{config: config}, nil
}

// CreateCheckoutSession opens a Stripe hosted checkout session in payment
// mode. Line-item prices are created inline; the shipping menu is passed as
// fixed-amount shipping options the shopper picks among at payment time.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(params.LineItems))
	for i, item := range params.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(item.Name),
			Description: stripe.String(fmt.Sprintf("Size: %s, Color: %s", item.Size, item.Color)),
			Metadata: map[string]string{
				"productId": item.ProductID,
				"size":      item.Size,
				"color":     item.Color,
			},
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(p.config.Currency),
				UnitAmount:  stripe.Int64(item.UnitAmountCents),
				ProductData: productData,
			},
			Quantity: stripe.Int64(item.Quantity),
		}
	}

	shippingOptions := make([]*stripe.CheckoutSessionShippingOptionParams, len(params.ShippingOptions))
	for i, opt := range params.ShippingOptions {
		shippingOptions[i] = &stripe.CheckoutSessionShippingOptionParams{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripe.String("fixed_amount"),
				DisplayName: stripe.String(opt.DisplayName),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(opt.AmountCents),
					Currency: stripe.String(p.config.Currency),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(opt.DaysMin),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(opt.DaysMax),
					},
				},
			},
		}
	}

	checkoutParams := &stripe.CheckoutSessionParams{
		Mode:            stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:       lineItems,
		ShippingOptions: shippingOptions,
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(p.config.AllowedShippingCountries),
		},
		BillingAddressCollection: stripe.String("required"),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		// Stripe substitutes the placeholder with the real session ID.
		SuccessURL: stripe.String(params.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata:   params.Metadata,
	}
	if params.CustomerID != "" {
		checkoutParams.Customer = stripe.String(params.CustomerID)
	} else if params.CustomerEmail != "" {
		checkoutParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	checkoutParams.Context = ctx

	start := time.Now()
	session, err := checkoutsession.New(checkoutParams)
	observeGatewayLatency("create_checkout_session", start)
	if err != nil {
		return nil, wrapStripeErr(err, "failed to create checkout session")
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// GetCheckoutSession retrieves a session with its charged line items expanded.
func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*SessionOutcome, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	getParams.AddExpand("line_items")
	getParams.AddExpand("line_items.data.price.product")
	getParams.AddExpand("shipping_cost.shipping_rate")

	start := time.Now()
	session, err := checkoutsession.Get(sessionID, getParams)
	observeGatewayLatency("get_checkout_session", start)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		return nil, wrapStripeErr(err, "failed to retrieve checkout session")
	}

	outcome := &SessionOutcome{
		SessionID:     session.ID,
		PaymentStatus: string(session.PaymentStatus),
	}

	if session.CustomerDetails != nil {
		outcome.CustomerEmail = session.CustomerDetails.Email
		outcome.CustomerName = session.CustomerDetails.Name
		outcome.CustomerPhone = session.CustomerDetails.Phone
		if session.CustomerDetails.Address != nil {
			outcome.BillingAddress = &Address{
				Name:       session.CustomerDetails.Name,
				Line1:      session.CustomerDetails.Address.Line1,
				Line2:      session.CustomerDetails.Address.Line2,
				City:       session.CustomerDetails.Address.City,
				State:      session.CustomerDetails.Address.State,
				PostalCode: session.CustomerDetails.Address.PostalCode,
				Country:    session.CustomerDetails.Address.Country,
			}
		}
	}

	if session.CollectedInformation != nil && session.CollectedInformation.ShippingDetails != nil {
		details := session.CollectedInformation.ShippingDetails
		addr := &Address{Name: details.Name}
		if details.Address != nil {
			addr.Line1 = details.Address.Line1
			addr.Line2 = details.Address.Line2
			addr.City = details.Address.City
			addr.State = details.Address.State
			addr.PostalCode = details.Address.PostalCode
			addr.Country = details.Address.Country
		}
		outcome.ShippingAddress = addr
	}

	if session.ShippingCost != nil && session.ShippingCost.ShippingRate != nil {
		outcome.ShippingMethod = session.ShippingCost.ShippingRate.DisplayName
	}

	if session.LineItems != nil {
		outcome.LineItems = make([]ChargedItem, 0, len(session.LineItems.Data))
		for _, li := range session.LineItems.Data {
			item := ChargedItem{
				Name:        li.Description,
				Quantity:    li.Quantity,
				AmountCents: li.AmountTotal,
			}
			// The snapshot written at session creation rides back on the
			// expanded product's metadata.
			if li.Price != nil && li.Price.Product != nil {
				item.ProductID = li.Price.Product.Metadata["productId"]
				item.Size = li.Price.Product.Metadata["size"]
				item.Color = li.Price.Product.Metadata["color"]
			}
			outcome.LineItems = append(outcome.LineItems, item)
		}
	}

	outcome.Totals = CapturedTotals{
		SubtotalCents: session.AmountSubtotal,
		TotalCents:    session.AmountTotal,
	}
	if session.TotalDetails != nil {
		outcome.Totals.ShippingCents = session.TotalDetails.AmountShipping
		outcome.Totals.TaxCents = session.TotalDetails.AmountTax
	}

	outcome.Metadata = session.Metadata

	if session.PaymentIntent != nil {
		outcome.PaymentRef = session.PaymentIntent.ID
	}

	return outcome, nil
}

// GetCustomerByEmail searches for an existing gateway customer by email.
// Returns nil, nil when no customer exists.
func (p *StripeProvider) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	listParams := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)

	iter := customer.List(listParams)
	for iter.Next() {
		c := iter.Customer()
		return &Customer{
			ID:    c.ID,
			Email: c.Email,
			Name:  c.Name,
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeErr(err, "failed to search customers")
	}
	return nil, nil
}

// VerifyWebhook verifies the Stripe-Signature header and parses the event.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}

	parsed := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if parsed.Type == EventCheckoutCompleted {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("billing: failed to parse checkout session event: %w", err)
		}
		parsed.SessionID = session.ID
	}

	return parsed, nil
}

func wrapStripeErr(err error, message string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s: %v", ErrGatewayUnavailable, message, &StripeError{
			Message:       stripeErr.Msg,
			Code:          string(stripeErr.Code),
			RequestID:     stripeErr.RequestID,
			OriginalError: err,
		})
	}
	return fmt.Errorf("%w: %s: %v", ErrGatewayUnavailable, message, err)
}
