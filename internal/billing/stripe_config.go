package billing

import "errors"

// StripeConfig contains configuration for the Stripe provider.
type StripeConfig struct {
	// APIKey is the Stripe secret key (sk_test_... or sk_live_...)
	APIKey string

	// WebhookSecret is the webhook signing secret (whsec_...)
	// Used to verify webhook signatures from Stripe
	WebhookSecret string

	// Currency is the ISO 4217 lowercase currency code, e.g. "usd".
	Currency string

	// AllowedShippingCountries restricts where the gateway collects
	// shipping addresses.
	AllowedShippingCountries []string
}

// DefaultShippingCountries is the storefront's shipping footprint.
var DefaultShippingCountries = []string{
	"US", "CA", "GB", "AU", "FR", "DE", "IT", "ES", "NL", "BE",
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("stripe: API key is required")
	}
	if c.WebhookSecret == "" {
		return errors.New("stripe: webhook secret is required")
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return len(c.APIKey) > 7 && c.APIKey[:8] == "sk_test_"
}
