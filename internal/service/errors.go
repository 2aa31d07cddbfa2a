package service

import (
	"github.com/torsore/storefront/internal/domain"
)

// Cart errors - use domain.ENOTFOUND / domain.EINVALID
var (
	ErrCartNotFound    = domain.ErrCartNotFound
	ErrInvalidQuantity = domain.ErrInvalidQuantity
)

// Checkout errors - preconditions checked before any gateway call
var (
	ErrEmptyCart      = domain.ErrEmptyCart
	ErrMissingContact = domain.ErrMissingContact
)

// ErrGatewayUnavailable is the user-facing translation of any gateway
// failure; the underlying cause is logged, never shown.
var ErrGatewayUnavailable = domain.Errorf(domain.EINTERNAL, "", "Payment processing is temporarily unavailable")

// Order errors
var (
	ErrOrderNotFound           = domain.ErrOrderNotFound
	ErrPaymentNotCompleted     = domain.ErrPaymentNotCompleted
	ErrSessionAlreadyProcessed = domain.ErrSessionAlreadyProcessed
	ErrTerminalStatus          = domain.ErrTerminalStatus
	ErrInvalidStatus           = domain.ErrInvalidStatus
)
