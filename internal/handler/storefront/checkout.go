package storefront

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/torsore/storefront/internal/cookie"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/handler"
	"github.com/torsore/storefront/internal/identity"
	"github.com/torsore/storefront/internal/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CheckoutHandler opens hosted checkout sessions for the storefront.
type CheckoutHandler struct {
	carts           *CartSelector
	checkoutService domain.CheckoutService
	resolver        identity.Resolver
	cookieConfig    *cookie.Config
	logger          *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	carts *CartSelector,
	checkoutService domain.CheckoutService,
	resolver identity.Resolver,
	cookieConfig *cookie.Config,
	logger *slog.Logger,
) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{
		carts:           carts,
		checkoutService: checkoutService,
		resolver:        resolver,
		cookieConfig:    cookieConfig,
		logger:          logger,
	}
}

type createSessionRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name" validate:"omitempty,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

type createSessionResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// CreateSession handles POST /api/checkout/session. Guests supply an email in
// the body; signed-in shoppers are identified by their bearer token and the
// body contact fields are optional overrides.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := handler.DecodeJSON(r, &req, 1<<16); err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("checkout.create_session", "Invalid request body"))
			return
		}
	}

	if err := validate.Struct(req); err != nil {
		handler.ValidationErrorResponse(w, r, toFieldErrors("checkout.create_session", err))
		return
	}

	contact := domain.Contact{
		Email: strings.TrimSpace(req.Email),
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
	}

	ident, err := h.resolver.Resolve(ctx, bearerToken(r))
	if err != nil {
		h.logger.Warn("identity resolution failed, continuing as guest", "error", err)
	} else if ident != nil {
		contact.UserID = ident.UserID
		if contact.Email == "" {
			contact.Email = ident.Email
		}
		if contact.Name == "" {
			contact.Name = ident.Name
		}
	}
	carts := h.carts.ForIdentity(ident)

	cartID := GetCartIDFromCookie(r)
	if cartID == "" {
		handler.ErrorResponse(w, r, domain.ErrEmptyCart)
		return
	}

	cart, err := carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			handler.ErrorResponse(w, r, domain.ErrEmptyCart)
			return
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutStarted.Inc()
	}

	session, err := h.checkoutService.CreateSession(ctx, domain.CreateSessionParams{
		Cart:    *cart,
		Contact: contact,
	})
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.CheckoutFailed.WithLabelValues(domain.ErrorCode(err)).Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	// The cart is handed off to the gateway; clear it before the shopper is
	// redirected. Failures are logged and ignored so a stale cart never
	// blocks the redirect.
	if err := carts.ClearCart(ctx, cartID); err != nil {
		h.logger.Error("failed to clear cart after session creation",
			"cart_id", cartID,
			"error", err)
	}
	ClearCartCookie(w, h.cookieConfig)

	handler.RespondJSON(w, http.StatusCreated, createSessionResponse{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// toFieldErrors converts validator errors to field-level validation errors.
func toFieldErrors(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid(op, "Validation failed")
	}

	var out error
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "email":
			out = domain.AddFieldError(out, field, "must be a valid email address")
		case "max":
			out = domain.AddFieldError(out, field, "is too long")
		default:
			out = domain.AddFieldError(out, field, "is invalid")
		}
	}
	if ve, ok := out.(*domain.ValidationError); ok {
		ve.Op = op
	}
	return out
}
