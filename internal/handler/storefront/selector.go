package storefront

import (
	"log/slog"
	"net/http"

	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/identity"
)

// CartSelector picks the cart backend per request. Signed-in shoppers get the
// durable store; guests get the local file store. Resolution failures fall
// back to the guest store rather than blocking the request.
type CartSelector struct {
	guest    domain.CartService
	user     domain.CartService
	resolver identity.Resolver
	logger   *slog.Logger
}

// NewCartSelector creates a cart selector over the two backing stores.
func NewCartSelector(guest, user domain.CartService, resolver identity.Resolver, logger *slog.Logger) *CartSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartSelector{
		guest:    guest,
		user:     user,
		resolver: resolver,
		logger:   logger,
	}
}

// ForIdentity returns the store for an already-resolved identity.
func (s *CartSelector) ForIdentity(ident *identity.Identity) domain.CartService {
	if ident != nil && ident.Authenticated() {
		return s.user
	}
	return s.guest
}

// ForRequest resolves the request's bearer token and returns the matching
// store.
func (s *CartSelector) ForRequest(r *http.Request) domain.CartService {
	token := bearerToken(r)
	if token == "" {
		return s.guest
	}
	ident, err := s.resolver.Resolve(r.Context(), token)
	if err != nil {
		s.logger.Warn("identity resolution failed, using guest cart store", "error", err)
		return s.guest
	}
	return s.ForIdentity(ident)
}
