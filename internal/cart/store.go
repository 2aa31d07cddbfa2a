package cart

import (
	"context"

	"github.com/torsore/storefront/internal/domain"
)

// Store persists carts. Two implementations exist: a file-backed store for
// guest carts and a Postgres-backed store for authenticated shoppers.
type Store interface {
	// Load retrieves a cart by ID. A cart that has never been saved loads
	// as an empty cart, not an error.
	Load(ctx context.Context, cartID string) (*domain.Cart, error)

	// Save persists the full cart state.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart entirely. Deleting an absent cart is a no-op.
	Delete(ctx context.Context, cartID string) error
}
