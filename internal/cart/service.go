package cart

import (
	"context"
	"log/slog"
	"time"

	"github.com/torsore/storefront/internal/domain"
)

// Service implements domain.CartService on top of a Store.
// Every mutation is persisted synchronously before the updated summary is
// returned. Persistence failures are logged and never surfaced: the shopper
// keeps the in-memory result and the next successful save catches up.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Compile-time check that Service implements domain.CartService.
var _ domain.CartService = (*Service)(nil)

// NewService creates a cart service over the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetCart retrieves a cart, creating an empty one if it does not exist.
func (s *Service) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.store.Load(ctx, cartID)
}

// AddLine adds a line to the cart, merging quantities when a line with the
// same (productID, size, color) key already exists.
func (s *Service) AddLine(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartSummary, error) {
	if line.ProductID == "" {
		return nil, domain.ErrInvalidLine
	}
	if line.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	merged := false
	key := line.Key()
	for i := range cart.Lines {
		if cart.Lines[i].Key() == key {
			cart.Lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, line)
	}

	s.persist(ctx, cart)
	return s.summarize(cart), nil
}

// SetQuantity updates the quantity of an existing line. A quantity of zero or
// less removes the line; setting quantity on an absent line is an error
// unless it would have removed it anyway.
func (s *Service) SetQuantity(ctx context.Context, cartID string, key domain.LineKey, quantity int) (*domain.CartSummary, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Lines {
		if cart.Lines[i].Key() == key {
			idx = i
			break
		}
	}

	if quantity <= 0 {
		if idx >= 0 {
			cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
			s.persist(ctx, cart)
		}
		return s.summarize(cart), nil
	}

	if idx < 0 {
		return nil, domain.ErrLineNotFound
	}

	cart.Lines[idx].Quantity = quantity
	s.persist(ctx, cart)
	return s.summarize(cart), nil
}

// RemoveLine removes a line from the cart. Removing an absent line is a no-op.
func (s *Service) RemoveLine(ctx context.Context, cartID string, key domain.LineKey) (*domain.CartSummary, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Lines {
		if cart.Lines[i].Key() == key {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			s.persist(ctx, cart)
			break
		}
	}
	return s.summarize(cart), nil
}

// GetCartSummary retrieves a cart with calculated totals.
func (s *Service) GetCartSummary(ctx context.Context, cartID string) (*domain.CartSummary, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.summarize(cart), nil
}

// ClearCart removes all lines from a cart.
func (s *Service) ClearCart(ctx context.Context, cartID string) error {
	if err := s.store.Delete(ctx, cartID); err != nil {
		s.logger.Error("failed to clear cart",
			"cart_id", cartID,
			"error", err)
	}
	return nil
}

func (s *Service) persist(ctx context.Context, cart *domain.Cart) {
	cart.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, cart); err != nil {
		s.logger.Error("failed to persist cart",
			"cart_id", cart.ID,
			"error", err)
	}
}

func (s *Service) summarize(cart *domain.Cart) *domain.CartSummary {
	return &domain.CartSummary{
		Cart:          *cart,
		SubtotalCents: cart.SubtotalCents(),
		ItemCount:     cart.ItemCount(),
	}
}
