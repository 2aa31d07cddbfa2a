package cart_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torsore/storefront/internal/cart"
	"github.com/torsore/storefront/internal/domain"
)

// memStore is an in-memory cart.Store for service tests.
type memStore struct {
	carts   map[string]*domain.Cart
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]*domain.Cart)}
}

func (s *memStore) Load(ctx context.Context, cartID string) (*domain.Cart, error) {
	if c, ok := s.carts[cartID]; ok {
		clone := *c
		clone.Lines = append([]domain.CartLine(nil), c.Lines...)
		return &clone, nil
	}
	now := time.Now()
	return &domain.Cart{ID: cartID, Lines: []domain.CartLine{}, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *memStore) Save(ctx context.Context, c *domain.Cart) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	clone := *c
	clone.Lines = append([]domain.CartLine(nil), c.Lines...)
	s.carts[c.ID] = &clone
	return nil
}

func (s *memStore) Delete(ctx context.Context, cartID string) error {
	delete(s.carts, cartID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLine(productID, size, color string, priceCents int64, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID:      productID,
		Name:           "Test Product " + productID,
		Size:           size,
		Color:          color,
		UnitPriceCents: priceCents,
		Quantity:       qty,
	}
}

func TestService_AddLine_NewLine(t *testing.T) {
	store := newMemStore()
	svc := cart.NewService(store, testLogger())

	summary, err := svc.AddLine(context.Background(), "c1", testLine("p1", "M", "Red", 12000, 2))
	require.NoError(t, err)

	assert.Len(t, summary.Cart.Lines, 1)
	assert.Equal(t, int64(24000), summary.SubtotalCents)
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, 1, store.saves, "mutation should persist before returning")
}

func TestService_AddLine_MergesSameKey(t *testing.T) {
	store := newMemStore()
	svc := cart.NewService(store, testLogger())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 2))
	require.NoError(t, err)
	summary, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 3))
	require.NoError(t, err)

	require.Len(t, summary.Cart.Lines, 1, "same key should merge, not duplicate")
	assert.Equal(t, 5, summary.Cart.Lines[0].Quantity)
	assert.Equal(t, int64(60000), summary.SubtotalCents)
}

func TestService_AddLine_DistinctVariantsAreDistinctLines(t *testing.T) {
	store := newMemStore()
	svc := cart.NewService(store, testLogger())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 1))
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "c1", testLine("p1", "L", "Red", 12000, 1))
	require.NoError(t, err)
	summary, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Black", 12000, 1))
	require.NoError(t, err)

	assert.Len(t, summary.Cart.Lines, 3, "size and color are part of line identity")
}

func TestService_AddLine_Validation(t *testing.T) {
	svc := cart.NewService(newMemStore(), testLogger())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "c1", testLine("", "M", "Red", 100, 1))
	assert.True(t, domain.IsCode(err, domain.EINVALID))

	_, err = svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 100, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 100, -4))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestService_SetQuantity(t *testing.T) {
	store := newMemStore()
	svc := cart.NewService(store, testLogger())
	ctx := context.Background()
	key := domain.LineKey{ProductID: "p1", Size: "M", Color: "Red"}

	_, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 2))
	require.NoError(t, err)

	summary, err := svc.SetQuantity(ctx, "c1", key, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Cart.Lines[0].Quantity)

	// Zero and negative quantities remove the line.
	summary, err = svc.SetQuantity(ctx, "c1", key, 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Cart.Lines)

	_, err = svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 2))
	require.NoError(t, err)
	summary, err = svc.SetQuantity(ctx, "c1", key, -1)
	require.NoError(t, err)
	assert.Empty(t, summary.Cart.Lines)
}

func TestService_SetQuantity_AbsentLine(t *testing.T) {
	svc := cart.NewService(newMemStore(), testLogger())
	ctx := context.Background()
	key := domain.LineKey{ProductID: "ghost", Size: "M", Color: "Red"}

	_, err := svc.SetQuantity(ctx, "c1", key, 3)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	// Removing an absent line via zero quantity is a no-op, not an error.
	summary, err := svc.SetQuantity(ctx, "c1", key, 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Cart.Lines)
}

func TestService_RemoveLine(t *testing.T) {
	store := newMemStore()
	svc := cart.NewService(store, testLogger())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 2))
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "c1", testLine("p2", "S", "Black", 4500, 1))
	require.NoError(t, err)

	summary, err := svc.RemoveLine(ctx, "c1", domain.LineKey{ProductID: "p1", Size: "M", Color: "Red"})
	require.NoError(t, err)
	require.Len(t, summary.Cart.Lines, 1)
	assert.Equal(t, "p2", summary.Cart.Lines[0].ProductID)

	// Removing an absent line is a no-op.
	summary, err = svc.RemoveLine(ctx, "c1", domain.LineKey{ProductID: "ghost", Size: "M", Color: "Red"})
	require.NoError(t, err)
	assert.Len(t, summary.Cart.Lines, 1)
}

func TestService_ClearCart(t *testing.T) {
	store := newMemStore()
	svc := cart.NewService(store, testLogger())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "c1", testLine("p1", "M", "Red", 12000, 2))
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "c1"))

	summary, err := svc.GetCartSummary(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, summary.Cart.Lines)
	assert.Equal(t, int64(0), summary.SubtotalCents)
}

func TestService_PersistFailureIsNotSurfaced(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	svc := cart.NewService(store, testLogger())

	summary, err := svc.AddLine(context.Background(), "c1", testLine("p1", "M", "Red", 12000, 1))
	require.NoError(t, err, "a failed save must not fail the mutation")
	assert.Len(t, summary.Cart.Lines, 1)
}

// TestService_RandomizedOperations drives the cart with random adds, removes,
// and quantity updates and checks the summary invariants against a naive model.
func TestService_RandomizedOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	store := newMemStore()
	svc := cart.NewService(store, testLogger())
	ctx := context.Background()

	products := []string{"p1", "p2", "p3"}
	sizes := []string{"S", "M", "L"}
	colors := []string{"Red", "Black"}

	model := make(map[domain.LineKey]domain.CartLine)

	for i := 0; i < 500; i++ {
		line := testLine(
			products[rng.Intn(len(products))],
			sizes[rng.Intn(len(sizes))],
			colors[rng.Intn(len(colors))],
			int64(rng.Intn(20000)+100),
			rng.Intn(4)+1,
		)
		key := line.Key()

		switch rng.Intn(3) {
		case 0: // add
			if existing, ok := model[key]; ok {
				line.UnitPriceCents = existing.UnitPriceCents
				existing.Quantity += line.Quantity
				model[key] = existing
			} else {
				model[key] = line
			}
			_, err := svc.AddLine(ctx, "c1", line)
			require.NoError(t, err)
		case 1: // remove
			delete(model, key)
			_, err := svc.RemoveLine(ctx, "c1", key)
			require.NoError(t, err)
		case 2: // set quantity (may remove)
			qty := rng.Intn(5) // 0..4
			if existing, ok := model[key]; ok {
				if qty <= 0 {
					delete(model, key)
				} else {
					existing.Quantity = qty
					model[key] = existing
				}
				_, err := svc.SetQuantity(ctx, "c1", key, qty)
				require.NoError(t, err)
			}
		}
	}

	summary, err := svc.GetCartSummary(ctx, "c1")
	require.NoError(t, err)

	var wantSubtotal int64
	var wantCount int
	for _, l := range model {
		wantSubtotal += l.SubtotalCents()
		wantCount += l.Quantity
	}

	assert.Len(t, summary.Cart.Lines, len(model))
	assert.Equal(t, wantSubtotal, summary.SubtotalCents)
	assert.Equal(t, wantCount, summary.ItemCount)
}
