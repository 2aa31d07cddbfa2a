package domain

import (
	"context"
	"time"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound    = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrLineNotFound    = &Error{Code: ENOTFOUND, Message: "Cart line not found"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrInvalidLine     = &Error{Code: EINVALID, Message: "Cart line is missing a product ID"}
)

// CartService provides business logic for shopping cart operations.
type CartService interface {
	// GetCart retrieves a cart by ID, creating an empty one if it does not exist.
	GetCart(ctx context.Context, cartID string) (*Cart, error)

	// AddLine adds a line to the cart. If a line with the same
	// (productID, size, color) key already exists, quantities are merged.
	AddLine(ctx context.Context, cartID string, line CartLine) (*CartSummary, error)

	// SetQuantity updates the quantity of an existing line.
	// A quantity of zero or less removes the line.
	SetQuantity(ctx context.Context, cartID string, key LineKey, quantity int) (*CartSummary, error)

	// RemoveLine removes a line from the cart. Removing an absent line is a no-op.
	RemoveLine(ctx context.Context, cartID string, key LineKey) (*CartSummary, error)

	// GetCartSummary retrieves a cart with calculated totals.
	GetCartSummary(ctx context.Context, cartID string) (*CartSummary, error)

	// ClearCart removes all lines from a cart.
	ClearCart(ctx context.Context, cartID string) error
}

// LineKey uniquely identifies a cart line. Two lines are the same line when
// product, size, and color all match.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLine is a single entry in a cart. Product attributes are carried on the
// line so the cart renders and prices without a catalog lookup.
type CartLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	Color          string `json:"color"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

// Key returns the identity of the line within a cart.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// SubtotalCents returns the line subtotal.
func (l CartLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Cart represents a shopper's cart.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId,omitempty"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// SubtotalCents returns the sum of all line subtotals.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.SubtotalCents()
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CartSummary aggregates a cart with calculated totals.
type CartSummary struct {
	Cart          Cart  `json:"cart"`
	SubtotalCents int64 `json:"subtotalCents"`
	ItemCount     int   `json:"itemCount"`
}
