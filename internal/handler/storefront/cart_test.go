package storefront

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/torsore/storefront/internal/cookie"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/identity"
	"github.com/torsore/storefront/internal/pricing"
	"github.com/torsore/storefront/internal/shipping"
	"github.com/torsore/storefront/internal/tax"
)

// mockCartService implements domain.CartService for testing
type mockCartService struct {
	getCartFunc        func(ctx context.Context, cartID string) (*domain.Cart, error)
	addLineFunc        func(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartSummary, error)
	setQuantityFunc    func(ctx context.Context, cartID string, key domain.LineKey, quantity int) (*domain.CartSummary, error)
	removeLineFunc     func(ctx context.Context, cartID string, key domain.LineKey) (*domain.CartSummary, error)
	getCartSummaryFunc func(ctx context.Context, cartID string) (*domain.CartSummary, error)
	clearCartFunc      func(ctx context.Context, cartID string) error
}

func (m *mockCartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if m.getCartFunc != nil {
		return m.getCartFunc(ctx, cartID)
	}
	return &domain.Cart{ID: cartID, Lines: []domain.CartLine{}}, nil
}

func (m *mockCartService) AddLine(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartSummary, error) {
	if m.addLineFunc != nil {
		return m.addLineFunc(ctx, cartID, line)
	}
	return &domain.CartSummary{Cart: domain.Cart{ID: cartID, Lines: []domain.CartLine{line}}}, nil
}

func (m *mockCartService) SetQuantity(ctx context.Context, cartID string, key domain.LineKey, quantity int) (*domain.CartSummary, error) {
	if m.setQuantityFunc != nil {
		return m.setQuantityFunc(ctx, cartID, key, quantity)
	}
	return &domain.CartSummary{Cart: domain.Cart{ID: cartID}}, nil
}

func (m *mockCartService) RemoveLine(ctx context.Context, cartID string, key domain.LineKey) (*domain.CartSummary, error) {
	if m.removeLineFunc != nil {
		return m.removeLineFunc(ctx, cartID, key)
	}
	return &domain.CartSummary{Cart: domain.Cart{ID: cartID}}, nil
}

func (m *mockCartService) GetCartSummary(ctx context.Context, cartID string) (*domain.CartSummary, error) {
	if m.getCartSummaryFunc != nil {
		return m.getCartSummaryFunc(ctx, cartID)
	}
	return &domain.CartSummary{Cart: domain.Cart{ID: cartID, Lines: []domain.CartLine{}}}, nil
}

func (m *mockCartService) ClearCart(ctx context.Context, cartID string) error {
	if m.clearCartFunc != nil {
		return m.clearCartFunc(ctx, cartID)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEstimator() *pricing.Estimator {
	return pricing.NewEstimator(
		shipping.NewMenu(20000, 1500, 2500),
		tax.NewPercentageCalculator(0.08),
	)
}

// newCartSelector backs both identity states with the same service; tests
// that care about the split build their own selector.
func newCartSelector(svc domain.CartService) *CartSelector {
	return NewCartSelector(svc, svc, identity.NewStaticResolver(nil), testLogger())
}

func newCartHandler(svc domain.CartService) *CartHandler {
	return NewCartHandler(newCartSelector(svc), testEstimator(), cookie.NewConfig(false), testLogger())
}

func withCartCookie(r *http.Request, cartID string) *http.Request {
	r.AddCookie(&http.Cookie{Name: cookie.CartCookieName, Value: cartID})
	return r
}

func TestCartHandler_View(t *testing.T) {
	tests := []struct {
		name           string
		cartCookie     string
		mockSummary    *domain.CartSummary
		mockErr        error
		expectedStatus int
		checkBody      func(t *testing.T, body cartResponse)
	}{
		{
			name:           "no cookie returns empty cart",
			cartCookie:     "",
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body cartResponse) {
				if len(body.Cart.Lines) != 0 {
					t.Errorf("expected empty cart, got %d lines", len(body.Cart.Lines))
				}
				if body.ItemCount != 0 {
					t.Errorf("expected item count 0, got %d", body.ItemCount)
				}
			},
		},
		{
			name:       "cart with lines",
			cartCookie: "cart-1",
			mockSummary: &domain.CartSummary{
				Cart: domain.Cart{
					ID: "cart-1",
					Lines: []domain.CartLine{
						{ProductID: "p1", Name: "Wool Overshirt", Size: "M", Color: "Rust", UnitPriceCents: 12000, Quantity: 2},
					},
				},
				SubtotalCents: 24000,
				ItemCount:     2,
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body cartResponse) {
				if body.SubtotalCents != 24000 {
					t.Errorf("expected subtotal 24000, got %d", body.SubtotalCents)
				}
				if len(body.Cart.Lines) != 1 || body.Cart.Lines[0].Name != "Wool Overshirt" {
					t.Errorf("unexpected lines: %+v", body.Cart.Lines)
				}
			},
		},
		{
			name:           "store failure returns internal error",
			cartCookie:     "cart-1",
			mockErr:        domain.Internal(io.ErrUnexpectedEOF, "cart.summary", "failed to load cart"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCartService{
				getCartSummaryFunc: func(ctx context.Context, cartID string) (*domain.CartSummary, error) {
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return tt.mockSummary, nil
				},
			}
			h := newCartHandler(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.cartCookie != "" {
				req = withCartCookie(req, tt.cartCookie)
			}
			rec := httptest.NewRecorder()

			h.View(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.checkBody != nil {
				var body cartResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				tt.checkBody(t, body)
			}
		})
	}
}

func TestCartHandler_AddLine_MintsCookieForNewCart(t *testing.T) {
	var gotCartID string
	svc := &mockCartService{
		addLineFunc: func(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartSummary, error) {
			gotCartID = cartID
			return &domain.CartSummary{
				Cart:          domain.Cart{ID: cartID, Lines: []domain.CartLine{line}},
				SubtotalCents: line.SubtotalCents(),
				ItemCount:     line.Quantity,
			}, nil
		},
	}
	h := newCartHandler(svc)

	body := `{"productId":"p1","name":"Wool Overshirt","size":"M","color":"Rust","unitPriceCents":12000,"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCartID == "" {
		t.Fatal("expected a cart ID to be minted")
	}

	var sawCookie bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.CartCookieName {
			sawCookie = true
			if c.Value != gotCartID {
				t.Errorf("cookie value %q does not match cart ID %q", c.Value, gotCartID)
			}
			if !c.HttpOnly {
				t.Error("expected HttpOnly cart cookie")
			}
		}
	}
	if !sawCookie {
		t.Error("expected cart cookie to be set")
	}
}

func TestCartHandler_AddLine_ReusesExistingCookie(t *testing.T) {
	var gotCartID string
	svc := &mockCartService{
		addLineFunc: func(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartSummary, error) {
			gotCartID = cartID
			return &domain.CartSummary{Cart: domain.Cart{ID: cartID}}, nil
		},
	}
	h := newCartHandler(svc)

	body := `{"productId":"p1","name":"Tee","unitPriceCents":2500,"quantity":1}`
	req := withCartCookie(httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader(body)), "existing-cart")
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotCartID != "existing-cart" {
		t.Errorf("expected existing cart ID to be reused, got %q", gotCartID)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.CartCookieName {
			t.Error("expected no new cart cookie when one already exists")
		}
	}
}

func TestCartHandler_AddLine_InvalidBody(t *testing.T) {
	h := newCartHandler(&mockCartService{})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/lines", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.AddLine(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestCartHandler_UpdateLine(t *testing.T) {
	tests := []struct {
		name           string
		cartCookie     string
		quantity       int
		expectedStatus int
	}{
		{
			name:           "updates quantity",
			cartCookie:     "cart-1",
			quantity:       3,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "zero quantity removes the line",
			cartCookie:     "cart-1",
			quantity:       0,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no cookie means no cart",
			cartCookie:     "",
			quantity:       1,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuantity int
			svc := &mockCartService{
				setQuantityFunc: func(ctx context.Context, cartID string, key domain.LineKey, quantity int) (*domain.CartSummary, error) {
					gotQuantity = quantity
					return &domain.CartSummary{Cart: domain.Cart{ID: cartID}}, nil
				},
			}
			h := newCartHandler(svc)

			body := `{"productId":"p1","size":"M","color":"Rust","quantity":` + strconv.Itoa(tt.quantity) + `}`
			req := httptest.NewRequest(http.MethodPut, "/api/cart/lines", strings.NewReader(body))
			if tt.cartCookie != "" {
				req = withCartCookie(req, tt.cartCookie)
			}
			rec := httptest.NewRecorder()

			h.UpdateLine(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && gotQuantity != tt.quantity {
				t.Errorf("expected quantity %d to reach the service, got %d", tt.quantity, gotQuantity)
			}
		})
	}
}

func TestCartHandler_Clear(t *testing.T) {
	var cleared string
	svc := &mockCartService{
		clearCartFunc: func(ctx context.Context, cartID string) error {
			cleared = cartID
			return nil
		},
	}
	h := newCartHandler(svc)

	req := withCartCookie(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), "cart-1")
	rec := httptest.NewRecorder()

	h.Clear(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if cleared != "cart-1" {
		t.Errorf("expected cart-1 to be cleared, got %q", cleared)
	}

	var sawExpiredCookie bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.CartCookieName && c.MaxAge < 0 {
			sawExpiredCookie = true
		}
	}
	if !sawExpiredCookie {
		t.Error("expected cart cookie to be cleared")
	}
}

func TestCartHandler_Estimate(t *testing.T) {
	tests := []struct {
		name         string
		cartCookie   string
		lines        []domain.CartLine
		wantSubtotal int64
		wantShipping int64
		wantTax      int64
		wantTotal    int64
	}{
		{
			name:       "below free shipping threshold",
			cartCookie: "cart-1",
			lines: []domain.CartLine{
				{ProductID: "p1", Name: "Tee", UnitPriceCents: 2500, Quantity: 2},
			},
			wantSubtotal: 5000,
			wantShipping: 1500,
			wantTax:      400,
			wantTotal:    6900,
		},
		{
			name:       "free shipping at threshold",
			cartCookie: "cart-1",
			lines: []domain.CartLine{
				{ProductID: "p1", Name: "Coat", UnitPriceCents: 20000, Quantity: 1},
			},
			wantSubtotal: 20000,
			wantShipping: 0,
			wantTax:      1600,
			wantTotal:    21600,
		},
		{
			name:         "no cookie estimates an empty cart",
			cartCookie:   "",
			wantSubtotal: 0,
			wantShipping: 1500,
			wantTax:      0,
			wantTotal:    1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCartService{
				getCartFunc: func(ctx context.Context, cartID string) (*domain.Cart, error) {
					return &domain.Cart{ID: cartID, Lines: tt.lines}, nil
				},
			}
			h := newCartHandler(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/cart/estimate", nil)
			if tt.cartCookie != "" {
				req = withCartCookie(req, tt.cartCookie)
			}
			rec := httptest.NewRecorder()

			h.Estimate(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var body estimateResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.SubtotalCents != tt.wantSubtotal {
				t.Errorf("subtotal: want %d, got %d", tt.wantSubtotal, body.SubtotalCents)
			}
			if body.ShippingCents != tt.wantShipping {
				t.Errorf("shipping: want %d, got %d", tt.wantShipping, body.ShippingCents)
			}
			if body.TaxCents != tt.wantTax {
				t.Errorf("tax: want %d, got %d", tt.wantTax, body.TaxCents)
			}
			if body.TotalCents != tt.wantTotal {
				t.Errorf("total: want %d, got %d", tt.wantTotal, body.TotalCents)
			}
			if !body.Estimate {
				t.Error("expected the estimate flag to be set")
			}
			if len(body.ShippingOptions) != 2 {
				t.Errorf("expected 2 shipping options, got %d", len(body.ShippingOptions))
			}
		})
	}
}
