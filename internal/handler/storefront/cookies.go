package storefront

import (
	"net/http"

	"github.com/torsore/storefront/internal/cookie"
)

// cartCookieMaxAge keeps guest carts around for 30 days.
const cartCookieMaxAge = 30 * 24 * 60 * 60

// GetCartIDFromCookie retrieves the cart ID from the cart cookie.
// Returns empty string if the cookie is not present.
func GetCartIDFromCookie(r *http.Request) string {
	return cookie.Get(r, cookie.CartCookieName)
}

// SetCartCookie sets the cart cookie with the configured security settings.
func SetCartCookie(w http.ResponseWriter, cartID string, cookieConfig *cookie.Config) {
	cookieConfig.Set(w, cookie.CartCookieName, cartID, cartCookieMaxAge)
}

// ClearCartCookie removes the cart cookie.
func ClearCartCookie(w http.ResponseWriter, cookieConfig *cookie.Config) {
	cookieConfig.Clear(w, cookie.CartCookieName)
}
