package identity

import "context"

// Identity describes the shopper behind a request.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Authenticated reports whether the identity belongs to a signed-in shopper.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Resolver resolves a bearer token to an identity.
// A missing or unknown token resolves to nil, nil: the request proceeds as a
// guest, it is not an error.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, token string) (*Identity, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (*Identity, error) {
	return f(ctx, token)
}
