package identity

import (
	"context"
	"strings"
)

// StaticResolver resolves tokens from a fixed map. Used in development and
// tests; production deployments plug in a real session-backed resolver.
type StaticResolver struct {
	tokens map[string]Identity
}

// Compile-time check that StaticResolver implements Resolver.
var _ Resolver = (*StaticResolver)(nil)

// NewStaticResolver creates a resolver over a token -> identity map.
func NewStaticResolver(tokens map[string]Identity) *StaticResolver {
	if tokens == nil {
		tokens = map[string]Identity{}
	}
	return &StaticResolver{tokens: tokens}
}

// Resolve looks the token up. Unknown tokens resolve to a guest (nil, nil).
func (r *StaticResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	if id, ok := r.tokens[token]; ok {
		return &id, nil
	}
	return nil, nil
}
