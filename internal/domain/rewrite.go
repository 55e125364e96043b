package domain

import "context"

// Rewriter rewrites marketing copy. Implementations never fail: on any
// problem they return the original text unchanged.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) string
}
