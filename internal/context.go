package internal

import (
	"context"

	"github.com/frahmantamala/pix-checkout/internal/core/datamodel/identity"
)

type ctxKey string

const ContextVisitorKey ctxKey = "visitor"

// Visitor is the per-request view of the person using the storefront. It is
// built by middleware from the session and the request and threaded through
// handlers via the request context.
type Visitor struct {
	Identity  identity.Identity
	Known     bool
	Referer   string
	RequestID string
}

func VisitorFromContext(ctx context.Context) *Visitor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ContextVisitorKey).(*Visitor); ok {
		return v
	}
	return nil
}

func ContextWithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, ContextVisitorKey, v)
}
