package mlkit

import (
	"context"
)

// toolkitContextKey is a private type for context keys to avoid collisions
type toolkitContextKey string

const toolkitKey toolkitContextKey = "mlkit.toolkit"

// WithToolkit adds a Toolkit to the context.
func WithToolkit(ctx context.Context, tk *Toolkit) context.Context {
	return context.WithValue(ctx, toolkitKey, tk)
}

// FromContext extracts the Toolkit from context, or nil if absent.
func FromContext(ctx context.Context) *Toolkit {
	if tk, ok := ctx.Value(toolkitKey).(*Toolkit); ok {
		return tk
	}
	return nil
}

// MustFromContext extracts the Toolkit or panics.
func MustFromContext(ctx context.Context) *Toolkit {
	tk := FromContext(ctx)
	if tk == nil {
		panic("mlkit: Toolkit not found in context")
	}
	return tk
}
