package port

import (
	"context"

	"docai/internal/domain"
)

// Decider is asked in guided mode whether a unit should be documented.
type Decider interface {
	Decide(ctx context.Context, unit domain.MethodUnit) (bool, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, unit domain.MethodUnit) (bool, error)

func (f DeciderFunc) Decide(ctx context.Context, unit domain.MethodUnit) (bool, error) {
	return f(ctx, unit)
}
