package port

import (
	"context"

	"docai/internal/domain"
)

// StructuralParser turns raw file bytes into method units in document order.
type StructuralParser interface {
	Parse(ctx context.Context, content []byte, lang domain.Language) ([]domain.MethodUnit, error)

	// Supports reports whether the parser has rules for lang.
	Supports(lang domain.Language) bool
}
