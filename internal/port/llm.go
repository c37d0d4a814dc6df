package port

import (
	"context"

	"docai/internal/domain"
)

// Generator produces a documented version of a method's source. The result is
// plain code with the code fence already stripped.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

// Completer sends a single prompt to a text-generation backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)

	ModelName() string
}
