package usecase

import (
	"context"
	"errors"
	"os"

	"docai/internal/domain"
	"docai/internal/port"
)

// InspectUseCase lists the method units of a file without generating anything.
type InspectUseCase struct {
	parser port.StructuralParser
}

func NewInspectUseCase(parser port.StructuralParser) *InspectUseCase {
	return &InspectUseCase{parser: parser}
}

// Inspect parses path and returns its units in document order.
func (u *InspectUseCase) Inspect(ctx context.Context, path, tag string) (domain.Language, []domain.MethodUnit, error) {
	doc := &DocumentUseCase{parser: u.parser}
	lang, err := doc.resolveLanguage(path, tag)
	if err != nil {
		return lang, nil, err
	}
	if err := doc.checkTarget(ctx, path, lang, true); err != nil {
		return lang, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lang, nil, err
	}
	units, err := u.parser.Parse(ctx, data, lang)
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return lang, nil, err
	}
	return lang, units, nil
}
