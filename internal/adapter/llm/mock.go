package llm

import (
	"context"
	"strings"

	"docai/internal/domain"
)

// MockGenerator documents a unit with a fixed comment in the unit's own
// comment style. It never calls out to a backend.
type MockGenerator struct {
	Text string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Text: "Documented by docai."}
}

func (g *MockGenerator) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	src := strings.TrimSpace(req.Source)
	switch req.Language {
	case domain.LanguagePython:
		return pythonDocstring(src, g.Text), nil
	case domain.LanguageHaskell:
		return "-- | " + g.Text + "\n" + src, nil
	case domain.LanguageRust, domain.LanguageCSharp, domain.LanguageC, domain.LanguageCPP:
		return "/// " + g.Text + "\n" + src, nil
	case domain.LanguageGo:
		return "// " + g.Text + "\n" + src, nil
	default:
		return "/** " + g.Text + " */\n" + src, nil
	}
}

func (g *MockGenerator) ModelName() string {
	return "mock"
}

func pythonDocstring(src, text string) string {
	header, body, found := strings.Cut(src, "\n")
	if !found {
		return "# " + text + "\n" + src
	}
	indent := "    "
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimLeft(line, " \t"); trimmed != "" {
			indent = line[:len(line)-len(trimmed)]
			break
		}
	}
	return header + "\n" + indent + "\"\"\"" + text + "\"\"\"\n" + body
}
