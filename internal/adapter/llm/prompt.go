package llm

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"
	"text/template"

	"docai/internal/domain"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("prompt").Parse(promptText))

type promptData struct {
	Language   string
	Source     string
	Inline     bool
	Signatures bool
}

// BuildPrompt renders the doc comment prompt for one method.
func BuildPrompt(req domain.GenerationRequest) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Language:   req.Language.PromptName(),
		Source:     req.Source,
		Inline:     req.Inline,
		Signatures: req.Language == domain.LanguageHaskell,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// PromptHash identifies the prompt template. Cached docs generated from a
// different template are discarded.
func PromptHash() string {
	sum := sha256.Sum256([]byte(promptText))
	return hex.EncodeToString(sum[:8])
}
