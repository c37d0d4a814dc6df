package decider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"

	"docai/internal/domain"
)

// ErrNotInteractive is returned when guided mode runs without a terminal.
var ErrNotInteractive = errors.New("guided mode needs an interactive terminal")

// AcceptAll approves every unit.
type AcceptAll struct{}

func (AcceptAll) Decide(context.Context, domain.MethodUnit) (bool, error) {
	return true, nil
}

// Prompt asks on the terminal before each unit is documented.
type Prompt struct {
	ask func(msg string) (bool, error)
}

// NewPrompt returns a terminal prompt decider. It fails when stdin is not a TTY.
func NewPrompt() (*Prompt, error) {
	if !IsInteractive() {
		return nil, ErrNotInteractive
	}
	return &Prompt{ask: surveyConfirm}, nil
}

func (p *Prompt) Decide(ctx context.Context, unit domain.MethodUnit) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	msg := fmt.Sprintf("Generate doc for %s (%s, line %d)?", unit.Name, unit.Kind, unit.StartLine)
	ok, err := p.ask(msg)
	if errors.Is(err, terminal.InterruptErr) {
		return false, context.Canceled
	}
	return ok, err
}

func surveyConfirm(msg string) (bool, error) {
	var result bool
	err := survey.AskOne(&survey.Confirm{Message: msg, Default: false}, &result)
	return result, err
}

// IsInteractive checks if stdin is connected to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
