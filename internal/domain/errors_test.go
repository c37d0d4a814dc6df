package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestPreconditionErrorMessage(t *testing.T) {
	err := &PreconditionError{Path: "a.py", Reason: "target has uncommitted changes", Err: ErrDirty}
	if !errors.Is(err, ErrDirty) {
		t.Error("expected error to wrap ErrDirty")
	}
	if got := err.Error(); got != "target has uncommitted changes: a.py" {
		t.Errorf("unexpected message: %s", got)
	}

	both := &PreconditionError{Path: "a.txt", Language: "txt", Reason: "unrecognized language"}
	if !strings.Contains(both.Error(), "a.txt") || !strings.Contains(both.Error(), `"txt"`) {
		t.Errorf("expected path and language in message, got %s", both.Error())
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Language: LanguagePython, Path: "a.py", Offset: 7, Err: ErrSyntax}
	if got := err.Error(); got != "parse python a.py at byte 7: syntax error" {
		t.Errorf("unexpected message: %s", got)
	}
	if !errors.Is(err, ErrSyntax) {
		t.Error("expected error to wrap ErrSyntax")
	}

	noOffset := &ParseError{Language: LanguageGo, Offset: -1, Err: ErrNoMethods}
	if strings.Contains(noOffset.Error(), "byte") {
		t.Errorf("expected no offset in message, got %s", noOffset.Error())
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := &GenerationError{Unit: "f", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected GenerationError to unwrap its cause")
	}
	if !strings.Contains(err.Error(), "f") {
		t.Errorf("expected unit name in message, got %s", err.Error())
	}
}

func TestNewReplacementCarriesSpan(t *testing.T) {
	u := MethodUnit{Name: "f", Source: "def f():\n    pass", StartByte: 10, EndByte: 27}
	r := NewReplacement(u, "documented")
	if r.Original != u.Source || r.StartByte != 10 || r.EndByte != 27 || r.Name != "f" {
		t.Errorf("unexpected replacement: %+v", r)
	}
}
