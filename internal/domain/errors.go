package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrTargetMissing   = errors.New("target does not exist")
	ErrNotAFile        = errors.New("target is not a regular file")
	ErrDirty           = errors.New("target has uncommitted changes")
	ErrSyntax          = errors.New("syntax error")
	ErrNoMethods       = errors.New("no method units found")
)

// PreconditionError aborts a run before any parsing or generation happens.
type PreconditionError struct {
	Path     string
	Language string
	Reason   string
	Err      error
}

func (e *PreconditionError) Error() string {
	switch {
	case e.Path != "" && e.Language != "":
		return fmt.Sprintf("%s (path %s, language %q)", e.Reason, e.Path, e.Language)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Reason, e.Path)
	case e.Language != "":
		return fmt.Sprintf("%s: %q", e.Reason, e.Language)
	default:
		return e.Reason
	}
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// ParseError reports that a file could not be turned into method units.
// Offset is -1 when no byte position is known.
type ParseError struct {
	Language Language
	Path     string
	Offset   int
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s", e.Language)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at byte %d", e.Offset)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GenerationError is a recoverable backend failure for one unit.
type GenerationError struct {
	Unit string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate doc comment for %s: %v", e.Unit, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SpliceMiss records a replacement that could not be located in the content.
type SpliceMiss struct {
	Name   string
	Reason string
}

func (m SpliceMiss) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Reason)
}
