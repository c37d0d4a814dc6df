package domain

import (
	"errors"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		tag  string
		want Language
	}{
		{"python", LanguagePython},
		{"Python", LanguagePython},
		{" go ", LanguageGo},
		{"golang", LanguageGo},
		{"c++", LanguageCPP},
		{"c#", LanguageCSharp},
		{"hs", LanguageHaskell},
		{"tsx", LanguageTSX},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.tag)
		if err != nil {
			t.Errorf("ParseLanguage(%q) error: %v", tt.tag, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLanguage(%q) = %s, expected %s", tt.tag, got, tt.want)
		}
	}
}

func TestParseLanguageUnknown(t *testing.T) {
	lang, err := ParseLanguage("cobol")
	if lang != LanguageUnknown {
		t.Errorf("expected unknown language, got %s", lang)
	}
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}

	var perr *PreconditionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PreconditionError, got %T", err)
	}
	if perr.Language != "cobol" {
		t.Errorf("expected language cobol in error, got %q", perr.Language)
	}
}

func TestLanguageFromExtension(t *testing.T) {
	tests := map[string]Language{
		".py":  LanguagePython,
		".PY":  LanguagePython,
		".tsx": LanguageTSX,
		".h":   LanguageC,
		".hpp": LanguageCPP,
		".hs":  LanguageHaskell,
		".txt": LanguageUnknown,
		"":     LanguageUnknown,
	}
	for ext, want := range tests {
		if got := LanguageFromExtension(ext); got != want {
			t.Errorf("LanguageFromExtension(%q) = %s, expected %s", ext, got, want)
		}
	}
}

func TestExtensionsRoundTrip(t *testing.T) {
	for _, lang := range SupportedLanguages {
		exts := lang.Extensions()
		if len(exts) == 0 {
			t.Errorf("%s has no extensions", lang)
		}
		for _, ext := range exts {
			if got := LanguageFromExtension(ext); got != lang {
				t.Errorf("extension %s maps to %s, expected %s", ext, got, lang)
			}
		}
		if !lang.Known() {
			t.Errorf("%s should be known", lang)
		}
	}
	if LanguageUnknown.Known() {
		t.Error("unknown language should not be known")
	}
}

func TestPromptName(t *testing.T) {
	if got := LanguageCPP.PromptName(); got != "c++" {
		t.Errorf("expected c++, got %s", got)
	}
	if got := LanguageTSX.PromptName(); got != "typescript" {
		t.Errorf("expected typescript, got %s", got)
	}
	if got := LanguageRust.PromptName(); got != "rust" {
		t.Errorf("expected rust, got %s", got)
	}
}
