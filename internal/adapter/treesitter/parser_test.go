package treesitter

import (
	"context"
	"errors"
	"testing"

	"docai/internal/domain"
)

func parse(t *testing.T, lang domain.Language, src string) []domain.MethodUnit {
	t.Helper()
	p := NewParser()
	defer p.Close()
	units, err := p.Parse(context.Background(), []byte(src), lang)
	if err != nil {
		t.Fatalf("parse %s: %v", lang, err)
	}
	return units
}

func unitNamed(t *testing.T, units []domain.MethodUnit, name string) domain.MethodUnit {
	t.Helper()
	for _, u := range units {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("no unit named %q in %d units", name, len(units))
	return domain.MethodUnit{}
}

func checkSpans(t *testing.T, src string, units []domain.MethodUnit) {
	t.Helper()
	for _, u := range units {
		if u.StartByte < 0 || u.EndByte > len(src) || u.StartByte >= u.EndByte {
			t.Errorf("%s: invalid span [%d,%d)", u.Name, u.StartByte, u.EndByte)
			continue
		}
		if src[u.StartByte:u.EndByte] != u.Source {
			t.Errorf("%s: source does not match span", u.Name)
		}
	}
}

func TestParsePythonSingleFunction(t *testing.T) {
	src := "def f():\n    pass\n"
	units := parse(t, domain.LanguagePython, src)

	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	u := units[0]
	if u.Name != "f" {
		t.Errorf("expected name 'f', got '%s'", u.Name)
	}
	if u.Source != "def f():\n    pass" {
		t.Errorf("unexpected source %q", u.Source)
	}
	if u.HasDocComment {
		t.Error("expected no doc comment")
	}
	if u.Language != domain.LanguagePython {
		t.Errorf("expected language python, got %s", u.Language)
	}
	if u.StartLine != 1 || u.EndLine != 2 {
		t.Errorf("expected lines 1-2, got %d-%d", u.StartLine, u.EndLine)
	}
	checkSpans(t, src, units)
}

func TestParsePythonDocstringAndNesting(t *testing.T) {
	src := `class Greeter:
    def hello(self):
        """Say hello."""
        return "hi"

    def bye(self):
        # not a docstring
        return "bye"


def outer():
    def inner():
        return 1
    return inner()
`
	units := parse(t, domain.LanguagePython, src)
	checkSpans(t, src, units)

	if len(units) != 4 {
		t.Fatalf("expected 4 units, got %d", len(units))
	}
	if !unitNamed(t, units, "hello").HasDocComment {
		t.Error("hello: expected docstring to be detected")
	}
	if unitNamed(t, units, "bye").HasDocComment {
		t.Error("bye: a comment is not a docstring")
	}

	outer := unitNamed(t, units, "outer")
	inner := unitNamed(t, units, "inner")
	if !(outer.StartByte < inner.StartByte && inner.EndByte < outer.EndByte) {
		t.Error("expected inner span nested in outer span")
	}

	for i := 1; i < len(units); i++ {
		if units[i].StartByte < units[i-1].StartByte {
			t.Error("units not in document order")
		}
	}
}

func TestParseGoDocComments(t *testing.T) {
	src := `package calc

// Add sums two ints.
func Add(a, b int) int {
	return a + b
}

func Sub(a, b int) int {
	return a - b
}

type Acc struct{ n int }

// Inc bumps the counter.
// It never overflows in practice.
func (a *Acc) Inc() {
	a.n++
}
`
	units := parse(t, domain.LanguageGo, src)
	checkSpans(t, src, units)

	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}

	add := unitNamed(t, units, "Add")
	if !add.HasDocComment {
		t.Error("Add: expected doc comment")
	}
	if add.Source[:6] != "// Add" {
		t.Errorf("Add: expected span to start at the doc comment, got %q", add.Source[:6])
	}
	if unitNamed(t, units, "Sub").HasDocComment {
		t.Error("Sub: expected no doc comment")
	}

	inc := unitNamed(t, units, "Inc")
	if inc.Kind != "method" {
		t.Errorf("Inc: expected kind 'method', got '%s'", inc.Kind)
	}
	if !inc.HasDocComment || inc.Source[:6] != "// Inc" {
		t.Error("Inc: expected multi-line doc comment to start the span")
	}
}

func TestParseGoDetachedCommentIsNotDoc(t *testing.T) {
	src := `package calc

// detached

func Mul(a, b int) int {
	return a * b
}
`
	units := parse(t, domain.LanguageGo, src)
	if unitNamed(t, units, "Mul").HasDocComment {
		t.Error("comment separated by a blank line should not count as doc")
	}
}

func TestParseJavaScript(t *testing.T) {
	src := `/** Adds numbers. */
function add(a, b) {
  return a + b;
}

// plain comment
function sub(a, b) {
  return a - b;
}

class Box {
  open() {
    return true;
  }
}
`
	units := parse(t, domain.LanguageJavaScript, src)
	checkSpans(t, src, units)

	if !unitNamed(t, units, "add").HasDocComment {
		t.Error("add: expected JSDoc to be detected")
	}
	if unitNamed(t, units, "sub").HasDocComment {
		t.Error("sub: a line comment is not JSDoc")
	}
	if open := unitNamed(t, units, "open"); open.Kind != "method" {
		t.Errorf("open: expected kind 'method', got '%s'", open.Kind)
	}
}

func TestParseTypeScriptExportWrapper(t *testing.T) {
	src := `/** Greets. */
export function greet(name: string): string {
  return "hi " + name;
}
`
	units := parse(t, domain.LanguageTypeScript, src)
	checkSpans(t, src, units)

	g := unitNamed(t, units, "greet")
	if !g.HasDocComment {
		t.Error("greet: expected doc comment above export")
	}
	if g.StartByte != 0 {
		t.Errorf("greet: expected span to start at 0, got %d", g.StartByte)
	}
}

func TestParseJava(t *testing.T) {
	src := `class Calc {
    /**
     * Adds.
     */
    public int add(int a, int b) {
        return a + b;
    }

    Calc() {
    }
}
`
	units := parse(t, domain.LanguageJava, src)
	checkSpans(t, src, units)

	if !unitNamed(t, units, "add").HasDocComment {
		t.Error("add: expected Javadoc")
	}
	ctor := unitNamed(t, units, "Calc")
	if ctor.Kind != "constructor" {
		t.Errorf("expected constructor kind, got '%s'", ctor.Kind)
	}
	if ctor.HasDocComment {
		t.Error("constructor: expected no doc")
	}
}

func TestParseRust(t *testing.T) {
	src := `/// Doubles x.
#[inline]
fn double(x: i32) -> i32 {
    x * 2
}

fn half(x: i32) -> i32 {
    x / 2
}
`
	units := parse(t, domain.LanguageRust, src)
	checkSpans(t, src, units)

	d := unitNamed(t, units, "double")
	if !d.HasDocComment || d.StartByte != 0 {
		t.Error("double: expected doc comment across the attribute")
	}
	if unitNamed(t, units, "half").HasDocComment {
		t.Error("half: expected no doc")
	}
}

func TestParseC(t *testing.T) {
	src := `#include <stdio.h>

/** adds */
int add(int a, int b) {
    return a + b;
}

/* plain block */
int sub(int a, int b) {
    return a - b;
}

// TODO: speed this up
char *name(void) {
    return "c";
}
`
	units := parse(t, domain.LanguageC, src)
	checkSpans(t, src, units)

	if !unitNamed(t, units, "add").HasDocComment {
		t.Error("add: expected doc comment")
	}
	if unitNamed(t, units, "sub").HasDocComment {
		t.Error("sub: a plain block comment is not a doc comment")
	}
	if unitNamed(t, units, "name").HasDocComment {
		t.Error("name: a line comment is not a doc comment")
	}
}

func TestParseLanguageDocRules(t *testing.T) {
	tests := []struct {
		lang         domain.Language
		src          string
		documented   string
		undocumented string
		// documented unit span starts at byte 0, before any wrapper
		startsAtZero bool
	}{
		{
			lang: domain.LanguageKotlin,
			src: `/** Adds. */
fun add(a: Int, b: Int): Int {
    return a + b
}

// helper
fun sub(a: Int, b: Int): Int {
    return a - b
}
`,
			documented:   "add",
			undocumented: "sub",
			startsAtZero: true,
		},
		{
			lang: domain.LanguageCSharp,
			src: `class Calc {
    /// <summary>Adds.</summary>
    public int Add(int a, int b) {
        return a + b;
    }

    // plain
    public int Sub(int a, int b) {
        return a - b;
    }
}
`,
			documented:   "Add",
			undocumented: "Sub",
		},
		{
			lang: domain.LanguageCPP,
			src: `/// Sums two values.
template <typename T>
T sum(T a, T b) {
    return a + b;
}

// TODO: speed this up
int add(int a, int b) {
    return a + b;
}
`,
			documented:   "sum",
			undocumented: "add",
			startsAtZero: true,
		},
		{
			lang: domain.LanguageTSX,
			src: `/** Renders a greeting. */
export function Hello(props: { name: string }) {
  return <div>{props.name}</div>;
}

// helper
function helper() {
  return null;
}
`,
			documented:   "Hello",
			undocumented: "helper",
			startsAtZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			units := parse(t, tt.lang, tt.src)
			checkSpans(t, tt.src, units)

			doc := unitNamed(t, units, tt.documented)
			if !doc.HasDocComment {
				t.Errorf("%s: expected doc comment", tt.documented)
			}
			if tt.startsAtZero && doc.StartByte != 0 {
				t.Errorf("%s: expected span to start at 0, got %d", tt.documented, doc.StartByte)
			}
			if tt.undocumented != "" && unitNamed(t, units, tt.undocumented).HasDocComment {
				t.Errorf("%s: expected no doc comment", tt.undocumented)
			}
		})
	}
}

func TestParseCSharpKinds(t *testing.T) {
	src := `class Calc {
    /** Builds. */
    public Calc() {
    }

    // plain
    public int Add(int a, int b) {
        int Twice(int x) {
            return x * 2;
        }
        return Twice(a) + b;
    }

    /// <summary>Subtracts.</summary>
    public int Sub(int a, int b) {
        return a - b;
    }
}
`
	units := parse(t, domain.LanguageCSharp, src)
	checkSpans(t, src, units)

	if len(units) != 4 {
		t.Fatalf("expected 4 units, got %d", len(units))
	}
	ctor := unitNamed(t, units, "Calc")
	if ctor.Kind != "constructor" || !ctor.HasDocComment {
		t.Errorf("Calc: expected documented constructor, got kind %q doc %v", ctor.Kind, ctor.HasDocComment)
	}
	add := unitNamed(t, units, "Add")
	if add.Kind != "method" || add.HasDocComment {
		t.Errorf("Add: expected undocumented method, got kind %q doc %v", add.Kind, add.HasDocComment)
	}
	twice := unitNamed(t, units, "Twice")
	if twice.Kind != "function" {
		t.Errorf("Twice: expected kind 'function', got %q", twice.Kind)
	}
	if !(add.StartByte < twice.StartByte && twice.EndByte < add.EndByte) {
		t.Error("expected local function span nested in Add")
	}
	if !unitNamed(t, units, "Sub").HasDocComment {
		t.Error("Sub: expected XML doc comment")
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := NewParser()
	defer p.Close()

	_, err := p.Parse(context.Background(), []byte("def f(:\n    pass\n"), domain.LanguagePython)
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
	var perr *domain.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if !errors.Is(err, domain.ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}
	if perr.Offset < 0 {
		t.Errorf("expected a byte offset, got %d", perr.Offset)
	}
	if perr.Language != domain.LanguagePython {
		t.Errorf("expected language python, got %s", perr.Language)
	}
}

func TestParseNoMethods(t *testing.T) {
	p := NewParser()
	defer p.Close()

	_, err := p.Parse(context.Background(), []byte("x = 1\n"), domain.LanguagePython)
	if !errors.Is(err, domain.ErrNoMethods) {
		t.Errorf("expected ErrNoMethods, got %v", err)
	}
}

func TestParseUnknownLanguage(t *testing.T) {
	p := NewParser()
	_, err := p.Parse(context.Background(), []byte("x"), domain.Language("cobol"))
	if !errors.Is(err, domain.ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage, got %v", err)
	}
	if p.Supports(domain.Language("cobol")) {
		t.Error("cobol should not be supported")
	}
}

func TestDefaultRulesCoverSupportedLanguages(t *testing.T) {
	p := NewParser()
	for _, lang := range domain.SupportedLanguages {
		if !p.Supports(lang) {
			t.Errorf("no rule for %s", lang)
		}
	}
}

func TestDefaultQueriesCompile(t *testing.T) {
	p := NewParser()
	defer p.Close()
	for lang, rule := range DefaultRules() {
		if rule.Scan != nil {
			continue
		}
		if _, err := p.query(rule, rule.Grammar()); err != nil {
			t.Errorf("%s: %v", lang, err)
		}
	}
}
