package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"docai/internal/domain"
)

type docStyle int

const (
	// docPreceding: comment nodes directly above the method.
	docPreceding docStyle = iota
	// docBodyString: a string literal as the first statement of the body.
	docBodyString
)

// Rule is the structural query for one language. Captures named @method and
// @name are required in Query.
type Rule struct {
	Language domain.Language
	Grammar  func() *sitter.Language
	Query    string
	Doc      docStyle

	// CommentKinds are the node types treated as comments.
	CommentKinds []string
	// DocPrefixes filters comments that count as documentation. Empty accepts any comment.
	DocPrefixes []string
	// SkipKinds may sit between a doc comment and the method (attributes, decorators).
	SkipKinds []string
	// Wrappers are parent node types that become part of the unit (export, template).
	Wrappers []string
	// Kinds labels method node types; unlisted types are "function".
	Kinds map[string]string

	// Scan replaces tree-sitter for languages without a grammar binding.
	Scan func(content []byte) ([]domain.MethodUnit, error)
}

var cFamilyComments = []string{"comment", "line_comment", "block_comment", "multiline_comment"}

// Doxygen markers; a plain // or /* comment above a C function is not documentation.
var cDocPrefixes = []string{"/**", "/*!", "///", "//!"}

const jsQuery = `
(function_declaration name: (identifier) @name) @method
(generator_function_declaration name: (identifier) @name) @method
(method_definition name: (_) @name) @method
`

const cQuery = `
(function_definition declarator: (function_declarator declarator: (_) @name)) @method
(function_definition declarator: (pointer_declarator declarator: (function_declarator declarator: (_) @name))) @method
`

// DefaultRules returns the structural rule table for every supported language.
func DefaultRules() map[domain.Language]Rule {
	rules := []Rule{
		{
			Language:     domain.LanguagePython,
			Grammar:      python.GetLanguage,
			Query:        `(function_definition name: (identifier) @name) @method`,
			Doc:          docBodyString,
			CommentKinds: []string{"comment"},
		},
		{
			Language:     domain.LanguageJavaScript,
			Grammar:      javascript.GetLanguage,
			Query:        jsQuery,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"/**"},
			SkipKinds:    []string{"decorator"},
			Wrappers:     []string{"export_statement"},
			Kinds:        map[string]string{"method_definition": "method"},
		},
		{
			Language:     domain.LanguageTypeScript,
			Grammar:      typescript.GetLanguage,
			Query:        jsQuery,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"/**"},
			SkipKinds:    []string{"decorator"},
			Wrappers:     []string{"export_statement"},
			Kinds:        map[string]string{"method_definition": "method"},
		},
		{
			Language:     domain.LanguageTSX,
			Grammar:      tsx.GetLanguage,
			Query:        jsQuery,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"/**"},
			SkipKinds:    []string{"decorator"},
			Wrappers:     []string{"export_statement"},
			Kinds:        map[string]string{"method_definition": "method"},
		},
		{
			Language: domain.LanguageJava,
			Grammar:  java.GetLanguage,
			Query: `
(method_declaration name: (identifier) @name) @method
(constructor_declaration name: (identifier) @name) @method
`,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"/**"},
			Kinds: map[string]string{
				"method_declaration":      "method",
				"constructor_declaration": "constructor",
			},
		},
		{
			Language:     domain.LanguageKotlin,
			Grammar:      kotlin.GetLanguage,
			Query:        `(function_declaration (simple_identifier) @name) @method`,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"/**"},
		},
		{
			Language:     domain.LanguageRust,
			Grammar:      rust.GetLanguage,
			Query:        `(function_item name: (identifier) @name) @method`,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"///", "/**"},
			SkipKinds:    []string{"attribute_item"},
		},
		{
			Language: domain.LanguageGo,
			Grammar:  golang.GetLanguage,
			Query: `
(function_declaration name: (identifier) @name) @method
(method_declaration name: (field_identifier) @name) @method
`,
			CommentKinds: cFamilyComments,
			Kinds:        map[string]string{"method_declaration": "method"},
		},
		{
			Language:     domain.LanguageC,
			Grammar:      c.GetLanguage,
			Query:        cQuery,
			CommentKinds: cFamilyComments,
			DocPrefixes:  cDocPrefixes,
		},
		{
			Language: domain.LanguageCPP,
			Grammar:  cpp.GetLanguage,
			Query: cQuery + `
(function_definition declarator: (reference_declarator (function_declarator declarator: (_) @name))) @method
`,
			CommentKinds: cFamilyComments,
			DocPrefixes:  cDocPrefixes,
			Wrappers:     []string{"template_declaration"},
		},
		{
			Language: domain.LanguageCSharp,
			Grammar:  csharp.GetLanguage,
			Query: `
(method_declaration name: (identifier) @name) @method
(constructor_declaration name: (identifier) @name) @method
(local_function_statement name: (identifier) @name) @method
`,
			CommentKinds: cFamilyComments,
			DocPrefixes:  []string{"///", "/**"},
			Kinds: map[string]string{
				"method_declaration":      "method",
				"constructor_declaration": "constructor",
			},
		},
		{
			Language: domain.LanguageHaskell,
			Scan:     scanHaskell,
		},
	}

	table := make(map[domain.Language]Rule, len(rules))
	for _, r := range rules {
		table[r.Language] = r
	}
	return table
}

func (r Rule) kindOf(nodeType string) string {
	if k, ok := r.Kinds[nodeType]; ok {
		return k
	}
	return "function"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
