package domain

import (
	"sort"
	"strings"
)

// Language identifies the grammar used to parse a file.
type Language string

const (
	LanguageUnknown    Language = "unknown"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJava       Language = "java"
	LanguageKotlin     Language = "kotlin"
	LanguageRust       Language = "rust"
	LanguageGo         Language = "go"
	LanguageC          Language = "c"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageHaskell    Language = "haskell"
)

// SupportedLanguages lists every language with structural rules.
var SupportedLanguages = []Language{
	LanguagePython,
	LanguageJavaScript,
	LanguageTypeScript,
	LanguageTSX,
	LanguageJava,
	LanguageKotlin,
	LanguageRust,
	LanguageGo,
	LanguageC,
	LanguageCPP,
	LanguageCSharp,
	LanguageHaskell,
}

var languageAliases = map[string]Language{
	"py":      LanguagePython,
	"js":      LanguageJavaScript,
	"jsx":     LanguageJavaScript,
	"ts":      LanguageTypeScript,
	"golang":  LanguageGo,
	"c++":     LanguageCPP,
	"cxx":     LanguageCPP,
	"c#":      LanguageCSharp,
	"cs":      LanguageCSharp,
	"c_sharp": LanguageCSharp,
	"hs":      LanguageHaskell,
	"kt":      LanguageKotlin,
	"rs":      LanguageRust,
}

var extensionLanguages = map[string]Language{
	".py":   LanguagePython,
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".cjs":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".mts":  LanguageTypeScript,
	".cts":  LanguageTypeScript,
	".tsx":  LanguageTSX,
	".java": LanguageJava,
	".kt":   LanguageKotlin,
	".kts":  LanguageKotlin,
	".rs":   LanguageRust,
	".go":   LanguageGo,
	".c":    LanguageC,
	".h":    LanguageC,
	".cpp":  LanguageCPP,
	".cc":   LanguageCPP,
	".cxx":  LanguageCPP,
	".hpp":  LanguageCPP,
	".cs":   LanguageCSharp,
	".hs":   LanguageHaskell,
}

// ParseLanguage resolves a user supplied language tag.
func ParseLanguage(tag string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	for _, lang := range SupportedLanguages {
		if string(lang) == normalized {
			return lang, nil
		}
	}
	if lang, ok := languageAliases[normalized]; ok {
		return lang, nil
	}
	return LanguageUnknown, &PreconditionError{
		Language: tag,
		Reason:   "unrecognized language",
		Err:      ErrUnknownLanguage,
	}
}

// LanguageFromExtension maps a file extension (with leading dot) to a language.
func LanguageFromExtension(ext string) Language {
	if lang, ok := extensionLanguages[strings.ToLower(ext)]; ok {
		return lang
	}
	return LanguageUnknown
}

// Extensions returns the file extensions that map to l, sorted.
func (l Language) Extensions() []string {
	var exts []string
	for ext, lang := range extensionLanguages {
		if lang == l {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Known reports whether l has structural rules.
func (l Language) Known() bool {
	for _, lang := range SupportedLanguages {
		if lang == l {
			return true
		}
	}
	return false
}

// PromptName is the language name shown to the generation backend.
func (l Language) PromptName() string {
	switch l {
	case LanguageTSX:
		return string(LanguageTypeScript)
	case LanguageCPP:
		return "c++"
	case LanguageCSharp:
		return "c#"
	default:
		return string(l)
	}
}

func (l Language) String() string {
	return string(l)
}
