package treesitter

import (
	"fmt"
	"regexp"
	"strings"

	"docai/internal/domain"
)

// The tree-sitter binding ships no Haskell grammar, so Haskell is scanned by
// layout: a top-level type signature is paired with the equations that follow
// it, and a Haddock comment ("-- |" or "{- |") directly above is the doc.

var haskellKeywords = map[string]bool{
	"module": true, "import": true, "data": true, "type": true, "newtype": true,
	"class": true, "instance": true, "deriving": true, "infix": true, "infixl": true,
	"infixr": true, "where": true, "let": true, "in": true, "if": true, "then": true,
	"else": true, "case": true, "of": true, "do": true, "foreign": true,
	"default": true, "pattern": true,
}

var (
	hsName      = `(?:[a-z_][\w']*|\([^)\s]+\))`
	hsSignature = regexp.MustCompile(`^(` + hsName + `)(?:\s*,\s*` + hsName + `)*\s*::`)
	hsEquation  = regexp.MustCompile(`^(` + hsName + `)`)
	hsDocStart  = regexp.MustCompile(`^(?:--\s*\||\{-\s*\|)`)
)

type hsLineKind int

const (
	hsBlank hsLineKind = iota
	hsComment
	hsCode
)

type hsLine struct {
	start int
	text  string
	kind  hsLineKind
	doc   bool
}

func (l hsLine) indented() bool {
	return l.text != "" && (l.text[0] == ' ' || l.text[0] == '\t')
}

func (l hsLine) end() int {
	return l.start + len(strings.TrimRight(l.text, " \t\r"))
}

type hsBlock struct {
	first, last int // line indexes
	name        string
	signature   bool
}

func scanHaskell(content []byte) ([]domain.MethodUnit, error) {
	lines, err := classifyHaskellLines(string(content))
	if err != nil {
		return nil, err
	}

	blocks := haskellBlocks(lines)

	var units []domain.MethodUnit
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if b.name == "" {
			continue
		}
		j := i + 1
		for j < len(blocks) && !blocks[j].signature && blocks[j].name == b.name {
			j++
		}
		if b.signature && j == i+1 {
			// signature without a definition
			continue
		}
		units = append(units, haskellUnit(content, lines, b.first, blocks[j-1].last, b.name))
		i = j - 1
	}

	return units, nil
}

func classifyHaskellLines(src string) ([]hsLine, error) {
	var lines []hsLine
	depth := 0
	openedAt := -1
	offset := 0

	for _, text := range strings.SplitAfter(src, "\n") {
		if text == "" {
			continue
		}
		line := hsLine{start: offset, text: strings.TrimSuffix(text, "\n")}
		offset += len(text)

		trimmed := strings.TrimSpace(line.text)
		switch {
		case depth > 0:
			line.kind = hsComment
		case trimmed == "":
			line.kind = hsBlank
		case isHaskellLineComment(trimmed):
			line.kind = hsComment
			line.doc = hsDocStart.MatchString(trimmed)
		case strings.HasPrefix(trimmed, "{-") && !strings.HasPrefix(trimmed, "{-#"):
			line.kind = hsComment
			line.doc = hsDocStart.MatchString(trimmed)
		default:
			line.kind = hsCode
		}

		code := line.text
		if line.kind == hsCode || depth == 0 {
			if idx := lineCommentIndex(code); idx >= 0 {
				code = code[:idx]
			}
		}
		for i := 0; i+1 < len(code); i++ {
			switch {
			case code[i] == '{' && code[i+1] == '-' && (i+2 >= len(code) || code[i+2] != '#'):
				if depth == 0 {
					openedAt = line.start + i
				}
				depth++
				i++
			case code[i] == '-' && code[i+1] == '}' && depth > 0:
				depth--
				i++
			}
		}

		lines = append(lines, line)
	}

	if depth > 0 {
		return nil, &domain.ParseError{
			Offset: openedAt,
			Err:    fmt.Errorf("%w: unterminated block comment", domain.ErrSyntax),
		}
	}
	return lines, nil
}

// haskellBlocks groups each top-level code line with its indented continuation.
func haskellBlocks(lines []hsLine) []hsBlock {
	var blocks []hsBlock
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line.kind != hsCode || line.indented() {
			continue
		}

		b := hsBlock{first: i, last: i}
		for j := i + 1; j < len(lines); j++ {
			next := lines[j]
			if next.kind == hsBlank {
				continue
			}
			if !next.indented() {
				break
			}
			b.last = j
		}

		head := strings.TrimSpace(line.text)
		if m := hsSignature.FindStringSubmatch(head); m != nil {
			b.name = strings.Trim(m[1], "()")
			b.signature = true
		} else if m := hsEquation.FindStringSubmatch(head); m != nil && !haskellKeywords[m[1]] {
			b.name = strings.Trim(m[1], "()")
		}

		blocks = append(blocks, b)
		i = b.last
	}
	return blocks
}

func haskellUnit(content []byte, lines []hsLine, first, last int, name string) domain.MethodUnit {
	startLine := first
	hasDoc := false

	top := first
	for top > 0 && lines[top-1].kind == hsComment && !lines[top-1].indented() {
		top--
	}
	for k := top; k < first; k++ {
		if lines[k].doc {
			startLine = k
			hasDoc = true
			break
		}
	}

	start := lines[startLine].start
	end := lines[last].end()
	return domain.MethodUnit{
		Name:          name,
		Kind:          "function",
		Source:        string(content[start:end]),
		HasDocComment: hasDoc,
		StartByte:     start,
		EndByte:       end,
		StartLine:     startLine + 1,
		EndLine:       last + 1,
	}
}

func isHaskellLineComment(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "--") {
		return false
	}
	rest := strings.TrimLeft(trimmed, "-")
	if rest == "" {
		return true
	}
	return !strings.ContainsRune("!#$%&*+./<=>?@\\^|~:", rune(rest[0])) || rest[0] == '|' || rest[0] == '^'
}

// lineCommentIndex returns the index of a trailing "--" comment, or -1.
func lineCommentIndex(code string) int {
	inString := false
	for i := 0; i+1 < len(code); i++ {
		switch {
		case code[i] == '"' && (i == 0 || code[i-1] != '\\'):
			inString = !inString
		case !inString && code[i] == '-' && code[i+1] == '-':
			if isHaskellLineComment(code[i:]) {
				return i
			}
		}
	}
	return -1
}
