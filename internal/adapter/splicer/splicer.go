package splicer

import (
	"fmt"
	"sort"
	"strings"

	"docai/internal/domain"
)

// Mode selects how a replacement is located in the content.
type Mode string

const (
	// ModeOffset replaces the span captured at parse time, shifted by the
	// size change of earlier edits.
	ModeOffset Mode = "offset"
	// ModeSearch replaces the first occurrence of the original text in the
	// current content. Byte-identical units all resolve to the first one.
	ModeSearch Mode = "search"
)

// ParseMode validates a mode name. Empty selects ModeOffset.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeOffset:
		return ModeOffset, nil
	case ModeSearch:
		return ModeSearch, nil
	default:
		return "", fmt.Errorf("unknown splice mode %q (use %q or %q)", s, ModeOffset, ModeSearch)
	}
}

// Report summarizes one Splice call.
type Report struct {
	Applied int
	Misses  []domain.SpliceMiss
}

func (r *Report) miss(name, reason string) {
	r.Misses = append(r.Misses, domain.SpliceMiss{Name: name, Reason: reason})
}

// Splicer rewrites file content with generated replacements.
type Splicer struct {
	mode Mode
}

func New(mode Mode) *Splicer {
	if mode == "" {
		mode = ModeOffset
	}
	return &Splicer{mode: mode}
}

func (s *Splicer) Mode() Mode {
	return s.mode
}

// Splice applies reps to content. Replacements that cannot be located are
// reported as misses and leave the content untouched.
func (s *Splicer) Splice(content string, reps []domain.Replacement) (string, Report) {
	if s.mode == ModeSearch {
		return spliceSearch(content, reps)
	}
	return spliceOffset(content, reps)
}

// edit is an applied replacement. Units nested inside it are located in its
// inserted text, searching from searchFrom.
type edit struct {
	origEnd    int
	curEnd     int
	searchFrom int
}

func spliceOffset(content string, reps []domain.Replacement) (string, Report) {
	var report Report
	var spanned, unspanned []domain.Replacement
	for _, r := range reps {
		if r.EndByte > r.StartByte {
			spanned = append(spanned, r)
		} else {
			unspanned = append(unspanned, r)
		}
	}
	sort.SliceStable(spanned, func(i, j int) bool {
		if spanned[i].StartByte != spanned[j].StartByte {
			return spanned[i].StartByte < spanned[j].StartByte
		}
		return spanned[i].EndByte > spanned[j].EndByte
	})

	current := content
	delta := 0
	// cursor is the end of the last top-level edit in current coordinates.
	cursor := 0
	// open holds the applied edits enclosing the current position, outermost first.
	var open []*edit
	for _, r := range spanned {
		if r.Original == "" {
			report.miss(r.Name, "empty original text")
			continue
		}
		for len(open) > 0 && r.StartByte >= open[len(open)-1].origEnd {
			open = open[:len(open)-1]
		}

		var start, end int
		if len(open) > 0 {
			parent := open[len(open)-1]
			if r.EndByte > parent.origEnd {
				report.miss(r.Name, "partially overlaps an already replaced unit")
				continue
			}
			idx := strings.Index(current[parent.searchFrom:parent.curEnd], r.Original)
			if idx < 0 {
				report.miss(r.Name, "original text not found inside the rewritten enclosing unit")
				continue
			}
			start = parent.searchFrom + idx
			end = start + len(r.Original)
		} else {
			start, end = r.StartByte+delta, r.EndByte+delta
			if start < cursor || end > len(current) || current[start:end] != r.Original {
				// the span drifted; look for the text past the previous edit
				idx := strings.Index(current[cursor:], r.Original)
				if idx < 0 {
					report.miss(r.Name, "original text not found at or after its recorded span")
					continue
				}
				start = cursor + idx
				end = start + len(r.Original)
			}
		}

		var replaced string
		current, replaced = replaceAt(current, start, end, r.Documented)
		growth := len(replaced) - (end - start)
		delta += growth
		report.Applied++

		if len(open) == 0 {
			cursor = start + len(replaced)
		} else {
			cursor += growth
			for _, e := range open {
				e.curEnd += growth
				if e.searchFrom >= end {
					e.searchFrom += growth
				}
			}
			open[len(open)-1].searchFrom = start + len(replaced)
		}
		open = append(open, &edit{origEnd: r.EndByte, curEnd: start + len(replaced), searchFrom: start})
	}

	// Records without a span fall back to text search.
	current, rest := spliceSearch(current, unspanned)
	report.Applied += rest.Applied
	report.Misses = append(report.Misses, rest.Misses...)
	return current, report
}

func spliceSearch(content string, reps []domain.Replacement) (string, Report) {
	var report Report
	current := content
	for _, r := range reps {
		if r.Original == "" {
			report.miss(r.Name, "empty original text")
			continue
		}
		start := strings.Index(current, r.Original)
		if start < 0 {
			report.miss(r.Name, "original text not found")
			continue
		}
		current, _ = replaceAt(current, start, start+len(r.Original), r.Documented)
		report.Applied++
	}
	return current, report
}

// replaceAt swaps content[start:end] for text reindented to the column of start.
// It returns the new content and the inserted text.
func replaceAt(content string, start, end int, text string) (string, string) {
	inserted := Reindent(text, IndentationAt(content, start))
	return content[:start] + inserted + content[end:], inserted
}

// IndentationAt returns the prefix to apply to continuation lines inserted at
// offset: the text between the start of offset's line and offset, with every
// character other than a tab turned into a space.
func IndentationAt(content string, offset int) string {
	lineStart := strings.LastIndexByte(content[:offset], '\n') + 1
	prefix := []byte(content[lineStart:offset])
	for i, c := range prefix {
		if c != '\t' {
			prefix[i] = ' '
		}
	}
	return string(prefix)
}

// Reindent keeps the first line of text as is and prefixes every following
// non-blank line with indentation.
func Reindent(text, indentation string) string {
	if indentation == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		lines[i] = indentation + lines[i]
	}
	return strings.Join(lines, "\n")
}

// Dedent strips indentation from the start of every continuation line of
// text that carries it, undoing Reindent.
func Dedent(text, indentation string) string {
	if indentation == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], indentation)
	}
	return strings.Join(lines, "\n")
}
