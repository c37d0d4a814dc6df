package treesitter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"docai/internal/domain"
)

// Parser implements port.StructuralParser over a per-language rule table.
type Parser struct {
	rules map[domain.Language]Rule

	mu      sync.Mutex
	queries map[domain.Language]*sitter.Query
}

// NewParser creates a parser with the default rule table.
func NewParser() *Parser {
	return NewParserWithRules(DefaultRules())
}

// NewParserWithRules creates a parser over a custom rule table.
func NewParserWithRules(rules map[domain.Language]Rule) *Parser {
	return &Parser{
		rules:   rules,
		queries: make(map[domain.Language]*sitter.Query),
	}
}

// Supports reports whether lang has a rule.
func (p *Parser) Supports(lang domain.Language) bool {
	_, ok := p.rules[lang]
	return ok
}

// Parse returns the method units of content in document order.
func (p *Parser) Parse(ctx context.Context, content []byte, lang domain.Language) ([]domain.MethodUnit, error) {
	rule, ok := p.rules[lang]
	if !ok {
		return nil, &domain.PreconditionError{
			Language: string(lang),
			Reason:   "unrecognized language",
			Err:      domain.ErrUnknownLanguage,
		}
	}

	var units []domain.MethodUnit
	var err error
	if rule.Scan != nil {
		units, err = rule.Scan(content)
	} else {
		units, err = p.parseTree(ctx, rule, content)
	}
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			perr.Language = lang
			return nil, perr
		}
		return nil, &domain.ParseError{Language: lang, Offset: -1, Err: err}
	}

	if len(units) == 0 {
		return nil, &domain.ParseError{Language: lang, Offset: -1, Err: domain.ErrNoMethods}
	}

	for i := range units {
		units[i].Language = lang
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].StartByte != units[j].StartByte {
			return units[i].StartByte < units[j].StartByte
		}
		return units[i].EndByte > units[j].EndByte
	})
	return units, nil
}

func (p *Parser) parseTree(ctx context.Context, rule Rule, content []byte) ([]domain.MethodUnit, error) {
	grammar := rule.Grammar()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSyntax, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty syntax tree", domain.ErrSyntax)
	}
	if root.HasError() {
		return nil, &domain.ParseError{Offset: firstErrorOffset(root), Err: domain.ErrSyntax}
	}

	query, err := p.query(rule, grammar)
	if err != nil {
		return nil, err
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, root)

	seen := make(map[[2]uint32]bool)
	var units []domain.MethodUnit
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, content)

		var methodNode, nameNode *sitter.Node
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "method":
				methodNode = c.Node
			case "name":
				nameNode = c.Node
			}
		}
		if methodNode == nil {
			continue
		}

		key := [2]uint32{methodNode.StartByte(), methodNode.EndByte()}
		if seen[key] {
			continue
		}
		seen[key] = true

		units = append(units, buildUnit(rule, methodNode, nameNode, content))
	}

	return units, nil
}

func (p *Parser) query(rule Rule, grammar *sitter.Language) (*sitter.Query, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if q, ok := p.queries[rule.Language]; ok {
		return q, nil
	}
	q, err := sitter.NewQuery([]byte(rule.Query), grammar)
	if err != nil {
		return nil, fmt.Errorf("compile %s structural query: %w", rule.Language, err)
	}
	p.queries[rule.Language] = q
	return q, nil
}

// Close releases compiled queries.
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for lang, q := range p.queries {
		q.Close()
		delete(p.queries, lang)
	}
}

func buildUnit(rule Rule, methodNode, nameNode *sitter.Node, content []byte) domain.MethodUnit {
	unitNode := methodNode
	if parent := methodNode.Parent(); parent != nil && contains(rule.Wrappers, parent.Type()) {
		unitNode = parent
	}

	start := int(unitNode.StartByte())
	end := int(unitNode.EndByte())
	startLine := int(unitNode.StartPoint().Row) + 1

	hasDoc := false
	switch rule.Doc {
	case docPreceding:
		if doc := precedingDoc(rule, unitNode, content); doc != nil {
			hasDoc = true
			start = int(doc.StartByte())
			startLine = int(doc.StartPoint().Row) + 1
		}
	case docBodyString:
		hasDoc = hasBodyDocstring(rule, methodNode)
	}

	name := "<anonymous>"
	if nameNode != nil {
		name = nameNode.Content(content)
	}

	return domain.MethodUnit{
		Name:          name,
		Kind:          rule.kindOf(methodNode.Type()),
		Source:        string(content[start:end]),
		HasDocComment: hasDoc,
		StartByte:     start,
		EndByte:       end,
		StartLine:     startLine,
		EndLine:       int(unitNode.EndPoint().Row) + 1,
	}
}

// firstErrorOffset finds the start byte of the first ERROR or MISSING node.
func firstErrorOffset(node *sitter.Node) int {
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartByte())
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		return firstErrorOffset(child)
	}
	return int(node.StartByte())
}
