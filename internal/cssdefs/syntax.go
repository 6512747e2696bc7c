package cssdefs

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupCombinator selects how a Group's children combine, per the W3C CSS
// value definition syntax: juxtaposition (all, in order), all-of (&&: all,
// any order), one-of (|: exactly one alternative).
type GroupCombinator int

const (
	Juxtaposition GroupCombinator = iota
	AllOf
	OneOf

	// anyOf is the compiled form of `a || b`: one or more alternatives, any
	// order, none used twice. It is an encoding detail of the compiler and
	// matcher, never written by hand.
	anyOf
)

// MultiplierKind is the repetition suffix attached to a syntax component.
type MultiplierKind int

const (
	MulOnce       MultiplierKind = iota
	MulOptional                  // ?
	MulZeroPlus                  // *
	MulOnePlus                   // +
	MulCommaList                 // #
	MulRange                     // {a,b}
	MulRangeComma                // {a,b}#
)

// ComponentMultiplier is a MultiplierKind with its resolved repetition
// bounds. Min/Max are meaningful for every kind (MulOnce is {1,1},
// MulZeroPlus is {0,unbounded}, and so on); unbounded Max is recorded as
// maxRepeat.
type ComponentMultiplier struct {
	Kind MultiplierKind
	Min  int
	Max  int
}

const maxRepeat = 64

func multiplierOnce() ComponentMultiplier { return ComponentMultiplier{Kind: MulOnce, Min: 1, Max: 1} }

// SeparatedByCommas reports whether repetitions of the component must be
// separated by comma values.
func (m ComponentMultiplier) SeparatedByCommas() bool {
	return m.Kind == MulCommaList || m.Kind == MulRangeComma
}

// ComponentKind discriminates the SyntaxComponent sum type.
type ComponentKind int

const (
	// CompKeyword matches one ident value equal (ASCII case-insensitively)
	// to Text, e.g. `auto`.
	CompKeyword ComponentKind = iota
	// CompLiteral matches one punctuation value equal to Text, e.g. `/`.
	CompLiteral
	// CompDefinition is an unresolved `<name>` reference; resolution
	// replaces it with the named fragment, a property's tree, or a Builtin.
	CompDefinition
	// CompPropertyRef is `<'name'>`: the named property's own syntax.
	CompPropertyRef
	// CompBuiltin matches one value against the named primitive grammar
	// (length, percentage, named-color, ...).
	CompBuiltin
	// CompFunction matches a function value named Text whose arguments
	// satisfy the Children grammar.
	CompFunction
	// CompGroup combines Children under Combinator.
	CompGroup
)

// SyntaxComponent is one node of a compiled property grammar.
type SyntaxComponent struct {
	Kind       ComponentKind
	Text       string
	Children   []SyntaxComponent
	Combinator GroupCombinator
	Mult       ComponentMultiplier
}

// SyntaxTree is a compiled property grammar: a juxtaposed component list.
type SyntaxTree struct {
	Components []SyntaxComponent
}

// CompileSyntax parses a W3C-style value definition syntax string into a
// SyntaxTree. References (`<name>`, `<'property'>`) are left unresolved;
// Definitions.resolve replaces them after every file is loaded.
func CompileSyntax(src string) (*SyntaxTree, error) {
	p := &syntaxParser{src: src}
	comps, err := p.parseOneOf()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("cssdefs: trailing input %q in syntax %q", p.rest(), src)
	}
	if len(comps) == 1 && comps[0].Kind == CompGroup && comps[0].Combinator == Juxtaposition && comps[0].Mult == multiplierOnce() {
		return &SyntaxTree{Components: comps[0].Children}, nil
	}
	return &SyntaxTree{Components: comps}, nil
}

type syntaxParser struct {
	src string
	pos int
}

func (p *syntaxParser) eof() bool    { return p.pos >= len(p.src) }
func (p *syntaxParser) rest() string { return p.src[p.pos:] }

func (p *syntaxParser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *syntaxParser) peekString(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *syntaxParser) consumeString(s string) bool {
	if p.peekString(s) {
		p.pos += len(s)
		return true
	}
	return false
}

// parseOneOf handles the lowest-precedence combinator `|`: alternatives of
// `||` groups. A single alternative collapses to its own components.
func (p *syntaxParser) parseOneOf() ([]SyntaxComponent, error) {
	first, err := p.parseAnyOf()
	if err != nil {
		return nil, err
	}
	alternatives := [][]SyntaxComponent{first}
	for {
		p.skipSpace()
		if p.peekString("||") || !p.peekString("|") {
			break
		}
		p.consumeString("|")
		alt, err := p.parseAnyOf()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, alt)
	}
	if len(alternatives) == 1 {
		return alternatives[0], nil
	}
	group := SyntaxComponent{Kind: CompGroup, Combinator: OneOf, Mult: multiplierOnce()}
	for _, alt := range alternatives {
		group.Children = append(group.Children, wrapSeq(alt))
	}
	return []SyntaxComponent{group}, nil
}

// parseAnyOf handles `||`: one or more of the alternatives, any order.
func (p *syntaxParser) parseAnyOf() ([]SyntaxComponent, error) {
	first, err := p.parseAllOf()
	if err != nil {
		return nil, err
	}
	parts := [][]SyntaxComponent{first}
	for {
		p.skipSpace()
		if !p.consumeString("||") {
			break
		}
		part, err := p.parseAllOf()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	group := SyntaxComponent{
		Kind:       CompGroup,
		Combinator: anyOf,
		Mult:       ComponentMultiplier{Kind: MulRange, Min: 1, Max: len(parts)},
	}
	for _, part := range parts {
		group.Children = append(group.Children, wrapSeq(part))
	}
	return []SyntaxComponent{group}, nil
}

// parseAllOf handles `&&`: every alternative, any order.
func (p *syntaxParser) parseAllOf() ([]SyntaxComponent, error) {
	first, err := p.parseJuxtaposition()
	if err != nil {
		return nil, err
	}
	parts := [][]SyntaxComponent{first}
	for {
		p.skipSpace()
		if !p.consumeString("&&") {
			break
		}
		part, err := p.parseJuxtaposition()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	group := SyntaxComponent{Kind: CompGroup, Combinator: AllOf, Mult: multiplierOnce()}
	for _, part := range parts {
		group.Children = append(group.Children, wrapSeq(part))
	}
	return []SyntaxComponent{group}, nil
}

// wrapSeq packs a component sequence into a single component: a lone
// component stays itself, more than one becomes a juxtaposition group.
func wrapSeq(comps []SyntaxComponent) SyntaxComponent {
	if len(comps) == 1 {
		return comps[0]
	}
	return SyntaxComponent{Kind: CompGroup, Combinator: Juxtaposition, Children: comps, Mult: multiplierOnce()}
}

func (p *syntaxParser) parseJuxtaposition() ([]SyntaxComponent, error) {
	var out []SyntaxComponent
	for {
		p.skipSpace()
		if p.eof() || p.peekString("]") || p.peekString(")") || p.peekString("|") || p.peekString("&&") {
			break
		}
		comp, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cssdefs: empty component sequence in syntax %q", p.src)
	}
	return out, nil
}

func (p *syntaxParser) parseTerm() (SyntaxComponent, error) {
	p.skipSpace()
	switch {
	case p.consumeString("["):
		inner, err := p.parseOneOf()
		if err != nil {
			return SyntaxComponent{}, err
		}
		p.skipSpace()
		if !p.consumeString("]") {
			return SyntaxComponent{}, fmt.Errorf("cssdefs: unclosed group in syntax %q", p.src)
		}
		comp := wrapSeq(inner)
		if comp.Kind != CompGroup {
			comp = SyntaxComponent{Kind: CompGroup, Combinator: Juxtaposition, Children: []SyntaxComponent{comp}, Mult: multiplierOnce()}
		}
		return p.withMultiplier(comp)

	case p.consumeString("<'"):
		name, err := p.readUntil("'>")
		if err != nil {
			return SyntaxComponent{}, err
		}
		return p.withMultiplier(SyntaxComponent{Kind: CompPropertyRef, Text: name, Mult: multiplierOnce()})

	case p.consumeString("<"):
		name, err := p.readUntil(">")
		if err != nil {
			return SyntaxComponent{}, err
		}
		return p.withMultiplier(SyntaxComponent{Kind: CompDefinition, Text: name, Mult: multiplierOnce()})

	case p.consumeString(","):
		return p.withMultiplier(SyntaxComponent{Kind: CompLiteral, Text: ",", Mult: multiplierOnce()})

	case p.consumeString("/"):
		return p.withMultiplier(SyntaxComponent{Kind: CompLiteral, Text: "/", Mult: multiplierOnce()})

	default:
		name := p.readIdent()
		if name == "" {
			return SyntaxComponent{}, fmt.Errorf("cssdefs: unexpected %q in syntax %q", p.rest(), p.src)
		}
		if p.consumeString("(") {
			var args []SyntaxComponent
			p.skipSpace()
			if !p.peekString(")") {
				inner, err := p.parseOneOf()
				if err != nil {
					return SyntaxComponent{}, err
				}
				args = inner
			}
			p.skipSpace()
			if !p.consumeString(")") {
				return SyntaxComponent{}, fmt.Errorf("cssdefs: unclosed function %q in syntax %q", name, p.src)
			}
			return p.withMultiplier(SyntaxComponent{Kind: CompFunction, Text: name, Children: args, Mult: multiplierOnce()})
		}
		return p.withMultiplier(SyntaxComponent{Kind: CompKeyword, Text: name, Mult: multiplierOnce()})
	}
}

func (p *syntaxParser) withMultiplier(comp SyntaxComponent) (SyntaxComponent, error) {
	switch {
	case p.consumeString("?"):
		comp.Mult = ComponentMultiplier{Kind: MulOptional, Min: 0, Max: 1}
	case p.consumeString("*"):
		comp.Mult = ComponentMultiplier{Kind: MulZeroPlus, Min: 0, Max: maxRepeat}
	case p.consumeString("+"):
		comp.Mult = ComponentMultiplier{Kind: MulOnePlus, Min: 1, Max: maxRepeat}
	case p.consumeString("#"):
		comp.Mult = ComponentMultiplier{Kind: MulCommaList, Min: 1, Max: maxRepeat}
	case p.consumeString("{"):
		bounds, err := p.readUntil("}")
		if err != nil {
			return SyntaxComponent{}, err
		}
		lo, hi, err := parseRangeBounds(bounds)
		if err != nil {
			return SyntaxComponent{}, fmt.Errorf("cssdefs: bad multiplier {%s} in syntax %q", bounds, p.src)
		}
		if p.consumeString("#") {
			comp.Mult = ComponentMultiplier{Kind: MulRangeComma, Min: lo, Max: hi}
		} else {
			comp.Mult = ComponentMultiplier{Kind: MulRange, Min: lo, Max: hi}
		}
	}
	return comp, nil
}

func parseRangeBounds(s string) (int, int, error) {
	parts := strings.SplitN(s, ",", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 1 {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (p *syntaxParser) readUntil(end string) (string, error) {
	idx := strings.Index(p.src[p.pos:], end)
	if idx < 0 {
		return "", fmt.Errorf("cssdefs: missing %q in syntax %q", end, p.src)
	}
	out := p.src[p.pos : p.pos+idx]
	p.pos += idx + len(end)
	return out, nil
}

func (p *syntaxParser) readIdent() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}
