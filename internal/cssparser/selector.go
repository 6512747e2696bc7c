package cssparser

// Combinator separates two CompoundSelectors in a Selector's chain,
// grounded on the combinator grammar selectors level 4 defines (descendant
// is the implicit "whitespace" combinator).
type Combinator int

const (
	Descendant Combinator = iota // implicit whitespace
	Child                        // >
	NextSibling                  // +
	SubsequentSibling            // ~
	Column                       // ||
	Namespace                    // | (the part to its left constrains the namespace)
)

// SimpleKind discriminates one simple selector within a CompoundSelector,
// grounded on the Selector enum in original_source/src/css/node.rs
// (IdSelector/ClassSelector/AttributeSelector/TypeSelector/NestingSelector),
// extended with Universal and the two pseudo kinds the spec's cascade
// (4.5) needs to recognize (:hover-less static matching; pseudo-elements
// are parsed but not matched against live state).
type SimpleKind int

const (
	TypeSelectorKind SimpleKind = iota
	UniversalSelectorKind
	IDSelectorKind
	ClassSelectorKind
	AttributeSelectorKind
	PseudoClassKind
	PseudoElementKind
)

// SimpleSelector is one atomic test within a compound selector, e.g. `div`,
// `.cls`, `#id`, `[href]`, `:hover`, `::before`.
type SimpleSelector struct {
	Kind SimpleKind
	Name string // tag name / class name / id name / attribute name / pseudo name

	// Attribute selector fields ([name], [name=value], [name~=value], ...).
	AttrMatcher         string // "", "=", "~=", "|=", "^=", "$=", "*="
	AttrValue           string
	AttrCaseInsensitive bool // trailing `i` flag

	// Pseudo-class/element argument list, e.g. :nth-child(2n+1).
	PseudoArgs []CssValue
}

// CompoundSelector is a sequence of SimpleSelectors with no combinator
// between them (all must match the same element), e.g. `div.cls#id`.
type CompoundSelector struct {
	Simple []SimpleSelector
}

// SelectorSequence is a full selector: a chain of CompoundSelectors joined
// by Combinators, read left to right the way it was written
// (`a b > c` => [a, Descendant, b, Child, c]). Matching (4.5) walks it
// right to left.
type SelectorSequence struct {
	Compounds   []CompoundSelector
	Combinators []Combinator // len(Combinators) == len(Compounds)-1
}

// Specificity computes the (ids, classes+attrs+pseudoclasses, types+pseudoelements)
// 3-tuple per Selectors Level 4 section 17.
func (s SelectorSequence) Specificity() (ids, classes, types int) {
	for _, c := range s.Compounds {
		for _, sel := range c.Simple {
			switch sel.Kind {
			case IDSelectorKind:
				ids++
			case ClassSelectorKind, AttributeSelectorKind, PseudoClassKind:
				classes++
			case TypeSelectorKind, PseudoElementKind:
				types++
			}
		}
	}
	return
}

// SelectorList is a comma-separated group of SelectorSequences; a rule
// matches an element if any one of them matches.
type SelectorList struct {
	Items []SelectorSequence
}
