package cssparser

import "github.com/kestrelweb/kestrel/internal/loc"

// Declaration is one `property: value [!important];` pair inside a rule's
// block, grounded on original_source/src/css/node.rs's Declaration struct.
type Declaration struct {
	Property  string
	Value     []CssValue
	Important bool
	Pos       loc.Position
}

// Rule is a qualified rule: a SelectorList followed by a declaration block,
// grounded on node.rs's Rule struct.
type Rule struct {
	Selectors    SelectorList
	Declarations []Declaration
	Pos          loc.Position
}

// AtRule is `@name prelude { block }` or `@name prelude;`, grounded on
// node.rs's AtRule struct. Prelude is kept as the raw component-value
// sequence (spec.md 4.4 does not require interpreting every at-rule's
// grammar, only storing it); Block holds nested rules when present (as in
// `@media`), and Declarations holds a flat declaration list when the
// at-rule's block is itself a declaration list (as in `@font-face`).
type AtRule struct {
	Name         string
	Prelude      []CssValue
	Block        []StyleSheetRule
	Declarations []Declaration
	Pos          loc.Position
}

// StyleSheetRule is either a qualified Rule or an AtRule, grounded on
// node.rs's StyleSheetRule enum.
type StyleSheetRule struct {
	Rule   *Rule
	AtRule *AtRule
}

// CssOrigin ranks where a stylesheet came from for the cascade (4.5),
// grounded on gosub_interface/src/css3.rs's CssOrigin enum.
type CssOrigin int

const (
	UserAgentOrigin CssOrigin = iota
	UserOrigin
	AuthorOrigin
)

// Stylesheet is a fully parsed CSS document: an ordered list of top-level
// rules plus the origin used by the cascade's priority ordering.
type Stylesheet struct {
	Rules     []StyleSheetRule
	Origin    CssOrigin
	SourceURL string
}
