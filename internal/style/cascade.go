package style

import (
	"github.com/kestrelweb/kestrel/internal/cssdefs"
	"github.com/kestrelweb/kestrel/internal/cssparser"
)

// Specificity is the (ids, classes+attrs+pseudo-classes, types+pseudo-
// elements) triple Selectors Level 4 §17 defines, already computed per
// selector sequence by cssparser.SelectorSequence.Specificity.
type Specificity struct {
	IDs, Classes, Types int
}

// Compare returns -1, 0, or 1 the way Ord::cmp does for Specificity in the
// Rust source: lexicographic over (ids, classes, types).
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.IDs != o.IDs:
		return cmpInt(s.IDs, o.IDs)
	case s.Classes != o.Classes:
		return cmpInt(s.Classes, o.Classes)
	default:
		return cmpInt(s.Types, o.Types)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DeclarationProperty is a single declared value for one property on one
// node, carrying everything the cascade needs to rank it against every
// other declaration for the same property, grounded on
// styling.rs's DeclarationProperty.
type DeclarationProperty struct {
	Value       cssparser.CssValue
	Origin      cssparser.CssOrigin
	Important   bool
	Specificity Specificity
	Order       int // source order; later declarations win ties
}

// priority implements the cascade priority table: origin crossed with
// importance, spec.md 4.5's corrected version of the Rust source's table
// (same seven priority values, reordered so origin+importance strictly
// dominates specificity instead of specificity dominating differing
// priorities as styling.rs's find_cascaded_value's second sort_by does --
// see DESIGN.md's Open Question entry for this package).
func (d DeclarationProperty) priority() int {
	switch d.Origin {
	case cssparser.UserAgentOrigin:
		if d.Important {
			return 7
		}
		return 1
	case cssparser.UserOrigin:
		if d.Important {
			return 6
		}
		return 2
	default: // AuthorOrigin
		if d.Important {
			return 5
		}
		return 3
	}
}

// Cascade resolves the winning declaration among every declared value for
// one property on one node: highest priority first, specificity breaks
// ties, source order breaks further ties. Returns false if declared is
// empty.
func Cascade(declared []DeclarationProperty) (DeclarationProperty, bool) {
	if len(declared) == 0 {
		return DeclarationProperty{}, false
	}
	winner := declared[0]
	for _, d := range declared[1:] {
		if beats(d, winner) {
			winner = d
		}
	}
	return winner, true
}

func beats(a, b DeclarationProperty) bool {
	if a.priority() != b.priority() {
		return a.priority() > b.priority()
	}
	if c := a.Specificity.Compare(b.Specificity); c != 0 {
		return c > 0
	}
	return a.Order >= b.Order
}

// CssProperty is the five-stage value pipeline for one property on one
// node, grounded on styling.rs's CssProperty/compute_value: Declared feeds
// Cascaded, which feeds Specified (falling back to Inherited, then
// Initial), which feeds Computed, Used, and finally Actual (numeric
// rounding). Dirty gates recomputation the same way the Rust source's
// dirty bool does.
type CssProperty struct {
	Name      string
	Dirty     bool
	Declared  []DeclarationProperty
	Cascaded  cssparser.CssValue
	Specified cssparser.CssValue
	Computed  cssparser.CssValue
	Used      cssparser.CssValue
	Actual    cssparser.CssValue
	Inherited cssparser.CssValue
}

// NewCssProperty creates a dirty, valueless CssProperty for name, mirroring
// CssProperty::new.
func NewCssProperty(name string) *CssProperty {
	return &CssProperty{Name: name, Dirty: true, Cascaded: cssparser.None(), Specified: cssparser.None(), Computed: cssparser.None(), Used: cssparser.None(), Actual: cssparser.None(), Inherited: cssparser.None()}
}

func (p *CssProperty) MarkDirty() { p.Dirty = true }
func (p *CssProperty) MarkClean() { p.Dirty = false }

// ComputeValue returns the actual value, recalculating the whole pipeline
// first if Dirty, mirroring compute_value.
func (p *CssProperty) ComputeValue(defs *cssdefs.Definitions) cssparser.CssValue {
	if p.Dirty {
		p.calculate(defs)
		p.Dirty = false
	}
	return p.Actual
}

func (p *CssProperty) calculate(defs *cssdefs.Definitions) {
	if winner, ok := Cascade(p.Declared); ok {
		p.Cascaded = winner.Value
	} else {
		p.Cascaded = cssparser.None()
	}
	p.Specified = p.findSpecified(defs)
	p.Computed = p.Specified
	p.Used = p.Computed
	p.Actual = roundActual(p.Used)
}

func (p *CssProperty) findSpecified(defs *cssdefs.Definitions) cssparser.CssValue {
	if !p.Cascaded.IsNone() {
		return p.Cascaded
	}
	if !p.Inherited.IsNone() {
		return p.Inherited
	}
	if def, ok := defs.Find(p.Name); ok && def.Initial != "" {
		return cssparser.Ident(def.Initial)
	}
	return cssparser.None()
}

// roundActual rounds numeric/percentage/unit values to whole numbers, the
// same place (and only place) spec.md's data model permits rounding:
// find_actual_value in the Rust source.
func roundActual(v cssparser.CssValue) cssparser.CssValue {
	switch v.Kind {
	case cssparser.KindNumber:
		n, _ := v.AsNumber()
		return cssparser.NumberValue(roundFloat(n))
	case cssparser.KindPercentage:
		n, _ := v.AsPercentage()
		return cssparser.Percentage(roundFloat(n))
	case cssparser.KindUnit:
		n, unit, _ := v.AsUnit()
		return cssparser.Unit(roundFloat(n), unit)
	default:
		return v
	}
}

func roundFloat(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return -float64(int64(-f + 0.5))
}

// IsShorthand reports whether name expands into more than one longhand,
// mirroring CssProperty::is_shorthand.
func IsShorthand(defs *cssdefs.Definitions, name string) bool {
	def, ok := defs.Find(name)
	return ok && def.IsShorthand()
}

// PropsFromShorthand returns the longhands name expands into, or nil if
// name is not a shorthand, mirroring get_props_from_shorthand.
func PropsFromShorthand(defs *cssdefs.Definitions, name string) []string {
	def, ok := defs.Find(name)
	if !ok || !def.IsShorthand() {
		return nil
	}
	return def.Longhands
}

// IsInherited reports whether name inherits down the DOM tree, mirroring
// prop_is_inherit.
func IsInherited(defs *cssdefs.Definitions, name string) bool {
	def, ok := defs.Find(name)
	return ok && def.Inherited
}
