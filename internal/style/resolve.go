package style

import (
	"github.com/kestrelweb/kestrel/internal/cssdefs"
	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// PropertyMap is the per-node map of property name -> CssProperty pipeline
// spec.md 4.6 step 1 asks the render tree to compute for every node,
// grounded on CssPropertyMap in gosub_styling/src/render_tree.rs.
type PropertyMap struct {
	props map[string]*CssProperty
	dirty bool
}

// NewPropertyMap creates an empty, clean PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{props: make(map[string]*CssProperty)}
}

func (m *PropertyMap) Get(name string) (*CssProperty, bool) {
	p, ok := m.props[name]
	return p, ok
}

func (m *PropertyMap) Set(name string, p *CssProperty) { m.props[name] = p }

// Names returns every property name this map carries a CssProperty for, in
// no particular order.
func (m *PropertyMap) Names() []string {
	out := make([]string, 0, len(m.props))
	for name := range m.props {
		out = append(out, name)
	}
	return out
}

// IsDirty reports whether any property in the map is pending recalculation,
// mirroring CssPropertyMap::is_dirty.
func (m *PropertyMap) IsDirty() bool {
	if m.dirty {
		return true
	}
	for _, p := range m.props {
		if p.Dirty {
			return true
		}
	}
	return false
}

// MakeDirty marks every property (and the map itself) dirty, mirroring
// CssPropertyMap::make_dirty.
func (m *PropertyMap) MakeDirty() {
	m.dirty = true
	for _, p := range m.props {
		p.MarkDirty()
	}
}

// MakeClean clears the map-level dirty flag, mirroring
// CssPropertyMap::make_clean. Individual CssProperty.Dirty bits clear
// themselves lazily the next time ComputeValue runs.
func (m *PropertyMap) MakeClean() { m.dirty = false }

// ResolveNode computes the declared-value lists for every property any rule
// in sheets matches against nodeID, validating each declaration against its
// property grammar, expanding shorthands via cssdefs, and wrapping each
// property name in a CssProperty ready for the cascade. This is spec.md 4.6
// step 1 / 4.5's per-(node,property) declared-list assembly, grounded on
// properties_from_node in gosub_styling/src/render_tree.rs.
//
// A declaration naming an unknown property, or whose value list fails its
// property's syntax, is dropped with a warning on h and the cascade
// proceeds without it (spec.md 7). h may be nil to discard the warnings.
func ResolveNode(doc *dom.Document, nodeID dom.NodeId, sheets []*cssparser.Stylesheet, defs *cssdefs.Definitions, h *handler.Handler) *PropertyMap {
	declared := make(map[string][]DeclarationProperty)
	order := 0

	record := func(name string, value cssparser.CssValue, origin cssparser.CssOrigin, important bool, spec Specificity) {
		declared[name] = append(declared[name], DeclarationProperty{
			Value:       value,
			Origin:      origin,
			Important:   important,
			Specificity: spec,
			Order:       order,
		})
		order++
	}

	for _, sheet := range sheets {
		walkRules(sheet.Rules, func(rule *cssparser.Rule) {
			// Selectors Level 4 §17: a rule's specificity is the maximum over
			// every sequence in its comma-separated list that actually
			// matched the element, not just the first.
			var best Specificity
			matched := false
			for _, seq := range rule.Selectors.Items {
				if !Matches(doc, nodeID, seq) {
					continue
				}
				ids, classes, types := seq.Specificity()
				s := Specificity{IDs: ids, Classes: classes, Types: types}
				if !matched || s.Compare(best) > 0 {
					best = s
					matched = true
				}
			}
			if !matched {
				return
			}

			for _, d := range rule.Declarations {
				def, known := defs.Find(d.Property)
				if !known {
					if h != nil {
						h.AppendWarning(handler.NewParseError(loc.WarnUnknownProperty, d.Pos, "unknown property %q", d.Property))
					}
					continue
				}
				if !def.Matches(d.Value) {
					if h != nil {
						h.AppendWarning(handler.NewParseError(loc.WarnDefinitionMismatch, d.Pos, "declared value for %q does not satisfy its grammar", d.Property))
					}
					continue
				}
				if def.IsShorthand() {
					if expanded, ok := cssdefs.ExpandShorthand(defs, def, d.Value); ok {
						for longhand, values := range expanded {
							record(longhand, valueFromList(values), sheet.Origin, d.Important, best)
						}
						continue
					}
				}
				record(d.Property, valueFromList(d.Value), sheet.Origin, d.Important, best)
			}
		})
	}

	m := NewPropertyMap()
	for name, list := range declared {
		m.Set(name, &CssProperty{
			Name:      name,
			Dirty:     true,
			Declared:  list,
			Cascaded:  cssparser.None(),
			Specified: cssparser.None(),
			Computed:  cssparser.None(),
			Used:      cssparser.None(),
			Actual:    cssparser.None(),
			Inherited: cssparser.None(),
		})
	}
	return m
}

// walkRules visits every qualified Rule in rules, descending into an
// AtRule's nested Block (e.g. @media) but ignoring its prelude condition:
// spec.md 4.4 stores an at-rule's prelude without requiring its grammar be
// evaluated, so a conditional block's rules are treated as unconditionally
// present rather than silently dropped.
func walkRules(rules []cssparser.StyleSheetRule, fn func(*cssparser.Rule)) {
	for _, r := range rules {
		if r.Rule != nil {
			fn(r.Rule)
		}
		if r.AtRule != nil && len(r.AtRule.Block) > 0 {
			walkRules(r.AtRule.Block, fn)
		}
	}
}

func valueFromList(values []cssparser.CssValue) cssparser.CssValue {
	if len(values) == 1 {
		return values[0]
	}
	return cssparser.List(values)
}

// ApplyInheritance fills in child's Inherited slot for every property
// spec.md's definitions mark inherited and that child did not declare
// locally, from parent's computed value (or the property's initial value
// when parent never resolved it). This is spec.md 4.6 step 3, the
// render-tree's second pre-order pass, kept as a package-level function
// per spec.md 9's design note that inheritance is a deliberate post-pass
// rather than folded into the cascade.
func ApplyInheritance(parent, child *PropertyMap, defs *cssdefs.Definitions) {
	for _, name := range defs.Names() {
		if !IsInherited(defs, name) {
			continue
		}
		if _, ok := child.Get(name); ok {
			continue // locally declared; inheritance never overrides
		}

		var inherited cssparser.CssValue
		if parent != nil {
			if pp, ok := parent.Get(name); ok {
				inherited = pp.ComputeValue(defs)
			}
		}
		if inherited.IsNone() {
			if def, ok := defs.Find(name); ok && def.Initial != "" {
				inherited = cssparser.Ident(def.Initial)
			} else {
				continue
			}
		}

		cp := NewCssProperty(name)
		cp.Inherited = inherited
		child.Set(name, cp)
	}
}
