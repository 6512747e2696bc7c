package cssdefs

import "github.com/kestrelweb/kestrel/internal/cssparser"

// expandStrategy names the value-list-splitting rule a shorthand property
// uses, indexed at load time from the shape of its compiled grammar the way
// shorthands.rs indexes its Shorthands table:
//
//   - a single property reference with a {1,4} multiplier is the box-model
//     quad rule (margin, padding, border-width, ...);
//   - {1,2} is the duo rule (overflow's x/y pair);
//   - a `#` repeat, or a juxtaposition of one reference per longhand, feeds
//     longhand i from repetition i;
//   - anything else (the `a || b` compound shorthands like border and font)
//     routes each matched value into the longhand whose own grammar
//     accepted it.
type expandStrategy int

const (
	strategyNone expandStrategy = iota
	strategyQuad
	strategyDuo
	strategyNextProp
	strategyOnlyMatched
)

func deriveStrategy(def *PropertyDefinition) expandStrategy {
	if !def.IsShorthand() {
		return strategyNone
	}
	comps := def.Syntax.Components
	if len(comps) == 1 {
		c := comps[0]
		if c.Kind == CompPropertyRef || c.Kind == CompDefinition {
			m := c.Mult
			switch {
			case m.Kind == MulRange && m.Min == 1 && m.Max == 4 && len(def.Longhands) == 4:
				return strategyQuad
			case m.Kind == MulRange && m.Min == 1 && m.Max == 2 && len(def.Longhands) == 2:
				return strategyDuo
			case m.Kind == MulCommaList || m.Kind == MulRangeComma:
				return strategyNextProp
			}
		}
		return strategyOnlyMatched
	}
	for _, c := range comps {
		if c.Kind != CompPropertyRef {
			return strategyOnlyMatched
		}
	}
	if len(comps) == len(def.Longhands) {
		return strategyNextProp
	}
	return strategyOnlyMatched
}

// FixList accumulates (longhand-name, value-list) entries while a shorthand
// declaration is split, then resolves nested shorthands (a shorthand whose
// longhand is itself a shorthand, like border expanding into border-width)
// before the result is applied to a property map, mirroring
// shorthands.rs::FixList and its resolve_nested.
type FixList struct {
	entries []fixEntry
}

type fixEntry struct {
	name   string
	values []cssparser.CssValue
}

func (f *FixList) Add(name string, values []cssparser.CssValue) {
	f.entries = append(f.entries, fixEntry{name: name, values: values})
}

// ResolveNested expands every entry that names a shorthand recursively and
// returns the flat longhand -> value-list map.
func (f *FixList) ResolveNested(d *Definitions) map[string][]cssparser.CssValue {
	out := make(map[string][]cssparser.CssValue, len(f.entries))
	f.resolveInto(d, out, 0)
	return out
}

const maxNestedShorthandDepth = 8

func (f *FixList) resolveInto(d *Definitions, out map[string][]cssparser.CssValue, depth int) {
	for _, e := range f.entries {
		if depth < maxNestedShorthandDepth {
			if def, ok := d.Find(e.name); ok && def.IsShorthand() {
				if nested, ok := d.splitShorthand(def, e.values); ok {
					nested.resolveInto(d, out, depth+1)
					continue
				}
			}
		}
		out[e.name] = e.values
	}
}

// ExpandShorthand splits a shorthand declaration's value list across its
// longhand properties and resolves nested shorthands, returning the flat
// longhand -> value-list map ready to merge into a cascade. It returns
// ok=false for a non-shorthand property or an empty value list.
func ExpandShorthand(d *Definitions, def *PropertyDefinition, values []cssparser.CssValue) (map[string][]cssparser.CssValue, bool) {
	fix, ok := d.splitShorthand(def, values)
	if !ok {
		return nil, false
	}
	return fix.ResolveNested(d), true
}

// splitShorthand performs one level of expansion, filling a FixList.
func (d *Definitions) splitShorthand(def *PropertyDefinition, values []cssparser.CssValue) (*FixList, bool) {
	if !def.IsShorthand() || len(values) == 0 {
		return nil, false
	}
	vals := withoutCommas(values)
	if len(vals) == 0 {
		return nil, false
	}

	fix := &FixList{}
	switch def.strategy {
	case strategyQuad:
		top, right, bottom, left := quadSplit(vals)
		fix.Add(def.Longhands[0], []cssparser.CssValue{top})
		fix.Add(def.Longhands[1], []cssparser.CssValue{right})
		fix.Add(def.Longhands[2], []cssparser.CssValue{bottom})
		fix.Add(def.Longhands[3], []cssparser.CssValue{left})

	case strategyDuo:
		a, b := vals[0], vals[0]
		if len(vals) >= 2 {
			b = vals[1]
		}
		fix.Add(def.Longhands[0], []cssparser.CssValue{a})
		fix.Add(def.Longhands[1], []cssparser.CssValue{b})

	case strategyNextProp:
		for i, name := range def.Longhands {
			if i >= len(vals) {
				break
			}
			fix.Add(name, []cssparser.CssValue{vals[i]})
		}

	case strategyOnlyMatched:
		for _, v := range vals {
			for _, name := range def.Longhands {
				lh, ok := d.Find(name)
				if !ok || !lh.Syntax.MatchesValue(v) {
					continue
				}
				fix.Add(name, []cssparser.CssValue{v})
				break
			}
		}

	default:
		return nil, false
	}

	if len(fix.entries) == 0 {
		return nil, false
	}
	return fix, true
}

// quadSplit implements the classic top/right/bottom/left expansion: 1 value
// applies to all four sides, 2 values split vertical/horizontal, 3 values
// give bottom its own value, 4 values are positional.
func quadSplit(vals []cssparser.CssValue) (top, right, bottom, left cssparser.CssValue) {
	switch len(vals) {
	case 1:
		return vals[0], vals[0], vals[0], vals[0]
	case 2:
		return vals[0], vals[1], vals[0], vals[1]
	case 3:
		return vals[0], vals[1], vals[2], vals[1]
	default:
		return vals[0], vals[1], vals[2], vals[3]
	}
}

func withoutCommas(values []cssparser.CssValue) []cssparser.CssValue {
	out := make([]cssparser.CssValue, 0, len(values))
	for _, v := range values {
		if !v.IsComma() {
			out = append(out, v)
		}
	}
	return out
}
