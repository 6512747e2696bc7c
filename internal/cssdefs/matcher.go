package cssdefs

import (
	"github.com/kestrelweb/kestrel/internal/colors"
	"github.com/kestrelweb/kestrel/internal/cssparser"
)

// Matches reports whether the declared value list satisfies this (resolved)
// syntax tree in full: every value consumed, every required component
// satisfied. The matcher explores alternatives with backtracking, tracking
// the set of positions each component can leave the cursor at.
func (t *SyntaxTree) Matches(values []cssparser.CssValue) bool {
	ends := matchSequence(t.Components, values, []int{0})
	for _, e := range ends {
		if e == len(values) {
			return true
		}
	}
	return false
}

// MatchesValue reports whether the syntax accepts the single value v on its
// own. The shorthand resolver uses this to route a matched sub-component to
// the longhand whose sub-grammar accepted it.
func (t *SyntaxTree) MatchesValue(v cssparser.CssValue) bool {
	return t.Matches([]cssparser.CssValue{v})
}

// matchSequence juxtaposes components: each component advances every
// position the previous ones could reach.
func matchSequence(comps []SyntaxComponent, values []cssparser.CssValue, starts []int) []int {
	positions := starts
	for _, c := range comps {
		positions = matchComponent(c, values, positions)
		if len(positions) == 0 {
			return nil
		}
	}
	return positions
}

// matchComponent applies c's multiplier around matchOnce, returning every
// position the cursor can end at.
func matchComponent(c SyntaxComponent, values []cssparser.CssValue, starts []int) []int {
	// An any-of group (`a || b`) picks distinct alternatives in any order,
	// so it gets its own walk instead of the generic repetition loop.
	if c.Kind == CompGroup && c.Combinator == anyOf {
		var out []int
		for _, s := range starts {
			out = union(out, matchAnyOf(c, values, s))
		}
		return out
	}

	var out []int
	for _, start := range starts {
		if c.Mult.Min == 0 {
			out = union(out, []int{start})
		}
		current := []int{start}
		for rep := 1; rep <= c.Mult.Max; rep++ {
			if rep > 1 && c.Mult.SeparatedByCommas() {
				current = consumeComma(values, current)
			}
			var next []int
			for _, p := range current {
				next = union(next, matchOnce(c, values, p))
			}
			if len(next) == 0 {
				break
			}
			if rep >= c.Mult.Min {
				out = union(out, next)
			}
			current = next
		}
	}
	return out
}

// matchAnyOf matches 1..Max distinct alternatives of a one-of group in any
// order, the `a || b` semantics.
func matchAnyOf(c SyntaxComponent, values []cssparser.CssValue, start int) []int {
	var out []int
	used := make([]bool, len(c.Children))
	var explore func(pos, count int)
	explore = func(pos, count int) {
		if count >= c.Mult.Min {
			out = union(out, []int{pos})
		}
		if count == c.Mult.Max {
			return
		}
		for i, child := range c.Children {
			if used[i] {
				continue
			}
			used[i] = true
			for _, e := range matchComponent(child, values, []int{pos}) {
				if e > pos {
					explore(e, count+1)
				}
			}
			used[i] = false
		}
	}
	explore(start, 0)
	return out
}

func consumeComma(values []cssparser.CssValue, positions []int) []int {
	var out []int
	for _, p := range positions {
		if p < len(values) && values[p].IsComma() {
			out = union(out, []int{p + 1})
		}
	}
	return out
}

// matchOnce matches exactly one occurrence of c at each start position.
func matchOnce(c SyntaxComponent, values []cssparser.CssValue, pos int) []int {
	switch c.Kind {
	case CompGroup:
		return matchGroup(c, values, pos)
	case CompFunction:
		if pos >= len(values) {
			return nil
		}
		name, args, ok := values[pos].AsFunction()
		if !ok || !foldEqual(name, c.Text) {
			return nil
		}
		inner := &SyntaxTree{Components: c.Children}
		if len(c.Children) == 0 || inner.Matches(args) {
			return []int{pos + 1}
		}
		return nil
	case CompKeyword:
		if pos < len(values) && values[pos].Kind == cssparser.KindIdent && foldEqual(values[pos].Str, c.Text) {
			return []int{pos + 1}
		}
		return nil
	case CompLiteral:
		if pos >= len(values) {
			return nil
		}
		v := values[pos]
		if c.Text == "," && v.IsComma() {
			return []int{pos + 1}
		}
		if v.Kind == cssparser.KindOperator && v.Str == c.Text {
			return []int{pos + 1}
		}
		return nil
	case CompBuiltin:
		if pos < len(values) && builtinAccepts(BuiltinDataType(c.Text), values[pos]) {
			return []int{pos + 1}
		}
		return nil
	case CompDefinition, CompPropertyRef:
		// An unresolved reference at match time is a Builtin lookup miss
		// (spec.md 7): it accepts nothing, so the declaration is dropped.
		return nil
	default:
		return nil
	}
}

func matchGroup(c SyntaxComponent, values []cssparser.CssValue, pos int) []int {
	switch c.Combinator {
	case Juxtaposition:
		return matchSequence(c.Children, values, []int{pos})
	case OneOf:
		var out []int
		for _, child := range c.Children {
			out = union(out, matchComponent(child, values, []int{pos}))
		}
		return out
	case AllOf:
		var out []int
		used := make([]bool, len(c.Children))
		var explore func(p, count int)
		explore = func(p, count int) {
			if count == len(c.Children) {
				out = union(out, []int{p})
				return
			}
			for i, child := range c.Children {
				if used[i] {
					continue
				}
				used[i] = true
				for _, e := range matchComponent(child, values, []int{p}) {
					explore(e, count+1)
				}
				used[i] = false
			}
		}
		explore(pos, 0)
		return out
	default:
		return nil
	}
}

func union(a, b []int) []int {
	for _, x := range b {
		found := false
		for _, y := range a {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			a = append(a, x)
		}
	}
	return a
}

func foldEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

var systemColorNames = map[string]bool{
	"canvas": true, "canvastext": true, "linktext": true, "visitedtext": true,
	"activetext": true, "buttonface": true, "buttontext": true,
	"buttonborder": true, "field": true, "fieldtext": true, "highlight": true,
	"highlighttext": true, "selecteditem": true, "selecteditemtext": true,
	"mark": true, "marktext": true, "graytext": true, "accentcolor": true,
	"accentcolortext": true,
}

var absoluteSizeNames = map[string]bool{
	"xx-small": true, "x-small": true, "small": true, "medium": true,
	"large": true, "x-large": true, "xx-large": true, "xxx-large": true,
}

// builtinAccepts decides whether one value satisfies one of the primitive
// datatypes of builtins.go. A name outside the fixed set accepts nothing,
// spec.md 7's "unknown datatype: treated as a Builtin lookup miss".
func builtinAccepts(dt BuiltinDataType, v cssparser.CssValue) bool {
	switch dt {
	case Length:
		return v.Kind == cssparser.KindUnit || v.Kind == cssparser.KindNumber
	case Percentage:
		return v.Kind == cssparser.KindPercentage
	case Number, X, Y:
		return v.Kind == cssparser.KindNumber
	case Integer:
		return v.Kind == cssparser.KindNumber && v.Number == float64(int64(v.Number))
	case NamedColor:
		if v.Kind == cssparser.KindColor {
			return true
		}
		return v.Kind == cssparser.KindIdent && colors.IsNamed(v.Str)
	case HexColor:
		if v.Kind == cssparser.KindColor {
			return true
		}
		return v.Kind == cssparser.KindHash && isHexDigits(v.Str)
	case SystemColor:
		return v.Kind == cssparser.KindIdent && systemColorNames[asciiLower(v.Str)]
	case AbsoluteSize:
		return v.Kind == cssparser.KindIdent && absoluteSizeNames[asciiLower(v.Str)]
	case RelativeSize:
		s := asciiLower(v.Str)
		return v.Kind == cssparser.KindIdent && (s == "larger" || s == "smaller")
	case Ident, CustomIdent, CounterStyleName, CounterName, PaletteIdentifier,
		TimelineRangeName, TargetName, ID, Age, Gender, OutlineLineStyle:
		return v.Kind == cssparser.KindIdent
	case DashedIdent:
		return v.Kind == cssparser.KindIdent && len(v.Str) > 2 && v.Str[0] == '-' && v.Str[1] == '-'
	case String:
		return v.Kind == cssparser.KindString
	case URI, URLToken, URLSet:
		return v.Kind == cssparser.KindURL || v.Kind == cssparser.KindString
	case Angle, Frequency, Time, Decibel, Semitones, Flex:
		return v.Kind == cssparser.KindUnit
	case FeatureTagValue:
		return v.Kind == cssparser.KindString || v.Kind == cssparser.KindIdent
	case BasicShape, TransformFunction, CalcSize, ColorFn, AttrFn, ElementFn, Image1D:
		return v.Kind == cssparser.KindFunction
	default:
		return false
	}
}

func isHexDigits(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			continue
		}
		return false
	}
	return true
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
