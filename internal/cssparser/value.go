package cssparser

import "fmt"

// ValueKind discriminates the CssValue sum type, grounded on the CssValue
// trait in original_source/crates/gosub_interface/src/css3.rs
// (new_string/new_percentage/new_unit/new_color/new_number/new_list plus
// is_comma/is_none as the two sentinel cases callers check for).
type ValueKind int

const (
	KindIdent ValueKind = iota
	KindString
	KindNumber
	KindPercentage
	KindUnit
	KindColor
	KindFunction
	KindHash
	KindURL
	KindOperator
	KindList
	KindComma
	KindNone
)

// CssValue is one value in a declaration's value list. Not every field
// applies to every Kind: Str holds ident/string/function-name/hash/url/
// operator text; Number/Unit hold unit-token and percentage data; RGBA
// holds KindColor; Children holds KindFunction arguments or KindList items.
type CssValue struct {
	Kind     ValueKind
	Str      string
	Number   float64
	Unit     string
	RGBA     [4]float32
	Children []CssValue
}

func Ident(name string) CssValue        { return CssValue{Kind: KindIdent, Str: name} }
func StringValue(s string) CssValue     { return CssValue{Kind: KindString, Str: s} }
func NumberValue(n float64) CssValue    { return CssValue{Kind: KindNumber, Number: n} }
func Percentage(n float64) CssValue     { return CssValue{Kind: KindPercentage, Number: n} }
func Unit(n float64, unit string) CssValue {
	return CssValue{Kind: KindUnit, Number: n, Unit: unit}
}
func Color(r, g, b, a float32) CssValue { return CssValue{Kind: KindColor, RGBA: [4]float32{r, g, b, a}} }
func Function(name string, args []CssValue) CssValue {
	return CssValue{Kind: KindFunction, Str: name, Children: args}
}
func Hash(value string) CssValue      { return CssValue{Kind: KindHash, Str: value} }
func URLValue(value string) CssValue  { return CssValue{Kind: KindURL, Str: value} }
func Operator(op string) CssValue     { return CssValue{Kind: KindOperator, Str: op} }
func List(items []CssValue) CssValue  { return CssValue{Kind: KindList, Children: items} }
func Comma() CssValue                 { return CssValue{Kind: KindComma} }
func None() CssValue                  { return CssValue{Kind: KindNone} }

func (v CssValue) IsComma() bool { return v.Kind == KindComma }
func (v CssValue) IsNone() bool  { return v.Kind == KindNone }

func (v CssValue) AsString() (string, bool) {
	if v.Kind == KindIdent || v.Kind == KindString || v.Kind == KindHash || v.Kind == KindURL {
		return v.Str, true
	}
	return "", false
}

func (v CssValue) AsPercentage() (float64, bool) {
	if v.Kind == KindPercentage {
		return v.Number, true
	}
	return 0, false
}

func (v CssValue) AsUnit() (float64, string, bool) {
	if v.Kind == KindUnit {
		return v.Number, v.Unit, true
	}
	return 0, "", false
}

func (v CssValue) AsColor() ([4]float32, bool) {
	if v.Kind == KindColor {
		return v.RGBA, true
	}
	return [4]float32{}, false
}

func (v CssValue) AsNumber() (float64, bool) {
	if v.Kind == KindNumber {
		return v.Number, true
	}
	return 0, false
}

func (v CssValue) AsFunction() (string, []CssValue, bool) {
	if v.Kind == KindFunction {
		return v.Str, v.Children, true
	}
	return "", nil, false
}

func (v CssValue) String() string {
	switch v.Kind {
	case KindIdent, KindHash, KindURL:
		return v.Str
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindNumber:
		return fmt.Sprintf("%g", v.Number)
	case KindPercentage:
		return fmt.Sprintf("%g%%", v.Number)
	case KindUnit:
		return fmt.Sprintf("%g%s", v.Number, v.Unit)
	case KindColor:
		return fmt.Sprintf("rgba(%g,%g,%g,%g)", v.RGBA[0], v.RGBA[1], v.RGBA[2], v.RGBA[3])
	case KindFunction:
		return v.Str + "(...)"
	case KindOperator:
		return v.Str
	case KindComma:
		return ","
	default:
		return "none"
	}
}
