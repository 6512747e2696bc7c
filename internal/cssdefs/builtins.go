// Package cssdefs resolves CSS property names to their definitions: whether
// a property inherits, what its initial value is, which longhands a
// shorthand expands to, and how to split a shorthand's value list across
// those longhands (the 1/2/3/4-value box-model rules, and the simpler
// positional rules a property like border or font uses).
//
// Grounded on
// original_source/crates/gosub_styling/src/property_definitions.rs
// (PropertyDefinition, CssDefinitions, BUILTIN_DATA_TYPES, the three-tier
// reference resolution in resolve_component) and
// original_source/crates/gosub_styling/src/shorthands.rs (Shorthands,
// FixList, resolve_nested). Property grammars are compiled from W3C-style
// value definition syntax strings (syntax.go) embedded in properties.json
// and values.json, resolved in a single topological pass at load, and
// matched against declared value lists with backtracking (matcher.go). The
// one place this package diverges from the Rust source: an unknown datatype
// never panics -- it stays unresolved and matches nothing, so the
// declaration referencing it is dropped and the cascade proceeds.
package cssdefs

// BuiltinDataType names one of the primitive value grammars every resolved
// property syntax eventually bottoms out at, verbatim from
// BUILTIN_DATA_TYPES in property_definitions.rs.
type BuiltinDataType string

const (
	AbsoluteSize      BuiltinDataType = "absolute-size"
	Age               BuiltinDataType = "age"
	Angle             BuiltinDataType = "angle"
	BasicShape        BuiltinDataType = "basic-shape"
	CalcSize          BuiltinDataType = "calc-size()"
	CounterName       BuiltinDataType = "counter-name"
	CounterStyleName  BuiltinDataType = "counter-style-name"
	CustomIdent       BuiltinDataType = "custom-ident"
	DashedIdent       BuiltinDataType = "dashed-ident"
	Decibel           BuiltinDataType = "decibel"
	FeatureTagValue   BuiltinDataType = "feature-tag-value"
	Flex              BuiltinDataType = "flex"
	Frequency         BuiltinDataType = "frequency"
	Gender            BuiltinDataType = "gender"
	HexColor          BuiltinDataType = "hex-color"
	ID                BuiltinDataType = "id"
	Ident             BuiltinDataType = "ident"
	Image1D           BuiltinDataType = "image-1D"
	Integer           BuiltinDataType = "integer"
	Length            BuiltinDataType = "length"
	Number            BuiltinDataType = "number"
	NamedColor        BuiltinDataType = "named-color"
	RelativeSize      BuiltinDataType = "relative-size"
	Semitones         BuiltinDataType = "semitones"
	SystemColor       BuiltinDataType = "system-color"
	OutlineLineStyle  BuiltinDataType = "outline-line-style"
	PaletteIdentifier BuiltinDataType = "palette-identifier"
	Percentage        BuiltinDataType = "percentage"
	String            BuiltinDataType = "string"
	TargetName        BuiltinDataType = "target-name"
	Time              BuiltinDataType = "time"
	TimelineRangeName BuiltinDataType = "timeline-range-name"
	TransformFunction BuiltinDataType = "transform-function"
	URI               BuiltinDataType = "uri"
	URLSet            BuiltinDataType = "url-set"
	URLToken          BuiltinDataType = "url-token"
	X                 BuiltinDataType = "x"
	Y                 BuiltinDataType = "y"
	ColorFn           BuiltinDataType = "color()"
	AttrFn            BuiltinDataType = "attr()"
	ElementFn         BuiltinDataType = "element()"
)

// builtinDataTypes is the full 41-entry membership set, mirroring
// BUILTIN_DATA_TYPES so IsBuiltin can answer the same question
// resolve_component's final fallback asks before panicking in the Rust
// source. Kestrel never panics here: an unresolved datatype just means the
// property's syntax check is skipped, per the Open Question decision
// recorded in DESIGN.md.
var builtinDataTypes = map[BuiltinDataType]bool{
	AbsoluteSize: true, Age: true, Angle: true, BasicShape: true,
	CalcSize: true, CounterName: true, CounterStyleName: true,
	CustomIdent: true, DashedIdent: true, Decibel: true,
	FeatureTagValue: true, Flex: true, Frequency: true, Gender: true,
	HexColor: true, ID: true, Ident: true, Image1D: true, Integer: true,
	Length: true, Number: true, NamedColor: true, RelativeSize: true,
	Semitones: true, SystemColor: true, OutlineLineStyle: true,
	PaletteIdentifier: true, Percentage: true, String: true,
	TargetName: true, Time: true, TimelineRangeName: true,
	TransformFunction: true, URI: true, URLSet: true, URLToken: true,
	X: true, Y: true, ColorFn: true, AttrFn: true, ElementFn: true,
}

// IsBuiltinDatatype reports whether name is one of the 41 fixed primitive
// grammars every property syntax eventually resolves to.
func IsBuiltinDatatype(name string) bool {
	return builtinDataTypes[BuiltinDataType(name)]
}
