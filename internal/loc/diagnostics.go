package loc

// DiagnosticSeverity classifies a DiagnosticMessage the way the handler
// buckets errors, warnings, infos, and hints (spec.md 7).
type DiagnosticSeverity int

const (
	ErrorType DiagnosticSeverity = iota + 1
	WarningType
	InformationType
	HintType
)

// DiagnosticCode identifies the kind of problem encountered. Codes are
// grouped by stage: 1000s are byte-stream/HTML tokenizer errors, 2000s are
// CSS tokenizer/parser errors, 3000s are definition/cascade errors, 4000s
// are DOM-builder errors, 5000s are layout/tiling warnings.
type DiagnosticCode int

const (
	// HTML tokenizer / character-reference automaton (4.2)
	ErrMissingSemicolonAfterCharacterReference    DiagnosticCode = 1001
	ErrCharacterReferenceOutsideUnicodeRange      DiagnosticCode = 1002
	ErrNullCharacterReference                     DiagnosticCode = 1003
	ErrSurrogateCharacterReference                DiagnosticCode = 1004
	ErrNoncharacterCharacterReference             DiagnosticCode = 1005
	ErrControlCharacterReference                  DiagnosticCode = 1006
	ErrUnknownNamedCharacterReference             DiagnosticCode = 1007
	ErrAbsenceOfDigitsInNumericCharacterReference DiagnosticCode = 1008
	ErrEOFInTag                                   DiagnosticCode = 1009
	ErrUnexpectedCharacterInAttributeName         DiagnosticCode = 1010

	// CSS tokenizer (4.3)
	ErrBadString DiagnosticCode = 2001
	ErrBadURL    DiagnosticCode = 2002
	ErrBadEscape DiagnosticCode = 2003

	// CSS parser (4.4)
	ErrUnterminatedRule DiagnosticCode = 2004

	// Definitions / cascade (4.4 / 4.5)
	WarnDefinitionMismatch DiagnosticCode = 3001
	WarnUnknownProperty    DiagnosticCode = 3002
	WarnUnknownDatatype    DiagnosticCode = 3003

	// DOM builder (4.2)
	WarnInvalidIDAttribute DiagnosticCode = 4001
	WarnCyclicAttach       DiagnosticCode = 4002

	// Layout / tiling (4.7 / 4.8)
	WarnMissingResource  DiagnosticCode = 5001
	WarnDetachedTextNode DiagnosticCode = 5002
)

// DiagnosticLocation is the file-relative rendering of a Range, suitable for
// printing to a terminal or editor.
type DiagnosticLocation struct {
	File   string
	Line   int
	Column int
	Length int
}

// DiagnosticMessage is the rendered form of an accumulated error, warning,
// info, or hint.
type DiagnosticMessage struct {
	Code     DiagnosticCode
	Text     string
	Severity DiagnosticSeverity
	Location *DiagnosticLocation
}
