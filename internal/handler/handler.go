// Package handler accumulates parse errors, warnings, infos, and hints across
// a pipeline run instead of aborting on the first problem, per spec.md 7
// ("Parse errors never abort; they accumulate."). It is kestrel's answer to
// structured logging: none of the example repos reach for a logging library
// for this kind of accumulate-and-report bookkeeping, and the teacher
// (withastro/compiler) solves the same problem with its own Handler type.
package handler

import (
	"fmt"

	"github.com/kestrelweb/kestrel/internal/loc"
)

// PositionedError is any error that can report where in the source it
// occurred. Errors raised by the byte stream, HTML tokenizer, CSS tokenizer,
// and DOM builder all implement this.
type PositionedError interface {
	error
	Position() loc.Position
	Code() loc.DiagnosticCode
}

// Handler collects diagnostics for a single pipeline run over a single
// source text.
type Handler struct {
	filename string
	errors   []error
	warnings []error
	infos    []error
	hints    []error
}

// New creates a Handler for the given source file name (used only for
// rendering DiagnosticLocation.File; may be empty).
func New(filename string) *Handler {
	return &Handler{filename: filename}
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) AppendError(err error)   { h.errors = append(h.errors, err) }
func (h *Handler) AppendWarning(err error) { h.warnings = append(h.warnings, err) }
func (h *Handler) AppendInfo(err error)    { h.infos = append(h.infos, err) }
func (h *Handler) AppendHint(err error)    { h.hints = append(h.hints, err) }

func (h *Handler) Errors() []loc.DiagnosticMessage {
	return renderAll(h, h.errors, loc.ErrorType)
}

func (h *Handler) Warnings() []loc.DiagnosticMessage {
	return renderAll(h, h.warnings, loc.WarningType)
}

// Diagnostics returns every accumulated message across all four buckets, in
// errors -> warnings -> infos -> hints order.
func (h *Handler) Diagnostics() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(h.errors)+len(h.warnings)+len(h.infos)+len(h.hints))
	msgs = append(msgs, renderAll(h, h.errors, loc.ErrorType)...)
	msgs = append(msgs, renderAll(h, h.warnings, loc.WarningType)...)
	msgs = append(msgs, renderAll(h, h.infos, loc.InformationType)...)
	msgs = append(msgs, renderAll(h, h.hints, loc.HintType)...)
	return msgs
}

func renderAll(h *Handler, errs []error, severity loc.DiagnosticSeverity) []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, toMessage(h, severity, err))
		}
	}
	return msgs
}

func toMessage(h *Handler, severity loc.DiagnosticSeverity, err error) loc.DiagnosticMessage {
	if pe, ok := err.(PositionedError); ok {
		pos := pe.Position()
		return loc.DiagnosticMessage{
			Code:     pe.Code(),
			Text:     pe.Error(),
			Severity: severity,
			Location: &loc.DiagnosticLocation{
				File:   h.filename,
				Line:   pos.Line,
				Column: pos.Col,
			},
		}
	}
	return loc.DiagnosticMessage{Text: err.Error(), Severity: severity}
}

// ParseError is the concrete PositionedError raised by the tokenizers and
// DOM builder.
type ParseError struct {
	code loc.DiagnosticCode
	pos  loc.Position
	msg  string
}

func NewParseError(code loc.DiagnosticCode, pos loc.Position, format string, args ...any) *ParseError {
	return &ParseError{code: code, pos: pos, msg: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string            { return e.msg }
func (e *ParseError) Position() loc.Position   { return e.pos }
func (e *ParseError) Code() loc.DiagnosticCode { return e.code }
