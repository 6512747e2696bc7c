// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package html implements the HTML5 tokenizer (spec.md 4.2): a table-driven
// state machine over bytestream.Character values, including the character
// reference automaton and named/numeric entity decoding, feeding a DOM
// builder backed by the internal/dom arena.
//
// The token shapes here descend from the teacher's internal/token.go, which
// itself forked golang.org/x/net/html; hence the shared license header.
package html

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/loc"
)

// TokenType identifies the kind of Token produced by the tokenizer.
type TokenType int

const (
	ErrorToken TokenType = iota
	TextToken
	StartTagToken
	EndTagToken
	SelfClosingTagToken
	CommentToken
	DoctypeToken
	EOFToken
)

func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "Error"
	case TextToken:
		return "Text"
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case SelfClosingTagToken:
		return "SelfClosingTag"
	case CommentToken:
		return "Comment"
	case DoctypeToken:
		return "Doctype"
	case EOFToken:
		return "EOF"
	default:
		return "Invalid"
	}
}

// Attribute is a single name/value pair in an insertion-ordered attribute
// list, along with the position its name started at (for diagnostics).
type Attribute struct {
	Name  string
	Value string
	Pos   loc.Position
}

// Doctype carries the three fields a DOCTYPE token may specify.
type Doctype struct {
	Name     string
	PublicID string
	SystemID string
}

// Token is one emitted unit from the tokenizer.
type Token struct {
	Type       TokenType
	Pos        loc.Position
	Data       string // tag name, text content, or comment text
	Attr       []Attribute
	Doctype    Doctype
	ForceQuirk bool
}

// Attribute looks up an attribute by name (case already lowercased by the
// tokenizer), returning ("", false) if absent.
func (t *Token) Attribute(name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// String renders a Token approximately back to HTML, for debugging and
// snapshot tests.
func (t *Token) String() string {
	switch t.Type {
	case TextToken:
		return t.Data
	case StartTagToken, SelfClosingTagToken:
		var b strings.Builder
		b.WriteByte('<')
		b.WriteString(t.Data)
		for _, a := range t.Attr {
			b.WriteByte(' ')
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(a.Value)
			b.WriteByte('"')
		}
		if t.Type == SelfClosingTagToken {
			b.WriteString("/>")
		} else {
			b.WriteByte('>')
		}
		return b.String()
	case EndTagToken:
		return "</" + t.Data + ">"
	case CommentToken:
		return "<!--" + t.Data + "-->"
	case DoctypeToken:
		return "<!DOCTYPE " + t.Doctype.Name + ">"
	case EOFToken:
		return ""
	default:
		return ""
	}
}
