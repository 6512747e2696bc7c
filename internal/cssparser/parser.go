// Package cssparser turns a css.Tokenizer's token stream into the
// stylesheet/rule/selector/declaration/value tree spec.md 4.4 describes,
// grounded on the AST shapes in original_source/src/css/node.rs
// (StyleSheet/StyleSheetRule/Rule/AtRule/Declaration/Value) and the
// CssValue variant set in
// original_source/crates/gosub_interface/src/css3.rs.
package cssparser

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/css"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// Parse drives tok to completion and returns a Stylesheet, per the CSS
// Syntax Level 3 "consume a list of rules" algorithm (section 5.3.1),
// applied over the fully-buffered token list rather than the raw stream
// (css.Tokenizer already buffers every token it has produced, so there is
// no separate cost to flattening it up front).
func Parse(tok *css.Tokenizer, origin CssOrigin, sourceURL string, h *handler.Handler) *Stylesheet {
	var tokens []css.Token
	for {
		t := tok.Consume()
		if t.Type == css.CommentToken {
			continue
		}
		tokens = append(tokens, t)
		if t.Type == css.EOFToken {
			break
		}
	}

	p := &parser{tokens: tokens, h: h}
	rules := p.parseRuleList(true)
	return &Stylesheet{Rules: rules, Origin: origin, SourceURL: sourceURL}
}

type parser struct {
	tokens []css.Token
	pos    int
	h      *handler.Handler
}

func (p *parser) peek() css.Token {
	if p.pos >= len(p.tokens) {
		return css.Token{Type: css.EOFToken}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() css.Token {
	t := p.peek()
	if t.Type != css.EOFToken {
		p.pos++
	}
	return t
}

func (p *parser) skipWhitespace() {
	for p.peek().Type == css.WhitespaceToken {
		p.next()
	}
}

func (p *parser) skipWhitespaceAndSemicolons() {
	for {
		switch p.peek().Type {
		case css.WhitespaceToken, css.SemicolonToken:
			p.next()
		default:
			return
		}
	}
}

// parseRuleList implements "consume a list of rules": at the top level, CDO
// and CDC tokens are ignored (they exist only to hide CSS from ancient
// HTML comment-stripping browsers); nested inside a block they would be
// ordinary delimiters, but kestrel's tokenizer only ever emits them as
// dedicated tokens so they are dropped in both places.
func (p *parser) parseRuleList(topLevel bool) []StyleSheetRule {
	var out []StyleSheetRule
	for {
		switch p.peek().Type {
		case css.WhitespaceToken, css.CDOToken, css.CDCToken:
			p.next()
			continue
		case css.EOFToken:
			return out
		case css.RCurlyToken:
			if topLevel {
				p.next() // stray '}', ignore
				continue
			}
			return out
		case css.AtKeywordToken:
			out = append(out, StyleSheetRule{AtRule: p.parseAtRule()})
			continue
		}

		if r := p.parseQualifiedRule(); r != nil {
			out = append(out, StyleSheetRule{Rule: r})
		}
	}
}

var nestedRuleAtRules = map[string]bool{
	"media": true, "supports": true, "document": true,
	"keyframes": true, "-webkit-keyframes": true, "-moz-keyframes": true,
	"layer": true,
}

func (p *parser) parseAtRule() *AtRule {
	nameTok := p.next()
	ar := &AtRule{Name: nameTok.Value, Pos: nameTok.Pos}

	var prelude []css.Token
	for {
		t := p.peek()
		if t.Type == css.LCurlyToken || t.Type == css.SemicolonToken || t.Type == css.EOFToken {
			break
		}
		prelude = append(prelude, p.next())
	}
	ar.Prelude = convertTokensToValues(prelude)

	switch p.peek().Type {
	case css.SemicolonToken:
		p.next()
	case css.LCurlyToken:
		p.next()
		if nestedRuleAtRules[strings.ToLower(nameTok.Value)] {
			ar.Block = p.parseRuleList(false)
		} else {
			ar.Declarations = p.parseDeclarationList()
		}
		if p.peek().Type == css.RCurlyToken {
			p.next()
		}
	}
	return ar
}

// parseQualifiedRule implements "consume a qualified rule": everything up
// to the block-opening '{' is the selector prelude, everything inside the
// block is the declaration list. Returns nil for a rule whose prelude ran
// to EOF without ever finding a block (a parse error, dropped per spec.md
// 7's "errors never abort" rule -- the rest of the stylesheet still
// parses).
func (p *parser) parseQualifiedRule() *Rule {
	pos := p.peek().Pos
	var prelude []css.Token
	for {
		t := p.peek()
		if t.Type == css.LCurlyToken || t.Type == css.EOFToken {
			break
		}
		prelude = append(prelude, p.next())
	}
	if p.peek().Type != css.LCurlyToken {
		if p.h != nil {
			p.h.AppendWarning(handler.NewParseError(loc.ErrUnterminatedRule, pos, "unterminated rule at end of stylesheet"))
		}
		return nil
	}
	p.next() // consume '{'
	decls := p.parseDeclarationList()
	if p.peek().Type == css.RCurlyToken {
		p.next()
	}
	return &Rule{Selectors: parseSelectorList(prelude), Declarations: decls, Pos: pos}
}

func (p *parser) parseDeclarationList() []Declaration {
	var out []Declaration
	for {
		p.skipWhitespaceAndSemicolons()
		switch p.peek().Type {
		case css.RCurlyToken, css.EOFToken:
			return out
		case css.AtKeywordToken:
			p.parseAtRule()
			continue
		}
		if d, ok := p.parseOneDeclaration(); ok {
			out = append(out, d)
		}
	}
}

func (p *parser) parseOneDeclaration() (Declaration, bool) {
	if p.peek().Type != css.IdentToken {
		p.skipToDeclarationEnd()
		return Declaration{}, false
	}
	propTok := p.next()
	p.skipWhitespace()
	if p.peek().Type != css.ColonToken {
		p.skipToDeclarationEnd()
		return Declaration{}, false
	}
	p.next() // consume ':'

	var valueTokens []css.Token
	for {
		t := p.peek()
		if t.Type == css.SemicolonToken || t.Type == css.RCurlyToken || t.Type == css.EOFToken {
			break
		}
		valueTokens = append(valueTokens, p.next())
	}
	if p.peek().Type == css.SemicolonToken {
		p.next()
	}

	valueTokens, important := stripImportant(valueTokens)
	return Declaration{
		Property:  propTok.Value,
		Value:     convertTokensToValues(valueTokens),
		Important: important,
		Pos:       propTok.Pos,
	}, true
}

func (p *parser) skipToDeclarationEnd() {
	for {
		switch p.peek().Type {
		case css.SemicolonToken:
			p.next()
			return
		case css.RCurlyToken, css.EOFToken:
			return
		default:
			p.next()
		}
	}
}

// stripImportant removes a trailing `! important` (whitespace-tolerant,
// case-insensitive) from a declaration's value tokens.
func stripImportant(tokens []css.Token) ([]css.Token, bool) {
	end := len(tokens)
	for end > 0 && tokens[end-1].Type == css.WhitespaceToken {
		end--
	}
	if end == 0 || !tokens[end-1].IsIdent("important") {
		return tokens, false
	}
	end--
	for end > 0 && tokens[end-1].Type == css.WhitespaceToken {
		end--
	}
	if end == 0 || tokens[end-1].Type != css.DelimToken || tokens[end-1].Delim != '!' {
		return tokens, false
	}
	end--
	for end > 0 && tokens[end-1].Type == css.WhitespaceToken {
		end--
	}
	return tokens[:end], true
}

// convertTokensToValues turns a flat component-value token slice into
// CssValues, recursing into function argument lists. Whitespace and
// comments carry no value-list meaning once a declaration's structure has
// been determined, so they are dropped here (CssValue has no whitespace
// variant, matching the CssValue trait in css3.rs).
func convertTokensToValues(tokens []css.Token) []CssValue {
	var out []CssValue
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch t.Type {
		case css.WhitespaceToken, css.CommentToken:
			i++

		case css.FunctionToken:
			end := matchingParenEnd(tokens, i)
			out = append(out, Function(t.Value, convertTokensToValues(tokens[i+1:end])))
			i = end + 1

		case css.LParenToken:
			end := matchingParenEnd(tokens, i)
			out = append(out, List(convertTokensToValues(tokens[i+1:end])))
			i = end + 1

		case css.RParenToken:
			i++ // stray, unmatched

		case css.IdentToken:
			out = append(out, Ident(t.Value))
			i++
		case css.StringToken, css.BadStringToken:
			out = append(out, StringValue(t.Value))
			i++
		case css.NumberToken:
			out = append(out, NumberValue(t.Number))
			i++
		case css.PercentageToken:
			out = append(out, Percentage(t.Number))
			i++
		case css.DimensionToken:
			out = append(out, Unit(t.Number, t.Unit))
			i++
		case css.HashToken, css.IDHashToken:
			out = append(out, Hash(t.Value))
			i++
		case css.URLToken, css.BadURLToken:
			out = append(out, URLValue(t.Value))
			i++
		case css.CommaToken:
			out = append(out, Comma())
			i++
		case css.DelimToken:
			out = append(out, Operator(string(t.Delim)))
			i++
		default:
			i++
		}
	}
	return out
}
