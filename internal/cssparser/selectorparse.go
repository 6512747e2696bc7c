package cssparser

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/css"
)

// parseSelectorList splits a flat prelude token slice at top-level commas
// and parses each branch into a SelectorSequence.
func parseSelectorList(tokens []css.Token) SelectorList {
	var list SelectorList
	depth := 0
	start := 0
	flush := func(end int) {
		seq := parseSelectorSequence(tokens[start:end])
		if len(seq.Compounds) > 0 {
			list.Items = append(list.Items, seq)
		}
	}
	for i, t := range tokens {
		switch t.Type {
		case css.FunctionToken, css.LParenToken, css.LBracketToken:
			depth++
		case css.RParenToken, css.RBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(tokens))
	return list
}

func parseSelectorSequence(tokens []css.Token) SelectorSequence {
	var seq SelectorSequence
	var current CompoundSelector
	sawWhitespace := false

	flushCompound := func() {
		if len(current.Simple) > 0 {
			seq.Compounds = append(seq.Compounds, current)
			current = CompoundSelector{}
		}
	}

	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch {
		case t.Type == css.WhitespaceToken:
			sawWhitespace = true
			i++

		case t.Type == css.DelimToken && (t.Delim == '>' || t.Delim == '+' || t.Delim == '~'):
			flushCompound()
			seq.Combinators = append(seq.Combinators, combinatorFor(t.Delim))
			sawWhitespace = false
			i++

		case t.Type == css.DelimToken && t.Delim == '|':
			flushCompound()
			if i+1 < len(tokens) && tokens[i+1].Type == css.DelimToken && tokens[i+1].Delim == '|' {
				seq.Combinators = append(seq.Combinators, Column)
				i += 2
			} else {
				seq.Combinators = append(seq.Combinators, Namespace)
				i++
			}
			sawWhitespace = false

		default:
			if sawWhitespace && len(current.Simple) > 0 {
				seq.Compounds = append(seq.Compounds, current)
				current = CompoundSelector{}
				seq.Combinators = append(seq.Combinators, Descendant)
			}
			sawWhitespace = false
			simple, consumed := parseSimpleSelector(tokens, i)
			if consumed == 0 {
				i++
				continue
			}
			current.Simple = append(current.Simple, simple)
			i += consumed
		}
	}
	flushCompound()

	// Trim a trailing combinator left over from a malformed selector like
	// "div >" with nothing following it.
	if len(seq.Combinators) >= len(seq.Compounds) && len(seq.Compounds) > 0 {
		seq.Combinators = seq.Combinators[:len(seq.Compounds)-1]
	}
	return seq
}

func combinatorFor(r rune) Combinator {
	switch r {
	case '>':
		return Child
	case '+':
		return NextSibling
	case '~':
		return SubsequentSibling
	default:
		return Descendant
	}
}

// parseSimpleSelector parses exactly one simple selector starting at
// tokens[i], returning how many tokens it consumed (0 if tokens[i] does not
// start a recognizable simple selector).
func parseSimpleSelector(tokens []css.Token, i int) (SimpleSelector, int) {
	t := tokens[i]
	switch {
	case t.Type == css.IdentToken:
		return SimpleSelector{Kind: TypeSelectorKind, Name: t.Value}, 1

	case t.Type == css.DelimToken && t.Delim == '*':
		return SimpleSelector{Kind: UniversalSelectorKind}, 1

	case t.Type == css.DelimToken && t.Delim == '.':
		if i+1 < len(tokens) && tokens[i+1].Type == css.IdentToken {
			return SimpleSelector{Kind: ClassSelectorKind, Name: tokens[i+1].Value}, 2
		}
		return SimpleSelector{}, 0

	case t.Type == css.HashToken || t.Type == css.IDHashToken:
		return SimpleSelector{Kind: IDSelectorKind, Name: t.Value}, 1

	case t.Type == css.ColonToken:
		return parsePseudoSelector(tokens, i)

	case t.Type == css.LBracketToken:
		return parseAttributeSelector(tokens, i)

	default:
		return SimpleSelector{}, 0
	}
}

func parsePseudoSelector(tokens []css.Token, i int) (SimpleSelector, int) {
	isElement := false
	j := i + 1
	if j < len(tokens) && tokens[j].Type == css.ColonToken {
		isElement = true
		j++
	}
	if j >= len(tokens) {
		return SimpleSelector{}, 0
	}

	kind := PseudoClassKind
	if isElement {
		kind = PseudoElementKind
	}

	nameTok := tokens[j]
	if nameTok.Type == css.FunctionToken {
		end := matchingParenEnd(tokens, j)
		args := convertTokensToValues(tokens[j+1 : end])
		return SimpleSelector{Kind: kind, Name: nameTok.Value, PseudoArgs: args}, end + 1 - i
	}
	if nameTok.Type == css.IdentToken {
		consumed := j + 1 - i
		return SimpleSelector{Kind: kind, Name: nameTok.Value}, consumed
	}
	return SimpleSelector{}, 0
}

// matchingParenEnd returns the index of the RParenToken matching the
// FunctionToken at tokens[start] (which implicitly opens one level of
// nesting), scanning forward and tracking further FunctionToken/LParenToken
// opens. Returns len(tokens) if unmatched (ran off the end).
func matchingParenEnd(tokens []css.Token, start int) int {
	depth := 1
	for j := start + 1; j < len(tokens); j++ {
		switch tokens[j].Type {
		case css.FunctionToken, css.LParenToken:
			depth++
		case css.RParenToken:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(tokens)
}

func matchingBracketEnd(tokens []css.Token, start int) int {
	depth := 1
	for j := start + 1; j < len(tokens); j++ {
		switch tokens[j].Type {
		case css.LBracketToken:
			depth++
		case css.RBracketToken:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(tokens)
}

// parseAttributeSelector parses `[name]`, `[name=value]`,
// `[name~=value]`, `[name|=value]`, `[name^=value]`, `[name$=value]`,
// `[name*=value]`, optionally followed by an `i`/`s` case-sensitivity flag.
func parseAttributeSelector(tokens []css.Token, i int) (SimpleSelector, int) {
	end := matchingBracketEnd(tokens, i)
	inner := tokens[i+1 : end]
	consumed := end + 1 - i

	inner = skipLeadingWhitespace(inner)
	if len(inner) == 0 || inner[0].Type != css.IdentToken {
		return SimpleSelector{}, 0
	}
	sel := SimpleSelector{Kind: AttributeSelectorKind, Name: inner[0].Value}
	inner = skipLeadingWhitespace(inner[1:])
	if len(inner) == 0 {
		return sel, consumed
	}

	matcher, rest := readMatcher(inner)
	if matcher == "" {
		return sel, consumed
	}
	sel.AttrMatcher = matcher
	rest = skipLeadingWhitespace(rest)
	if len(rest) > 0 {
		switch rest[0].Type {
		case css.StringToken, css.IdentToken:
			sel.AttrValue = rest[0].Value
			rest = rest[1:]
		}
	}
	rest = skipLeadingWhitespace(rest)
	if len(rest) > 0 && rest[0].IsIdent("i") {
		sel.AttrCaseInsensitive = true
	}
	return sel, consumed
}

func readMatcher(tokens []css.Token) (string, []css.Token) {
	if len(tokens) == 0 || tokens[0].Type != css.DelimToken {
		return "", tokens
	}
	first := tokens[0].Delim
	if first == '=' {
		return "=", tokens[1:]
	}
	if strings.ContainsRune("~|^$*", first) {
		if len(tokens) > 1 && tokens[1].Type == css.DelimToken && tokens[1].Delim == '=' {
			return string(first) + "=", tokens[2:]
		}
	}
	return "", tokens
}

func skipLeadingWhitespace(tokens []css.Token) []css.Token {
	for len(tokens) > 0 && tokens[0].Type == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	return tokens
}
