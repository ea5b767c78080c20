// Package exprs implements the flag expression language used inside core
// descriptions to select filesets, parameters and other list entries.
//
// Grammar:
//
//	exprs := expr+
//	expr  := word | ["!"] word "?" "(" exprs ")"
//
// A word is any run of characters that is neither whitespace nor one of "?()".
package exprs

import (
	"strings"
	"sync"
	"unicode"

	"go.trai.ch/zerr"
)

// ErrSyntax is returned when an expression string does not follow the grammar.
var ErrSyntax = zerr.New("expression syntax error")

// Term is a single element of an expression: either a literal word or a
// conditional group guarded by a flag.
type Term struct {
	// Word is set for literal terms.
	Word string
	// Flag is set for conditional terms.
	Flag string
	// Negated inverts the flag test of a conditional term.
	Negated bool
	// Body holds the terms of a conditional group.
	Body []Term
}

// Conditional reports whether the term is a flag-guarded group.
func (t Term) Conditional() bool {
	return t.Flag != ""
}

// Expr is a parsed expression.
type Expr struct {
	source string
	terms  []Term
}

// Terms returns the top-level terms of the expression.
func (e *Expr) Terms() []Term {
	return e.terms
}

// String returns the source text the expression was parsed from.
func (e *Expr) String() string {
	return e.source
}

// Expand evaluates the expression against a set of active flag names and
// returns the selected words joined by single spaces.
func (e *Expr) Expand(active map[string]bool) string {
	words := make([]string, 0, len(e.terms))
	words = collect(e.terms, active, words)
	return strings.Join(words, " ")
}

func collect(terms []Term, active map[string]bool, out []string) []string {
	for _, t := range terms {
		if !t.Conditional() {
			out = append(out, t.Word)
			continue
		}
		if active[t.Flag] != t.Negated {
			out = collect(t.Body, active, out)
		}
	}
	return out
}

var cache sync.Map // map[string]*Expr

// Parse parses an expression string. Parsed expressions are memoized by
// source text; parsing is pure so sharing results is safe.
func Parse(s string) (*Expr, error) {
	if v, ok := cache.Load(s); ok {
		return v.(*Expr), nil //nolint:errcheck // only *Expr values are stored
	}

	p := &parser{src: []rune(s)}
	terms, err := p.parseSeq(false)
	if err != nil {
		return nil, zerr.With(err, "expression", s)
	}

	e := &Expr{source: s, terms: terms}
	actual, _ := cache.LoadOrStore(s, e)
	return actual.(*Expr), nil //nolint:errcheck // only *Expr values are stored
}

// Expand parses s and evaluates it against active.
func Expand(s string, active map[string]bool) (string, error) {
	e, err := Parse(s)
	if err != nil {
		return "", err
	}
	return e.Expand(active), nil
}

// ExpandList evaluates every item of a list and splits the results on
// whitespace, so that one entry can contribute zero or more words.
func ExpandList(items []string, active map[string]bool) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		expanded, err := Expand(item, active)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.Fields(expanded)...)
	}
	return out, nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) parseSeq(nested bool) ([]Term, error) {
	var terms []Term
	for {
		p.skipSpace()
		if p.eof() {
			if nested {
				return nil, p.syntaxError("unterminated group", p.pos, p.pos)
			}
			return terms, nil
		}

		switch p.src[p.pos] {
		case ')':
			if !nested {
				return nil, p.syntaxError("unexpected ')'", p.pos, p.pos+1)
			}
			p.pos++
			return terms, nil
		case '(':
			return nil, p.syntaxError("unexpected '('", p.pos, p.pos+1)
		case '?':
			return nil, p.syntaxError("missing flag before '?'", p.pos, p.pos+1)
		}

		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
}

func (p *parser) parseTerm() (Term, error) {
	start := p.pos
	negated := false
	if p.src[p.pos] == '!' {
		negated = true
		p.pos++
	}

	word := p.readWord()
	if word == "" {
		return Term{}, p.syntaxError("missing flag after '!'", start, p.pos+1)
	}
	wordEnd := p.pos

	p.skipSpace()
	if p.eof() || p.src[p.pos] != '?' {
		if negated {
			return Term{}, p.syntaxError("negation without condition", start, wordEnd)
		}
		return Term{Word: word}, nil
	}
	p.pos++

	p.skipSpace()
	if p.eof() || p.src[p.pos] != '(' {
		return Term{}, p.syntaxError("expected '(' after '?'", start, p.pos+1)
	}
	p.pos++

	body, err := p.parseSeq(true)
	if err != nil {
		return Term{}, err
	}
	return Term{Flag: word, Negated: negated, Body: body}, nil
}

func (p *parser) readWord() string {
	start := p.pos
	for !p.eof() {
		r := p.src[p.pos]
		if unicode.IsSpace(r) || r == '?' || r == '(' || r == ')' {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

// syntaxError reports the offending substring src[from:to], clamped to the input.
func (p *parser) syntaxError(reason string, from, to int) error {
	end := min(to, len(p.src))
	from = min(from, end)
	err := zerr.With(ErrSyntax, "reason", reason)
	return zerr.With(err, "near", string(p.src[from:end]))
}
