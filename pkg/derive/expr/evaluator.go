// Package expr implements the small, sandboxed expression language used by
// derived-field formulas. It supports arithmetic, string concatenation,
// comparisons, boolean composition, and a fixed allowlist of functions; there
// is no assignment, no method access, and no way to reach host code.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Evaluator parses and evaluates formulas against a set of named variables.
// The zero value is not usable; construct instances with New.
type Evaluator struct {
	funcs map[string]builtin
}

// New constructs an Evaluator with the default function allowlist.
func New() *Evaluator {
	return &Evaluator{funcs: defaultBuiltins()}
}

// Eval parses formula and evaluates it with each variable bound by name.
// Referencing a variable that is not bound is an error so typos surface
// instead of silently producing zero values.
func (e *Evaluator) Eval(formula string, vars map[string]any) (any, error) {
	trimmed := strings.TrimSpace(formula)
	if trimmed == "" {
		return nil, errors.New("expr: empty formula")
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}

	node, err := parse(tokens)
	if err != nil {
		return nil, err
	}

	return node.eval(&scope{vars: vars, funcs: e.funcs})
}

type scope struct {
	vars  map[string]any
	funcs map[string]builtin
}

func (s *scope) lookup(name string) (any, error) {
	if value, ok := s.vars[name]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("expr: unknown variable %q", name)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenNumber
	tokenString
	tokenBool
	tokenNull
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == ',':
			tokens = append(tokens, token{kind: tokenComma, raw: ","})
			i++
		case ch == '+':
			tokens = append(tokens, token{kind: tokenPlus, raw: "+"})
			i++
		case ch == '-':
			tokens = append(tokens, token{kind: tokenMinus, raw: "-"})
			i++
		case ch == '*':
			tokens = append(tokens, token{kind: tokenStar, raw: "*"})
			i++
		case ch == '/':
			tokens = append(tokens, token{kind: tokenSlash, raw: "/"})
			i++
		case ch == '%':
			tokens = append(tokens, token{kind: tokenPercent, raw: "%"})
			i++
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenNot, raw: "!"})
				i++
			}
		case ch == '<':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenLte, raw: "<="})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenLt, raw: "<"})
				i++
			}
		case ch == '>':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenGte, raw: ">="})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenGt, raw: ">"})
				i++
			}
		case ch == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			literal, next, err := scanString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: literal})
			i = next
		case ch >= '0' && ch <= '9':
			start := i
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: input[start:i]})
		case isIdentStart(ch):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			raw := input[start:i]
			switch raw {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: raw})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		default:
			return nil, fmt.Errorf("expr: unexpected character %q", string(ch))
		}
	}

	return tokens, nil
}

func scanString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		ch := input[i]
		if ch == '\\' && i+1 < len(input) {
			next := input[i+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '\'':
				b.WriteByte(next)
			default:
				b.WriteByte(next)
			}
			i += 2
			continue
		}
		if ch == quote {
			return b.String(), i + 1, nil
		}
		b.WriteByte(ch)
		i++
	}
	return "", 0, errors.New("expr: unterminated string literal")
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// ---- parser ----
//
// Precedence, loosest first: || , && , == != , < <= > >= , + - , * / % , unary.

type node interface {
	eval(s *scope) (any, error)
}

type stream struct {
	tokens []token
	pos    int
}

func (s *stream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *stream) match(kind tokenKind) bool {
	if tok, ok := s.peek(); ok && tok.kind == kind {
		s.pos++
		return true
	}
	return false
}

func parse(tokens []token) (node, error) {
	s := &stream{tokens: tokens}
	out, err := parseOr(s)
	if err != nil {
		return nil, err
	}
	if tok, ok := s.peek(); ok {
		return nil, fmt.Errorf("expr: unexpected token %q", tok.raw)
	}
	return out, nil
}

func parseOr(s *stream) (node, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = logicNode{op: tokenOr, left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *stream) (node, error) {
	left, err := parseEquality(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := parseEquality(s)
		if err != nil {
			return nil, err
		}
		left = logicNode{op: tokenAnd, left: left, right: right}
	}
	return left, nil
}

func parseEquality(s *stream) (node, error) {
	left, err := parseComparison(s)
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := s.peek()
		if !ok || (tok.kind != tokenEq && tok.kind != tokenNeq) {
			return left, nil
		}
		s.pos++
		right, err := parseComparison(s)
		if err != nil {
			return nil, err
		}
		left = compareNode{op: tok.kind, left: left, right: right}
	}
}

func parseComparison(s *stream) (node, error) {
	left, err := parseAdditive(s)
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := s.peek()
		if !ok {
			return left, nil
		}
		switch tok.kind {
		case tokenLt, tokenLte, tokenGt, tokenGte:
			s.pos++
			right, err := parseAdditive(s)
			if err != nil {
				return nil, err
			}
			left = compareNode{op: tok.kind, left: left, right: right}
		default:
			return left, nil
		}
	}
}

func parseAdditive(s *stream) (node, error) {
	left, err := parseMultiplicative(s)
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := s.peek()
		if !ok || (tok.kind != tokenPlus && tok.kind != tokenMinus) {
			return left, nil
		}
		s.pos++
		right, err := parseMultiplicative(s)
		if err != nil {
			return nil, err
		}
		left = arithmeticNode{op: tok.kind, left: left, right: right}
	}
}

func parseMultiplicative(s *stream) (node, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := s.peek()
		if !ok || (tok.kind != tokenStar && tok.kind != tokenSlash && tok.kind != tokenPercent) {
			return left, nil
		}
		s.pos++
		right, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		left = arithmeticNode{op: tok.kind, left: left, right: right}
	}
}

func parseUnary(s *stream) (node, error) {
	if s.match(tokenNot) {
		inner, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	if s.match(tokenMinus) {
		inner, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return negateNode{inner: inner}, nil
	}
	return parsePrimary(s)
}

func parsePrimary(s *stream) (node, error) {
	tok, ok := s.peek()
	if !ok {
		return nil, errors.New("expr: unexpected end of formula")
	}
	s.pos++

	switch tok.kind {
	case tokenNumber:
		value, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expr: invalid number literal %q", tok.raw)
		}
		return literalNode{value: value}, nil
	case tokenString:
		return literalNode{value: tok.raw}, nil
	case tokenBool:
		return literalNode{value: tok.raw == "true"}, nil
	case tokenNull:
		return literalNode{value: nil}, nil
	case tokenLParen:
		inner, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	case tokenIdentifier:
		if s.match(tokenLParen) {
			return parseCall(s, tok.raw)
		}
		return variableNode{name: tok.raw}, nil
	default:
		return nil, fmt.Errorf("expr: unexpected token %q", tok.raw)
	}
}

func parseCall(s *stream, name string) (node, error) {
	call := callNode{name: name}
	if s.match(tokenRParen) {
		return call, nil
	}
	for {
		arg, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
		if s.match(tokenComma) {
			continue
		}
		if s.match(tokenRParen) {
			return call, nil
		}
		return nil, errors.New("expr: expected ',' or ')' in argument list")
	}
}

// ---- nodes ----

type literalNode struct {
	value any
}

func (n literalNode) eval(*scope) (any, error) { return n.value, nil }

type variableNode struct {
	name string
}

func (n variableNode) eval(s *scope) (any, error) { return s.lookup(n.name) }

type notNode struct {
	inner node
}

func (n notNode) eval(s *scope) (any, error) {
	value, err := n.inner.eval(s)
	if err != nil {
		return nil, err
	}
	return !truthy(value), nil
}

type negateNode struct {
	inner node
}

func (n negateNode) eval(s *scope) (any, error) {
	value, err := n.inner.eval(s)
	if err != nil {
		return nil, err
	}
	num, ok := toNumber(value)
	if !ok {
		return nil, fmt.Errorf("expr: cannot negate %T", value)
	}
	return -num, nil
}

type logicNode struct {
	op          tokenKind
	left, right node
}

func (n logicNode) eval(s *scope) (any, error) {
	left, err := n.left.eval(s)
	if err != nil {
		return nil, err
	}
	if n.op == tokenOr && truthy(left) {
		return true, nil
	}
	if n.op == tokenAnd && !truthy(left) {
		return false, nil
	}
	right, err := n.right.eval(s)
	if err != nil {
		return nil, err
	}
	return truthy(right), nil
}

type compareNode struct {
	op          tokenKind
	left, right node
}

func (n compareNode) eval(s *scope) (any, error) {
	left, err := n.left.eval(s)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(s)
	if err != nil {
		return nil, err
	}

	if ln, lok := toNumber(left); lok {
		if rn, rok := toNumber(right); rok {
			return compareNumbers(n.op, ln, rn)
		}
	}

	ls, rs := toString(left), toString(right)
	switch n.op {
	case tokenEq:
		return ls == rs, nil
	case tokenNeq:
		return ls != rs, nil
	case tokenLt:
		return ls < rs, nil
	case tokenLte:
		return ls <= rs, nil
	case tokenGt:
		return ls > rs, nil
	case tokenGte:
		return ls >= rs, nil
	default:
		return nil, fmt.Errorf("expr: unsupported comparison")
	}
}

func compareNumbers(op tokenKind, left, right float64) (any, error) {
	switch op {
	case tokenEq:
		return left == right, nil
	case tokenNeq:
		return left != right, nil
	case tokenLt:
		return left < right, nil
	case tokenLte:
		return left <= right, nil
	case tokenGt:
		return left > right, nil
	case tokenGte:
		return left >= right, nil
	default:
		return nil, fmt.Errorf("expr: unsupported comparison")
	}
}

type arithmeticNode struct {
	op          tokenKind
	left, right node
}

func (n arithmeticNode) eval(s *scope) (any, error) {
	left, err := n.left.eval(s)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(s)
	if err != nil {
		return nil, err
	}

	// '+' concatenates when either side is a non-numeric string, matching the
	// loose semantics formulas written for the browser original rely on.
	if n.op == tokenPlus {
		_, lok := toNumber(left)
		_, rok := toNumber(right)
		if !lok || !rok {
			return toString(left) + toString(right), nil
		}
	}

	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if !lok || !rok {
		return nil, fmt.Errorf("expr: arithmetic on non-numeric value")
	}

	switch n.op {
	case tokenPlus:
		return ln + rn, nil
	case tokenMinus:
		return ln - rn, nil
	case tokenStar:
		return ln * rn, nil
	case tokenSlash:
		if rn == 0 {
			return nil, errors.New("expr: division by zero")
		}
		return ln / rn, nil
	case tokenPercent:
		if rn == 0 {
			return nil, errors.New("expr: division by zero")
		}
		return float64(int64(ln) % int64(rn)), nil
	default:
		return nil, fmt.Errorf("expr: unsupported operator")
	}
}

type callNode struct {
	name string
	args []node
}

func (n callNode) eval(s *scope) (any, error) {
	fn, ok := s.funcs[n.name]
	if !ok {
		return nil, fmt.Errorf("expr: unknown function %q", n.name)
	}
	args := make([]any, len(n.args))
	for i, arg := range n.args {
		value, err := arg.eval(s)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}
	return fn(args)
}
