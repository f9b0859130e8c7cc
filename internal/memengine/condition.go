package memengine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// condition is a compiled `when:` expression. Identifiers are variable clean
// names; values are the serialized parameters of the current execution.
//
// Supported forms:
//   - truthiness: `Has-Pet`
//   - comparisons: `Has-Pet == true`, `Tenant-Count >= 2`, `Plan != "basic"`
//   - composition: `a && !b`, `(a || b) && c`
type condition interface {
	eval(values map[string]string) (bool, error)
}

func compileCondition(rule string) (condition, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("memengine: condition: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenCompare
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isOperator(ch byte) bool {
	switch ch {
	case '(', ')', '!', '=', '&', '|', '<', '>':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}

		two := ""
		if i+1 < len(input) {
			two = input[i : i+2]
		}
		switch {
		case two == "==" || two == "!=" || two == "<=" || two == ">=":
			tokens = append(tokens, token{kind: tokenCompare, raw: two})
			i += 2
			continue
		case two == "&&":
			tokens = append(tokens, token{kind: tokenAnd, raw: two})
			i += 2
			continue
		case two == "||":
			tokens = append(tokens, token{kind: tokenOr, raw: two})
			i += 2
			continue
		}

		switch ch {
		case '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case '!':
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case '<', '>':
			tokens = append(tokens, token{kind: tokenCompare, raw: string(ch)})
			i++
		case '=', '&', '|':
			return nil, fmt.Errorf("memengine: condition: unexpected %q", ch)
		case '"', '\'':
			end := strings.IndexByte(input[i+1:], ch)
			if end < 0 {
				return nil, errors.New("memengine: condition: unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokenString, raw: input[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			for i < len(input) && !isSpace(input[i]) && !isOperator(input[i]) {
				i++
			}
			raw := input[start:i]
			switch lower := strings.ToLower(raw); {
			case lower == "true" || lower == "false":
				tokens = append(tokens, token{kind: tokenBool, raw: lower})
			case looksLikeNumber(raw):
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			default:
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		}
	}
	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" || !strings.ContainsRune("0123456789-+.", rune(raw[0])) {
		return false
	}
	_, _, err := apd.NewFromString(raw)
	return err == nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) next() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, true
}

func parseOr(stream *tokenStream) (condition, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (condition, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (condition, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("memengine: condition: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.next()
	if !ok {
		return nil, errors.New("memengine: condition: empty expression")
	}
	if ident.kind != tokenIdentifier {
		return nil, fmt.Errorf("memengine: condition: expected variable, got %q", ident.raw)
	}
	if stream.pos < len(stream.tokens) && stream.tokens[stream.pos].kind == tokenCompare {
		op, _ := stream.next()
		lit, ok := stream.next()
		if !ok {
			return nil, errors.New("memengine: condition: missing literal")
		}
		switch lit.kind {
		case tokenString, tokenNumber, tokenBool, tokenIdentifier:
		default:
			return nil, fmt.Errorf("memengine: condition: expected literal, got %q", lit.raw)
		}
		return compareNode{name: ident.raw, op: op.raw, literal: lit}, nil
	}
	return truthyNode{name: ident.raw}, nil
}

type orNode struct{ left, right condition }

func (n orNode) eval(values map[string]string) (bool, error) {
	ok, err := n.left.eval(values)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(values)
}

type andNode struct{ left, right condition }

func (n andNode) eval(values map[string]string) (bool, error) {
	ok, err := n.left.eval(values)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(values)
}

type notNode struct{ inner condition }

func (n notNode) eval(values map[string]string) (bool, error) {
	ok, err := n.inner.eval(values)
	return !ok, err
}

type truthyNode struct{ name string }

func (n truthyNode) eval(values map[string]string) (bool, error) {
	raw := strings.TrimSpace(values[n.name])
	if parsed, err := strconv.ParseBool(raw); err == nil {
		return parsed, nil
	}
	return raw != "", nil
}

type compareNode struct {
	name    string
	op      string
	literal token
}

func (n compareNode) eval(values map[string]string) (bool, error) {
	got := strings.TrimSpace(values[n.name])

	var cmp int
	switch n.literal.kind {
	case tokenNumber:
		if got == "" {
			return n.op == "!=", nil
		}
		left, _, err := apd.NewFromString(got)
		if err != nil {
			return n.op == "!=", nil
		}
		right, _, err := apd.NewFromString(n.literal.raw)
		if err != nil {
			return false, fmt.Errorf("memengine: condition: invalid number %q", n.literal.raw)
		}
		cmp = left.Cmp(right)
	case tokenBool:
		parsed, _ := strconv.ParseBool(got)
		cmp = strings.Compare(strconv.FormatBool(parsed), n.literal.raw)
	default:
		cmp = strings.Compare(got, n.literal.raw)
	}

	switch n.op {
	case "==":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("memengine: condition: unsupported operator %q", n.op)
	}
}
