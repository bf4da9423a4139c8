// Package formula implements the constrained arithmetic language used by
// posting templates to derive line amounts from a single input amount.
//
// A formula is one of:
//
//	""                                          passthrough
//	amount                                      passthrough
//	amount <op> constant                        op in + - * /
//	constant                                    fixed amount
//	amount <cmp> constant ? <expr> : <expr>     threshold rule
//
// The single free variable is the case-insensitive token "amount" and every
// constant is a non-negative decimal literal. Results are rounded half-up to
// two decimal places. Anything outside this grammar is a domain.FormulaError.
package formula

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
)

// Scale is the fixed output scale of every evaluation.
const Scale = domain.MoneyScale

// node is one evaluable expression of the tagged AST.
type node interface {
	eval(amount decimal.Decimal) (decimal.Decimal, error)
}

// passthrough returns the input amount unchanged.
type passthrough struct{}

func (passthrough) eval(amount decimal.Decimal) (decimal.Decimal, error) {
	return amount, nil
}

// literal returns a constant, ignoring the input amount.
type literal struct {
	value decimal.Decimal
}

func (n literal) eval(decimal.Decimal) (decimal.Decimal, error) {
	return n.value, nil
}

// binary applies one arithmetic operator to the amount and a constant.
type binary struct {
	op      string
	operand decimal.Decimal
}

func (n binary) eval(amount decimal.Decimal) (decimal.Decimal, error) {
	switch n.op {
	case "+":
		return amount.Add(n.operand), nil
	case "-":
		return amount.Sub(n.operand), nil
	case "*":
		return amount.Mul(n.operand), nil
	case "/":
		if n.operand.IsZero() {
			return decimal.Zero, domain.ErrDivisionByZero
		}

		return amount.Div(n.operand), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown operator %q", n.op)
	}
}

// conditional is a single threshold comparison selecting one of two branches.
type conditional struct {
	cmp       string
	threshold decimal.Decimal
	then      node
	otherwise node
}

func (n conditional) eval(amount decimal.Decimal) (decimal.Decimal, error) {
	var holds bool

	switch n.cmp {
	case "<":
		holds = amount.LessThan(n.threshold)
	case "<=":
		holds = amount.LessThanOrEqual(n.threshold)
	case ">":
		holds = amount.GreaterThan(n.threshold)
	case ">=":
		holds = amount.GreaterThanOrEqual(n.threshold)
	case "==":
		holds = amount.Equal(n.threshold)
	default:
		return decimal.Zero, fmt.Errorf("unknown comparison %q", n.cmp)
	}

	if holds {
		return n.then.eval(amount)
	}

	return n.otherwise.eval(amount)
}

// Evaluate parses and evaluates formula against amount, rounding the result
// half-up to Scale.
func Evaluate(formula string, amount decimal.Decimal) (decimal.Decimal, error) {
	n, err := parse(formula)
	if err != nil {
		return decimal.Zero, &domain.FormulaError{Formula: formula, Cause: err}
	}

	result, err := n.eval(amount)
	if err != nil {
		return decimal.Zero, &domain.FormulaError{Formula: formula, Cause: err}
	}

	return result.Round(Scale), nil
}

// sampleAmount is the representative amount Validate dry-runs against.
var sampleAmount = decimal.NewFromInt(1_000_000)

// Validate parses formula and dry-evaluates it against a sample amount,
// returning human-readable problems instead of an error. Intended for
// template authoring, never for the execution path.
func Validate(formula string) []string {
	n, err := parse(formula)
	if err != nil {
		return []string{fmt.Sprintf("formula %q: %v", formula, err)}
	}

	if _, err := n.eval(sampleAmount); err != nil {
		return []string{fmt.Sprintf("formula %q: %v", formula, err)}
	}

	return nil
}

var (
	errEmptyBranch   = errors.New("empty ternary branch")
	errTrailingInput = errors.New("unexpected trailing input")
)

// parse builds the AST for a complete formula, including the optional single
// ternary at the top level.
func parse(formula string) (node, error) {
	toks, err := tokenize(formula)
	if err != nil {
		return nil, err
	}

	if len(toks) == 0 {
		return passthrough{}, nil
	}

	p := &parser{toks: toks}

	if p.peekIsCondition() {
		return p.parseConditional()
	}

	n, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	if !p.done() {
		return nil, errTrailingInput
	}

	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) next() (token, bool) {
	if p.done() {
		return token{}, false
	}

	t := p.toks[p.pos]
	p.pos++

	return t, true
}

func (p *parser) peek(offset int) (token, bool) {
	if p.pos+offset >= len(p.toks) {
		return token{}, false
	}

	return p.toks[p.pos+offset], true
}

// peekIsCondition looks ahead for "amount <cmp> ..." at the current position.
func (p *parser) peekIsCondition() bool {
	first, ok1 := p.peek(0)
	second, ok2 := p.peek(1)

	return ok1 && ok2 && first.kind == tokAmount && second.kind == tokCompare
}

// parseSimple parses forms (a)-(d): passthrough, amount-op-constant, and a
// bare constant.
func (p *parser) parseSimple() (node, error) {
	t, ok := p.next()
	if !ok {
		return nil, errEmptyBranch
	}

	switch t.kind {
	case tokNumber:
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("bad constant %q", t.text)
		}

		return literal{value: v}, nil

	case tokAmount:
		op, ok := p.peek(0)
		if !ok || op.kind != tokOperator {
			return passthrough{}, nil
		}
		p.pos++

		c, ok := p.next()
		if !ok || c.kind != tokNumber {
			return nil, fmt.Errorf("operator %q must be followed by a constant", op.text)
		}

		v, err := decimal.NewFromString(c.text)
		if err != nil {
			return nil, fmt.Errorf("bad constant %q", c.text)
		}

		return binary{op: op.text, operand: v}, nil

	default:
		return nil, fmt.Errorf("unexpected token %q", t.text)
	}
}

// parseConditional parses "amount <cmp> constant ? simple : simple".
func (p *parser) parseConditional() (node, error) {
	p.pos++ // amount

	cmp, _ := p.next()

	c, ok := p.next()
	if !ok || c.kind != tokNumber {
		return nil, fmt.Errorf("comparison %q must be followed by a constant", cmp.text)
	}

	threshold, err := decimal.NewFromString(c.text)
	if err != nil {
		return nil, fmt.Errorf("bad constant %q", c.text)
	}

	q, ok := p.next()
	if !ok || q.kind != tokQuestion {
		return nil, errors.New("expected '?' after comparison")
	}

	then, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	colon, ok := p.next()
	if !ok || colon.kind != tokColon {
		return nil, errors.New("expected ':' in ternary")
	}

	otherwise, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	if !p.done() {
		return nil, errTrailingInput
	}

	return conditional{cmp: cmp.text, threshold: threshold, then: then, otherwise: otherwise}, nil
}

type tokenKind int

const (
	tokAmount tokenKind = iota
	tokNumber
	tokOperator
	tokCompare
	tokQuestion
	tokColon
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(input string) ([]token, error) {
	var toks []token

	s := strings.TrimSpace(input)
	i := 0

	for i < len(s) {
		c := s[i]

		switch {
		case c == ' ' || c == '\t':
			i++

		case c == '+' || c == '*' || c == '/' || c == '-':
			toks = append(toks, token{kind: tokOperator, text: string(c)})
			i++

		case c == '<' || c == '>':
			text := string(c)
			if i+1 < len(s) && s[i+1] == '=' {
				text += "="
				i++
			}
			toks = append(toks, token{kind: tokCompare, text: text})
			i++

		case c == '=':
			if i+1 >= len(s) || s[i+1] != '=' {
				return nil, errors.New("single '=' is not a valid comparison")
			}
			toks = append(toks, token{kind: tokCompare, text: "=="})
			i += 2

		case c == '?':
			toks = append(toks, token{kind: tokQuestion, text: "?"})
			i++

		case c == ':':
			toks = append(toks, token{kind: tokColon, text: ":"})
			i++

		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: s[start:i]})

		case unicode.IsLetter(rune(c)):
			start := i
			for i < len(s) && unicode.IsLetter(rune(s[i])) {
				i++
			}

			word := s[start:i]
			if !strings.EqualFold(word, "amount") {
				return nil, fmt.Errorf("unknown identifier %q", word)
			}
			toks = append(toks, token{kind: tokAmount, text: "amount"})

		default:
			return nil, fmt.Errorf("unexpected character %q", string(c))
		}
	}

	return toks, nil
}
