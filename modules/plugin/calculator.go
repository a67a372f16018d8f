package plugin

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

// Calculator answers arithmetic queries without touching any engine.
// Triggered by an "=" or "calc"/"calculate" prefix, or by a query that is
// nothing but arithmetic.
type Calculator struct{}

func (Calculator) Name() string        { return "calculator" }
func (Calculator) Description() string { return "Evaluates arithmetic expressions" }

var bareArithmeticRe = regexp.MustCompile(`^[0-9+\-*/^().\s]+$`)

// extractExpression strips the trigger prefix, or accepts the whole query
// when it is plainly arithmetic. Empty return means no match.
func (Calculator) extractExpression(query string) string {
	q := strings.TrimSpace(query)

	switch {
	case strings.HasPrefix(q, "="):
		return strings.TrimSpace(q[1:])
	case strings.HasPrefix(strings.ToLower(q), "calculate "):
		return strings.TrimSpace(q[len("calculate "):])
	case strings.HasPrefix(strings.ToLower(q), "calc "):
		return strings.TrimSpace(q[len("calc "):])
	}

	if bareArithmeticRe.MatchString(q) &&
		strings.ContainsAny(q, "0123456789") &&
		strings.ContainsAny(q, "+-*/^") {
		return q
	}
	return ""
}

func (c Calculator) PreSearch(q *search.Query) PreResult {
	expr := c.extractExpression(q.CleanQuery)
	if expr == "" {
		return Continue
	}

	value, err := evalExpression(expr)
	if err != nil {
		return Continue
	}

	return PreResult{
		Verdict: VerdictAnswer,
		Answer: &result.Answer{
			Text:   expr + " = " + formatNumber(value),
			Engine: "calculator",
		},
	}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// exprParser is a recursive descent evaluator over a small grammar:
// sums, products, right associative '^', unary minus, parentheses, the
// constants pi and e, and a handful of functions.
type exprParser struct {
	input []rune
	pos   int
}

func evalExpression(expr string) (float64, error) {
	p := &exprParser{input: []rune(expr)}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, errors.Errorf("unexpected %q at offset %d", string(p.input[p.pos]), p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	v, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, errors.New("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(v, exp), nil
	}
	return v, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	switch r := p.peek(); {
	case r == '(':
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return v, nil

	case r >= '0' && r <= '9' || r == '.':
		return p.parseNumber()

	case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		return p.parseIdent()

	default:
		return 0, errors.New("expected a number")
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if r >= '0' && r <= '9' || r == '.' {
			p.pos++
			continue
		}
		break
	}
	return strconv.ParseFloat(string(p.input[start:p.pos]), 64)
}

var exprFuncs = map[string]func(float64) float64{
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"log":  math.Log10,
	"ln":   math.Log,
}

func (p *exprParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	name := strings.ToLower(string(p.input[start:p.pos]))

	switch name {
	case "pi":
		return math.Pi, nil
	case "e":
		return math.E, nil
	}

	fn, ok := exprFuncs[name]
	if !ok {
		return 0, errors.Errorf("unknown identifier %q", name)
	}
	if p.peek() != '(' {
		return 0, errors.Errorf("%s expects an argument", name)
	}
	p.pos++
	arg, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	if p.peek() != ')' {
		return 0, errors.New("missing closing parenthesis")
	}
	p.pos++
	return fn(arg), nil
}
