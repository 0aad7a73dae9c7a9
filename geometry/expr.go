package geometry

import (
	"math"
	"strconv"
	"strings"
)

// Eval evaluates a symbolic coordinate expression in pixel space.
//
// The keywords CANVAS_WIDTH_PX and CANVAS_HEIGHT_PX are replaced by the canvas
// size and "center" by half of axisLen. After substitution only digits,
// whitespace, '.', '+', '-', '*', '/', '(' and ')' may remain. Anything else,
// a malformed expression, a division by zero or a non-finite result yields 0.
func Eval(expr string, axisLen, canvasWidth, canvasHeight float64) float64 {
	r := strings.NewReplacer(
		"CANVAS_WIDTH_PX", formatNum(canvasWidth),
		"CANVAS_HEIGHT_PX", formatNum(canvasHeight),
		"center", formatNum(axisLen/2),
	)
	src := r.Replace(strings.TrimSpace(expr))
	if src == "" || !allowed(src) {
		return 0
	}
	p := &exprParser{src: src}
	v, ok := p.parseSum()
	if !ok {
		return 0
	}
	p.skipSpace()
	if p.pos != len(p.src) || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatNum(v float64) string {
	// parenthesised so a negative substitution cannot merge with a preceding operator
	return "(" + strconv.FormatFloat(v, 'f', -1, 64) + ")"
}

func allowed(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ', r == '\t', r == '.', r == '+', r == '-', r == '*', r == '/', r == '(', r == ')':
		default:
			return false
		}
	}
	return true
}

// exprParser is a recursive-descent parser over
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary }
//	unary   = [ "-" | "+" ] primary
//	primary = number | "(" sum ")"
type exprParser struct {
	src   string
	pos   int
	depth int
}

const maxExprDepth = 32

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) parseSum() (float64, bool) {
	left, ok := p.parseProduct()
	if !ok {
		return 0, false
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, ok := p.parseProduct()
			if !ok {
				return 0, false
			}
			left += right
		case '-':
			p.pos++
			right, ok := p.parseProduct()
			if !ok {
				return 0, false
			}
			left -= right
		default:
			return left, true
		}
	}
}

func (p *exprParser) parseProduct() (float64, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return 0, false
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, ok := p.parseUnary()
			if !ok {
				return 0, false
			}
			left *= right
		case '/':
			p.pos++
			right, ok := p.parseUnary()
			if !ok || right == 0 {
				return 0, false
			}
			left /= right
		default:
			return left, true
		}
	}
}

func (p *exprParser) parseUnary() (float64, bool) {
	sign := 1.0
	for c := p.peek(); c == '-' || c == '+'; c = p.peek() {
		if c == '-' {
			sign = -sign
		}
		p.pos++
	}
	v, ok := p.parsePrimary()
	return sign * v, ok
}

func (p *exprParser) parsePrimary() (float64, bool) {
	if p.peek() == '(' {
		p.depth++
		if p.depth > maxExprDepth {
			return 0, false
		}
		p.pos++
		v, ok := p.parseSum()
		if !ok || p.peek() != ')' {
			return 0, false
		}
		p.pos++
		p.depth--
		return v, true
	}
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
