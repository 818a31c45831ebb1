package formula

import (
	"fmt"
	"strings"
)

// Grammar, lowest to highest precedence:
//
//	expr    := sum (compareOp sum)?
//	sum     := product (('+' | '-') product)*
//	product := unary (('*' | '/') unary)*
//	unary   := '-' unary | primary
//	primary := NUMBER | '[' name ']' | NAME '(' expr (',' expr)* ')' | '(' expr ')'
//
// Binary operators are left associative. A comparison yields 1 or 0 and is
// primarily used inside IF conditions.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.atEnd() {
		return token{pos: -1, text: "end of formula"}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.atEnd() || p.toks[p.pos].kind != kind {
		return token{}, fmt.Errorf("%w: expected %s, got %q", ErrSyntax, what, p.peek().text)
	}
	return p.next(), nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() && p.peek().kind == tokCompare {
		op := p.next().text
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &compareNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for !p.atEnd() && p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for !p.atEnd() && p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if !p.atEnd() && p.peek().kind == tokOp && p.peek().text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negateNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	switch t := p.peek(); t.kind {
	case tokNumber:
		p.next()
		return &numberNode{value: t.num}, nil

	case tokVariable:
		p.next()
		return &varNode{name: t.text}, nil

	case tokName:
		p.next()
		name := strings.ToLower(t.text)
		fn, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, t.text)
		}
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		var args []node
		if !p.atEnd() && p.peek().kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.atEnd() || p.peek().kind != tokComma {
					break
				}
				p.next()
			}
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		if len(args) < fn.minArgs || (fn.maxArgs > 0 && len(args) > fn.maxArgs) {
			return nil, fmt.Errorf("%w: %s takes %s, got %d", ErrBadArity, strings.ToUpper(name), fn.arityHint, len(args))
		}
		return &callNode{name: name, fn: fn, args: args}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, t.text)
	}
}
