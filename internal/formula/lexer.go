package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokVariable
	tokName
	tokOp
	tokCompare
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '[':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ']' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated variable reference at offset %d", ErrSyntax, i)
			}
			name := strings.TrimSpace(string(runes[i+1 : end]))
			if name == "" {
				return nil, fmt.Errorf("%w: empty variable reference at offset %d", ErrSyntax, i)
			}
			toks = append(toks, token{kind: tokVariable, text: name, pos: i})
			i = end + 1

		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at offset %d", ErrSyntax, text, start)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num, pos: start})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokName, text: string(runes[start:i]), pos: start})

		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++

		case r == '+' || r == '-' || r == '*' || r == '/':
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++

		case r == '<' || r == '>' || r == '=' || r == '!':
			start := i
			i++
			if i < len(runes) && (runes[i] == '=' || (r == '<' && runes[i] == '>')) {
				i++
			}
			op := string(runes[start:i])
			switch op {
			case "<", "<=", ">", ">=", "=", "==", "!=", "<>":
				toks = append(toks, token{kind: tokCompare, text: op, pos: start})
			default:
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, op, start)
			}

		default:
			return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, string(r), i)
		}
	}
	return toks, nil
}
