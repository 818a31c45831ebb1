// Package formula implements the estimating formula language: arithmetic
// expressions with bracketed variable references ([net_length]), comparison
// operators, and a fixed set of spreadsheet-style functions (ROUNDUP,
// ROUNDDOWN, ROUND, MAX, MIN, IF). Formulas are data authored by estimators;
// they are parsed and evaluated by this package only and never handed to a
// general-purpose interpreter.
package formula

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFormula    = errors.New("empty_formula")
	ErrSyntax          = errors.New("syntax_error")
	ErrUnknownFunction = errors.New("unknown_function")
	ErrBadArity        = errors.New("bad_arity")
	ErrDivisionByZero  = errors.New("division_by_zero")
)

// Resolver supplies variable values during evaluation. A false second return
// means the variable is not bound; the evaluator substitutes zero and records
// the name in EvalResult.Missing.
type Resolver interface {
	Resolve(name string) (float64, bool)
}

// Vars is a map-backed Resolver for ad-hoc evaluation.
type Vars map[string]float64

func (v Vars) Resolve(name string) (float64, bool) {
	val, ok := v[name]
	return val, ok
}

// Expr is a parsed, reusable formula. Parsing is separated from evaluation so
// templates can be compiled once and evaluated per line item.
type Expr struct {
	text string
	root node
}

// Text returns the original formula source.
func (e *Expr) Text() string { return e.text }

// Variables returns the distinct variable names referenced by the formula,
// in first-occurrence order.
func (e *Expr) Variables() []string {
	seen := map[string]bool{}
	var names []string
	walk(e.root, func(n node) {
		if v, ok := n.(*varNode); ok && !seen[v.name] {
			seen[v.name] = true
			names = append(names, v.name)
		}
	})
	return names
}

// EvalResult carries the numeric value plus the names of any variables that
// were unbound and defaulted to zero. Callers decide whether a missing
// variable is a diagnostic or a hard error.
type EvalResult struct {
	Value   float64
	Missing []string
}

// Eval evaluates the expression against vars. It is deterministic and
// side-effect free: the same vars always produce the same result.
func (e *Expr) Eval(vars Resolver) (EvalResult, error) {
	st := &evalState{vars: vars}
	val, err := e.root.eval(st)
	if err != nil {
		return EvalResult{}, err
	}
	return EvalResult{Value: val, Missing: st.missing}, nil
}

// Parse compiles formula text into an Expr.
func Parse(text string) (*Expr, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, ErrEmptyFormula
	}
	p := &parser{toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, p.peek().text, p.peek().pos)
	}
	return &Expr{text: text, root: root}, nil
}

// Evaluate parses and evaluates in one step.
func Evaluate(text string, vars Resolver) (EvalResult, error) {
	expr, err := Parse(text)
	if err != nil {
		return EvalResult{}, err
	}
	return expr.Eval(vars)
}
