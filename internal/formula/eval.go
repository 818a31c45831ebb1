package formula

import (
	"fmt"
	"math"
)

type evalState struct {
	vars    Resolver
	missing []string
}

func (st *evalState) resolve(name string) float64 {
	if st.vars != nil {
		if val, ok := st.vars.Resolve(name); ok {
			return val
		}
	}
	// Unbound variables default to zero; the caller sees the name in
	// EvalResult.Missing and decides how loud to be about it.
	st.missing = append(st.missing, name)
	return 0
}

type node interface {
	eval(st *evalState) (float64, error)
}

type numberNode struct{ value float64 }

func (n *numberNode) eval(*evalState) (float64, error) { return n.value, nil }

type varNode struct{ name string }

func (n *varNode) eval(st *evalState) (float64, error) { return st.resolve(n.name), nil }

type negateNode struct{ operand node }

func (n *negateNode) eval(st *evalState) (float64, error) {
	val, err := n.operand.eval(st)
	if err != nil {
		return 0, err
	}
	return -val, nil
}

type binaryNode struct {
	op          string
	left, right node
}

func (n *binaryNode) eval(st *evalState) (float64, error) {
	left, err := n.left.eval(st)
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval(st)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	}
	return 0, fmt.Errorf("%w: operator %q", ErrSyntax, n.op)
}

type compareNode struct {
	op          string
	left, right node
}

func (n *compareNode) eval(st *evalState) (float64, error) {
	left, err := n.left.eval(st)
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval(st)
	if err != nil {
		return 0, err
	}
	var ok bool
	switch n.op {
	case "<":
		ok = left < right
	case "<=":
		ok = left <= right
	case ">":
		ok = left > right
	case ">=":
		ok = left >= right
	case "=", "==":
		ok = left == right
	case "!=", "<>":
		ok = left != right
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

type builtin struct {
	minArgs   int
	maxArgs   int // 0 means unbounded
	arityHint string
	apply     func(st *evalState, args []node) (float64, error)
}

type callNode struct {
	name string
	fn   builtin
	args []node
}

func (n *callNode) eval(st *evalState) (float64, error) {
	return n.fn.apply(st, n.args)
}

func evalArgs(st *evalState, args []node) ([]float64, error) {
	vals := make([]float64, len(args))
	for i, arg := range args {
		val, err := arg.eval(st)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}
	return vals, nil
}

func numeric1(f func(float64) float64) func(*evalState, []node) (float64, error) {
	return func(st *evalState, args []node) (float64, error) {
		val, err := args[0].eval(st)
		if err != nil {
			return 0, err
		}
		return f(val), nil
	}
}

var builtins = map[string]builtin{
	"roundup":   {minArgs: 1, maxArgs: 1, arityHint: "1 argument", apply: numeric1(math.Ceil)},
	"rounddown": {minArgs: 1, maxArgs: 1, arityHint: "1 argument", apply: numeric1(math.Floor)},
	"round":     {minArgs: 1, maxArgs: 1, arityHint: "1 argument", apply: numeric1(math.Round)},
	"max": {minArgs: 1, arityHint: "at least 1 argument", apply: func(st *evalState, args []node) (float64, error) {
		vals, err := evalArgs(st, args)
		if err != nil {
			return 0, err
		}
		best := vals[0]
		for _, v := range vals[1:] {
			if v > best {
				best = v
			}
		}
		return best, nil
	}},
	"min": {minArgs: 1, arityHint: "at least 1 argument", apply: func(st *evalState, args []node) (float64, error) {
		vals, err := evalArgs(st, args)
		if err != nil {
			return 0, err
		}
		best := vals[0]
		for _, v := range vals[1:] {
			if v < best {
				best = v
			}
		}
		return best, nil
	}},
	// IF evaluates only the taken branch so guards like
	// IF([x]=0, 0, [total]/[x]) never divide by zero.
	"if": {minArgs: 3, maxArgs: 3, arityHint: "3 arguments", apply: func(st *evalState, args []node) (float64, error) {
		cond, err := args[0].eval(st)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return args[1].eval(st)
		}
		return args[2].eval(st)
	}},
}

func walk(n node, visit func(node)) {
	visit(n)
	switch t := n.(type) {
	case *negateNode:
		walk(t.operand, visit)
	case *binaryNode:
		walk(t.left, visit)
		walk(t.right, visit)
	case *compareNode:
		walk(t.left, visit)
		walk(t.right, visit)
	case *callNode:
		for _, arg := range t.args {
			walk(arg, visit)
		}
	}
}
