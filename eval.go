package expr

import (
	"io"
	"math"
	"strings"
)

// Eval evaluates the expression with the given variable values. If the
// expression uses a variable that is not in vars, the result is a *NameError.
// A nil vars is the same as an empty map.
//
// Arithmetic follows IEEE-754 double precision. In particular, dividing by
// zero gives an infinity or NaN rather than an error.
func (e *Expr) Eval(vars map[string]float64) (float64, error) {
	return e.n.eval(vars)
}

// eval computes the node's value. Operands are evaluated left to right, and
// the first error aborts the evaluation.
func (n *node) eval(vars map[string]float64) (float64, error) {
	switch n.kind {
	case nodeNum:
		return n.num, nil
	case nodeName:
		v, ok := vars[n.text]
		if !ok {
			return 0, &NameError{Name: n.text}
		}
		return v, nil
	case nodeNeg:
		v, err := n.left.eval(vars)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		l, err := n.left.eval(vars)
		if err != nil {
			return 0, err
		}
		r, err := n.right.eval(vars)
		if err != nil {
			return 0, err
		}
		switch n.kind {
		case nodeAdd:
			return l + r, nil
		case nodeSub:
			return l - r, nil
		case nodeMul:
			return l * r, nil
		case nodeDiv:
			return l / r, nil
		default:
			return math.Pow(l, r), nil
		}
	default:
		panic("expr: invalid AST node " + n.kind.String())
	}
}

// Eval is a shortcut to parse an expression and evaluate it with the given
// variables. Errors are returned as *Error, which distinguishes parsing from
// evaluation.
func Eval(src io.RuneScanner, vars map[string]float64, opts ...ParseOption) (float64, error) {
	a, err := Parse(src, opts...)
	if err != nil {
		return 0, &Error{Phase: PhaseParse, Err: err}
	}
	r, err := a.Eval(vars)
	if err != nil {
		return 0, &Error{Phase: PhaseEval, Err: err}
	}
	return r, nil
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, vars map[string]float64, opts ...ParseOption) (float64, error) {
	return Eval(strings.NewReader(src), vars, opts...)
}
