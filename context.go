package expr

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Context evaluates expressions to arbitrary precision. It is not safe to
// use a Context concurrently.
type Context struct {
	prec uint
	vars map[string]*big.Float
	// lits caches literal values by their source text.
	lits map[string]*big.Float
	// regs holds one scratch value per tree depth. Evaluating a node at depth
	// d writes its value to regs[d] and uses only regs[d:].
	regs []*big.Float
	res  *big.Float
	err  error
	busy bool
}

// ContextOption configures a context.
type ContextOption func(*ctxconf)

type ctxconf struct {
	prec uint
	vars map[string]*big.Float
}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return func(c *ctxconf) { c.vars[name] = val }
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return func(c *ctxconf) {
		for name, val := range vars {
			c.vars[name] = val
		}
	}
}

// Prec sets the precision of calculations in bits. Variables are rounded to
// the precision regardless of the order of options.
func Prec(prec uint) ContextOption {
	return func(c *ctxconf) { c.prec = prec }
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: 64}
	return ctx.Clone(opts...)
}

// Clone creates a copy of ctx with opts applied. The copy has its own
// variables, so Set on one does not affect the other.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	conf := ctxconf{prec: ctx.prec, vars: make(map[string]*big.Float)}
	for _, opt := range opts {
		if opt != nil {
			opt(&conf)
		}
	}
	n := Context{
		prec: conf.prec,
		vars: make(map[string]*big.Float, len(ctx.vars)+len(conf.vars)),
		lits: make(map[string]*big.Float, len(ctx.lits)),
	}
	for name, val := range ctx.vars {
		n.vars[name] = n.round(val)
	}
	for name, val := range conf.vars {
		n.vars[name] = n.round(val)
	}
	if n.prec == ctx.prec {
		// Cached literals are never modified, so they can be shared.
		for text, val := range ctx.lits {
			n.lits[text] = val
		}
	}
	return &n
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a missing variable definition or a division 0/0, then the result is
// nil and ctx.Err returns the error. The result is overwritten by the next
// call to Eval.
//
// Unlike Expr.Eval, only a nonzero value divided by zero gives an infinity.
// Operations that would give NaN are DomainErrors, as are a negative base
// raised to any power and exponentiation involving an infinity.
func (ctx *Context) Eval(e *Expr) *big.Float {
	if ctx.busy {
		panic("expr: Eval during Eval")
	}
	ctx.busy = true
	defer func() { ctx.busy = false }()
	ctx.res, ctx.err = ctx.eval(e.n, 0)
	if ctx.err != nil {
		ctx.res = nil
	}
	return ctx.res
}

// Result returns the result of the last expression evaluated with ctx, or nil
// if it failed. Panics if ctx has not evaluated any expression.
func (ctx *Context) Result() *big.Float {
	if ctx.res == nil && ctx.err == nil {
		panic("expr: Context.Result called before evaluating any expression")
	}
	return ctx.res
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable, rounded to the context's precision.
// Returns ctx for chaining. Panics if called during Eval.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	if ctx.busy {
		panic("expr: Set during Eval")
	}
	if ctx.vars == nil {
		ctx.vars = make(map[string]*big.Float)
	}
	ctx.vars[name] = ctx.round(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	v := ctx.vars[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

func (ctx *Context) round(x *big.Float) *big.Float {
	return new(big.Float).SetPrec(ctx.prec).Set(x)
}

// reg returns the scratch value for depth d.
func (ctx *Context) reg(d int) *big.Float {
	for len(ctx.regs) <= d {
		ctx.regs = append(ctx.regs, new(big.Float).SetPrec(ctx.prec))
	}
	return ctx.regs[d]
}

// lit returns the value of a number node at the context's precision.
func (ctx *Context) lit(n *node) *big.Float {
	if v := ctx.lits[n.text]; v != nil {
		return v
	}
	v, _, err := new(big.Float).SetPrec(ctx.prec).Parse(n.text, 10)
	if err != nil {
		// Overflowing literals are infinities, which Parse rejects.
		v = new(big.Float).SetPrec(ctx.prec).SetFloat64(n.num)
	}
	if ctx.lits == nil {
		ctx.lits = make(map[string]*big.Float)
	}
	ctx.lits[n.text] = v
	return v
}

// eval computes the value of n into the register for depth d.
func (ctx *Context) eval(n *node, d int) (*big.Float, error) {
	z := ctx.reg(d)
	switch n.kind {
	case nodeNum:
		return z.Set(ctx.lit(n)), nil
	case nodeName:
		v := ctx.vars[n.text]
		if v == nil {
			return nil, &NameError{Name: n.text}
		}
		return z.Set(v), nil
	case nodeNeg:
		x, err := ctx.eval(n.left, d)
		if err != nil {
			return nil, err
		}
		return x.Neg(x), nil
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		l, err := ctx.eval(n.left, d)
		if err != nil {
			return nil, err
		}
		r, err := ctx.eval(n.right, d+1)
		if err != nil {
			return nil, err
		}
		if err := checkDomain(n.kind, l, r); err != nil {
			return nil, err
		}
		switch n.kind {
		case nodeAdd:
			z.Add(l, r)
		case nodeSub:
			z.Sub(l, r)
		case nodeMul:
			z.Mul(l, r)
		case nodeDiv:
			z.Quo(l, r)
		case nodePow:
			pow(z, l, r)
		}
		return z, nil
	default:
		panic("expr: invalid AST node " + n.kind.String())
	}
}

// checkDomain returns a DomainError if op is undefined on l and r. big.Float
// panics where float64 arithmetic would give NaN.
func checkDomain(op nodeKind, l, r *big.Float) error {
	bothinf := l.IsInf() && r.IsInf()
	switch op {
	case nodeAdd:
		if bothinf && l.Signbit() != r.Signbit() {
			return domerr(r, "+")
		}
	case nodeSub:
		if bothinf && l.Signbit() == r.Signbit() {
			return domerr(r, "-")
		}
	case nodeMul:
		if l.IsInf() && r.Sign() == 0 || l.Sign() == 0 && r.IsInf() {
			return domerr(r, "*")
		}
	case nodeDiv:
		if l.Sign() == 0 && r.Sign() == 0 || bothinf {
			return domerr(r, "/")
		}
	case nodePow:
		// bigfloat handles only finite, nonnegative bases and finite
		// exponents, and not 0^-y.
		switch {
		case l.Sign() < 0, l.IsInf():
			return domerr(l, "^")
		case r.IsInf(), l.Sign() == 0 && r.Sign() < 0:
			return domerr(r, "^")
		}
	}
	return nil
}

// pow sets z to x^y for x and y that pass checkDomain. bigfloat.Pow returns a
// new value for a zero exponent and rejects a zero base with its sign bit set.
func pow(z, x, y *big.Float) {
	switch {
	case y.Sign() == 0:
		z.SetInt64(1)
	case x.Sign() == 0:
		z.SetInt64(0)
	default:
		z.Set(bigfloat.Pow(z, x, y))
	}
}

// domerr copies x out of the registers into a DomainError.
func domerr(x *big.Float, op string) error {
	return DomainError{X: new(big.Float).Copy(x), Op: op}
}
