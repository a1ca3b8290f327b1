package expr

import (
	"errors"
	"io"
	"slices"
	"strings"
)

// expr   = term { ('+' | '-') term }
// term   = factor { ('*' | '/') factor }
// factor = [ '-' | '+' ] primary
//        | [ '-' | '+' ] power         (with Exponents)
// power  = primary [ '^' factor ]
// primary = num | name | '(' expr ')'

// Expr is a parsed expression. An Expr is immutable, so it is safe to evaluate
// concurrently.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the sorted list of variable names used in the expression.
	names []string
}

// expectFactor describes the tokens that can begin a factor.
const expectFactor = "number, variable, or '('"

// parser parses a token stream by recursive descent with one token of
// lookahead.
type parser struct {
	scan *Tokenizer
	conf parseconf
	// tok is the lookahead token if have is true.
	tok  Token
	have bool
	// eof indicates the tokenizer is exhausted.
	eof bool
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
}

// Parse parses an expression so it can be evaluated. The given options are
// applied in order. The entire input must be a single expression, except that
// scanning stops silently at a rune that cannot begin a token.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	var conf parseconf
	for _, opt := range opts {
		conf = opt.parseOption(conf)
	}
	p := parser{
		scan:  NewTokenizer(src),
		conf:  conf,
		names: make(map[string]bool),
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	tok, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, &UnexpectedTokenError{Token: tok, Rule: "expr", Expected: "end of input"}
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	slices.Sort(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// peek returns the lookahead token without consuming it. ok is false at the
// end of the token stream.
func (p *parser) peek() (Token, bool, error) {
	if !p.have && !p.eof {
		tok, err := p.scan.Next()
		switch {
		case err == nil:
			p.tok, p.have = tok, true
		case errors.Is(err, io.EOF):
			p.eof = true
		default:
			return Token{}, false, err
		}
	}
	return p.tok, p.have, nil
}

// next consumes and returns the lookahead token.
func (p *parser) next() (tok Token, ok bool, err error) {
	tok, ok, err = p.peek()
	if ok {
		p.tok, p.have = Token{}, false
		if p.conf.log != nil {
			p.conf.log.Debug("read", "token", tok.Text, "kind", tok.Kind.String(), "pos", tok.Pos)
		}
	}
	return tok, ok, err
}

// eoferr creates an error for the end of input in a rule.
func (p *parser) eoferr(rule, expected string) error {
	return &UnexpectedEOFError{Rule: rule, Expected: expected, Col: p.scan.rune + 1}
}

// trace logs entry into a rule and returns a function to log leaving it.
func (p *parser) trace(rule string) func() {
	if p.conf.log == nil {
		return nop
	}
	p.conf.log.Debug("enter", "rule", rule)
	return func() { p.conf.log.Debug("leave", "rule", rule) }
}

func nop() {}

func (p *parser) expr() (*node, error) {
	defer p.trace("expr")()
	return p.chain(p.term, TokenPlus, TokenMinus)
}

func (p *parser) term() (*node, error) {
	defer p.trace("term")()
	return p.chain(p.factor, TokenStar, TokenSlash)
}

// chain parses a left-associative sequence of operands separated by either of
// two operators.
func (p *parser) chain(operand func() (*node, error), a, b TokenKind) (*node, error) {
	n, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !ok || (tok.Kind != a && tok.Kind != b) {
			return n, nil
		}
		p.next()
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		n = &node{kind: binops[tok.Kind], left: n, right: rhs}
	}
}

// factor parses at most one unary sign followed by a primary, or by a power
// when exponents are enabled.
func (p *parser) factor() (*node, error) {
	defer p.trace("factor")()
	tok, ok, err := p.peek()
	if err != nil {
		return nil, err
	}
	neg := false
	if ok && (tok.Kind == TokenMinus || tok.Kind == TokenPlus) {
		p.next()
		neg = tok.Kind == TokenMinus
	}
	var n *node
	if p.conf.pow {
		n, err = p.power()
	} else {
		n, err = p.primary()
	}
	if err != nil {
		return nil, err
	}
	if neg {
		n = &node{kind: nodeNeg, left: n}
	}
	return n, nil
}

// power parses a primary with an optional exponent. The exponent is a factor,
// which makes ^ right-associative and allows a signed exponent.
func (p *parser) power() (*node, error) {
	defer p.trace("power")()
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	tok, ok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !ok || tok.Kind != TokenCaret {
		return n, nil
	}
	p.next()
	rhs, err := p.factor()
	if err != nil {
		return nil, err
	}
	return &node{kind: nodePow, left: n, right: rhs}, nil
}

// primary parses a number, a variable, or a parenthesized expression. Errors
// are reported against the factor rule, which primary belongs to.
func (p *parser) primary() (*node, error) {
	tok, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.eoferr("factor", expectFactor)
	}
	switch tok.Kind {
	case TokenNum:
		return &node{kind: nodeNum, text: tok.Text, num: tok.Num}, nil
	case TokenIdent:
		p.names[tok.Text] = true
		return &node{kind: nodeName, text: tok.Text}, nil
	case TokenOpen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		end, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, p.eoferr("factor", "')'")
		}
		if end.Kind != TokenClose {
			return nil, &UnexpectedTokenError{Token: end, Rule: "factor", Expected: "')'"}
		}
		return n, nil
	default:
		return nil, &UnexpectedTokenError{Token: tok, Rule: "factor", Expected: expectFactor}
	}
}

// Vars returns the variable names used when evaluating the expression, in
// sorted order.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression with every
// subexpression in parentheses. Parsing the result gives an identical
// expression.
func (e *Expr) String() string {
	return e.n.String()
}
