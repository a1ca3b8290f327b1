package expr

import (
	"math/big"
	"strconv"
)

// LexError indicates a token that could not be scanned. It implements
// InputError.
type LexError struct {
	// Text is the text of the token the tokenizer was scanning.
	Text string
	// Kind is the type of token the tokenizer was scanning. Currently this is
	// always "number".
	Kind string
	// Col is the total number of runes scanned by the tokenizer up to and
	// including the end of the invalid token.
	Col int
}

func (err *LexError) Error() string {
	return errpos(err.Col, "invalid "+err.Kind+" token "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}

// UnexpectedEOFError is a parse error indicating that the input ended while a
// grammar rule still required a token.
type UnexpectedEOFError struct {
	// Rule is the name of the grammar rule being parsed.
	Rule string
	// Expected describes what the rule needed.
	Expected string
	// Col is the position just past the end of the input.
	Col int
}

func (err *UnexpectedEOFError) Error() string {
	return errpos(err.Col, "unexpected end of input in "+err.Rule+", expected "+err.Expected)
}

func (err *UnexpectedEOFError) Pos() int {
	return err.Col
}

func (err *UnexpectedEOFError) RuleName() string {
	return err.Rule
}

// UnexpectedTokenError is a parse error indicating a token that the grammar
// rule being parsed does not accept.
type UnexpectedTokenError struct {
	// Token is the token that was found.
	Token Token
	// Rule is the name of the grammar rule being parsed.
	Rule string
	// Expected describes what the rule needed.
	Expected string
}

func (err *UnexpectedTokenError) Error() string {
	return errpos(err.Token.Pos, "unexpected token "+strconv.Quote(err.Token.Text)+" in "+err.Rule+", expected "+err.Expected)
}

func (err *UnexpectedTokenError) Pos() int {
	return err.Token.Pos
}

func (err *UnexpectedTokenError) RuleName() string {
	return err.Rule
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation variables.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// DomainError is an error returned by arbitrary-precision evaluation when an
// operation has no finite or infinite result, e.g. 0/0.
type DomainError struct {
	// X is the out-of-domain operand.
	X *big.Float
	// Op is the operator.
	Op string
}

func (err DomainError) Error() string {
	return err.X.String() + " outside domain of " + err.Op
}

// Phase is the stage of evaluation at which an Error occurred.
type Phase int8

const (
	PhaseParse Phase = iota
	PhaseEval
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseEval:
		return "eval"
	default:
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Error is an error from Eval or EvalString. It unwraps to the error from
// parsing or evaluating.
type Error struct {
	// Phase is the stage that failed.
	Phase Phase
	// Err is the underlying error. When Phase is PhaseParse, it is an
	// InputError or an error from reading the input. When Phase is PhaseEval,
	// it is a *NameError.
	Err error
}

func (err *Error) Error() string {
	return err.Phase.String() + " error: " + err.Err.Error()
}

func (err *Error) Unwrap() error {
	return err.Err
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

// ParseError is an InputError from a grammar rule.
type ParseError interface {
	InputError
	// RuleName returns the name of the grammar rule which failed, either
	// "expr" or "factor".
	RuleName() string
}

var (
	_ InputError = (*LexError)(nil)
	_ ParseError = (*UnexpectedEOFError)(nil)
	_ ParseError = (*UnexpectedTokenError)(nil)
)
