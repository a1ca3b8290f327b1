// Package expr evaluates arithmetic expressions over float64 values.
//
// Expressions use the four binary operators + - * / with the usual precedence
// and left associativity, at most one unary sign per operand, parentheses,
// number literals like 12 or 0.5, and variables like x or rate_2. So
// "x--3" is "x - (-3)", while "--x" is an error. The Exponents parse option
// adds right-associative "^".
//
// Parse an expression once and evaluate it with many variable maps, or use
// EvalString to do both at once. A Context evaluates the same expressions to
// arbitrary precision.
//
package expr
