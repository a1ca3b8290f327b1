// Command expr evaluates arithmetic expressions.
//
// Usage:
//
//	expr [flags] <expression> [name=value ...]
//
// The result is printed with the format given by --fmt. With --prec greater
// than zero, the expression is evaluated to that many bits of precision.
// Settings may also come from a YAML file given with --config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
