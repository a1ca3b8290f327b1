package main

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/expr"
)

type rootFlags struct {
	config  string
	format  string
	prec    int
	pow     bool
	echo    bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "expr [flags] <expression> [name=value ...]",
		Short: "Evaluate an arithmetic expression",
		Long: `expr evaluates an arithmetic expression of numbers, variables, + - * /,
unary signs, and parentheses. Variables are given as name=value arguments
after the expression or in the vars section of a configuration file.

An expression beginning with a minus sign must follow "--".

Examples:
  expr '(x + 1) * y' x=2 y=3
  expr --pow -p 256 '2^0.5'
  expr -c expr.yaml -- '-x / 2'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "YAML configuration file")
	f.StringVar(&flags.format, "fmt", "%g", "result formatting string")
	f.IntVarP(&flags.prec, "prec", "p", 0, "precision of calculations in bits (0 for float64)")
	f.BoolVar(&flags.pow, "pow", false, "allow ^ for exponentiation")
	f.BoolVar(&flags.echo, "echo", false, "print the parenthesized expression before the result")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "log parsing at debug level")
	return cmd
}

func run(cmd *cobra.Command, flags *rootFlags, args []string) error {
	cfg := DefaultConfig()
	if flags.config != "" {
		var err error
		cfg, err = LoadConfig(flags.config)
		if err != nil {
			return err
		}
	}
	f := cmd.Flags()
	if f.Changed("fmt") {
		cfg.Format = flags.format
	}
	if f.Changed("prec") {
		cfg.Precision = flags.prec
	}
	if f.Changed("pow") {
		cfg.Exponents = flags.pow
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer := newLogger(cmd.ErrOrStderr(), cfg.Log, flags.verbose)
	defer closer.Close()

	vars := make(map[string]float64, len(cfg.Vars)+len(args)-1)
	for name, v := range cfg.Vars {
		vars[name] = v
	}
	for _, arg := range args[1:] {
		name, v, err := parseAssign(arg)
		if err != nil {
			return err
		}
		vars[name] = v
	}

	var opts []expr.ParseOption
	if cfg.Exponents {
		opts = append(opts, expr.Exponents())
	}
	if flags.verbose {
		opts = append(opts, expr.Trace(log))
	}
	a, err := expr.ParseString(args[0], opts...)
	if err != nil {
		return &expr.Error{Phase: expr.PhaseParse, Err: err}
	}
	log.Debug("parsed", "expr", a.String(), "vars", a.Vars())

	out := cmd.OutOrStdout()
	if flags.echo {
		fmt.Fprintf(out, "%v : ", a)
	}
	verb := cfg.Format + "\n"
	if cfg.Precision == 0 {
		r, err := a.Eval(vars)
		if err != nil {
			return &expr.Error{Phase: expr.PhaseEval, Err: err}
		}
		fmt.Fprintf(out, verb, r)
		return nil
	}
	ctx := expr.NewContext(expr.Prec(uint(cfg.Precision)))
	for name, v := range vars {
		ctx.Set(name, new(big.Float).SetFloat64(v))
	}
	r := ctx.Eval(a)
	if r == nil {
		return &expr.Error{Phase: expr.PhaseEval, Err: ctx.Err()}
	}
	fmt.Fprintf(out, verb, r)
	return nil
}

// parseAssign parses a name=value variable definition.
func parseAssign(s string) (string, float64, error) {
	name, val, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, errors.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	name = strings.TrimSpace(name)
	toks, err := expr.Tokens(name)
	if err != nil || len(toks) != 1 || toks[0].Kind != expr.TokenIdent || toks[0].Text != name {
		return "", 0, errors.Errorf("%q is not a variable name", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, errors.Wrapf(err, "setting %s", name)
	}
	if math.IsNaN(v) {
		return "", 0, errors.Errorf("setting %s: NaN is not a value", name)
	}
	return name, v, nil
}
