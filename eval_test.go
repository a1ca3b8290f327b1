package expr_test

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/zephyrtronium/expr"
)

func TestEval(t *testing.T) {
	vars := map[string]float64{"x": 12}
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"num", "10", 10},
		{"add", "10 + 10", 20},
		{"addvar", "10 + x", 22},
		{"mulvar", "x * 10", 120},
		{"sub", "10 - 10", 0},
		{"mul", "10 * 10", 100},
		{"div", "10 / 10", 1},
		{"prec", "10 + 2 * 3", 16},
		{"parens", "(10 + 2) * 3", 36},
		{"parensvar", "(10-x)*3", -6},
		{"leftassoc", "10 - 2 - 3", 5},
		{"leftassocdiv", "8 / 2 / 2", 2},
		{"divneg", "2 / -4", -0.5},
		{"subneg", "x--3", 15},
		{"subplus", "x-+3", 9},
		{"neg", "-x", -12},
		{"plus", "+x", 12},
		{"negparen", "-(x - 2)", -10},
		{"decimal", "0.5 + 0.25", 0.75},
		{"trailingdot", "13. * 2", 26},
		{"zeros", "00012.5", 12.5},
		{"spaces", " \t1\n+\r\n2 ", 3},
		{"unknownrune", "10 $ 5", 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := expr.EvalString(c.src, vars)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if r != c.r {
				t.Errorf("wrong result from %q: want %g, got %g", c.src, c.r, r)
			}
		})
	}
}

func TestEvalReuse(t *testing.T) {
	a, err := expr.ParseString("x*x - 2*x + 1")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		x := float64(i)
		r, err := a.Eval(map[string]float64{"x": x})
		if err != nil {
			t.Fatalf("x=%g: %v", x, err)
		}
		if want := (x - 1) * (x - 1); r != want {
			t.Errorf("x=%g: want %g, got %g", x, want, r)
		}
	}
}

func TestEvalDivZero(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ok   func(float64) bool
	}{
		{"posinf", "1/0", func(r float64) bool { return math.IsInf(r, 1) }},
		{"neginf", "-1/0", func(r float64) bool { return math.IsInf(r, -1) }},
		{"negzero", "1/-0", func(r float64) bool { return math.IsInf(r, -1) }},
		{"nan", "0/0", math.IsNaN},
		{"infsub", "1/0 - 1/0", math.IsNaN},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := expr.EvalString(c.src, nil)
			if err != nil {
				t.Fatalf("%q gave error: %v", c.src, err)
			}
			if !c.ok(r) {
				t.Errorf("%q gave wrong result %g", c.src, r)
			}
		})
	}
}

func TestEvalExponents(t *testing.T) {
	cases := []struct {
		src string
		r   float64
	}{
		{"2^3", 8},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"2^-1", 0.5},
		{"(-2)^2", 4},
		{"2*3^2", 18},
		{"x^0.5", 4},
	}
	vars := map[string]float64{"x": 16}
	for _, c := range cases {
		r, err := expr.EvalString(c.src, vars, expr.Exponents())
		if err != nil {
			t.Errorf("%q failed: %v", c.src, err)
			continue
		}
		if r != c.r {
			t.Errorf("wrong result from %q: want %g, got %g", c.src, c.r, r)
		}
	}
}

func TestEvalUndefNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars map[string]float64
		r    string
	}{
		{"x", "x", nil, "x"},
		{"neg", "-x", nil, "x"},
		{"add-lhs", "x+1", nil, "x"},
		{"add-rhs", "1+x", nil, "x"},
		{"sub-lhs", "x-1", nil, "x"},
		{"sub-rhs", "1-x", nil, "x"},
		{"mul-lhs", "x*1", nil, "x"},
		{"mul-rhs", "1*x", nil, "x"},
		{"div-lhs", "x/1", nil, "x"},
		{"div-rhs", "1/x", nil, "x"},
		{"second", "10 + x + y", map[string]float64{"x": 12}, "y"},
		{"leftfirst", "a * b", nil, "a"},
	}
	ure := regexp.MustCompile(`(?i)\bundef`)
	vre := regexp.MustCompile(`(?i)\bvar`)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := expr.EvalString(c.src, c.vars)
			if err == nil {
				t.Fatalf("evaluating %q gave no error and result %g", c.src, r)
			}
			if r != 0 {
				t.Errorf("evaluating %q gave nonzero result %g", c.src, r)
			}
			var e *expr.Error
			if !errors.As(err, &e) || e.Phase != expr.PhaseEval {
				t.Errorf("error was %#v, not an eval Error", err)
			}
			var u *expr.NameError
			if !errors.As(err, &u) {
				t.Fatalf("error was %#v, not NameError", err)
			}
			if u.Name != c.r {
				t.Errorf("NameError on %q, want %q", u.Name, c.r)
			}
			msg := err.Error()
			if !strings.HasPrefix(msg, "eval error: ") {
				t.Errorf("%q doesn't name the eval phase", msg)
			}
			if !ure.MatchString(msg) {
				t.Errorf(`%q doesn't mention "undef"`, msg)
			}
			if !vre.MatchString(msg) {
				t.Errorf(`%q doesn't mention "var"`, msg)
			}
			if !regexp.MustCompile(`\b` + c.r + `\b`).MatchString(msg) {
				t.Errorf(`%q doesn't mention %q`, msg, c.r)
			}
		})
	}
}

func TestEvalParseErrors(t *testing.T) {
	vars := map[string]float64{"x": 12}
	cases := []struct {
		name string
		src  string
		rule string
		tok  expr.TokenKind
	}{
		{"operand", "10 + ", "factor", expr.TokenNone},
		{"unclosed", "(10 + x", "factor", expr.TokenNone},
		{"extraclose", "((10 + x) * 2))", "expr", expr.TokenClose},
		{"terms", "x y", "expr", expr.TokenIdent},
		{"leadingclose", ")10 + x", "factor", expr.TokenClose},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := expr.EvalString(c.src, vars)
			var e *expr.Error
			if !errors.As(err, &e) || e.Phase != expr.PhaseParse {
				t.Fatalf("error was %#v, not a parse Error", err)
			}
			if !strings.HasPrefix(err.Error(), "parse error: ") {
				t.Errorf("%q doesn't name the parse phase", err.Error())
			}
			var pe expr.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error was %#v, not ParseError", err)
			}
			if pe.RuleName() != c.rule {
				t.Errorf("wrong rule: want %q, got %q", c.rule, pe.RuleName())
			}
			if c.tok == expr.TokenNone {
				var eof *expr.UnexpectedEOFError
				if !errors.As(err, &eof) {
					t.Errorf("error was %#v, not UnexpectedEOFError", err)
				}
				return
			}
			var te *expr.UnexpectedTokenError
			if !errors.As(err, &te) {
				t.Fatalf("error was %#v, not UnexpectedTokenError", err)
			}
			if te.Token.Kind != c.tok {
				t.Errorf("wrong token: want %v, got %v", c.tok, te.Token)
			}
		})
	}
	t.Run("ident", func(t *testing.T) {
		_, err := expr.EvalString("x y", vars)
		var te *expr.UnexpectedTokenError
		if !errors.As(err, &te) {
			t.Fatalf("error was %#v, not UnexpectedTokenError", err)
		}
		if te.Token.Text != "y" {
			t.Errorf("wrong token: want y, got %v", te.Token)
		}
	})
	t.Run("lex", func(t *testing.T) {
		_, err := expr.EvalString("1.2.3 + x", vars)
		var e *expr.Error
		if !errors.As(err, &e) || e.Phase != expr.PhaseParse {
			t.Fatalf("error was %#v, not a parse Error", err)
		}
		var le *expr.LexError
		if !errors.As(err, &le) {
			t.Errorf("error was %#v, not LexError", err)
		}
	})
}

func TestEvalPure(t *testing.T) {
	vars := map[string]float64{"x": 12, "y": -0.5}
	cases := []string{"x * y / 3 - 7", "x / 0", "0 / 0 * x", "z + 1", "(x +", "x y"}
	for _, src := range cases {
		r1, err1 := expr.EvalString(src, vars)
		r2, err2 := expr.EvalString(src, vars)
		if r1 != r2 && !(math.IsNaN(r1) && math.IsNaN(r2)) {
			t.Errorf("%q gave different results %g and %g", src, r1, r2)
		}
		if !reflect.DeepEqual(err1, err2) {
			t.Errorf("%q gave different errors %#v and %#v", src, err1, err2)
		}
	}
}

func TestEvalConcurrent(t *testing.T) {
	a, err := expr.ParseString("(x + 1) * (x - 1) / 2")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := float64(i)
			for k := 0; k < 100; k++ {
				r, err := a.Eval(map[string]float64{"x": x})
				if err != nil {
					errs[i] = err
					return
				}
				if want := (x + 1) * (x - 1) / 2; r != want {
					errs[i] = fmt.Errorf("x=%g: want %g, got %g", x, want, r)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestContextEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars map[string]float64
		r    float64
	}{
		{"num", "1", nil, 1},
		{"ident", "x", map[string]float64{"x": 4}, 4},
		{"neg", "-x", map[string]float64{"x": 4}, -4},
		{"add", "4+5+6", nil, 4 + 5 + 6},
		{"sub", "4-5-6", nil, 4 - 5 - 6},
		{"mul", "4*5*6", nil, 4 * 5 * 6},
		{"div", "4/5/6", nil, 4.0 / 5.0 / 6.0},
		{"trailingdot", "13.*2", nil, 26},
		{"unary", "x--3", map[string]float64{"x": 12}, 15},
		{"divzero", "1/0", nil, math.Inf(1)},
		{"negdivzero", "-1/0", nil, math.Inf(-1)},
	}
	ctx := expr.NewContext(expr.Prec(53))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := expr.ParseString(c.src)
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			ctx := ctx.Clone()
			for k, v := range c.vars {
				ctx.Set(k, big.NewFloat(v))
			}
			r := ctx.Eval(a)
			if ctx.Err() != nil {
				t.Fatal("evaluation error:", ctx.Err())
			}
			if r == nil {
				t.Fatal("nil result")
			}
			if q := ctx.Result(); r.Cmp(q) != 0 {
				t.Errorf("different results: Eval returned %g, Result returned %g", r, q)
			}
			if f, _ := r.Float64(); f != c.r {
				t.Errorf("wrong result: want %g, got %g", c.r, r)
			}
		})
	}
}

func TestContextPrec(t *testing.T) {
	a, err := expr.ParseString("1/3")
	if err != nil {
		t.Fatal(err)
	}
	ctx := expr.NewContext(expr.Prec(256))
	r := ctx.Eval(a)
	if r == nil {
		t.Fatal(ctx.Err())
	}
	if r.Prec() != 256 {
		t.Errorf("wrong precision: want 256, got %d", r.Prec())
	}
	want := new(big.Float).SetPrec(256).Quo(big.NewFloat(1).SetPrec(256), big.NewFloat(3).SetPrec(256))
	if r.Cmp(want) != 0 {
		t.Errorf("wrong result: want %.70g, got %.70g", want, r)
	}
	// float64 can't represent 0.1 exactly, but the literal is parsed at the
	// context's precision.
	b, err := expr.ParseString("0.1")
	if err != nil {
		t.Fatal(err)
	}
	r = ctx.Eval(b)
	if r == nil {
		t.Fatal(ctx.Err())
	}
	if f := new(big.Float).SetPrec(256).SetFloat64(0.1); r.Cmp(f) == 0 {
		t.Errorf("0.1 was parsed at float64 precision")
	}
}

func TestContextPow(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"int", "2^10", 1024},
		{"zeroexp", "2^0", 1},
		{"zerozero", "0^0", 1},
		{"varzeroexp", "x^0", 1},
		{"frac", "4^0.5", 2},
		{"zerobase", "0^3", 0},
		{"negzero", "(-0)^2", 0},
		{"negvarzero", "(-x)^3", 0},
		{"negzerozero", "(-x)^0", 1},
		{"nested", "2^(0-0)^2", 1},
	}
	ctx := expr.NewContext(expr.Prec(64), expr.SetVar("x", new(big.Float)))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := expr.ParseString(c.src, expr.Exponents())
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			r := ctx.Eval(a)
			if r == nil {
				t.Fatalf("%q failed: %v", c.src, ctx.Err())
			}
			if f, _ := r.Float64(); math.Abs(f-c.want) > 1e-9 {
				t.Errorf("%q: want %g, got %g", c.src, c.want, r)
			}
			// Agree with float64 evaluation.
			if f, err := a.Eval(map[string]float64{"x": 0}); err != nil || math.Abs(f-c.want) > 1e-9 {
				t.Errorf("%q: float64 gives %g with error %v", c.src, f, err)
			}
		})
	}
}

func TestContextErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
	}{
		{"name", "x + 1", new(expr.NameError)},
		{"zerozero", "0/0", expr.DomainError{}},
		{"infinf", "(1/0)/(1/0)", expr.DomainError{}},
		{"infsub", "1/0 - 1/0", expr.DomainError{}},
		{"infadd", "1/0 + -1/0", expr.DomainError{}},
		{"zeroinf", "0 * (1/0)", expr.DomainError{}},
		{"negpow", "(0-2)^0.5", expr.DomainError{}},
		{"zeronegpow", "0^-1", expr.DomainError{}},
		{"infpow", "(1/0)^2", expr.DomainError{}},
		{"powinf", "2^(1/0)", expr.DomainError{}},
	}
	ctx := expr.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := expr.ParseString(c.src, expr.Exponents())
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			if r := ctx.Eval(a); r != nil {
				t.Errorf("%q gave non-nil result %g", c.src, r)
			}
			if reflect.TypeOf(ctx.Err()) != reflect.TypeOf(c.err) {
				t.Errorf("wrong error type from %q: want %T, got %#v", c.src, c.err, ctx.Err())
			}
		})
	}
	// The context is still usable after errors.
	a, err := expr.ParseString("2+2")
	if err != nil {
		t.Fatal(err)
	}
	if r := ctx.Eval(a); r == nil || r.Cmp(big.NewFloat(4)) != 0 {
		t.Errorf("2+2 after errors gave %v with error %v", r, ctx.Err())
	}
}

func TestContextVars(t *testing.T) {
	ctx := expr.NewContext(expr.SetVar("x", big.NewFloat(2)), expr.SetVars(map[string]*big.Float{"y": big.NewFloat(3)}))
	if v := ctx.Lookup("x"); v == nil || v.Cmp(big.NewFloat(2)) != 0 {
		t.Errorf("wrong x: %v", v)
	}
	if v := ctx.Lookup("z"); v != nil {
		t.Errorf("z has value %v", v)
	}
	a, err := expr.ParseString("x*y")
	if err != nil {
		t.Fatal(err)
	}
	if r := ctx.Eval(a); r == nil || r.Cmp(big.NewFloat(6)) != 0 {
		t.Errorf("x*y gave %v with error %v", r, ctx.Err())
	}
	c := ctx.Clone(expr.SetVar("x", big.NewFloat(10)))
	if r := c.Eval(a); r == nil || r.Cmp(big.NewFloat(30)) != 0 {
		t.Errorf("x*y in clone gave %v with error %v", r, c.Err())
	}
	if v := ctx.Lookup("x"); v.Cmp(big.NewFloat(2)) != 0 {
		t.Errorf("clone modified original x to %v", v)
	}
}

func BenchmarkEval(b *testing.B) {
	vars := map[string]float64{"x": 2, "y": 3, "z": 4}
	b.Run("simple", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			expr.EvalString("3+3*5/(3*3)", nil)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		a, err := expr.ParseString("x+y*z")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			a.Eval(vars)
		}
	})
	b.Run("big", func(b *testing.B) {
		b.ReportAllocs()
		ctx := expr.NewContext(expr.Prec(64))
		a, err := expr.ParseString("2+3+4")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Clone().Eval(a)
		}
	})
}

func Example() {
	fx, _ := expr.ParseString("x*x*x/2 - x")
	dfx, _ := expr.ParseString("3*x*x/2 - 1")
	for i := 0; i < 4; i++ {
		vars := map[string]float64{"x": float64(i)}
		y, _ := fx.Eval(vars)
		yp, _ := dfx.Eval(vars)
		fmt.Printf("x = %d   y = %-4g  y' = %g\n", i, y, yp)
	}

	// Output:
	// x = 0   y = 0     y' = -1
	// x = 1   y = -0.5  y' = 0.5
	// x = 2   y = 2     y' = 5
	// x = 3   y = 10.5  y' = 12.5
}

func ExampleEvalString() {
	vars := map[string]float64{"x": 12}
	fmt.Println(expr.EvalString("10 + 2 * 3", nil))
	fmt.Println(expr.EvalString("x--3", vars))
	fmt.Println(expr.EvalString("10 + x + y", vars))
	fmt.Println(expr.EvalString("10 + ", vars))

	// Output:
	// 16 <nil>
	// 15 <nil>
	// 0 eval error: undefined variable: "y"
	// 0 parse error: 6: unexpected end of input in factor, expected number, variable, or '('
}
