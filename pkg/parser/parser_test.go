package parser

import (
	"math"
	"testing"

	"github.com/charithe/formula/pkg/numeral"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newTestParser(t *testing.T, opts ...Option) *Parser {
	t.Helper()
	return New(nil, append([]Option{WithLogger(zap.NewNop())}, opts...)...)
}

func TestEndToEnd(t *testing.T) {
	t.Run("precedence", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.SetExpr("2+2*2"))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 6.0, have)
	})

	t.Run("rebindWithoutRecompile", func(t *testing.T) {
		p := newTestParser(t)
		a, err := p.NewVar("a", 3)
		require.NoError(t, err)
		_, err = p.NewVar("b", 7)
		require.NoError(t, err)

		require.NoError(t, p.SetExpr("a>b?a:b"))
		prog, err := p.Program()
		require.NoError(t, err)

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 7.0, have)

		p.Arena().Set(a, 9)
		have, err = p.Eval()
		require.NoError(t, err)
		require.Equal(t, 9.0, have)

		again, err := p.Program()
		require.NoError(t, err)
		require.True(t, prog == again)
	})

	t.Run("aggregate", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.SetExpr("sum(1;2;3;4)"))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 10.0, have)

		require.NoError(t, p.SetExpr("sum()"))
		_, err = p.Eval()
		require.Error(t, err)
		require.Equal(t, ErrTooFewArgs, CodeOf(err))
		require.True(t, IsEvalError(err))
	})

	t.Run("localeNumeral", func(t *testing.T) {
		german := numeral.C.WithSeparators(',', '.')
		n, v, ok := numeral.ReadString("1.234,5", german)
		require.True(t, ok)
		require.Equal(t, 7, n)
		require.Equal(t, 1234.5, v)

		p := newTestParser(t, WithLocale(german))
		require.NoError(t, p.SetExpr("1.234,5 + max(1,5; 2)"))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 1236.5, have)
	})

	t.Run("fusedPower", func(t *testing.T) {
		p := newTestParser(t)
		x, err := p.NewVar("x", 5)
		require.NoError(t, err)

		require.NoError(t, p.SetExpr("x^2"))
		prog, err := p.Program()
		require.NoError(t, err)
		require.Equal(t, []Instr{VarPow{Var: x, N: 2}, End{}}, prog.Code)

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 25.0, have)

		p.EnableOptimizer(false)
		prog, err = p.Program()
		require.NoError(t, err)
		require.Equal(t, []Instr{Load{Var: x}, Value{V: 2}, Binary{Op: OpPow}, End{}}, prog.Code)

		have, err = p.Eval()
		require.NoError(t, err)
		require.Equal(t, 25.0, have)
	})

	t.Run("unknownFunction", func(t *testing.T) {
		p := newTestParser(t)
		err := p.SetExpr("unknownFunc(1)")
		require.Error(t, err)
		require.Equal(t, ErrUnknownFunction, CodeOf(err))
		require.True(t, IsCompileError(err))

		e, ok := err.(*Error)
		require.True(t, ok)
		require.Equal(t, "unknownFunc", e.Token)
		require.Equal(t, 0, e.Pos)
		require.Equal(t, "unknownFunc(1)", e.Formula)
		require.Equal(t, Semantic, e.Category())
	})
}

func TestEval(t *testing.T) {
	testCases := []struct {
		name      string
		formula   string
		wantValue float64
	}{
		{name: "leftAssociative", formula: "10-2-3", wantValue: 5},
		{name: "rightAssociativePow", formula: "2^3^2", wantValue: 512},
		{name: "parentheses", formula: "(2+3)*4", wantValue: 20},
		{name: "unaryMinus", formula: "-2^2", wantValue: -4},
		{name: "signAfterOperator", formula: "2*-3", wantValue: -6},
		{name: "unaryPlus", formula: "+4", wantValue: 4},
		{name: "logicalAnd", formula: "1<2 && 3>2", wantValue: 1},
		{name: "logicalOr", formula: "0 || 0", wantValue: 0},
		{name: "logicalAndFraction", formula: "0.5 && 1", wantValue: 1},
		{name: "logicalOrFraction", formula: "0 || 0.25", wantValue: 1},
		{name: "logicalAndFractionVars", formula: "a && b", wantValue: 1},
		{name: "equality", formula: "0.1+0.2 == 0.3", wantValue: 1},
		{name: "inequality", formula: "1 != 1", wantValue: 0},
		{name: "conditionalFalse", formula: "1 > 2 ? 10 : 20", wantValue: 20},
		{name: "conditionalElseExpression", formula: "0 ? 1 : 2 + 3", wantValue: 5},
		{name: "nestedConditional", formula: "1 ? 0 ? 1 : 2 : 3", wantValue: 2},
		{name: "conditionalInSum", formula: "(1 ? 4 : 5) + 1", wantValue: 5},
		{name: "constant", formula: "_pi", wantValue: math.Pi},
		{name: "functions", formula: "sqrt(16) + abs(-2) + sign(-3)", wantValue: 5},
		{name: "twoArgs", formula: "fmod(7; 4)", wantValue: 3},
		{name: "nestedCalls", formula: "max(min(3; 4); avg(1; 2; 3))", wantValue: 3},
		{name: "degrees", formula: "sinD(90)", wantValue: 1},
		{name: "r2cm", formula: "r2cm(1.26)", wantValue: 1.3},
		{name: "csrZeroLength", formula: "csrCm(0; 1; 1)", wantValue: 0},
		{name: "csrZeroSplit", formula: "csrInch(1; 0; 1)", wantValue: 0},
		{name: "csrZeroArc", formula: "csrCm(1; 1; 0)", wantValue: 0},
		{name: "exponentLiteral", formula: "1.5e3 / 3", wantValue: 500},
		{name: "whitespace", formula: " \t1 +\n 1 ", wantValue: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestParser(t)
			_, err := p.NewVar("a", 0.5)
			require.NoError(t, err)
			_, err = p.NewVar("b", 0.75)
			require.NoError(t, err)
			require.NoError(t, p.SetExpr(tc.formula))

			have, err := p.Eval()
			require.NoError(t, err)
			require.InDelta(t, tc.wantValue, have, 1e-12)
		})
	}
}

func TestEvalMulti(t *testing.T) {
	p := newTestParser(t)
	a, err := p.NewVar("a", 2)
	require.NoError(t, err)

	require.NoError(t, p.SetExpr("a*2; a+1; sum(a; 3)"))
	require.Equal(t, 3, p.NumResults())

	have, err := p.EvalMulti()
	require.NoError(t, err)
	require.Equal(t, []float64{4, 3, 5}, have)

	prog, err := p.Program()
	require.NoError(t, err)
	require.Equal(t, 4, prog.MaxStack)

	p.Arena().Set(a, 1)
	last, err := p.Eval()
	require.NoError(t, err)
	require.Equal(t, 4.0, last)

	t.Run("subexpressionsDisabled", func(t *testing.T) {
		p := newTestParser(t, AllowSubexpressions(false))
		err := p.SetExpr("1;2")
		require.Equal(t, ErrUnexpectedArgSep, CodeOf(err))

		require.NoError(t, p.SetExpr("sum(1;2)"))
	})
}

func TestSyntaxErrors(t *testing.T) {
	testCases := []struct {
		name     string
		formula  string
		wantCode Code
		wantPos  int
	}{
		{name: "danglingOperator", formula: "2*", wantCode: ErrUnexpectedEOF, wantPos: 2},
		{name: "extraParens", formula: "2*)))", wantCode: ErrUnexpectedParens, wantPos: 2},
		{name: "missingParens", formula: "(1", wantCode: ErrMissingParens, wantPos: 2},
		{name: "unbalancedClose", formula: "1)", wantCode: ErrUnexpectedParens, wantPos: 1},
		{name: "twoValues", formula: "1 2", wantCode: ErrUnexpectedVal, wantPos: 2},
		{name: "leadingOperator", formula: "*2", wantCode: ErrUnexpectedOperator, wantPos: 0},
		{name: "empty", formula: "", wantCode: ErrEmptyExpression, wantPos: 0},
		{name: "blank", formula: "   ", wantCode: ErrEmptyExpression, wantPos: 0},
		{name: "missingElse", formula: "1 ? 2", wantCode: ErrMissingElseClause, wantPos: 5},
		{name: "colonWithoutIf", formula: "1 : 2", wantCode: ErrMisplacedColon, wantPos: 2},
		{name: "unknownName", formula: "x + 1", wantCode: ErrUnassignableToken, wantPos: 0},
		{name: "unterminatedString", formula: `strlen("abc`, wantCode: ErrUnterminatedString, wantPos: 7},
		{name: "tooFewParams", formula: "atan2(1)", wantCode: ErrTooFewParams, wantPos: 0},
		{name: "tooManyParams", formula: "atan2(1;2;3)", wantCode: ErrTooManyParams, wantPos: 0},
		{name: "missingArgs", formula: "sin()", wantCode: ErrTooFewParams, wantPos: 0},
		{name: "argsOutsideFunction", formula: "(1;2)", wantCode: ErrUnexpectedArg, wantPos: 4},
		{name: "assignToValue", formula: "1 = 2", wantCode: ErrUnexpectedOperator, wantPos: 2},
		{name: "stringResult", formula: `"abc"`, wantCode: ErrStrResult, wantPos: 5},
		{name: "stringOperand", formula: `"abc" + 1`, wantCode: ErrOprtTypeConflict, wantPos: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestParser(t)
			require.NoError(t, p.DefineStrFun("strlen", 0, func(s string, _ []float64) (float64, error) {
				return float64(len(s)), nil
			}))

			err := p.SetExpr(tc.formula)
			require.Error(t, err)
			require.True(t, IsCompileError(err))

			e, ok := err.(*Error)
			require.True(t, ok)
			require.Equal(t, tc.wantCode, e.Code)
			require.Equal(t, tc.wantPos, e.Pos)
			require.Equal(t, tc.formula, e.Formula)

			// a failed compile leaves nothing to evaluate
			_, err = p.Eval()
			require.Equal(t, tc.wantCode, CodeOf(err))
		})
	}
}

func TestResultChecks(t *testing.T) {
	testCases := []struct {
		name     string
		formula  string
		opts     []Option
		wantCode Code
	}{
		{name: "divideByZero", formula: "1/0", wantCode: ErrResultInf},
		{name: "zeroByZero", formula: "0/0", wantCode: ErrResultNaN},
		{name: "divideByZeroUnoptimized", formula: "1/0", opts: []Option{Optimizer(false)}, wantCode: ErrResultInf},
		{name: "sqrtOfNegative", formula: "sqrt(-1)", wantCode: ErrResultNaN},
		{name: "logOfZero", formula: "ln(0)", wantCode: ErrResultInf},
		{name: "domainError", formula: "ln(0)", opts: []Option{MathExceptions(true)}, wantCode: ErrDomain},
		{name: "divideByZeroRuntime", formula: "1/(2-2)", opts: []Option{MathExceptions(true), Optimizer(false)}, wantCode: ErrDivByZero},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestParser(t, tc.opts...)
			require.NoError(t, p.SetExpr(tc.formula))

			have, err := p.Eval()
			require.Error(t, err)
			require.Equal(t, tc.wantCode, CodeOf(err))
			require.True(t, IsEvalError(err))
			require.Equal(t, 0.0, have)
		})
	}

	t.Run("foldedDivideByZero", func(t *testing.T) {
		p := newTestParser(t, MathExceptions(true))
		err := p.SetExpr("1/0")
		require.Equal(t, ErrDivByZero, CodeOf(err))
	})

	t.Run("tinyDivisorIndependentOfOptimizer", func(t *testing.T) {
		var have []float64
		for _, optimize := range []bool{true, false} {
			p := newTestParser(t, MathExceptions(true), Optimizer(optimize))
			require.NoError(t, p.SetExpr("1/1e-13"))

			v, err := p.Eval()
			require.NoError(t, err)
			have = append(have, v)
		}

		require.Equal(t, have[0], have[1])
		require.InDelta(t, 1e13, have[0], 1)
	})

	t.Run("offendingValue", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.SetExpr("-1/0"))

		_, err := p.Eval()
		e, ok := err.(*Error)
		require.True(t, ok)
		require.True(t, math.IsInf(e.Value, -1))
	})

	t.Run("multiChecksEveryResult", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.SetExpr("1/0; 1"))

		_, err := p.EvalMulti()
		require.Equal(t, ErrResultInf, CodeOf(err))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 1.0, have)
	})
}

func TestVariables(t *testing.T) {
	t.Run("assignment", func(t *testing.T) {
		p := newTestParser(t)
		a, err := p.NewVar("a", 1)
		require.NoError(t, err)
		_, err = p.NewVar("b", 4)
		require.NoError(t, err)

		require.NoError(t, p.SetExpr("a = b * 2 + 1"))
		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 9.0, have)
		require.Equal(t, 9.0, p.Arena().Get(a))
	})

	t.Run("usedVars", func(t *testing.T) {
		p := newTestParser(t)
		a, err := p.NewVar("a", 1)
		require.NoError(t, err)
		_, err = p.NewVar("b", 2)
		require.NoError(t, err)

		require.NoError(t, p.SetExpr("a * 3"))
		require.Equal(t, map[string]Var{"a": a}, p.UsedVars())
	})

	t.Run("factory", func(t *testing.T) {
		arena := NewArena()
		p := New(arena, WithLogger(zap.NewNop()), WithVarFactory(ZeroFactory))
		require.NoError(t, p.SetExpr("x + y * 2"))
		require.Equal(t, 2, arena.Len())

		used := p.UsedVars()
		require.Len(t, used, 2)
		arena.Set(used["x"], 1)
		arena.Set(used["y"], 3)

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 7.0, have)
		require.Contains(t, p.Vars(), "x")
	})

	t.Run("ignoreUndefined", func(t *testing.T) {
		p := newTestParser(t, IgnoreUndefined(true))
		require.NoError(t, p.SetExpr("missing + 1"))
		require.Equal(t, map[string]Var{"missing": NoVar}, p.UsedVars())

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 1.0, have)
	})

	t.Run("lazyRecompile", func(t *testing.T) {
		p := newTestParser(t)
		require.Error(t, p.SetExpr("x * 2"))

		_, err := p.NewVar("x", 3)
		require.NoError(t, err)

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 6.0, have)

		require.NoError(t, p.DefineConst("k", 5))
		require.NoError(t, p.SetExpr("x * k"))
		require.NoError(t, p.DefineConst("k", 10))

		have, err = p.Eval()
		require.NoError(t, err)
		require.Equal(t, 30.0, have)

		p.RemoveVar("x")
		_, err = p.Eval()
		require.Equal(t, ErrUnassignableToken, CodeOf(err))
	})

	t.Run("foreignHandle", func(t *testing.T) {
		p := newTestParser(t)
		other := NewArena()
		other.New("a", 1)
		other.New("b", 2)

		err := p.DefineVar("b", Var(1))
		require.Equal(t, ErrInvalidVarPtr, CodeOf(err))

		require.NoError(t, p.DefineVar("b", p.Arena().New("b", 2)))
	})
}

func TestDefinitions(t *testing.T) {
	square := func(v float64) float64 { return v * v }

	t.Run("userFunctions", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.DefineFun1("square", square))
		require.NoError(t, p.DefineFun2("hyp", math.Hypot))
		require.NoError(t, p.DefineFun3("clamp", func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(v, hi)) }))
		require.NoError(t, p.DefineFun("answer", 0, func([]float64) (float64, error) { return 42, nil }))
		require.NoError(t, p.DefineMultiFun("count", func(args []float64) (float64, error) { return float64(len(args)), nil }))

		require.NoError(t, p.SetExpr("square(3) + hyp(3; 4) + clamp(12; 0; 10) + answer() + count(1; 1; 1)"))
		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 9.0+5+10+42+3, have)
	})

	t.Run("operators", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.DefineOprt("%", math.Mod, PrecMulDiv, AssocLeft))
		require.NoError(t, p.DefinePostfixOprt("mm", func(v float64) float64 { return v / 10 }))
		require.NoError(t, p.DefineInfixOprt("~", func(v float64) float64 { return -v }, PrecInfix))

		require.NoError(t, p.SetExpr("7 % 4 + 25mm + ~1"))
		have, err := p.Eval()
		require.NoError(t, err)
		require.InDelta(t, 4.5, have, 1e-12)
	})

	t.Run("builtinOperatorsDisabled", func(t *testing.T) {
		p := newTestParser(t)
		require.Equal(t, ErrBuiltinOverload, CodeOf(p.DefineOprt("+", func(a, b float64) float64 { return a + b }, PrecAddSub, AssocLeft)))

		p.EnableBuiltInOprt(false)
		require.False(t, p.HasBuiltInOprt())
		require.NoError(t, p.DefineOprt("+", func(a, b float64) float64 { return a + b + 1 }, PrecAddSub, AssocLeft))
		require.NoError(t, p.SetExpr("1+2"))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 4.0, have)
	})

	t.Run("strings", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.DefineStrConst("greeting", "hello"))
		require.NoError(t, p.DefineStrFun("strlen", 0, func(s string, _ []float64) (float64, error) {
			return float64(len(s)), nil
		}))
		require.NoError(t, p.DefineStrFun("scaled", 1, func(s string, args []float64) (float64, error) {
			return float64(len(s)) * args[0], nil
		}))

		require.NoError(t, p.SetExpr(`strlen(greeting) + scaled("a \"b\""; 2)`))
		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 5.0+10, have)

		err = p.SetExpr("strlen(1)")
		require.Equal(t, ErrStringExpected, CodeOf(err))

		err = p.SetExpr("scaled(greeting; greeting)")
		require.Equal(t, ErrValExpected, CodeOf(err))
	})

	t.Run("callbackErrors", func(t *testing.T) {
		p := newTestParser(t)
		require.NoError(t, p.DefineFun("fail", 1, func([]float64) (float64, error) {
			return 0, newError(ErrDomain, -1, "")
		}))

		require.NoError(t, p.SetExpr("fail(1)"))
		_, err := p.Eval()
		require.Equal(t, ErrDomain, CodeOf(err))
		require.Contains(t, err.Error(), "fail")
	})

	t.Run("sharedCallbackError", func(t *testing.T) {
		shared := &Error{Code: ErrDomain, Pos: -1}

		p := newTestParser(t, BulkWorkers(4))
		_, err := p.NewVar("a", 0)
		require.NoError(t, err)
		require.NoError(t, p.DefineFun("reject", 1, func([]float64) (float64, error) {
			return 0, shared
		}))
		require.NoError(t, p.SetExpr("reject(a)"))

		_, err = p.Eval()
		require.Equal(t, ErrDomain, CodeOf(err))
		require.Contains(t, err.Error(), "reject")

		_, err = p.EvalBulk([][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}})
		require.Len(t, multierr.Errors(err), 8)
		require.Empty(t, shared.Token)
	})

	t.Run("rejections", func(t *testing.T) {
		testCases := []struct {
			name     string
			define   func(p *Parser) error
			wantCode Code
		}{
			{
				name:     "tooManyArgs",
				define:   func(p *Parser) error { return p.DefineFun("f", MaxArity+1, func([]float64) (float64, error) { return 0, nil }) },
				wantCode: ErrTooManyParams,
			},
			{
				name:     "nilCallback",
				define:   func(p *Parser) error { return p.DefineFun("f", 1, nil) },
				wantCode: ErrInvalidFunPtr,
			},
			{
				name:     "leadingDigit",
				define:   func(p *Parser) error { return p.DefineConst("1abc", 1) },
				wantCode: ErrInvalidName,
			},
			{
				name:     "invalidChar",
				define:   func(p *Parser) error { _, err := p.NewVar("a b", 1); return err },
				wantCode: ErrInvalidName,
			},
			{
				name:     "constVsVar",
				define:   func(p *Parser) error { _, err := p.NewVar("_pi", 1); return err },
				wantCode: ErrNameConflict,
			},
			{
				name:     "funVsConst",
				define:   func(p *Parser) error { return p.DefineConst("sin", 1) },
				wantCode: ErrNameConflict,
			},
			{
				name:     "emptyOperator",
				define:   func(p *Parser) error { return p.DefineOprt("", math.Max, PrecCmp, AssocLeft) },
				wantCode: ErrInvalidBinOpIdent,
			},
			{
				name:     "infixWithLetters",
				define:   func(p *Parser) error { return p.DefineInfixOprt("neg", square, PrecInfix) },
				wantCode: ErrInvalidInfixIdent,
			},
			{
				name:     "postfixWithDigits",
				define:   func(p *Parser) error { return p.DefinePostfixOprt("m2", square) },
				wantCode: ErrInvalidPostfixIdent,
			},
			{
				name:     "strFunArity",
				define:   func(p *Parser) error { return p.DefineStrFun("s", 3, func(string, []float64) (float64, error) { return 0, nil }) },
				wantCode: ErrTooManyParams,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				p := newTestParser(t)
				err := tc.define(p)
				require.Error(t, err)
				require.Equal(t, tc.wantCode, CodeOf(err))
				require.Equal(t, Semantic, CodeOf(err).Category())
			})
		}
	})

	t.Run("clear", func(t *testing.T) {
		p := newTestParser(t)
		p.ClearFun()
		require.Equal(t, ErrUnknownFunction, CodeOf(p.SetExpr("sin(1)")))

		p.ClearConst()
		require.Equal(t, ErrUnassignableToken, CodeOf(p.SetExpr("_pi")))
		require.Empty(t, p.Consts())

		p.ClearInfixOprt()
		require.Equal(t, ErrUnexpectedOperator, CodeOf(p.SetExpr("-1")))

		_, err := p.NewVar("a", 1)
		require.NoError(t, err)
		p.ClearVar()
		require.Empty(t, p.Vars())

		p.ClearOprt()
		p.ClearPostfixOprt()
		require.NoError(t, p.SetExpr("1+1"))
	})
}

func TestSeparators(t *testing.T) {
	t.Run("argSep", func(t *testing.T) {
		p := newTestParser(t, WithArgSep(','))
		require.Equal(t, ',', p.ArgSep())
		require.NoError(t, p.SetExpr("max(1, 2.5)"))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 2.5, have)
	})

	t.Run("decimalPointOverride", func(t *testing.T) {
		p := newTestParser(t)
		p.SetCNumbers(false)
		p.SetDecimalPoint(',')
		p.SetThousandsSep(' ')
		require.False(t, p.CNumbers())
		require.Equal(t, ',', p.DecimalPoint())
		require.Equal(t, ' ', p.ThousandsSep())

		require.NoError(t, p.SetExpr("2,5*2"))
		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 5.0, have)

		p.SetCNumbers(true)
		require.Equal(t, '.', p.DecimalPoint())
	})

	t.Run("clash", func(t *testing.T) {
		p := newTestParser(t, WithLocale(numeral.C.WithSeparators(',', '.')))
		p.SetArgSep(',')

		err := p.SetExpr("1")
		require.Equal(t, ErrLocale, CodeOf(err))
	})

	t.Run("localeMinus", func(t *testing.T) {
		profile := numeral.C
		profile.Minus = '−'

		p := newTestParser(t)
		p.SetLocale(profile)
		p.SetCNumbers(false)
		require.NoError(t, p.SetExpr("−3 + 5"))

		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, 2.0, have)
	})
}

func TestDiff(t *testing.T) {
	p := newTestParser(t)
	x, err := p.NewVar("x", 1)
	require.NoError(t, err)
	require.NoError(t, p.SetExpr("x^3 + 2*x"))

	have, err := p.Diff(x, 2, 0)
	require.NoError(t, err)
	require.InDelta(t, 14.0, have, 1e-4)
	require.Equal(t, 1.0, p.Arena().Get(x))

	have, err = p.Diff(x, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, 2.0, have, 1e-3)

	_, err = p.Diff(Var(7), 0, 0)
	require.Equal(t, ErrInvalidVarPtr, CodeOf(err))
}

func TestIsSingle(t *testing.T) {
	testCases := []struct {
		formula string
		want    bool
	}{
		{formula: "42", want: true},
		{formula: "-3.5", want: true},
		{formula: "+1e3", want: true},
		{formula: " 7 ", want: true},
		{formula: "1+2", want: false},
		{formula: "x", want: false},
		{formula: "_pi", want: false},
		{formula: "1;2", want: false},
		{formula: "2*", want: false},
		{formula: "2*)))", want: false},
		{formula: "", want: false},
		{formula: "   ", want: false},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.want, IsSingle(tc.formula), "formula %q", tc.formula)
	}
}

func TestTokensAndNumbers(t *testing.T) {
	p := newTestParser(t)
	_, err := p.NewVar("a", 1)
	require.NoError(t, err)
	_, err = p.NewVar("b", 2)
	require.NoError(t, err)

	require.NoError(t, p.SetExpr("a + 2 * sin(b) - 1.5"))
	require.Equal(t, map[int]string{0: "a", 8: "sin", 12: "b"}, p.Tokens())
	require.Equal(t, map[int]string{4: "2", 17: "1.5"}, p.Numbers())
	require.Equal(t, "a + 2 * sin(b) - 1.5", p.Expr())
}

func TestCSR(t *testing.T) {
	require.Zero(t, csr(0, 1, 1))
	require.Zero(t, csr(1, 0, 1))
	require.Zero(t, csr(1, 1, 0))

	angle := csr(200, 20, 40)
	require.True(t, angle >= 0 && angle < 360)
	require.Equal(t, angle, csr(-200, 20, -40))
}
