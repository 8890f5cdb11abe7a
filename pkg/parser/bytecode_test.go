package parser

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConditionalOffsets(t *testing.T) {
	p := newTestParser(t, Optimizer(false))
	a, err := p.NewVar("a", 0)
	require.NoError(t, err)

	require.NoError(t, p.SetExpr("a < 1 ? 10 : 20"))
	prog, err := p.Program()
	require.NoError(t, err)

	want := []Instr{
		Load{Var: a},
		Value{V: 1},
		Binary{Op: OpLT},
		If{Offset: 2},
		Value{V: 10},
		Else{Offset: 2},
		Value{V: 20},
		EndIf{},
		End{},
	}
	require.Equal(t, want, prog.Code)
	require.Equal(t, 2, prog.MaxStack)
	require.Equal(t, 1, prog.Results)

	for _, tc := range []struct{ a, want float64 }{{0, 10}, {1, 20}, {-5, 10}} {
		p.Arena().Set(a, tc.a)
		have, err := p.Eval()
		require.NoError(t, err)
		require.Equal(t, tc.want, have)
	}
}

func TestOptimizer(t *testing.T) {
	corpus := []string{
		"a*2+1",
		"2*a-a",
		"a^2+b^3",
		"a^4-2*a^2",
		"(a+1)*(b-1)",
		"a/2+b/4",
		"a*a*a",
		"-a*2",
		"3*(a+2)/5",
		"1+2*3-a",
		"a+b+a",
		"a<b ? a*2 : b-1",
		"sum(a;b;3)*2",
		"min(a;b)+max(a;b)",
		"2*(a*3+1)",
		"(a*4+2)/2",
		"a - 2 - 3*a",
		"a >= b && b != 0 || a == 1",
	}

	rng := rand.New(rand.NewSource(42))
	bindings := make([][2]float64, 20)
	for i := range bindings {
		bindings[i] = [2]float64{rng.Float64()*20 - 10, rng.Float64()*20 - 10}
	}
	bindings = append(bindings, [2]float64{1, 0}, [2]float64{0, 0}, [2]float64{3, 3})

	for _, formula := range corpus {
		t.Run(formula, func(t *testing.T) {
			on, off := newTestParser(t), newTestParser(t, Optimizer(false))
			for _, p := range []*Parser{on, off} {
				_, err := p.NewVar("a", 0)
				require.NoError(t, err)
				_, err = p.NewVar("b", 0)
				require.NoError(t, err)
				require.NoError(t, p.SetExpr(formula))
			}

			progOn, err := on.Program()
			require.NoError(t, err)
			progOff, err := off.Program()
			require.NoError(t, err)
			require.True(t, len(progOn.Code) <= len(progOff.Code))

			for _, bind := range bindings {
				for _, p := range []*Parser{on, off} {
					p.Arena().Set(Var(0), bind[0])
					p.Arena().Set(Var(1), bind[1])
				}

				want, errOff := off.Eval()
				have, errOn := on.Eval()
				require.Equal(t, errOff == nil, errOn == nil)
				require.InDelta(t, want, have, 1e-9*math.Max(1, math.Abs(want)), "a=%g b=%g", bind[0], bind[1])
			}
		})
	}
}

func TestFusedInstructions(t *testing.T) {
	const k, j = 2.5, -1.25

	testCases := []struct {
		name      string
		formula   string
		wantInstr func(x Var) Instr
		direct    func(x float64) float64
	}{
		{
			name:      "scale",
			formula:   "2.5*x",
			wantInstr: func(x Var) Instr { return Linear{Var: x, Mul: k} },
			direct:    func(x float64) float64 { return k * x },
		},
		{
			name:      "offset",
			formula:   "x+2.5",
			wantInstr: func(x Var) Instr { return Linear{Var: x, Mul: 1, Add: k} },
			direct:    func(x float64) float64 { return x + k },
		},
		{
			name:      "linear",
			formula:   "2.5*x-1.25",
			wantInstr: func(x Var) Instr { return Linear{Var: x, Mul: k, Add: j} },
			direct:    func(x float64) float64 { return k*x + j },
		},
		{
			name:      "square",
			formula:   "x^2",
			wantInstr: func(x Var) Instr { return VarPow{Var: x, N: 2} },
			direct:    func(x float64) float64 { return x * x },
		},
		{
			name:      "cube",
			formula:   "x^3",
			wantInstr: func(x Var) Instr { return VarPow{Var: x, N: 3} },
			direct:    func(x float64) float64 { return math.Pow(x, 3) },
		},
		{
			name:      "fourth",
			formula:   "x^4",
			wantInstr: func(x Var) Instr { return VarPow{Var: x, N: 4} },
			direct:    func(x float64) float64 { return math.Pow(x, 4) },
		},
		{
			name:      "divide",
			formula:   "x/2.5",
			wantInstr: func(x Var) Instr { return Load{Var: x} },
			direct:    func(x float64) float64 { return x / k },
		},
	}

	rng := rand.New(rand.NewSource(7))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestParser(t)
			x, err := p.NewVar("x", 0)
			require.NoError(t, err)
			require.NoError(t, p.SetExpr(tc.formula))

			prog, err := p.Program()
			require.NoError(t, err)
			require.Equal(t, tc.wantInstr(x), prog.Code[0])

			for i := 0; i < 128; i++ {
				v := rng.Float64()*200 - 100
				p.Arena().Set(x, v)

				have, err := p.Eval()
				require.NoError(t, err)

				want := tc.direct(v)
				require.InDelta(t, want, have, 1e-12*math.Max(1, math.Abs(want)), "x=%g", v)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	const formula = "a*2 + sin(b)^2 + (a > b ? fmod(a; 3) : sum(a; b; 1))"

	compile := func() (*Parser, *Program) {
		p := newTestParser(t)
		_, err := p.NewVar("a", 7.25)
		require.NoError(t, err)
		_, err = p.NewVar("b", -1.5)
		require.NoError(t, err)
		require.NoError(t, p.SetExpr(formula))

		prog, err := p.Program()
		require.NoError(t, err)
		return p, prog
	}

	p1, prog1 := compile()
	p2, prog2 := compile()
	require.Equal(t, prog1.Dump(p1.Arena()), prog2.Dump(p2.Arena()))

	v1, err := p1.Eval()
	require.NoError(t, err)
	v2, err := p2.Eval()
	require.NoError(t, err)
	require.Equal(t, math.Float64bits(v1), math.Float64bits(v2))
}

func TestDebugDumps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := New(nil, WithLogger(zap.New(core)), DumpByteCode(true), DumpStack(true))

	_, err := p.NewVar("x", 2)
	require.NoError(t, err)
	require.NoError(t, p.SetExpr("x*3+1"))

	compiled := logs.FilterMessage("Compiled formula").All()
	require.Len(t, compiled, 1)
	require.Contains(t, compiled[0].ContextMap()["bytecode"], "VARMUL \t[x] * [3] + [1]")

	// one entry per token including the end of the formula
	require.Len(t, logs.FilterMessage("Compiler stacks").All(), 6)
}
