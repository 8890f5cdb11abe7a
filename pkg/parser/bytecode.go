package parser

import (
	"fmt"
	"math"
	"strings"
)

// Op is a built in binary operator.
type Op int

const (
	OpLE Op = iota
	OpGE
	OpNE
	OpEQ
	OpLT
	OpGT
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpAnd
	OpOr
)

func (o Op) String() string {
	return builtinOprt[o]
}

// Instr is one entry of a compiled program.
type Instr interface {
	instr()
}

type (
	// Value pushes a literal.
	Value struct{ V float64 }
	// Load pushes the value of a variable.
	Load struct{ Var Var }
	// Linear pushes Mul*x+Add for the variable x.
	Linear struct {
		Var Var
		Mul float64
		Add float64
	}
	// VarPow pushes x^N for N in 2..4.
	VarPow struct {
		Var Var
		N   int
	}
	Binary struct{ Op Op }
	// Call invokes a fixed arity function.
	Call struct {
		Name string
		Argc int
		Fn   Func
	}
	// MultiCall invokes a variable arity function with Argc arguments.
	MultiCall struct {
		Name string
		Argc int
		Fn   Func
	}
	// StrCall invokes a string function with the literal Str of the program string table.
	StrCall struct {
		Name string
		Argc int
		Str  int
		Fn   StrFunc
	}
	BulkCall struct {
		Name string
		Argc int
		Fn   BulkFunc
	}
	// If pops the condition and skips Offset instructions when it is zero.
	If struct{ Offset int }
	// Else skips Offset instructions, to the matching EndIf.
	Else   struct{ Offset int }
	EndIf  struct{}
	Assign struct{ Var Var }
	End    struct{}
)

func (Value) instr()     {}
func (Load) instr()      {}
func (Linear) instr()    {}
func (VarPow) instr()    {}
func (Binary) instr()    {}
func (Call) instr()      {}
func (MultiCall) instr() {}
func (StrCall) instr()   {}
func (BulkCall) instr()  {}
func (If) instr()        {}
func (Else) instr()      {}
func (EndIf) instr()     {}
func (Assign) instr()    {}
func (End) instr()       {}

// Program is a finalized instruction sequence.
type Program struct {
	Code     []Instr
	Strings  []string
	MaxStack int
	Results  int
}

// Dump renders the program one instruction per line. Variable names are resolved through the arena when given.
func (p *Program) Dump(arena *Arena) string {
	name := func(v Var) string {
		if arena != nil && arena.Contains(v) {
			return arena.Name(v)
		}
		return fmt.Sprintf("#%d", v)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Number of RPN tokens: %d, max stack: %d, results: %d\n", len(p.Code), p.MaxStack, p.Results)
	for i, in := range p.Code {
		fmt.Fprintf(&sb, "%d : ", i)
		switch t := in.(type) {
		case Value:
			fmt.Fprintf(&sb, "VAL \t[%g]", t.V)
		case Load:
			fmt.Fprintf(&sb, "VAR \t[%s]", name(t.Var))
		case Linear:
			fmt.Fprintf(&sb, "VARMUL \t[%s] * [%g] + [%g]", name(t.Var), t.Mul, t.Add)
		case VarPow:
			fmt.Fprintf(&sb, "VARPOW%d \t[%s]", t.N, name(t.Var))
		case Binary:
			fmt.Fprintf(&sb, "%s", t.Op)
		case Call:
			fmt.Fprintf(&sb, "FUNC \t[%s] argc: %d", t.Name, t.Argc)
		case MultiCall:
			fmt.Fprintf(&sb, "FUNC_MULTI \t[%s] argc: %d", t.Name, t.Argc)
		case StrCall:
			fmt.Fprintf(&sb, "FUNC_STR \t[%s] argc: %d str: %q", t.Name, t.Argc, p.Strings[t.Str])
		case BulkCall:
			fmt.Fprintf(&sb, "FUNC_BULK \t[%s] argc: %d", t.Name, t.Argc)
		case If:
			fmt.Fprintf(&sb, "IF \toffset: %d", t.Offset)
		case Else:
			fmt.Fprintf(&sb, "ELSE \toffset: %d", t.Offset)
		case EndIf:
			sb.WriteString("ENDIF")
		case Assign:
			fmt.Fprintf(&sb, "ASSIGN \t[%s]", name(t.Var))
		case End:
			sb.WriteString("END")
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// builder emits instructions and tracks the operand stack depth.
type builder struct {
	code           []Instr
	stackPos       int
	maxStack       int
	optimize       bool
	mathExceptions bool
}

func (b *builder) grow(n int) {
	b.stackPos += n
	if b.stackPos > b.maxStack {
		b.maxStack = b.stackPos
	}
}

func (b *builder) addVal(v float64) {
	b.grow(1)
	b.code = append(b.code, Value{V: v})
}

func (b *builder) addVar(v Var) {
	b.grow(1)
	b.code = append(b.code, Load{Var: v})
}

func (b *builder) addAssign(v Var) {
	b.stackPos--
	b.code = append(b.code, Assign{Var: v})
}

func (b *builder) addFun(cb *callback, argc int) {
	b.grow(1 - argc)
	switch cb.kind {
	case kindMulti:
		b.code = append(b.code, MultiCall{Name: cb.name, Argc: argc, Fn: cb.fn})
	case kindBulk:
		b.code = append(b.code, BulkCall{Name: cb.name, Argc: argc, Fn: cb.bulkFn})
	default:
		b.code = append(b.code, Call{Name: cb.name, Argc: argc, Fn: cb.fn})
	}
}

func (b *builder) addStrFun(cb *callback, argc, str int) {
	b.grow(1 - argc)
	b.code = append(b.code, StrCall{Name: cb.name, Argc: argc, Str: str, Fn: cb.strFn})
}

func (b *builder) addIfElse(c cmd) {
	switch c {
	case cmdIF:
		b.stackPos--
		b.code = append(b.code, If{})
	case cmdELSE:
		// the value of the taken branch replaces the other one
		b.stackPos--
		b.code = append(b.code, Else{})
	case cmdENDIF:
		b.code = append(b.code, EndIf{})
	default:
		panic(internalError("%s is not a conditional", c))
	}
}

// addOp emits a binary operator, folding or fusing it with its operands when the optimizer is on.
func (b *builder) addOp(op Op) error {
	b.stackPos--

	sz := len(b.code)
	if !b.optimize || sz < 2 {
		b.code = append(b.code, Binary{Op: op})
		return nil
	}

	x, y := b.code[sz-2], b.code[sz-1]
	xv, xok := x.(Value)
	yv, yok := y.(Value)
	if xok && yok {
		if op == OpDiv && b.mathExceptions && yv.V == 0 {
			return newError(ErrDivByZero, -1, "0")
		}

		b.code = append(b.code[:sz-2], Value{V: applyBinary(op, xv.V, yv.V)})
		return nil
	}

	var fused Instr
	switch op {
	case OpPow:
		fused = fusePow(x, y)
	case OpAdd, OpSub:
		fused = fuseAddSub(x, y, op == OpSub)
	case OpMul:
		fused = fuseMul(x, y)
	case OpDiv:
		fused = fuseDiv(x, y)
	}

	if fused == nil {
		b.code = append(b.code, Binary{Op: op})
		return nil
	}

	b.code = append(b.code[:sz-2], fused)
	return nil
}

// linear views a value, a variable or a fused variable as mul*x+add.
func linear(in Instr) (v Var, mul, add float64, ok bool) {
	switch t := in.(type) {
	case Value:
		return NoVar, 0, t.V, true
	case Load:
		return t.Var, 1, 0, true
	case Linear:
		return t.Var, t.Mul, t.Add, true
	default:
		return NoVar, 0, 0, false
	}
}

func fusePow(x, y Instr) Instr {
	lx, ok := x.(Load)
	if !ok {
		return nil
	}

	vy, ok := y.(Value)
	if !ok {
		return nil
	}

	for n := 2; n <= 4; n++ {
		if fuzzyCompare(vy.V, float64(n)) {
			return VarPow{Var: lx.Var, N: n}
		}
	}

	return nil
}

func fuseAddSub(x, y Instr, sub bool) Instr {
	v1, m1, a1, ok1 := linear(x)
	v2, m2, a2, ok2 := linear(y)
	if !ok1 || !ok2 {
		return nil
	}

	v := v1
	switch {
	case v1.Valid() && v2.Valid():
		if v1 != v2 {
			return nil
		}
	case v2.Valid():
		v = v2
	case !v1.Valid():
		return nil
	}

	sign := 1.0
	if sub {
		sign = -1
	}

	return Linear{Var: v, Mul: m1 + sign*m2, Add: a1 + sign*a2}
}

func fuseMul(x, y Instr) Instr {
	switch tx := x.(type) {
	case Load:
		switch ty := y.(type) {
		case Value:
			return Linear{Var: tx.Var, Mul: ty.V}
		case Load:
			if tx.Var == ty.Var {
				return VarPow{Var: tx.Var, N: 2}
			}
		}
	case Value:
		switch ty := y.(type) {
		case Load:
			return Linear{Var: ty.Var, Mul: tx.V}
		case Linear:
			return Linear{Var: ty.Var, Mul: ty.Mul * tx.V, Add: ty.Add * tx.V}
		}
	case Linear:
		if ty, ok := y.(Value); ok {
			return Linear{Var: tx.Var, Mul: tx.Mul * ty.V, Add: tx.Add * ty.V}
		}
	}

	return nil
}

func fuseDiv(x, y Instr) Instr {
	lx, ok := x.(Linear)
	if !ok {
		return nil
	}

	vy, ok := y.(Value)
	if !ok || isFuzzyNull(vy.V) {
		return nil
	}

	return Linear{Var: lx.Var, Mul: lx.Mul / vy.V, Add: lx.Add / vy.V}
}

// finalize terminates the program and resolves the conditional jump offsets.
func (b *builder) finalize(results int) *Program {
	b.code = append(b.code, End{})

	var ifs, elses []int
	for i, in := range b.code {
		switch in.(type) {
		case If:
			ifs = append(ifs, i)
		case Else:
			if len(ifs) == 0 {
				panic(internalError("else at %d without if", i))
			}
			idx := ifs[len(ifs)-1]
			ifs = ifs[:len(ifs)-1]
			b.code[idx] = If{Offset: i - idx}
			elses = append(elses, i)
		case EndIf:
			if len(elses) == 0 {
				panic(internalError("endif at %d without else", i))
			}
			idx := elses[len(elses)-1]
			elses = elses[:len(elses)-1]
			b.code[idx] = Else{Offset: i - idx}
		}
	}

	if len(ifs) != 0 || len(elses) != 0 {
		panic(internalError("unbalanced conditional"))
	}

	maxStack := b.maxStack
	if maxStack < 1 {
		maxStack = 1
	}

	return &Program{
		Code:     b.code,
		MaxStack: maxStack,
		Results:  results,
	}
}

func applyBinary(op Op, x, y float64) float64 {
	switch op {
	case OpLE:
		return boolToFloat(x <= y)
	case OpGE:
		return boolToFloat(x >= y)
	case OpNE:
		return boolToFloat(!fuzzyEqualPossibleNulls(x, y))
	case OpEQ:
		return boolToFloat(fuzzyEqualPossibleNulls(x, y))
	case OpLT:
		return boolToFloat(x < y)
	case OpGT:
		return boolToFloat(x > y)
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	case OpPow:
		return math.Pow(x, y)
	case OpAnd:
		// operands are not truncated, 0.5 counts as true
		return boolToFloat(x != 0 && y != 0)
	case OpOr:
		return boolToFloat(x != 0 || y != 0)
	default:
		panic(internalError("unknown operator %d", op))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func isFuzzyNull(d float64) bool {
	return math.Abs(d) <= 1e-12
}

func fuzzyCompare(p1, p2 float64) bool {
	return math.Abs(p1-p2)*1e12 <= math.Min(math.Abs(p1), math.Abs(p2))
}

// fuzzyEqualPossibleNulls compares relatively unless one side is zero.
func fuzzyEqualPossibleNulls(p1, p2 float64) bool {
	if isFuzzyNull(p1) {
		return isFuzzyNull(p2)
	}

	if isFuzzyNull(p2) {
		return false
	}

	return fuzzyCompare(p1, p2)
}
