package parser

import (
	"math"

	"github.com/pkg/errors"
)

// machine executes a program. It is not safe for concurrent use; bulk workers each get their own.
type machine struct {
	prog           *Program
	stack          []float64
	mathExceptions bool
}

func newMachine(prog *Program, mathExceptions bool) *machine {
	return &machine{
		prog:           prog,
		stack:          make([]float64, prog.MaxStack),
		mathExceptions: mathExceptions,
	}
}

// run evaluates the program against the given cells and returns the results left on the stack.
// The returned slice aliases the machine stack.
func (m *machine) run(cells []float64, row, worker int) ([]float64, error) {
	stack := m.stack
	code := m.prog.Code
	sp := 0

	for pc := 0; ; pc++ {
		switch in := code[pc].(type) {
		case Value:
			stack[sp] = in.V
			sp++
		case Load:
			stack[sp] = cells[in.Var]
			sp++
		case Linear:
			stack[sp] = cells[in.Var]*in.Mul + in.Add
			sp++
		case VarPow:
			x := cells[in.Var]
			switch in.N {
			case 2:
				stack[sp] = x * x
			case 3:
				stack[sp] = x * x * x
			default:
				stack[sp] = x * x * x * x
			}
			sp++
		case Binary:
			sp--
			if m.mathExceptions && in.Op == OpDiv && stack[sp] == 0 {
				return nil, newError(ErrDivByZero, -1, "0")
			}
			stack[sp-1] = applyBinary(in.Op, stack[sp-1], stack[sp])
		case Assign:
			sp--
			cells[in.Var] = stack[sp]
			stack[sp-1] = stack[sp]
		case Call:
			base := sp - in.Argc
			r, err := in.Fn(stack[base:sp])
			if err != nil {
				return nil, callError(in.Name, err)
			}
			stack[base] = r
			sp = base + 1
		case MultiCall:
			base := sp - in.Argc
			r, err := in.Fn(stack[base:sp])
			if err != nil {
				return nil, callError(in.Name, err)
			}
			stack[base] = r
			sp = base + 1
		case StrCall:
			base := sp - in.Argc
			r, err := in.Fn(m.prog.Strings[in.Str], stack[base:sp])
			if err != nil {
				return nil, callError(in.Name, err)
			}
			stack[base] = r
			sp = base + 1
		case BulkCall:
			base := sp - in.Argc
			r, err := in.Fn(row, worker, stack[base:sp])
			if err != nil {
				return nil, callError(in.Name, err)
			}
			stack[base] = r
			sp = base + 1
		case If:
			sp--
			if isFuzzyNull(stack[sp]) {
				pc += in.Offset
			}
		case Else:
			pc += in.Offset
		case EndIf:
		case End:
			return stack[:sp], nil
		default:
			panic(internalError("unknown instruction %T at %d", in, pc))
		}
	}
}

// callError keeps engine errors raised by callbacks and reports anything else as a generic failure.
func callError(name string, err error) error {
	if e, ok := errors.Cause(err).(*Error); ok {
		// callbacks may hand out shared errors, so annotate a copy
		c := *e
		if c.Token == "" {
			c.Token = name
		}
		return &c
	}

	return &Error{Code: ErrGeneric, Pos: -1, Token: errors.Wrap(err, name).Error()}
}

// checkResult rejects results that are not finite numbers.
func checkResult(v float64) error {
	switch {
	case math.IsNaN(v):
		return &Error{Code: ErrResultNaN, Pos: -1, Value: v}
	case math.IsInf(v, 0):
		return &Error{Code: ErrResultInf, Pos: -1, Value: v}
	default:
		return nil
	}
}
