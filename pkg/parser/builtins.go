package parser

import "math"

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func asinh(v float64) float64 {
	return math.Log(v + math.Sqrt(v*v+1))
}

func acosh(v float64) float64 {
	return math.Log(v + math.Sqrt(v*v-1))
}

func atanh(v float64) float64 {
	return 0.5 * math.Log((1+v)/(1-v))
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func rint(v float64) float64 {
	return math.Floor(v + 0.5)
}

func r2cm(v float64) float64 {
	return rint(v*10) / 10
}

func csrCm(length, split, arcLength float64) float64 {
	toPx := func(cm float64) float64 {
		return cm * 10 / 25.4 * PrintDPI
	}

	return csr(toPx(length), toPx(split), toPx(arcLength))
}

func csrInch(length, split, arcLength float64) float64 {
	return csr(length*PrintDPI, split*PrintDPI, arcLength*PrintDPI)
}

func unaryMinus(v float64) float64 {
	return -v
}

func unaryPlus(v float64) float64 {
	return v
}

func sumOf(args []float64) (float64, error) {
	if len(args) == 0 {
		return 0, newError(ErrTooFewArgs, -1, "sum")
	}

	var res float64
	for _, a := range args {
		res += a
	}

	return res, nil
}

func avgOf(args []float64) (float64, error) {
	if len(args) == 0 {
		return 0, newError(ErrTooFewArgs, -1, "avg")
	}

	res, _ := sumOf(args)
	return res / float64(len(args)), nil
}

func minOf(args []float64) (float64, error) {
	if len(args) == 0 {
		return 0, newError(ErrTooFewArgs, -1, "min")
	}

	res := args[0]
	for _, a := range args[1:] {
		res = math.Min(res, a)
	}

	return res, nil
}

func maxOf(args []float64) (float64, error) {
	if len(args) == 0 {
		return 0, newError(ErrTooFewArgs, -1, "max")
	}

	res := args[0]
	for _, a := range args[1:] {
		res = math.Max(res, a)
	}

	return res, nil
}

// positiveOnly wraps a logarithm-like function so that it raises a domain error
// for arguments outside its domain when math exceptions are enabled.
func (p *Parser) positiveOnly(name string, f func(float64) float64, allowZero bool) Func {
	return func(args []float64) (float64, error) {
		v := args[0]
		if p.mathExceptions && (v < 0 || (v == 0 && !allowZero)) {
			return 0, newError(ErrDomain, -1, name)
		}
		return f(v), nil
	}
}

func (p *Parser) initBuiltins() {
	fun1 := map[string]func(float64) float64{
		"degTorad": degToRad,
		"radTodeg": radToDeg,
		"sin":      math.Sin,
		"cos":      math.Cos,
		"tan":      math.Tan,
		"sinD":     func(v float64) float64 { return math.Sin(degToRad(v)) },
		"cosD":     func(v float64) float64 { return math.Cos(degToRad(v)) },
		"tanD":     func(v float64) float64 { return math.Tan(degToRad(v)) },
		"asin":     math.Asin,
		"acos":     math.Acos,
		"atan":     math.Atan,
		"asinD":    func(v float64) float64 { return radToDeg(math.Asin(v)) },
		"acosD":    func(v float64) float64 { return radToDeg(math.Acos(v)) },
		"atanD":    func(v float64) float64 { return radToDeg(math.Atan(v)) },
		"sinh":     math.Sinh,
		"cosh":     math.Cosh,
		"tanh":     math.Tanh,
		"asinh":    asinh,
		"acosh":    acosh,
		"atanh":    atanh,
		"exp":      math.Exp,
		"sign":     sign,
		"rint":     rint,
		"r2cm":     r2cm,
		"abs":      math.Abs,
	}
	for name, f := range fun1 {
		p.funs[name] = &callback{name: name, kind: kindFixed, arity: 1, fn: fixed1(f)}
	}

	for name, f := range map[string]func(float64) float64{"log2": math.Log2, "log10": math.Log10, "log": math.Log10, "ln": math.Log} {
		p.funs[name] = &callback{name: name, kind: kindFixed, arity: 1, fn: p.positiveOnly(name, f, false)}
	}
	p.funs["sqrt"] = &callback{name: "sqrt", kind: kindFixed, arity: 1, fn: p.positiveOnly("sqrt", math.Sqrt, true)}

	p.funs["atan2"] = &callback{name: "atan2", kind: kindFixed, arity: 2, fn: fixed2(math.Atan2)}
	p.funs["fmod"] = &callback{name: "fmod", kind: kindFixed, arity: 2, fn: fixed2(math.Mod)}
	p.funs["csrCm"] = &callback{name: "csrCm", kind: kindFixed, arity: 3, fn: fixed3(csrCm)}
	p.funs["csrInch"] = &callback{name: "csrInch", kind: kindFixed, arity: 3, fn: fixed3(csrInch)}

	for name, f := range map[string]Func{"sum": sumOf, "avg": avgOf, "min": minOf, "max": maxOf} {
		p.funs[name] = &callback{name: name, kind: kindMulti, arity: -1, fn: f}
	}

	p.consts["_pi"] = math.Pi
	p.consts["_e"] = math.E

	p.infix["-"] = &callback{name: "-", kind: kindFixed, arity: 1, prec: PrecInfix, fn: fixed1(unaryMinus)}
	p.infix["+"] = &callback{name: "+", kind: kindFixed, arity: 1, prec: PrecInfix, fn: fixed1(unaryPlus)}
}
