package parser

// MaxArity is the largest number of arguments a fixed arity function can take.
const MaxArity = 10

// Func is a numeric callback. It receives exactly as many arguments as it was registered with,
// or at least one for variable arity functions.
type Func func(args []float64) (float64, error)

// StrFunc receives a string literal followed by its numeric arguments.
type StrFunc func(s string, args []float64) (float64, error)

// BulkFunc also receives the index of the row being evaluated and of the worker evaluating it.
type BulkFunc func(row, worker int, args []float64) (float64, error)

type funcKind int

const (
	kindFixed funcKind = iota
	kindMulti
	kindStr
	kindBulk
)

type callback struct {
	name  string
	kind  funcKind
	arity int
	prec  int
	assoc Assoc

	fn     Func
	strFn  StrFunc
	bulkFn BulkFunc
}

func fixed1(f func(float64) float64) Func {
	return func(args []float64) (float64, error) {
		return f(args[0]), nil
	}
}

func fixed2(f func(float64, float64) float64) Func {
	return func(args []float64) (float64, error) {
		return f(args[0], args[1]), nil
	}
}

func fixed3(f func(float64, float64, float64) float64) Func {
	return func(args []float64) (float64, error) {
		return f(args[0], args[1], args[2]), nil
	}
}
