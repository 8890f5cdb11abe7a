package parser

import (
	"github.com/charithe/formula/pkg/numeral"
	"go.uber.org/zap"
)

// Option configures a Parser at construction.
type Option func(*Parser)

// VarFactory creates the cell of a variable the formula references but nobody defined.
type VarFactory func(name string, arena *Arena) Var

func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		p.log = logger
	}
}

// WithLocale reads numerals with the glyphs of the given profile instead of the canonical ones.
func WithLocale(profile numeral.Profile) Option {
	return func(p *Parser) {
		p.locale = profile
		p.cNumbers = false
	}
}

// WithArgSep sets the rune separating function arguments. The default is ';'.
func WithArgSep(sep rune) Option {
	return func(p *Parser) {
		p.argSep = sep
	}
}

// Optimizer toggles the peephole optimizer. It is enabled by default.
func Optimizer(enabled bool) Option {
	return func(p *Parser) {
		p.optimize = enabled
	}
}

// MathExceptions makes division by zero and logarithms of non positive numbers fail
// instead of producing an infinite or NaN result.
func MathExceptions(enabled bool) Option {
	return func(p *Parser) {
		p.mathExceptions = enabled
	}
}

// AllowSubexpressions controls whether top level argument separators produce several results.
func AllowSubexpressions(enabled bool) Option {
	return func(p *Parser) {
		p.allowSubexpressions = enabled
	}
}

// DumpByteCode logs every compiled program at debug level.
func DumpByteCode(enabled bool) Option {
	return func(p *Parser) {
		p.dumpByteCode = enabled
	}
}

// DumpStack logs the compiler stacks after each token at debug level.
func DumpStack(enabled bool) Option {
	return func(p *Parser) {
		p.dumpStack = enabled
	}
}

func WithVarFactory(f VarFactory) Option {
	return func(p *Parser) {
		p.factory = f
	}
}

// IgnoreUndefined makes unknown variable names read as zero.
func IgnoreUndefined(enabled bool) Option {
	return func(p *Parser) {
		p.ignoreUndefined = enabled
	}
}

// BulkWorkers sets how many goroutines EvalBulk uses. Values below one mean one per CPU.
func BulkWorkers(n int) Option {
	return func(p *Parser) {
		p.workers = n
	}
}
