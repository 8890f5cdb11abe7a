// Package parser compiles mathematical formulas into a compact stack program and evaluates it
// against variables stored in an Arena.
package parser

import (
	"strings"
	"unicode"

	"github.com/charithe/formula/pkg/numeral"
	"go.uber.org/zap"
)

// Parser holds the name tables, the compiled program of the current formula and the scratch
// state needed to evaluate it. It is not safe for concurrent use.
type Parser struct {
	arena *Arena
	log   *zap.Logger

	funs      map[string]*callback
	oprts     map[string]*callback
	infix     map[string]*callback
	postfix   map[string]*callback
	consts    map[string]float64
	strConsts map[string]string
	vars      map[string]Var

	argSep              rune
	locale              numeral.Profile
	cNumbers            bool
	decimal             rune
	group               rune
	builtInOps          bool
	optimize            bool
	mathExceptions      bool
	allowSubexpressions bool
	dumpByteCode        bool
	dumpStack           bool
	factory             VarFactory
	ignoreUndefined     bool
	workers             int

	formula string
	prog    *Program
	vm      *machine
	dirty   bool
	used    map[string]Var
	tokens  map[int]string
	numbers map[int]string
}

// New creates a parser with the built in functions, constants and operators.
// Variables live in arena; a new one is created when arena is nil.
func New(arena *Arena, opts ...Option) *Parser {
	if arena == nil {
		arena = NewArena()
	}

	p := &Parser{
		arena:               arena,
		funs:                make(map[string]*callback),
		oprts:               make(map[string]*callback),
		infix:               make(map[string]*callback),
		postfix:             make(map[string]*callback),
		consts:              make(map[string]float64),
		strConsts:           make(map[string]string),
		vars:                make(map[string]Var),
		argSep:              ';',
		locale:              numeral.C,
		cNumbers:            true,
		builtInOps:          true,
		optimize:            true,
		allowSubexpressions: true,
		dirty:               true,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = zap.L().Named("parser")
	}

	p.initBuiltins()
	p.defineLocaleSigns()
	return p
}

func (p *Parser) Arena() *Arena {
	return p.arena
}

func (p *Parser) defineLocaleSigns() {
	prof := p.numeralProfile()
	if neg := string(prof.Minus); prof.Minus != '-' && p.infix[neg] == nil {
		p.infix[neg] = &callback{name: neg, kind: kindFixed, arity: 1, prec: PrecInfix, fn: fixed1(unaryMinus)}
	}
}

func (p *Parser) numeralProfile() numeral.Profile {
	if p.cNumbers {
		return numeral.C
	}

	return p.locale.WithSeparators(p.decimal, p.group)
}

func (p *Parser) touch() {
	p.dirty = true
}

func validName(name string, valid func(rune) bool) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		if !valid(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}

	return true
}

func (p *Parser) isOprtChar(r rune) bool {
	return unicode.IsLetter(r) || strings.ContainsRune(extraOprtChars, r) || p.numeralProfile().IsSign(r)
}

func (p *Parser) isInfixChar(r rune) bool {
	return strings.ContainsRune(extraInfixChars, r) || p.numeralProfile().IsSign(r)
}

// conflict reports whether name is already used by a table that shares its namespace.
func (p *Parser) conflict(name string, tables ...interface{}) error {
	for _, t := range tables {
		var found bool
		switch m := t.(type) {
		case map[string]*callback:
			_, found = m[name]
		case map[string]float64:
			_, found = m[name]
		case map[string]string:
			_, found = m[name]
		case map[string]Var:
			_, found = m[name]
		}

		if found {
			return newError(ErrNameConflict, -1, name)
		}
	}

	return nil
}

func (p *Parser) defineCallback(cb *callback) error {
	if !validName(cb.name, isNameChar) {
		return newError(ErrInvalidName, -1, cb.name)
	}

	if err := p.conflict(cb.name, p.vars, p.consts, p.strConsts, p.postfix); err != nil {
		return err
	}

	p.funs[cb.name] = cb
	p.touch()
	return nil
}

// DefineFun registers a function taking exactly arity numeric arguments.
func (p *Parser) DefineFun(name string, arity int, fn Func) error {
	if fn == nil || arity < 0 {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	if arity > MaxArity {
		return newError(ErrTooManyParams, -1, name)
	}

	return p.defineCallback(&callback{name: name, kind: kindFixed, arity: arity, fn: fn})
}

func (p *Parser) DefineFun1(name string, f func(float64) float64) error {
	return p.DefineFun(name, 1, fixed1(f))
}

func (p *Parser) DefineFun2(name string, f func(float64, float64) float64) error {
	return p.DefineFun(name, 2, fixed2(f))
}

func (p *Parser) DefineFun3(name string, f func(float64, float64, float64) float64) error {
	return p.DefineFun(name, 3, fixed3(f))
}

// DefineMultiFun registers a variable arity function. The function itself decides how many arguments are too few.
func (p *Parser) DefineMultiFun(name string, fn Func) error {
	if fn == nil {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	return p.defineCallback(&callback{name: name, kind: kindMulti, arity: -1, fn: fn})
}

// DefineStrFun registers a function whose first argument is a string, followed by arity numeric arguments.
func (p *Parser) DefineStrFun(name string, arity int, fn StrFunc) error {
	if fn == nil || arity < 0 {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	if arity > 2 {
		return newError(ErrTooManyParams, -1, name)
	}

	return p.defineCallback(&callback{name: name, kind: kindStr, arity: arity, strFn: fn})
}

// DefineBulkFun registers a function that also receives the row and worker index during bulk evaluation.
// Outside bulk evaluation both are zero.
func (p *Parser) DefineBulkFun(name string, arity int, fn BulkFunc) error {
	if fn == nil || arity < 0 {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	if arity > MaxArity {
		return newError(ErrTooManyParams, -1, name)
	}

	return p.defineCallback(&callback{name: name, kind: kindBulk, arity: arity, bulkFn: fn})
}

// DefineOprt registers a binary operator.
func (p *Parser) DefineOprt(name string, fn func(float64, float64) float64, prec int, assoc Assoc) error {
	if fn == nil {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	if !validName(name, p.isOprtChar) {
		return newError(ErrInvalidBinOpIdent, -1, name)
	}

	if p.builtInOps {
		for _, b := range builtinOprt {
			if b == name {
				return newError(ErrBuiltinOverload, -1, name)
			}
		}
	}

	if err := p.conflict(name, p.postfix, p.funs); err != nil {
		return err
	}

	p.oprts[name] = &callback{name: name, kind: kindFixed, arity: 2, prec: prec, assoc: assoc, fn: fixed2(fn)}
	p.touch()
	return nil
}

// DefineInfixOprt registers a unary prefix operator.
func (p *Parser) DefineInfixOprt(name string, fn func(float64) float64, prec int) error {
	if fn == nil {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	if !validName(name, p.isInfixChar) {
		return newError(ErrInvalidInfixIdent, -1, name)
	}

	if err := p.conflict(name, p.postfix, p.funs); err != nil {
		return err
	}

	p.infix[name] = &callback{name: name, kind: kindFixed, arity: 1, prec: prec, fn: fixed1(fn)}
	p.touch()
	return nil
}

// DefinePostfixOprt registers a unary postfix operator such as a unit suffix.
func (p *Parser) DefinePostfixOprt(name string, fn func(float64) float64) error {
	if fn == nil {
		return newError(ErrInvalidFunPtr, -1, name)
	}

	if !validName(name, p.isOprtChar) {
		return newError(ErrInvalidPostfixIdent, -1, name)
	}

	if err := p.conflict(name, p.infix, p.oprts, p.funs); err != nil {
		return err
	}

	p.postfix[name] = &callback{name: name, kind: kindFixed, arity: 1, prec: PrecPostfix, fn: fixed1(fn)}
	p.touch()
	return nil
}

func (p *Parser) DefineConst(name string, v float64) error {
	if !validName(name, isNameChar) {
		return newError(ErrInvalidName, -1, name)
	}

	if err := p.conflict(name, p.vars, p.strConsts, p.funs); err != nil {
		return err
	}

	p.consts[name] = v
	p.touch()
	return nil
}

func (p *Parser) DefineStrConst(name, s string) error {
	if !validName(name, isNameChar) {
		return newError(ErrInvalidName, -1, name)
	}

	if err := p.conflict(name, p.vars, p.consts, p.funs); err != nil {
		return err
	}

	p.strConsts[name] = s
	p.touch()
	return nil
}

// DefineVar binds name to a cell of the parser's arena.
func (p *Parser) DefineVar(name string, v Var) error {
	if !validName(name, isNameChar) {
		return newError(ErrInvalidName, -1, name)
	}

	if !p.arena.Contains(v) {
		return newError(ErrInvalidVarPtr, -1, name)
	}

	if err := p.conflict(name, p.consts, p.strConsts, p.funs); err != nil {
		return err
	}

	p.vars[name] = v
	p.touch()
	return nil
}

// NewVar allocates a cell holding value and binds it to name.
func (p *Parser) NewVar(name string, value float64) (Var, error) {
	if !validName(name, isNameChar) {
		return NoVar, newError(ErrInvalidName, -1, name)
	}

	if err := p.conflict(name, p.consts, p.strConsts, p.funs); err != nil {
		return NoVar, err
	}

	v := p.arena.New(name, value)
	p.vars[name] = v
	p.touch()
	return v, nil
}

func (p *Parser) RemoveVar(name string) {
	delete(p.vars, name)
	p.touch()
}

func (p *Parser) ClearVar() {
	p.vars = make(map[string]Var)
	p.touch()
}

func (p *Parser) ClearFun() {
	p.funs = make(map[string]*callback)
	p.touch()
}

// ClearConst removes numeric and string constants.
func (p *Parser) ClearConst() {
	p.consts = make(map[string]float64)
	p.strConsts = make(map[string]string)
	p.touch()
}

func (p *Parser) ClearOprt() {
	p.oprts = make(map[string]*callback)
	p.touch()
}

func (p *Parser) ClearInfixOprt() {
	p.infix = make(map[string]*callback)
	p.touch()
}

func (p *Parser) ClearPostfixOprt() {
	p.postfix = make(map[string]*callback)
	p.touch()
}

// Vars returns the variables known to the parser, including those created by the variable factory.
func (p *Parser) Vars() map[string]Var {
	vars := make(map[string]Var, len(p.vars))
	for k, v := range p.vars {
		vars[k] = v
	}
	return vars
}

func (p *Parser) Consts() map[string]float64 {
	consts := make(map[string]float64, len(p.consts))
	for k, v := range p.consts {
		consts[k] = v
	}
	return consts
}

func (p *Parser) SetArgSep(sep rune) {
	p.argSep = sep
	p.touch()
}

func (p *Parser) ArgSep() rune {
	return p.argSep
}

// SetDecimalPoint overrides the decimal point of the locale profile. Zero restores the locale's own.
func (p *Parser) SetDecimalPoint(r rune) {
	p.decimal = r
	p.touch()
}

// SetThousandsSep overrides the group separator of the locale profile. Zero restores the locale's own.
func (p *Parser) SetThousandsSep(r rune) {
	p.group = r
	p.touch()
}

func (p *Parser) DecimalPoint() rune {
	return p.numeralProfile().Decimal
}

func (p *Parser) ThousandsSep() rune {
	return p.numeralProfile().Group
}

// SetCNumbers switches between canonical numerals and the numerals of the locale profile.
func (p *Parser) SetCNumbers(enabled bool) {
	p.cNumbers = enabled
	p.defineLocaleSigns()
	p.touch()
}

func (p *Parser) CNumbers() bool {
	return p.cNumbers
}

func (p *Parser) SetLocale(profile numeral.Profile) {
	p.locale = profile
	p.defineLocaleSigns()
	p.touch()
}

func (p *Parser) EnableOptimizer(enabled bool) {
	p.optimize = enabled
	p.touch()
}

// EnableBuiltInOprt toggles the built in binary operators. Parentheses and the conditional stay available.
func (p *Parser) EnableBuiltInOprt(enabled bool) {
	p.builtInOps = enabled
	p.touch()
}

func (p *Parser) HasBuiltInOprt() bool {
	return p.builtInOps
}

func (p *Parser) SetVarFactory(f VarFactory) {
	p.factory = f
	p.touch()
}

func (p *Parser) SetIgnoreUndefined(enabled bool) {
	p.ignoreUndefined = enabled
	p.touch()
}

// SetExpr sets and compiles the formula.
func (p *Parser) SetExpr(formula string) error {
	p.formula = formula
	p.touch()
	return p.compile()
}

func (p *Parser) Expr() string {
	return p.formula
}

func (p *Parser) withFormula(err error) error {
	if e, ok := err.(*Error); ok {
		c := *e
		c.Formula = p.formula
		return &c
	}
	return err
}

func (p *Parser) compile() error {
	p.prog, p.vm = nil, nil

	prof := p.numeralProfile()
	if err := prof.Validate(); err != nil {
		return p.withFormula(newError(ErrLocale, -1, err.Error()))
	}

	if prof.Decimal == p.argSep {
		return p.withFormula(newError(ErrLocale, -1, string(p.argSep)))
	}

	if prof.Group == p.argSep {
		// the argument separator wins; numerals are read without grouping
		prof.Group = 0
	}

	rd := newReader(p, p.formula, prof)
	c := &compiler{
		rd:                  rd,
		b:                   &builder{optimize: p.optimize, mathExceptions: p.mathExceptions},
		log:                 p.log,
		dump:                p.dumpStack,
		allowSubexpressions: p.allowSubexpressions,
	}

	prog, err := c.run()
	if err != nil {
		return p.withFormula(err)
	}

	p.prog = prog
	p.vm = newMachine(prog, p.mathExceptions)
	p.used = rd.used
	p.tokens = rd.tokens
	p.numbers = rd.numbers
	p.dirty = false

	if p.dumpByteCode {
		p.log.Debug("Compiled formula", zap.String("formula", p.formula), zap.String("bytecode", prog.Dump(p.arena)))
	}

	return nil
}

func (p *Parser) ensureCompiled() error {
	if p.dirty || p.prog == nil {
		return p.compile()
	}
	return nil
}

// Program returns the compiled program of the current formula.
func (p *Parser) Program() (*Program, error) {
	if err := p.ensureCompiled(); err != nil {
		return nil, err
	}
	return p.prog, nil
}

func (p *Parser) evalRaw() ([]float64, error) {
	if err := p.ensureCompiled(); err != nil {
		return nil, err
	}

	res, err := p.vm.run(p.arena.cells, 0, 0)
	if err != nil {
		return nil, p.withFormula(err)
	}

	return res, nil
}

// Eval evaluates the formula and returns its last result.
func (p *Parser) Eval() (float64, error) {
	res, err := p.evalRaw()
	if err != nil {
		return 0, err
	}

	v := res[len(res)-1]
	if err := checkResult(v); err != nil {
		return 0, p.withFormula(err)
	}

	return v, nil
}

// EvalMulti evaluates the formula and returns every result of a separator delimited formula.
func (p *Parser) EvalMulti() ([]float64, error) {
	res, err := p.evalRaw()
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(res))
	for i, v := range res {
		if err := checkResult(v); err != nil {
			return nil, p.withFormula(err)
		}
		out[i] = v
	}

	return out, nil
}

// NumResults returns how many results the compiled formula yields.
func (p *Parser) NumResults() int {
	if p.prog == nil {
		return 0
	}
	return p.prog.Results
}

// UsedVars returns the variables referenced by the compiled formula.
// Names read through the ignore-undefined policy map to NoVar.
func (p *Parser) UsedVars() map[string]Var {
	used := make(map[string]Var, len(p.used))
	for k, v := range p.used {
		used[k] = v
	}
	return used
}

// Tokens maps the position of every identifier of the compiled formula to its text.
func (p *Parser) Tokens() map[int]string {
	return copyPositions(p.tokens)
}

// Numbers maps the position of every numeric literal of the compiled formula to its text.
func (p *Parser) Numbers() map[int]string {
	return copyPositions(p.numbers)
}

func copyPositions(m map[int]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Diff approximates the derivative of the formula with respect to v at the given position
// using a five point stencil. A zero eps picks a step relative to the position.
func (p *Parser) Diff(v Var, at, eps float64) (float64, error) {
	if !p.arena.Contains(v) {
		return 0, newError(ErrInvalidVarPtr, -1, "")
	}

	if isFuzzyNull(eps) {
		if isFuzzyNull(at) {
			eps = 1e-10
		} else {
			eps = 1e-7 * at
		}
	}

	saved := p.arena.Get(v)
	defer p.arena.Set(v, saved)

	var f [4]float64
	for i, x := range [4]float64{at + 2*eps, at + eps, at - eps, at - 2*eps} {
		p.arena.Set(v, x)
		r, err := p.Eval()
		if err != nil {
			return 0, err
		}
		f[i] = r
	}

	return (-f[0] + 8*f[1] - 8*f[2] + f[3]) / (12 * eps), nil
}

// IsSingle reports whether formula is a single numeric literal, optionally signed.
func IsSingle(formula string) bool {
	if strings.TrimSpace(formula) == "" {
		return false
	}

	p := New(nil, IgnoreUndefined(true), WithLogger(zap.NewNop()))
	if err := p.SetExpr(formula); err != nil {
		return false
	}

	if _, err := p.Eval(); err != nil {
		return false
	}

	return len(p.tokens) == 0 && len(p.numbers) == 1
}
