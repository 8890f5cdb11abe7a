package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// compiler turns the token stream into a program using an operator and a value stack.
type compiler struct {
	rd   *reader
	b    *builder
	log  *zap.Logger
	dump bool

	ops    []token
	vals   []token
	argc   []int
	ifElse int

	allowSubexpressions bool
}

func (c *compiler) pushOp(t token) { c.ops = append(c.ops, t) }

func (c *compiler) topOp() (token, bool) {
	if len(c.ops) == 0 {
		return token{}, false
	}
	return c.ops[len(c.ops)-1], true
}

func (c *compiler) popOp() token {
	t := c.ops[len(c.ops)-1]
	c.ops = c.ops[:len(c.ops)-1]
	return t
}

func (c *compiler) popVal() (token, error) {
	if len(c.vals) == 0 {
		return token{}, newError(ErrUnexpectedOperator, c.rd.pos, "")
	}

	t := c.vals[len(c.vals)-1]
	c.vals = c.vals[:len(c.vals)-1]
	return t, nil
}

// result stands for the value computed by an operator or a function.
func result(pos int) token {
	return token{code: cmdVAL, pos: pos, val: 1}
}

func (c *compiler) run() (*Program, error) {
	c.argc = []int{1}
	prev := token{code: cmdEND}

	for {
		tok, err := c.rd.next()
		if err != nil {
			return nil, err
		}

		if err := c.handle(tok, prev); err != nil {
			return nil, err
		}

		if c.dump {
			c.dumpStacks(tok)
		}

		if tok.code == cmdEND {
			break
		}
		prev = tok
	}

	if c.ifElse > 0 {
		return nil, newError(ErrMissingElseClause, c.rd.pos, "")
	}

	if len(c.vals) == 0 {
		return nil, newError(ErrEmptyExpression, 0, "")
	}

	if c.vals[len(c.vals)-1].code == cmdSTRING {
		return nil, newError(ErrStrResult, c.rd.pos, "")
	}

	prog := c.b.finalize(c.argc[len(c.argc)-1])
	prog.Strings = c.rd.strs
	return prog, nil
}

func (c *compiler) handle(tok, prev token) error {
	switch tok.code {
	case cmdVAR:
		c.vals = append(c.vals, tok)
		c.b.addVar(tok.variable())
	case cmdVAL:
		c.vals = append(c.vals, tok)
		c.b.addVal(tok.value())
	case cmdSTRING:
		c.vals = append(c.vals, tok)
	case cmdELSE:
		c.ifElse--
		if c.ifElse < 0 {
			return newError(ErrMisplacedColon, tok.pos, tok.text)
		}

		if err := c.applyRemaining(); err != nil {
			return err
		}
		c.b.addIfElse(cmdELSE)
		c.pushOp(tok)
	case cmdARGSEP:
		if len(c.argc) == 1 && !c.allowSubexpressions {
			return newError(ErrUnexpectedArgSep, tok.pos, tok.text)
		}

		c.argc[len(c.argc)-1]++
		return c.applyRemaining()
	case cmdEND:
		return c.applyRemaining()
	case cmdBC:
		return c.closeBracket(tok, prev)
	case cmdIF:
		c.ifElse++
		return c.binaryOp(tok)
	case cmdLAND, cmdLOR, cmdLT, cmdGT, cmdLE, cmdGE, cmdNEQ, cmdEQ,
		cmdADD, cmdSUB, cmdMUL, cmdDIV, cmdPOW, cmdASSIGN, cmdOPRTBIN:
		return c.binaryOp(tok)
	case cmdBO:
		c.argc = append(c.argc, 1)
		c.pushOp(tok)
	case cmdOPRTINFIX, cmdFUNC, cmdFUNCBULK, cmdFUNCSTR:
		c.pushOp(tok)
	case cmdOPRTPOSTFIX:
		c.pushOp(tok)
		return c.applyFunc(1)
	default:
		return internalError("unexpected %s token at %d", tok.code, tok.pos)
	}

	return nil
}

func (c *compiler) closeBracket(tok, prev token) error {
	// an empty pair of brackets holds no argument
	if prev.code == cmdBO {
		c.argc[len(c.argc)-1]--
	}

	if err := c.applyRemaining(); err != nil {
		return err
	}

	top, ok := c.topOp()
	if !ok || top.code != cmdBO {
		return nil
	}

	argc := c.argc[len(c.argc)-1]
	c.argc = c.argc[:len(c.argc)-1]
	c.popOp()

	top, ok = c.topOp()
	if argc > 1 && (!ok || !top.code.isFunction()) {
		return newError(ErrUnexpectedArg, tok.pos, tok.text)
	}

	if ok && top.code != cmdOPRTINFIX && top.code != cmdOPRTBIN && top.hasCallback() {
		return c.applyFunc(argc)
	}

	return nil
}

func (c *compiler) binaryOp(tok token) error {
	for {
		top, ok := c.topOp()
		if !ok || top.code == cmdBO || top.code == cmdELSE || top.code == cmdIF {
			break
		}

		p1, p2 := top.precedence(), tok.precedence()
		if top.code == tok.code {
			if assoc := tok.associativity(); (assoc == AssocRight && p1 <= p2) || (assoc == AssocLeft && p1 < p2) {
				break
			}
		} else if p1 < p2 {
			break
		}

		var err error
		if top.code == cmdOPRTINFIX {
			err = c.applyFunc(1)
		} else {
			err = c.applyBinary()
		}

		if err != nil {
			return err
		}
	}

	if tok.code == cmdIF {
		c.b.addIfElse(cmdIF)
	}

	c.pushOp(tok)
	return nil
}

func (c *compiler) applyRemaining() error {
	for {
		top, ok := c.topOp()
		if !ok || top.code == cmdBO || top.code == cmdIF {
			return nil
		}

		var err error
		switch {
		case top.code == cmdOPRTINFIX:
			err = c.applyFunc(1)
		case top.code == cmdOPRTBIN || top.code <= cmdASSIGN:
			err = c.applyBinary()
		case top.code == cmdELSE:
			err = c.applyIfElse()
		default:
			return internalError("pending %s operator", top.code)
		}

		if err != nil {
			return err
		}
	}
}

func (c *compiler) applyBinary() error {
	top, _ := c.topOp()
	if top.code == cmdOPRTBIN {
		return c.applyFunc(2)
	}

	rhs, err := c.popVal()
	if err != nil {
		return err
	}

	lhs, err := c.popVal()
	if err != nil {
		return err
	}

	op := c.popOp()
	if rhs.code == cmdSTRING || lhs.code == cmdSTRING {
		return newError(ErrOprtTypeConflict, op.pos, op.text)
	}

	if op.code == cmdASSIGN {
		if lhs.code != cmdVAR {
			return newError(ErrUnexpectedOperator, op.pos, op.text)
		}
		c.b.addAssign(lhs.variable())
	} else if err := c.b.addOp(Op(op.code)); err != nil {
		return err
	}

	c.vals = append(c.vals, result(op.pos))
	return nil
}

func (c *compiler) applyFunc(argc int) error {
	top, ok := c.topOp()
	if !ok || !top.hasCallback() {
		return nil
	}

	fn := c.popOp()
	cb := fn.callback()
	if fn.code == cmdOPRTBIN {
		argc = cb.arity
	}

	isStr := fn.code == cmdFUNCSTR
	required := cb.arity
	numeric := argc
	if isStr {
		required++
		numeric--
	}

	if cb.arity >= 0 && argc > required {
		return newError(ErrTooManyParams, fn.pos, fn.text)
	}

	if fn.code != cmdOPRTBIN && cb.arity >= 0 && argc < required {
		return newError(ErrTooFewParams, fn.pos, fn.text)
	}

	for i := 0; i < numeric; i++ {
		arg, err := c.popVal()
		if err != nil {
			return err
		}

		if arg.code == cmdSTRING {
			return newError(ErrValExpected, fn.pos, fn.text)
		}
	}

	switch fn.code {
	case cmdFUNCSTR:
		arg, err := c.popVal()
		if err != nil {
			return err
		}

		if arg.code != cmdSTRING {
			return newError(ErrStringExpected, fn.pos, fn.text)
		}
		c.b.addStrFun(cb, numeric, arg.strIndex())
	default:
		c.b.addFun(cb, numeric)
	}

	c.vals = append(c.vals, result(fn.pos))
	return nil
}

func (c *compiler) applyIfElse() error {
	for {
		top, ok := c.topOp()
		if !ok || top.code != cmdELSE {
			return nil
		}
		c.popOp()

		if len(c.vals) < 3 {
			return newError(ErrMisplacedColon, top.pos, top.text)
		}

		elseVal, _ := c.popVal()
		thenVal, _ := c.popVal()
		c.popVal()

		if thenVal.code == cmdSTRING || elseVal.code == cmdSTRING {
			return newError(ErrOprtTypeConflict, top.pos, top.text)
		}
		c.vals = append(c.vals, thenVal)

		ifTok, ok := c.topOp()
		if !ok || ifTok.code != cmdIF {
			return newError(ErrMisplacedColon, top.pos, top.text)
		}
		c.popOp()

		c.b.addIfElse(cmdENDIF)
	}
}

func (c *compiler) dumpStacks(tok token) {
	names := func(ts []token) string {
		parts := make([]string, len(ts))
		for i, t := range ts {
			parts[i] = t.code.String()
			if t.text != "" {
				parts[i] = fmt.Sprintf("%s(%s)", t.code, t.text)
			}
		}
		return strings.Join(parts, " ")
	}

	c.log.Debug("Compiler stacks",
		zap.Stringer("token", tok.code),
		zap.String("operators", names(c.ops)),
		zap.String("values", names(c.vals)),
		zap.Ints("argc", c.argc))
}
