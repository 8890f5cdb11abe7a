package parser

// cmd is the kind of a token.
type cmd int

// The first entries are ordered like builtinOprt.
const (
	cmdLE cmd = iota
	cmdGE
	cmdNEQ
	cmdEQ
	cmdLT
	cmdGT
	cmdADD
	cmdSUB
	cmdMUL
	cmdDIV
	cmdPOW
	cmdLAND
	cmdLOR
	cmdASSIGN
	cmdBO
	cmdBC
	cmdIF
	cmdELSE
	cmdENDIF
	cmdARGSEP
	cmdVAR
	cmdVAL
	cmdFUNC
	cmdFUNCSTR
	cmdFUNCBULK
	cmdSTRING
	cmdOPRTBIN
	cmdOPRTPOSTFIX
	cmdOPRTINFIX
	cmdEND
)

// builtinOprt lists the built in operators in matching order.
var builtinOprt = [...]string{"<=", ">=", "!=", "==", "<", ">", "+", "-", "*", "/", "^", "&&", "||", "=", "(", ")", "?", ":"}

var cmdNames = map[cmd]string{
	cmdARGSEP:      "ARG_SEP",
	cmdVAR:         "VAR",
	cmdVAL:         "VAL",
	cmdFUNC:        "FUNC",
	cmdFUNCSTR:     "FUNC_STR",
	cmdFUNCBULK:    "FUNC_BULK",
	cmdSTRING:      "STRING",
	cmdOPRTBIN:     "OPRT_BIN",
	cmdOPRTPOSTFIX: "OPRT_POSTFIX",
	cmdOPRTINFIX:   "OPRT_INFIX",
	cmdENDIF:       "ENDIF",
	cmdEND:         "END",
}

func (c cmd) String() string {
	if int(c) < len(builtinOprt) {
		return builtinOprt[c]
	}

	return cmdNames[c]
}

// isBinaryBuiltin reports whether the token is one of the built in binary operators, excluding assignment.
func (c cmd) isBinaryBuiltin() bool {
	return c >= cmdLE && c <= cmdLOR
}

func (c cmd) isFunction() bool {
	return c == cmdFUNC || c == cmdFUNCSTR || c == cmdFUNCBULK
}

// token is the unit produced by the reader and consumed by the compiler.
// Payload fields are only meaningful for the matching kinds and are read through the accessors.
type token struct {
	code cmd
	text string
	pos  int

	val float64
	v   Var
	cb  *callback
	str int
}

func (t token) value() float64 {
	if t.code != cmdVAL {
		panic(internalError("value read from %s token %q", t.code, t.text))
	}

	return t.val
}

func (t token) variable() Var {
	if t.code != cmdVAR {
		panic(internalError("variable read from %s token %q", t.code, t.text))
	}

	return t.v
}

func (t token) callback() *callback {
	switch t.code {
	case cmdFUNC, cmdFUNCSTR, cmdFUNCBULK, cmdOPRTBIN, cmdOPRTINFIX, cmdOPRTPOSTFIX:
		return t.cb
	default:
		panic(internalError("callback read from %s token %q", t.code, t.text))
	}
}

func (t token) strIndex() int {
	if t.code != cmdSTRING {
		panic(internalError("string index read from %s token %q", t.code, t.text))
	}

	return t.str
}

// hasCallback reports whether the token invokes a user or built in callback.
func (t token) hasCallback() bool {
	switch t.code {
	case cmdFUNC, cmdFUNCSTR, cmdFUNCBULK, cmdOPRTBIN, cmdOPRTINFIX, cmdOPRTPOSTFIX:
		return t.cb != nil
	default:
		return false
	}
}

// Operator precedences.
const (
	PrecLOr     = 1
	PrecLAnd    = 2
	PrecCmp     = 4
	PrecAddSub  = 5
	PrecMulDiv  = 6
	PrecPow     = 7
	PrecInfix   = 6
	PrecPostfix = 6
)

// Assoc is the associativity of a binary operator.
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

func (t token) precedence() int {
	switch t.code {
	case cmdEND:
		return -5
	case cmdARGSEP:
		return -4
	case cmdASSIGN:
		return -1
	case cmdELSE, cmdIF:
		return 0
	case cmdLAND:
		return PrecLAnd
	case cmdLOR:
		return PrecLOr
	case cmdLT, cmdGT, cmdLE, cmdGE, cmdNEQ, cmdEQ:
		return PrecCmp
	case cmdADD, cmdSUB:
		return PrecAddSub
	case cmdMUL, cmdDIV:
		return PrecMulDiv
	case cmdPOW:
		return PrecPow
	case cmdOPRTINFIX, cmdOPRTBIN:
		return t.callback().prec
	default:
		panic(internalError("no precedence for %s token %q", t.code, t.text))
	}
}

func (t token) associativity() Assoc {
	switch t.code {
	case cmdPOW:
		return AssocRight
	case cmdOPRTBIN:
		return t.callback().assoc
	default:
		return AssocLeft
	}
}
