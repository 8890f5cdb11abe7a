package parser

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Code identifies a parse or evaluation failure.
type Code int

const (
	ErrUnassignableToken Code = iota + 1
	ErrUnterminatedString
	ErrUnexpectedEOF
	ErrMissingParens
	ErrUnexpectedParens

	ErrUnexpectedOperator
	ErrUnexpectedArgSep
	ErrUnexpectedArg
	ErrUnexpectedVal
	ErrUnexpectedVar
	ErrUnexpectedFun
	ErrUnexpectedStr
	ErrUnexpectedConditional
	ErrMisplacedColon
	ErrMissingElseClause
	ErrEmptyExpression
	ErrOprtTypeConflict
	ErrStringExpected
	ErrValExpected
	ErrStrResult

	ErrUnknownFunction
	ErrTooManyParams
	ErrTooFewParams
	ErrNameConflict
	ErrInvalidName
	ErrInvalidBinOpIdent
	ErrInvalidInfixIdent
	ErrInvalidPostfixIdent
	ErrInvalidFunPtr
	ErrInvalidVarPtr
	ErrBuiltinOverload
	ErrLocale

	ErrTooFewArgs
	ErrDivByZero
	ErrDomain
	ErrResultNaN
	ErrResultInf
	ErrGeneric

	ErrInternal
)

// Category groups error codes by the stage that produced them.
type Category int

const (
	Lexical Category = iota + 1
	Syntax
	Semantic
	Evaluation
	Internal
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Evaluation:
		return "evaluation"
	default:
		return "internal"
	}
}

// Category returns the category the code belongs to.
func (c Code) Category() Category {
	switch {
	case c >= ErrUnassignableToken && c <= ErrUnexpectedParens:
		return Lexical
	case c >= ErrUnexpectedOperator && c <= ErrStrResult:
		return Syntax
	case c >= ErrUnknownFunction && c <= ErrLocale:
		return Semantic
	case c >= ErrTooFewArgs && c <= ErrGeneric:
		return Evaluation
	default:
		return Internal
	}
}

// messages use $TOK$ and $POS$ placeholders.
var messages = map[Code]string{
	ErrUnassignableToken:     `Unexpected token "$TOK$" found at position $POS$.`,
	ErrUnterminatedString:    `Unterminated string starting at position $POS$.`,
	ErrUnexpectedEOF:         `Unexpected end of formula at position $POS$.`,
	ErrMissingParens:         `Missing parenthesis.`,
	ErrUnexpectedParens:      `Unexpected parenthesis "$TOK$" at position $POS$.`,
	ErrUnexpectedOperator:    `Unexpected operator "$TOK$" found at position $POS$.`,
	ErrUnexpectedArgSep:      `Unexpected argument separator at position $POS$.`,
	ErrUnexpectedArg:         `Unexpected argument at position $POS$.`,
	ErrUnexpectedVal:         `Unexpected value "$TOK$" found at position $POS$.`,
	ErrUnexpectedVar:         `Unexpected variable "$TOK$" found at position $POS$.`,
	ErrUnexpectedFun:         `Unexpected function "$TOK$" at position $POS$.`,
	ErrUnexpectedStr:         `Unexpected string token found at position $POS$.`,
	ErrUnexpectedConditional: `The "$TOK$" operator must be preceded by a closing bracket.`,
	ErrMisplacedColon:        `Misplaced colon at position $POS$.`,
	ErrMissingElseClause:     `If-then-else operator is missing an else clause.`,
	ErrEmptyExpression:       `Formula is empty.`,
	ErrOprtTypeConflict:      `No suitable overload for operator "$TOK$" at position $POS$.`,
	ErrStringExpected:        `String function called with a non string type of argument.`,
	ErrValExpected:           `String value used where a numerical argument is expected.`,
	ErrStrResult:             `Function result is a string.`,
	ErrUnknownFunction:       `Unknown function "$TOK$" at position $POS$.`,
	ErrTooManyParams:         `Too many parameters for function "$TOK$" at formula position $POS$.`,
	ErrTooFewParams:          `Too few parameters for function "$TOK$" at formula position $POS$.`,
	ErrNameConflict:          `Name conflict for "$TOK$".`,
	ErrInvalidName:           `Invalid function-, variable- or constant name: "$TOK$".`,
	ErrInvalidBinOpIdent:     `Invalid binary operator identifier: "$TOK$".`,
	ErrInvalidInfixIdent:     `Invalid infix operator identifier: "$TOK$".`,
	ErrInvalidPostfixIdent:   `Invalid postfix operator identifier: "$TOK$".`,
	ErrInvalidFunPtr:         `Invalid callback for "$TOK$".`,
	ErrInvalidVarPtr:         `Invalid variable handle for "$TOK$".`,
	ErrBuiltinOverload:       `Binary operator identifier conflicts with a built in operator: "$TOK$".`,
	ErrLocale:                `Decimal separator is identical to function argument separator.`,
	ErrTooFewArgs:            `Too few arguments for function "$TOK$".`,
	ErrDivByZero:             `Divide by zero.`,
	ErrDomain:                `Domain error in "$TOK$".`,
	ErrResultNaN:             `Result is NaN.`,
	ErrResultInf:             `Result is infinite.`,
	ErrGeneric:               `$TOK$`,
	ErrInternal:              `Internal error.`,
}

// Error describes a failure to compile or evaluate a formula.
type Error struct {
	Code    Code
	Pos     int
	Token   string
	Formula string
	// Value carries the offending result of ErrResultNaN and ErrResultInf.
	Value float64
}

func newError(code Code, pos int, tok string) *Error {
	return &Error{Code: code, Pos: pos, Token: tok}
}

func (e *Error) Error() string {
	msg, ok := messages[e.Code]
	if !ok {
		msg = messages[ErrInternal]
	}

	return strings.NewReplacer("$TOK$", e.Token, "$POS$", fmt.Sprint(e.Pos)).Replace(msg)
}

// Category returns the stage the error belongs to.
func (e *Error) Category() Category {
	return e.Code.Category()
}

// CodeOf returns the code of the engine error wrapped in err, or 0 if there is none.
func CodeOf(err error) Code {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Code
	}

	return 0
}

// IsCompileError reports whether err was raised while reading or compiling a formula.
func IsCompileError(err error) bool {
	switch CodeOf(err).Category() {
	case Lexical, Syntax, Semantic:
		return CodeOf(err) != 0
	default:
		return false
	}
}

// IsEvalError reports whether err was raised while evaluating a compiled formula.
func IsEvalError(err error) bool {
	return CodeOf(err) != 0 && CodeOf(err).Category() == Evaluation
}

// internalError is the panic value used when an engine invariant does not hold.
func internalError(format string, args ...interface{}) *Error {
	return &Error{Code: ErrInternal, Pos: -1, Token: fmt.Sprintf(format, args...)}
}
