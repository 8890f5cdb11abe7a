package parser

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charithe/formula/pkg/numeral"
)

// syntaxFlags is the set of token kinds that may not follow the current one.
type syntaxFlags int

const (
	noBO syntaxFlags = 1 << iota
	noBC
	noVAL
	noVAR
	noARGSEP
	noFUN
	noOPT
	noPOSTOP
	noINFIXOP
	noEND
	noSTR
	noASSIGN
	noIF
	noELSE

	sfStartOfLine = noOPT | noBC | noPOSTOP | noASSIGN | noIF | noELSE | noARGSEP
	noANY         = ^syntaxFlags(0)
)

const (
	extraNameChars  = "_@#'\\"
	extraOprtChars  = "+-*^/?<>=#!$%&|~'_{}"
	extraInfixChars = "/+-*^?<>=#!$%&|~'_"
)

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(extraNameChars, r)
}

// reader splits a formula into tokens and rejects tokens that cannot follow the previous one.
type reader struct {
	p        *Parser
	src      []rune
	pos      int
	flags    syntaxFlags
	brackets int
	last     token
	profile  numeral.Profile
	argSep   rune

	binOps     []string
	infixOps   []string
	postfixOps []string

	strs    []string
	used    map[string]Var
	tokens  map[int]string
	numbers map[int]string
}

func newReader(p *Parser, formula string, profile numeral.Profile) *reader {
	return &reader{
		p:          p,
		src:        []rune(formula),
		flags:      sfStartOfLine,
		last:       token{code: cmdEND},
		profile:    profile,
		argSep:     p.argSep,
		binOps:     longestFirst(p.oprts),
		infixOps:   longestFirst(p.infix),
		postfixOps: longestFirst(p.postfix),
		used:       make(map[string]Var),
		tokens:     make(map[int]string),
		numbers:    make(map[int]string),
	}
}

func longestFirst(m map[string]*callback) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		li, lj := len([]rune(names[i])), len([]rune(names[j]))
		if li != lj {
			return li > lj
		}
		return names[i] < names[j]
	})

	return names
}

func (r *reader) isOprtChar(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(extraOprtChars, c) || r.profile.IsSign(c)
}

func (r *reader) isInfixChar(c rune) bool {
	return strings.ContainsRune(extraInfixChars, c) || r.profile.IsSign(c)
}

// extract returns the longest run of runes accepted by valid, starting at the current position.
func (r *reader) extract(valid func(rune) bool) (string, int) {
	end := r.pos
	for end < len(r.src) && valid(r.src[end]) {
		end++
	}

	return string(r.src[r.pos:end]), end
}

func (r *reader) name() (string, int) {
	return r.extract(isNameChar)
}

func (r *reader) hasPrefix(s string) bool {
	rs := []rune(s)
	if r.pos+len(rs) > len(r.src) {
		return false
	}

	for i, c := range rs {
		if r.src[r.pos+i] != c {
			return false
		}
	}

	return true
}

func (r *reader) fail(code Code, tok string) (token, bool, error) {
	return token{}, false, newError(code, r.pos, tok)
}

func (r *reader) next() (token, error) {
	for r.pos < len(r.src) && r.src[r.pos] <= ' ' {
		r.pos++
	}

	scanners := [...]func() (token, bool, error){
		r.end,
		r.userOprt,
		r.function,
		r.builtin,
		r.argSeparator,
		r.value,
		r.variable,
		r.strConst,
		r.str,
		r.infixOprt,
		r.postfixOprt,
		r.unknownFunction,
		r.undefinedVar,
	}

	for _, scan := range scanners {
		tok, ok, err := scan()
		if err != nil {
			return token{}, err
		}

		if ok {
			r.last = tok
			return tok, nil
		}
	}

	tok, _ := r.name()
	if tok == "" {
		tok = string(r.src[r.pos])
	}

	return token{}, newError(ErrUnassignableToken, r.pos, tok)
}

func (r *reader) end() (token, bool, error) {
	if r.pos < len(r.src) {
		return token{}, false, nil
	}

	if r.flags&noEND != 0 {
		return r.fail(ErrUnexpectedEOF, "")
	}

	if r.brackets > 0 {
		return r.fail(ErrMissingParens, ")")
	}

	r.flags = 0
	return token{code: cmdEND, pos: r.pos}, true, nil
}

func (r *reader) userOprt() (token, bool, error) {
	tok, _ := r.extract(r.isOprtChar)
	if tok == "" {
		tok, _ = r.name()
	}

	if tok == "" {
		return token{}, false, nil
	}

	if r.p.builtInOps {
		for _, b := range builtinOprt {
			if b == tok {
				return token{}, false, nil
			}
		}
	}

	for _, id := range r.binOps {
		if !r.hasPrefix(id) {
			continue
		}

		if r.flags&noOPT != 0 {
			// binary and infix operators may share their identifiers
			return r.infixOprt()
		}

		t := token{code: cmdOPRTBIN, text: id, pos: r.pos, cb: r.p.oprts[id]}
		r.pos += len([]rune(id))
		r.flags = noBC | noOPT | noARGSEP | noPOSTOP | noEND | noASSIGN
		return t, true, nil
	}

	return token{}, false, nil
}

func (r *reader) function() (token, bool, error) {
	name, end := r.name()
	if name == "" || end >= len(r.src) || r.src[end] != '(' {
		return token{}, false, nil
	}

	cb, ok := r.p.funs[name]
	if !ok {
		return token{}, false, nil
	}

	if r.flags&noFUN != 0 {
		return r.fail(ErrUnexpectedFun, name)
	}

	t := token{code: cmdFUNC, text: name, pos: r.pos, cb: cb}
	switch cb.kind {
	case kindStr:
		t.code = cmdFUNCSTR
	case kindBulk:
		t.code = cmdFUNCBULK
	}

	r.tokens[r.pos] = name
	r.pos = end
	r.flags = noANY ^ noBO
	return t, true, nil
}

func (r *reader) builtin() (token, bool, error) {
	for i, op := range builtinOprt {
		if !r.hasPrefix(op) {
			continue
		}

		c := cmd(i)
		switch {
		case c <= cmdASSIGN:
			if c == cmdASSIGN && r.flags&noASSIGN != 0 {
				return r.fail(ErrUnexpectedOperator, op)
			}

			if !r.p.builtInOps {
				continue
			}

			if r.flags&noOPT != 0 {
				// maybe a sign rather than a binary operator
				tok, ok, err := r.infixOprt()
				if ok || err != nil {
					return tok, ok, err
				}
				return r.fail(ErrUnexpectedOperator, op)
			}

			r.flags = noBC | noOPT | noARGSEP | noPOSTOP | noASSIGN | noIF | noELSE | noEND
		case c == cmdBO:
			if r.flags&noBO != 0 {
				return r.fail(ErrUnexpectedParens, op)
			}

			if r.last.code.isFunction() {
				r.flags = noOPT | noEND | noARGSEP | noPOSTOP | noASSIGN | noIF | noELSE
			} else {
				r.flags = noBC | noOPT | noEND | noARGSEP | noPOSTOP | noASSIGN | noIF | noELSE
			}
			r.brackets++
		case c == cmdBC:
			if r.flags&noBC != 0 {
				return r.fail(ErrUnexpectedParens, op)
			}

			r.flags = noBO | noVAR | noVAL | noFUN | noINFIXOP | noSTR | noASSIGN
			r.brackets--
			if r.brackets < 0 {
				return r.fail(ErrUnexpectedParens, op)
			}
		case c == cmdIF, c == cmdELSE:
			if (c == cmdIF && r.flags&noIF != 0) || (c == cmdELSE && r.flags&noELSE != 0) {
				return r.fail(ErrUnexpectedConditional, op)
			}

			r.flags = noBC | noPOSTOP | noEND | noOPT | noIF | noELSE
		default:
			panic(internalError("unhandled built in operator %q", op))
		}

		t := token{code: c, text: op, pos: r.pos}
		r.pos += len([]rune(op))
		return t, true, nil
	}

	return token{}, false, nil
}

func (r *reader) argSeparator() (token, bool, error) {
	if r.src[r.pos] != r.argSep {
		return token{}, false, nil
	}

	if r.flags&noARGSEP != 0 {
		return r.fail(ErrUnexpectedArgSep, string(r.argSep))
	}

	t := token{code: cmdARGSEP, text: string(r.argSep), pos: r.pos}
	r.pos++
	r.flags = noBC | noOPT | noEND | noARGSEP | noPOSTOP | noASSIGN
	return t, true, nil
}

func (r *reader) value() (token, bool, error) {
	if name, end := r.name(); name != "" {
		if v, ok := r.p.consts[name]; ok {
			if r.flags&noVAL != 0 {
				return r.fail(ErrUnexpectedVal, name)
			}

			t := token{code: cmdVAL, text: name, pos: r.pos, val: v}
			r.tokens[r.pos] = name
			r.pos = end
			r.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP | noSTR | noASSIGN
			return t, true, nil
		}
	}

	n, v, ok := numeral.Read(r.src, r.pos, r.profile)
	if !ok {
		return token{}, false, nil
	}

	text := string(r.src[r.pos : r.pos+n])
	if r.flags&noVAL != 0 {
		return r.fail(ErrUnexpectedVal, text)
	}

	t := token{code: cmdVAL, text: text, pos: r.pos, val: v}
	r.numbers[r.pos] = text
	r.pos += n
	r.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP | noSTR | noASSIGN
	return t, true, nil
}

func (r *reader) variable() (token, bool, error) {
	name, end := r.name()
	if name == "" {
		return token{}, false, nil
	}

	v, ok := r.p.vars[name]
	if !ok {
		return token{}, false, nil
	}

	if r.flags&noVAR != 0 {
		return r.fail(ErrUnexpectedVar, name)
	}

	t := token{code: cmdVAR, text: name, pos: r.pos, v: v}
	r.used[name] = v
	r.tokens[r.pos] = name
	r.pos = end
	r.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP | noSTR
	return t, true, nil
}

func (r *reader) strConst() (token, bool, error) {
	name, end := r.name()
	if name == "" {
		return token{}, false, nil
	}

	s, ok := r.p.strConsts[name]
	if !ok {
		return token{}, false, nil
	}

	if r.flags&noSTR != 0 {
		return r.fail(ErrUnexpectedStr, name)
	}

	r.strs = append(r.strs, s)
	t := token{code: cmdSTRING, text: name, pos: r.pos, str: len(r.strs) - 1}
	r.tokens[r.pos] = name
	r.pos = end
	r.flags = noANY ^ (noBC | noOPT | noEND | noARGSEP)
	return t, true, nil
}

func (r *reader) str() (token, bool, error) {
	if r.src[r.pos] != '"' {
		return token{}, false, nil
	}

	var sb strings.Builder
	i := r.pos + 1
	for ; i < len(r.src); i++ {
		if r.src[i] == '\\' && i+1 < len(r.src) && r.src[i+1] == '"' {
			sb.WriteRune('"')
			i++
			continue
		}

		if r.src[i] == '"' {
			break
		}

		sb.WriteRune(r.src[i])
	}

	if i >= len(r.src) {
		return r.fail(ErrUnterminatedString, string(r.src[r.pos:]))
	}

	if r.flags&noSTR != 0 {
		return r.fail(ErrUnexpectedStr, string(r.src[r.pos:i+1]))
	}

	r.strs = append(r.strs, sb.String())
	t := token{code: cmdSTRING, text: sb.String(), pos: r.pos, str: len(r.strs) - 1}
	r.pos = i + 1
	r.flags = noANY ^ (noARGSEP | noBC | noOPT | noEND)
	return t, true, nil
}

func (r *reader) infixOprt() (token, bool, error) {
	tok, _ := r.extract(r.isInfixChar)
	if tok == "" {
		return token{}, false, nil
	}

	for _, id := range r.infixOps {
		if !strings.HasPrefix(tok, id) {
			continue
		}

		if r.flags&noINFIXOP != 0 {
			return r.fail(ErrUnexpectedOperator, id)
		}

		t := token{code: cmdOPRTINFIX, text: id, pos: r.pos, cb: r.p.infix[id]}
		r.pos += len([]rune(id))
		r.flags = noPOSTOP | noINFIXOP | noOPT | noBC | noSTR | noASSIGN | noEND | noARGSEP
		return t, true, nil
	}

	return token{}, false, nil
}

func (r *reader) postfixOprt() (token, bool, error) {
	if r.flags&noPOSTOP != 0 {
		return token{}, false, nil
	}

	tok, _ := r.extract(r.isOprtChar)
	if tok == "" {
		return token{}, false, nil
	}

	for _, id := range r.postfixOps {
		if !strings.HasPrefix(tok, id) {
			continue
		}

		t := token{code: cmdOPRTPOSTFIX, text: id, pos: r.pos, cb: r.p.postfix[id]}
		r.pos += len([]rune(id))
		r.flags = noVAL | noVAR | noFUN | noBO | noPOSTOP | noSTR | noASSIGN
		return t, true, nil
	}

	return token{}, false, nil
}

func (r *reader) unknownFunction() (token, bool, error) {
	name, end := r.name()
	if name == "" || end >= len(r.src) || r.src[end] != '(' || unicode.IsDigit([]rune(name)[0]) {
		return token{}, false, nil
	}

	return r.fail(ErrUnknownFunction, name)
}

func (r *reader) undefinedVar() (token, bool, error) {
	if r.p.factory == nil && !r.p.ignoreUndefined {
		return token{}, false, nil
	}

	name, end := r.name()
	if name == "" || unicode.IsDigit([]rune(name)[0]) {
		return token{}, false, nil
	}

	if r.flags&noVAR != 0 {
		return r.fail(ErrUnexpectedVar, name)
	}

	t := token{text: name, pos: r.pos}
	if r.p.factory != nil {
		v := r.p.factory(name, r.p.arena)
		if !r.p.arena.Contains(v) {
			return r.fail(ErrInvalidVarPtr, name)
		}

		r.p.vars[name] = v
		r.used[name] = v
		t.code, t.v = cmdVAR, v
		r.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP | noSTR
	} else {
		r.used[name] = NoVar
		t.code, t.val = cmdVAL, 0
		r.flags = noVAL | noVAR | noFUN | noBO | noPOSTOP | noINFIXOP | noSTR
	}

	r.tokens[r.pos] = name
	r.pos = end
	return t, true, nil
}
