// Package numeral reads and writes numeric literals written with the glyphs of a locale.
package numeral

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedLocale is returned when a locale uses glyphs the reader cannot work with.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Profile is the set of glyphs used to write numbers in a locale.
type Profile struct {
	Digits   [10]rune
	Plus     rune
	Minus    rune
	Decimal  rune
	Group    rune
	ExpLower rune
	ExpUpper rune
}

// C is the canonical profile: ASCII digits, '.' as decimal point and ',' as group separator.
var C = Profile{
	Digits:   [10]rune{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'},
	Plus:     '+',
	Minus:    '-',
	Decimal:  '.',
	Group:    ',',
	ExpLower: 'e',
	ExpUpper: 'E',
}

// WithSeparators returns a copy of the profile with the decimal point and the group separator replaced.
// A zero rune keeps the current glyph.
func (p Profile) WithSeparators(decimal, group rune) Profile {
	if decimal != 0 {
		p.Decimal = decimal
	}

	if group != 0 {
		p.Group = group
	}

	return p
}

// Validate checks that the separators can be told apart from each other and from the other glyphs.
func (p Profile) Validate() error {
	if p.Decimal == p.Group {
		return errors.Wrapf(ErrUnsupportedLocale, "decimal point and group separator are both %q", p.Decimal)
	}

	for _, sep := range []rune{p.Decimal, p.Group} {
		if p.digit(sep) >= 0 || sep == p.Plus || sep == p.Minus || sep == p.ExpLower || sep == p.ExpUpper {
			return errors.Wrapf(ErrUnsupportedLocale, "separator %q collides with another glyph", sep)
		}
	}

	return nil
}

// IsSign reports whether r is the positive or the negative sign of the profile.
func (p Profile) IsSign(r rune) bool {
	return r == p.Plus || r == p.Minus
}

func (p Profile) digit(r rune) int {
	for i, d := range p.Digits {
		if d == r {
			return i
		}
	}

	return -1
}

type input int

const (
	inOther input = iota
	inSign
	inGroup
	inDigit
	inDecimal
	inExp
)

type state int

const (
	stFail state = iota
	stInit
	stSign
	stGroup
	stMantissa
	stDecimal
	stFraction
	stExpMark
	stExpSign
	stExponent
	stDone
)

var transitions = [...][6]state{
	stInit:     {stFail, stSign, stFail, stMantissa, stDecimal, stFail},
	stSign:     {stFail, stFail, stFail, stMantissa, stDecimal, stFail},
	stGroup:    {stFail, stFail, stFail, stMantissa, stFail, stFail},
	stMantissa: {stDone, stDone, stGroup, stMantissa, stDecimal, stExpMark},
	stDecimal:  {stFail, stFail, stFail, stFraction, stFail, stFail},
	stFraction: {stDone, stDone, stFail, stFraction, stFail, stExpMark},
	stExpMark:  {stFail, stExpSign, stFail, stExponent, stFail, stFail},
	stExpSign:  {stFail, stFail, stFail, stExponent, stFail, stFail},
	stExponent: {stDone, stFail, stFail, stExponent, stFail, stDone},
}

func (p Profile) classify(r rune) (input, byte) {
	switch {
	case r == p.Plus:
		return inSign, '+'
	case r == p.Minus:
		return inSign, '-'
	case r == p.Group:
		return inGroup, 0
	case r == p.Decimal:
		return inDecimal, '.'
	case r == p.ExpLower || r == p.ExpUpper:
		return inExp, 'e'
	}

	if d := p.digit(r); d >= 0 {
		return inDigit, byte('0' + d)
	}

	return inOther, 0
}

// Read scans the longest numeral starting at text[start].
// It returns the number of runes consumed and the value, or ok=false if no numeral starts there.
func Read(text []rune, start int, p Profile) (n int, v float64, ok bool) {
	if start < 0 || start >= len(text) || p.Validate() != nil {
		return 0, 0, false
	}

	var buf strings.Builder
	st := stInit
	i := start

	for ; st != stDone; i++ {
		in, canonical := inOther, byte(0)
		if i < len(text) {
			in, canonical = p.classify(text[i])
		}

		st = transitions[st][in]
		switch st {
		case stFail:
			return 0, 0, false
		case stDone:
			i--
		default:
			if canonical != 0 {
				buf.WriteByte(canonical)
			}
		}
	}

	v, err := strconv.ParseFloat(buf.String(), 64)
	if err != nil {
		// out of range literals still yield +-Inf
		if ne, isNum := err.(*strconv.NumError); !isNum || ne.Err != strconv.ErrRange {
			return 0, 0, false
		}
	}

	return i - start, v, true
}

// ReadString is a convenience wrapper around Read for a whole string.
func ReadString(s string, p Profile) (n int, v float64, ok bool) {
	return Read([]rune(s), 0, p)
}

// Format writes v with the glyphs of the profile, without grouping.
func (p Profile) Format(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)

	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(p.Digits[r-'0'])
		case r == '.':
			sb.WriteRune(p.Decimal)
		case r == '-':
			sb.WriteRune(p.Minus)
		case r == '+':
			sb.WriteRune(p.Plus)
		case r == 'e':
			sb.WriteRune(p.ExpLower)
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
