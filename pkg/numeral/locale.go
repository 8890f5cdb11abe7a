package numeral

import (
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// fallbackGroup is used for locales that never group digits.
const fallbackGroup = ' '

// ForTag derives the numeral profile of a locale from its CLDR number formatting data.
func ForTag(tag language.Tag) (Profile, error) {
	pr := message.NewPrinter(tag)
	prof := Profile{Plus: '+', ExpLower: 'e', ExpUpper: 'E'}

	for d := 0; d < 10; d++ {
		r, err := single(pr.Sprint(number.Decimal(d)))
		if err != nil {
			return Profile{}, errors.Wrapf(err, "digit %d of %s", d, tag)
		}
		prof.Digits[d] = r
	}

	minus, err := between(pr.Sprint(number.Decimal(-1)), prof.Digits[1], true)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "negative sign of %s", tag)
	}
	prof.Minus = minus

	dec, err := between(pr.Sprint(number.Decimal(1.5, number.MinFractionDigits(1))), prof.Digits[1], false)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "decimal point of %s", tag)
	}
	prof.Decimal = dec

	prof.Group = fallbackGroup
	grouped := []rune(pr.Sprint(number.Decimal(1234567)))
	if len(grouped) > 7 && grouped[1] != prof.Digits[2] {
		prof.Group = grouped[1]
	}

	for _, r := range pr.Sprint(number.Scientific(1500)) {
		if unicode.IsLetter(r) {
			prof.ExpLower = unicode.ToLower(r)
			prof.ExpUpper = unicode.ToUpper(r)
			break
		}
	}

	if err := prof.Validate(); err != nil {
		return Profile{}, errors.Wrapf(err, "locale %s", tag)
	}

	return prof, nil
}

// Parse derives the numeral profile of a BCP 47 locale name such as "de-DE".
func Parse(locale string) (Profile, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Profile{}, errors.Wrapf(ErrUnsupportedLocale, "%s: %v", locale, err)
	}

	return ForTag(tag)
}

func single(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.Wrapf(ErrUnsupportedLocale, "glyph %q is not a single character", s)
	}

	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// between extracts the single glyph written before (or after) the digit one in s.
func between(s string, one rune, before bool) (rune, error) {
	runes := []rune(s)
	idx := -1
	for i, r := range runes {
		if r == one {
			idx = i
			break
		}
	}

	if idx < 0 {
		return 0, errors.Wrapf(ErrUnsupportedLocale, "cannot locate digit in %q", s)
	}

	var rest []rune
	if before {
		rest = runes[:idx]
	} else {
		rest = runes[idx+1:]
		if len(rest) > 0 {
			rest = rest[:len(rest)-1]
		}
	}

	return single(string(rest))
}
