package numeral

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var german = Profile{
	Digits:   C.Digits,
	Plus:     '+',
	Minus:    '-',
	Decimal:  ',',
	Group:    '.',
	ExpLower: 'e',
	ExpUpper: 'E',
}

func TestRead(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		profile   Profile
		start     int
		wantN     int
		wantValue float64
		wantFail  bool
	}{
		{name: "integer", input: "42", profile: C, wantN: 2, wantValue: 42},
		{name: "fraction", input: "3.25", profile: C, wantN: 4, wantValue: 3.25},
		{name: "leadingPoint", input: ".5", profile: C, wantN: 2, wantValue: 0.5},
		{name: "signed", input: "-7", profile: C, wantN: 2, wantValue: -7},
		{name: "exponent", input: "1.5e3", profile: C, wantN: 5, wantValue: 1500},
		{name: "upperExponent", input: "2E-2", profile: C, wantN: 4, wantValue: 0.02},
		{name: "exponentSign", input: "2e+2", profile: C, wantN: 4, wantValue: 200},
		{name: "stopsAtOperator", input: "12+3", profile: C, wantN: 2, wantValue: 12},
		{name: "stopsAtLetter", input: "12x", profile: C, wantN: 2, wantValue: 12},
		{name: "grouped", input: "1,234", profile: C, wantN: 5, wantValue: 1234},
		{name: "offset", input: "x*2.5", profile: C, start: 2, wantN: 3, wantValue: 2.5},
		{name: "germanGrouped", input: "1.234,5", profile: german, wantN: 7, wantValue: 1234.5},
		{name: "germanFraction", input: "0,25", profile: german, wantN: 4, wantValue: 0.25},
		{name: "bareSign", input: "-", profile: C, wantFail: true},
		{name: "barePoint", input: ".", profile: C, wantFail: true},
		{name: "pointAfterFraction", input: "1.2.3", profile: C, wantFail: true},
		{name: "danglingExponent", input: "2e", profile: C, wantFail: true},
		{name: "danglingGroup", input: "1,", profile: C, wantFail: true},
		{name: "groupAfterPoint", input: "1.2,3", profile: C, wantFail: true},
		{name: "letter", input: "abc", profile: C, wantFail: true},
		{name: "empty", input: "", profile: C, wantFail: true},
		{name: "sameSeparators", input: "1.5", profile: C.WithSeparators('.', '.'), wantFail: true},
		{name: "separatorIsDigit", input: "1.5", profile: C.WithSeparators('1', 0), wantFail: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			haveN, haveValue, ok := Read([]rune(tc.input), tc.start, tc.profile)
			if tc.wantFail {
				require.False(t, ok)
				return
			}

			require.True(t, ok)
			require.Equal(t, tc.wantN, haveN)
			require.InDelta(t, tc.wantValue, haveValue, 1e-12)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	profiles := map[string]Profile{
		"c":      C,
		"german": german,
		"arabicDigits": {
			Digits:   [10]rune{'٠', '١', '٢', '٣', '٤', '٥', '٦', '٧', '٨', '٩'},
			Plus:     '+',
			Minus:    '-',
			Decimal:  '٫',
			Group:    '٬',
			ExpLower: 'e',
			ExpUpper: 'E',
		},
	}

	rng := rand.New(rand.NewSource(7))
	values := []float64{0, 1, -1, 0.1, 123456789.125, 1e-300, -2.5e300, math.MaxFloat64, math.SmallestNonzeroFloat64}
	for i := 0; i < 200; i++ {
		values = append(values, (rng.Float64()-0.5)*math.Pow(10, float64(rng.Intn(40)-20)))
	}

	for name, prof := range profiles {
		t.Run(name, func(t *testing.T) {
			for _, v := range values {
				s := prof.Format(v)
				n, have, ok := ReadString(s, prof)
				require.True(t, ok, s)
				require.Equal(t, len([]rune(s)), n, s)
				require.Equal(t, v, have, s)
			}
		})
	}
}

func TestForTag(t *testing.T) {
	testCases := []struct {
		name        string
		tag         language.Tag
		wantDecimal rune
		wantGroup   rune
	}{
		{name: "english", tag: language.English, wantDecimal: '.', wantGroup: ','},
		{name: "german", tag: language.German, wantDecimal: ',', wantGroup: '.'},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prof, err := ForTag(tc.tag)
			require.NoError(t, err)
			require.Equal(t, tc.wantDecimal, prof.Decimal)
			require.Equal(t, tc.wantGroup, prof.Group)
			require.Equal(t, C.Digits, prof.Digits)

			s := prof.Format(-1234.5)
			n, v, ok := ReadString(s, prof)
			require.True(t, ok)
			require.Equal(t, len([]rune(s)), n)
			require.Equal(t, -1234.5, v)
		})
	}

	t.Run("invalidName", func(t *testing.T) {
		_, err := Parse("not a locale!")
		require.Error(t, err)
		require.Equal(t, ErrUnsupportedLocale, errors.Cause(err))
	})
}
