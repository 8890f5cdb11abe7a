package calculator

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charithe/formula/pkg/parser"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseDefinitions(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		want     *Definitions
		wantCode parser.Code
		wantErr  bool
	}{
		{
			name: "full",
			input: `
constants:
  g: 9.81
string_constants:
  unit: "m/s2"
variables:
  mass: 2
`,
			want: &Definitions{
				Constants:       map[string]float64{"g": 9.81},
				StringConstants: map[string]string{"unit": "m/s2"},
				Variables:       map[string]float64{"mass": 2},
			},
		},
		{
			name:  "empty",
			input: "",
			want:  &Definitions{},
		},
		{
			name:    "unknownField",
			input:   "functions:\n  f: 1\n",
			wantErr: true,
		},
		{
			name:     "invalidName",
			input:    "constants:\n  2pi: 6.28\n",
			wantErr:  true,
			wantCode: parser.ErrInvalidName,
		},
		{
			name:     "clashWithBuiltin",
			input:    "variables:\n  sin: 1\n",
			wantErr:  true,
			wantCode: parser.ErrNameConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			have, err := ParseDefinitions(strings.NewReader(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				if tc.wantCode != 0 {
					require.Equal(t, tc.wantCode, parser.CodeOf(err))
				}
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, have)
		})
	}
}

func TestLoadDefinitions(t *testing.T) {
	dir, err := ioutil.TempDir("", "defs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "defs.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("constants:\n  g: 9.81\nvariables:\n  mass: 2\n"), 0600))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)

	p := parser.New(nil, parser.WithLogger(zap.NewNop()))
	require.NoError(t, defs.Apply(p))
	require.NoError(t, p.SetExpr("mass * g"))

	have, err := p.Eval()
	require.NoError(t, err)
	require.InDelta(t, 19.62, have, 1e-12)

	_, err = LoadDefinitions(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
