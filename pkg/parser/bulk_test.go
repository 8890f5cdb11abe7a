package parser

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestEvalBulk(t *testing.T) {
	testCases := []struct {
		name        string
		formula     string
		opts        []Option
		rows        [][]float64
		wantResults []float64
		wantFailed  []int
	}{
		{
			name:        "product",
			formula:     "a*b",
			rows:        [][]float64{{1, 2}, {3, 4}, {5, 6}},
			wantResults: []float64{2, 12, 30},
		},
		{
			name:        "singleWorker",
			formula:     "a*2+b",
			opts:        []Option{BulkWorkers(1)},
			rows:        [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}},
			wantResults: []float64{3, 6, 9, 12},
		},
		{
			name:        "assignmentStaysInRow",
			formula:     "a = a + b",
			rows:        [][]float64{{1, 1}, {2, 3}},
			wantResults: []float64{2, 5},
		},
		{
			name:        "rowIndex",
			formula:     "rowid() * 10",
			rows:        [][]float64{{0, 0}, {0, 0}, {0, 0}},
			wantResults: []float64{0, 10, 20},
		},
		{
			name:        "failedRows",
			formula:     "1/a",
			opts:        []Option{MathExceptions(true), BulkWorkers(3)},
			rows:        [][]float64{{1, 0}, {0, 0}, {4, 0}, {0, 0}},
			wantResults: []float64{1, math.NaN(), 0.25, math.NaN()},
			wantFailed:  []int{1, 3},
		},
		{
			name:        "shortRow",
			formula:     "a+b",
			rows:        [][]float64{{1, 2}, {1}},
			wantResults: []float64{3, math.NaN()},
			wantFailed:  []int{1},
		},
		{
			name:        "noRows",
			formula:     "a+b",
			rows:        nil,
			wantResults: []float64{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestParser(t, tc.opts...)
			_, err := p.NewVar("a", 0)
			require.NoError(t, err)
			_, err = p.NewVar("b", 0)
			require.NoError(t, err)
			require.NoError(t, p.DefineBulkFun("rowid", 0, func(row, _ int, _ []float64) (float64, error) {
				return float64(row), nil
			}))

			require.NoError(t, p.SetExpr(tc.formula))
			have, err := p.EvalBulk(tc.rows)
			require.Len(t, have, len(tc.wantResults))

			for i, want := range tc.wantResults {
				if math.IsNaN(want) {
					require.True(t, math.IsNaN(have[i]), "row %d", i)
					continue
				}
				require.Equal(t, want, have[i], "row %d", i)
			}

			if len(tc.wantFailed) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var failed []int
			for _, e := range multierr.Errors(err) {
				rowErr, ok := e.(*RowError)
				require.True(t, ok)
				require.Contains(t, e.Error(), fmt.Sprintf("row %d: ", rowErr.Row))
				failed = append(failed, rowErr.Row)
			}
			require.ElementsMatch(t, tc.wantFailed, failed)
		})
	}

	t.Run("matchesSequentialEval", func(t *testing.T) {
		p := newTestParser(t, BulkWorkers(4))
		x, err := p.NewVar("x", 0)
		require.NoError(t, err)
		require.NoError(t, p.SetExpr("x^2 - 3*x + sin(x)"))

		rows := make([][]float64, 500)
		for i := range rows {
			rows[i] = []float64{float64(i) / 10}
		}

		have, err := p.EvalBulk(rows)
		require.NoError(t, err)

		for i, row := range rows {
			p.Arena().Set(x, row[0])
			want, err := p.Eval()
			require.NoError(t, err)
			require.Equal(t, want, have[i])
		}
	})

	t.Run("compileError", func(t *testing.T) {
		p := newTestParser(t)
		require.Error(t, p.SetExpr("1+"))

		_, err := p.EvalBulk([][]float64{{}})
		require.Equal(t, ErrUnexpectedEOF, CodeOf(err))
	})

	t.Run("rowErrorCode", func(t *testing.T) {
		p := newTestParser(t)
		_, err := p.NewVar("a", 0)
		require.NoError(t, err)
		require.NoError(t, p.SetExpr("sqrt(a)"))

		_, err = p.EvalBulk([][]float64{{-1}})
		require.Equal(t, ErrResultNaN, CodeOf(err))
		require.True(t, IsEvalError(err))
	})
}
