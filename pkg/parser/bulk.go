package parser

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RowError is the failure of a single row of a bulk evaluation.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Cause returns the underlying error so that errors.Cause and CodeOf see the engine error.
func (e *RowError) Cause() error {
	return e.Err
}

// EvalBulk evaluates the formula once per row and returns the last result of each.
// A row holds one value per arena cell, indexed by Var; see Arena.Row.
// Rows are spread over the configured number of workers, each with its own stack.
// Failed rows yield NaN and their RowErrors are combined into the returned error.
func (p *Parser) EvalBulk(rows [][]float64) ([]float64, error) {
	if err := p.ensureCompiled(); err != nil {
		return nil, err
	}

	results := make([]float64, len(rows))
	if len(rows) == 0 {
		return results, nil
	}

	workers := p.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	if workers > len(rows) {
		workers = len(rows)
	}

	width := p.arena.Len()
	cursor := atomic.NewInt64(-1)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			m := newMachine(p.prog, p.mathExceptions)
			for {
				i := int(cursor.Inc())
				if i >= len(rows) {
					return
				}

				row := rows[i]
				if len(row) < width {
					results[i] = math.NaN()
					errs[worker] = multierr.Append(errs[worker], &RowError{Row: i, Err: errors.Errorf("%d values for %d variables", len(row), width)})
					continue
				}

				res, err := m.run(row, i, worker)
				if err == nil {
					results[i] = res[len(res)-1]
					err = checkResult(results[i])
				}

				if err != nil {
					results[i] = math.NaN()
					errs[worker] = multierr.Append(errs[worker], &RowError{Row: i, Err: p.withFormula(err)})
				}
			}
		}(w)
	}

	wg.Wait()

	err := multierr.Combine(errs...)
	if err != nil {
		p.log.Debug("Bulk evaluation failed", zap.Int("rows", len(rows)), zap.Int("failures", len(multierr.Errors(err))))
	}

	return results, err
}
