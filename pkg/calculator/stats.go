package calculator

import (
	"context"
	"time"

	"github.com/charithe/formula/pkg/parser"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.uber.org/zap"
)

var (
	MeasureCompileLatency = stats.Float64("formula/compile_latency", "Time taken to compile a formula", stats.UnitMilliseconds)
	MeasureEvaluations    = stats.Int64("formula/evaluations", "Number of evaluated formulas and bulk rows", stats.UnitDimensionless)
	MeasureErrors         = stats.Int64("formula/errors", "Number of failed compilations and evaluations", stats.UnitDimensionless)

	// KeyCategory tags errors with the stage that raised them.
	KeyCategory = mustNewKey("category")
	// KeyMethod tags evaluations with the RPC that requested them.
	KeyMethod = mustNewKey("method")
)

// Views of the service measures, to be registered by the process exporting them.
var Views = []*view.View{
	{
		Name:        "formula/compile_latency",
		Description: "Distribution of formula compile times",
		Measure:     MeasureCompileLatency,
		Aggregation: view.Distribution(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 50),
	},
	{
		Name:        "formula/evaluations",
		Description: "Count of evaluations by method",
		Measure:     MeasureEvaluations,
		TagKeys:     []tag.Key{KeyMethod},
		Aggregation: view.Sum(),
	},
	{
		Name:        "formula/errors",
		Description: "Count of errors by category",
		Measure:     MeasureErrors,
		TagKeys:     []tag.Key{KeyCategory},
		Aggregation: view.Count(),
	},
}

func mustNewKey(name string) tag.Key {
	k, err := tag.NewKey(name)
	if err != nil {
		panic(err)
	}
	return k
}

func recordCompile(ctx context.Context, start time.Time) {
	stats.Record(ctx, MeasureCompileLatency.M(float64(time.Since(start))/float64(time.Millisecond)))
}

func recordEvaluations(ctx context.Context, method string, n int) {
	ctx, err := tag.New(ctx, tag.Upsert(KeyMethod, method))
	if err != nil {
		zap.S().Warnw("Failed to tag evaluation", "error", err)
		return
	}
	stats.Record(ctx, MeasureEvaluations.M(int64(n)))
}

func recordError(ctx context.Context, err error) {
	category := parser.Internal.String()
	if code := parser.CodeOf(err); code != 0 {
		category = code.Category().String()
	}

	ctx, tagErr := tag.New(ctx, tag.Upsert(KeyCategory, category))
	if tagErr != nil {
		zap.S().Warnw("Failed to tag error", "error", tagErr)
		return
	}
	stats.Record(ctx, MeasureErrors.M(1))
}
