package geodist

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// Point is a geographic coordinate in decimal degrees.
//
// Latitude is expected in [-90, 90] and longitude in [-180, 180], but
// invariant violations are not rejected: out-of-range values propagate
// as numerically valid results, matching the no-validation contract of
// the metric functions.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Engine dispatches distance computations by formula name and attaches
// logging and metrics. The zero-cost alternative is calling ParseFormula
// and Provider directly; the Engine exists for callers that want the
// operational surface.
//
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	logger      *Logger
	metrics     MetricsCollector
	parallelism int
}

// New creates an Engine.
func New(optFns ...Option) *Engine {
	o := applyOptions(optFns)
	return &Engine{
		logger:      o.logger,
		metrics:     o.metricsCollector,
		parallelism: o.parallelism,
	}
}

// Compute resolves the formula by name and applies it to the argument
// vector. Missing arguments are coerced to 0.
//
// Numeric sentinels (0 for coincident points, NaN for non-convergence or
// undefined inputs) are returned as values, not errors; the error return
// is reserved for unknown formula names.
func (e *Engine) Compute(ctx context.Context, formula string, args ...float64) (float64, error) {
	start := time.Now()

	f, err := ParseFormula(formula)
	if err != nil {
		e.logger.ErrorContext(ctx, "dispatch failed", "formula", formula, "error", err)
		return 0, err
	}

	fn, err := Provider(f)
	if err != nil {
		return 0, err
	}

	result := fn(args)

	e.metrics.RecordCompute(f, time.Since(start), math.IsNaN(result))
	e.logger.LogCompute(ctx, f, len(args), result)

	return result, nil
}

// ComputeBatch applies the formula to every argument set, in parallel.
// Argument sets are independent, so ordering between workers does not
// matter; results are returned in input order. NaN sentinels are kept in
// place so non-convergent entries stay distinguishable.
func (e *Engine) ComputeBatch(ctx context.Context, formula string, argSets [][]float64) ([]float64, error) {
	start := time.Now()

	f, err := ParseFormula(formula)
	if err != nil {
		e.logger.ErrorContext(ctx, "dispatch failed", "formula", formula, "error", err)
		return nil, err
	}
	if len(argSets) == 0 {
		return nil, ErrNoArgSets
	}

	fn, err := Provider(f)
	if err != nil {
		return nil, err
	}

	results := make([]float64, len(argSets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i := range argSets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fn(argSets[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	nan := 0
	for _, r := range results {
		if math.IsNaN(r) {
			nan++
		}
	}

	e.metrics.RecordBatch(f, len(argSets), nan, time.Since(start))
	e.logger.LogBatch(ctx, f, len(argSets), nan)

	return results, nil
}
