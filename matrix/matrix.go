// Package matrix computes and persists symmetric pairwise distance
// matrices over geographic points. Matrices are built row-parallel and
// can be written to and loaded from any blobstore as compressed,
// checksummed snapshots.
package matrix

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/geodist"
	"github.com/hupe1980/geodist/resource"
)

// ErrEmptyPoints is returned when a matrix is computed over no points.
var ErrEmptyPoints = errors.New("no points given")

// Matrix is a symmetric n x n pairwise distance matrix. Entries may be
// NaN where the underlying formula is undefined for a pair; NaN is a
// value here, not an error.
type Matrix struct {
	points  []geodist.Point
	formula geodist.Formula
	values  []float64 // n*n, row-major
}

// Len returns the number of points n.
func (m *Matrix) Len() int {
	return len(m.points)
}

// Formula returns the formula the matrix was computed with.
func (m *Matrix) Formula() geodist.Formula {
	return m.formula
}

// Points returns the points the matrix was computed over. The returned
// slice is shared and must not be modified.
func (m *Matrix) Points() []geodist.Point {
	return m.points
}

// At returns the distance between point i and point j.
func (m *Matrix) At(i, j int) float64 {
	return m.values[i*len(m.points)+j]
}

// Row returns row i of the matrix. The returned slice is shared and
// must not be modified.
func (m *Matrix) Row(i int) []float64 {
	n := len(m.points)
	return m.values[i*n : (i+1)*n]
}

type computeOptions struct {
	workers    int
	controller *resource.Controller
}

// ComputeOption configures Compute.
type ComputeOption func(*computeOptions)

// WithWorkers sets the maximum number of rows computed concurrently.
// Defaults to runtime.GOMAXPROCS(0).
func WithWorkers(n int) ComputeOption {
	return func(o *computeOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithController attaches a resource controller. Row workers acquire a
// worker slot from the controller before computing.
func WithController(rc *resource.Controller) ComputeOption {
	return func(o *computeOptions) {
		o.controller = rc
	}
}

// Compute builds the symmetric pairwise distance matrix for points
// under the given formula. Rows are computed in parallel; only the
// upper triangle is computed and mirrored. NaN results are kept as-is.
func Compute(ctx context.Context, points []geodist.Point, formula geodist.Formula, optFns ...ComputeOption) (*Matrix, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPoints
	}

	opts := computeOptions{
		workers: runtime.GOMAXPROCS(0),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	dist, err := geodist.PairProvider(formula)
	if err != nil {
		return nil, err
	}

	n := len(points)

	m := &Matrix{
		points:  points,
		formula: formula,
		values:  make([]float64, n*n),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if opts.controller != nil {
				if err := opts.controller.AcquireWorker(gctx); err != nil {
					return err
				}
				defer opts.controller.ReleaseWorker()
			}

			for j := i + 1; j < n; j++ {
				d := dist(points[i], points[j])
				m.values[i*n+j] = d
				m.values[j*n+i] = d
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m, nil
}
