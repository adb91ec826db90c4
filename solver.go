package gridding

import (
	"context"

	"gonum.org/v1/gonum/floats"
)

// SolveParams control a single relaxation.
type SolveParams struct {
	Tension       float64 // In [0, 1). Zero gives the smoothest surface.
	MaxIterations int
	CellWidth     float64 // Meters.
	CellHeight    float64 // Meters.
}

// A Solver estimates the unknown cells of values, as flagged by mask, from
// the known ones. Known cells must not be modified. Solve returns the number
// of iterations performed, which equals params.MaxIterations if the solver did
// not converge or broke down. If ctx is cancelled then Solve returns
// ctx.Err() and values is left unmodified.
type Solver interface {
	Solve(ctx context.Context, values [][]float64, mask Mask, params SolveParams) (int, error)
}

// A SplineSolver fills unknown cells with splines in tension. It minimizes
//
//	(1-t)·|Lq|² + t·|∇q|²
//
// over the unknown cells q, where L is the discrete Laplacian, ∇ the discrete
// gradient, and t the tension, using conjugate gradients. Unknown cells start
// from their current values.
type SplineSolver struct {
	tolerance float64
}

// A SplineSolverOption sets an option on a SplineSolver.
type SplineSolverOption func(*SplineSolver)

// NewSplineSolver returns a new SplineSolver with the given options.
func NewSplineSolver(options ...SplineSolverOption) *SplineSolver {
	s := &SplineSolver{
		tolerance: 1e-3,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// WithTolerance sets the residual norm, relative to the initial residual norm,
// below which a SplineSolver has converged.
func WithTolerance(tolerance float64) SplineSolverOption {
	return func(s *SplineSolver) {
		s.tolerance = tolerance
	}
}

// Solve implements Solver.
func (s *SplineSolver) Solve(ctx context.Context, values [][]float64, mask Mask, params SolveParams) (int, error) {
	width, height := mask.Width(), mask.Height()
	if width == 0 || height == 0 {
		return 0, nil
	}
	op := &splineOperator{
		width:   width,
		height:  height,
		tension: params.Tension,
		unknown: make([]bool, width*height),
		scratch: make([]float64, width*height),
	}
	q := make([]float64, width*height)
	for c := range width {
		for r := range height {
			q[c*height+r] = values[c][r]
			op.unknown[c*height+r] = mask[c][r]
		}
	}

	// Residual of the unknown cells, r = -Aq.
	residual := make([]float64, len(q))
	op.apply(residual, q)
	floats.Scale(-1, residual)

	rr := floats.Dot(residual, residual)
	threshold := s.tolerance * s.tolerance * rr
	direction := append([]float64(nil), residual...)
	ad := make([]float64, len(q))
	iterations := 0
	for rr > threshold && rr > 0 && iterations < params.MaxIterations {
		if err := ctx.Err(); err != nil {
			return iterations, err
		}
		iterations++

		op.apply(ad, direction)
		dad := floats.Dot(direction, ad)
		if !(dad > 0) {
			// Breakdown, the operator is not positive definite here.
			iterations = params.MaxIterations
			break
		}
		alpha := rr / dad
		floats.AddScaled(q, alpha, direction)
		floats.AddScaled(residual, -alpha, ad)

		rrNext := floats.Dot(residual, residual)
		beta := rrNext / rr
		rr = rrNext
		floats.Scale(beta, direction)
		floats.Add(direction, residual)
	}
	if err := ctx.Err(); err != nil {
		return iterations, err
	}

	for c := range width {
		for r := range height {
			if mask[c][r] {
				values[c][r] = q[c*height+r]
			}
		}
	}
	return iterations, nil
}

// A splineOperator applies the tensioned spline normal operator
// (1-t)·K² + t·K, where K is the graph Laplacian of the raster with reflecting
// edges, restricted to the unknown cells.
type splineOperator struct {
	width   int
	height  int
	tension float64
	unknown []bool
	scratch []float64
}

// apply sets dst to the operator applied to src, zeroed at known cells. src
// must be zero at known cells unless it holds a full raster.
func (o *splineOperator) apply(dst, src []float64) {
	o.laplacian(o.scratch, src)
	o.laplacian(dst, o.scratch)
	floats.Scale(1-o.tension, dst)
	floats.AddScaled(dst, o.tension, o.scratch)
	for i, unknown := range o.unknown {
		if !unknown {
			dst[i] = 0
		}
	}
}

// laplacian sets dst to the graph Laplacian of src.
func (o *splineOperator) laplacian(dst, src []float64) {
	h := o.height
	for c := range o.width {
		for r := range h {
			i := c*h + r
			v, sum := src[i], 0.0
			if c > 0 {
				sum += v - src[i-h]
			}
			if c < o.width-1 {
				sum += v - src[i+h]
			}
			if r > 0 {
				sum += v - src[i-1]
			}
			if r < h-1 {
				sum += v - src[i+1]
			}
			dst[i] = sum
		}
	}
}
