package gridding_test

import (
	"context"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/ugcs/go-gridding"
)

// newStripProblem returns a width by height raster whose first column is known
// to be 0 and whose last column is known to be 1.
func newStripProblem(width, height int, initial float64) ([][]float64, gridding.Mask) {
	values := make([][]float64, width)
	mask := gridding.NewMask(width, height, true)
	for c := range width {
		values[c] = make([]float64, height)
		for r := range height {
			switch c {
			case 0:
				mask[c][r] = false
			case width - 1:
				values[c][r] = 1
				mask[c][r] = false
			default:
				values[c][r] = initial
			}
		}
	}
	return values, mask
}

func TestSplineSolver(t *testing.T) {
	for _, tc := range []struct {
		tension  float64
		expected []float64
	}{
		{tension: 0, expected: []float64{0, 0.2, 0.5, 0.8, 1}},
		{tension: 0.5, expected: []float64{0, 3.0 / 14, 0.5, 11.0 / 14, 1}},
		{tension: 0.999999, expected: []float64{0, 0.25, 0.5, 0.75, 1}},
	} {
		values, mask := newStripProblem(5, 3, 0)
		iterations, err := gridding.NewSplineSolver(gridding.WithTolerance(1e-12)).Solve(t.Context(), values, mask, gridding.SolveParams{
			Tension:       tc.tension,
			MaxIterations: 100,
		})
		assert.NoError(t, err)
		assert.True(t, iterations > 0 && iterations < 100)
		for c, expected := range tc.expected {
			for r := range 3 {
				assert.True(t, math.Abs(values[c][r]-expected) < 1e-4, "tension %g cell %d,%d: %g", tc.tension, c, r, values[c][r])
			}
		}
	}
}

func TestNeighborSolver(t *testing.T) {
	values, mask := newStripProblem(5, 3, math.NaN())
	iterations, err := gridding.NewNeighborSolver().Solve(t.Context(), values, mask, gridding.SolveParams{
		CellWidth:  10,
		CellHeight: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, iterations)
	for c := range 5 {
		for r := range 3 {
			assert.True(t, values[c][r] >= 0 && values[c][r] <= 1, "cell %d,%d: %g", c, r, values[c][r])
		}
	}
	for r := range 3 {
		assert.Equal(t, 0.0, values[0][r])
		assert.Equal(t, 1.0, values[4][r])
	}

	values = [][]float64{
		{1, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	}
	mask = gridding.NewMask(3, 3, false)
	mask[1][1] = true
	_, err = gridding.NewNeighborSolver().Solve(t.Context(), values, mask, gridding.SolveParams{})
	assert.NoError(t, err)
	assert.True(t, math.Abs(values[1][1]-1) < 1e-12)
}

func TestSplineSolverConstant(t *testing.T) {
	values := [][]float64{
		{3, 3, 3},
		{3, 3, 3},
		{3, 3, 3},
	}
	mask := gridding.NewMask(3, 3, false)
	mask[1][1] = true
	iterations, err := gridding.NewSplineSolver().Solve(t.Context(), values, mask, gridding.SolveParams{MaxIterations: 100})
	assert.NoError(t, err)
	assert.Equal(t, 0, iterations)
	assert.Equal(t, 3.0, values[1][1])
}

func TestSplineSolverBudget(t *testing.T) {
	values, mask := newStripProblem(40, 40, 0)
	iterations, err := gridding.NewSplineSolver(gridding.WithTolerance(1e-12)).Solve(t.Context(), values, mask, gridding.SolveParams{
		MaxIterations: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, iterations)
	for c := range 40 {
		for r := range 40 {
			assert.False(t, math.IsNaN(values[c][r]))
		}
	}
}

func TestSolverCancelled(t *testing.T) {
	for _, tc := range []struct {
		name   string
		solver gridding.Solver
	}{
		{
			name:   "spline",
			solver: gridding.NewSplineSolver(),
		},
		{
			name:   "neighbor",
			solver: gridding.NewNeighborSolver(),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			cancel()

			values, mask := newStripProblem(5, 3, 0.25)
			expected, _ := newStripProblem(5, 3, 0.25)
			_, err := tc.solver.Solve(ctx, values, mask, gridding.SolveParams{MaxIterations: 100})
			assert.IsError(t, err, context.Canceled)
			assert.Equal(t, expected, values)
		})
	}
}

func TestSplineSolverBreakdown(t *testing.T) {
	// A tension above one makes the operator indefinite, so the first search
	// direction through the single unknown cell has negative curvature.
	values := [][]float64{
		{0, 1, 0},
		{0, 0, 0},
		{0, 0, 0},
	}
	mask := gridding.NewMask(3, 3, false)
	mask[1][1] = true
	iterations, err := gridding.NewSplineSolver().Solve(t.Context(), values, mask, gridding.SolveParams{
		Tension:       2,
		MaxIterations: 100,
	})
	assert.NoError(t, err)
	assert.Equal(t, 100, iterations)
	assert.Equal(t, 0.0, values[1][1])
	assert.Equal(t, 1.0, values[0][1])
}
