package gridding_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/paulmach/orb"

	"github.com/ugcs/go-gridding"
)

func newTestGridSpec(t *testing.T) gridding.GridSpec {
	t.Helper()
	gridSpec := gridding.NewGridSpec(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, 100, planarDistance)
	assert.Equal(t, 10, gridSpec.Width)
	assert.Equal(t, 10, gridSpec.Height)
	return gridSpec
}

// samplesInCell returns samples with values scattered around the node of
// cell.
func samplesInCell(gridSpec gridding.GridSpec, cell gridding.Cell, values ...float64) []gridding.Sample {
	point := gridSpec.Point(cell)
	samples := make([]gridding.Sample, len(values))
	for i, value := range values {
		samples[i] = gridding.Sample{
			Lat:   point.Lat() + 0.01*float64(i%2),
			Lon:   point.Lon() + 0.01*float64(i/2),
			Value: value,
		}
	}
	return samples
}

func TestBin(t *testing.T) {
	gridSpec := newTestGridSpec(t)
	samples := append(
		samplesInCell(gridSpec, gridding.Cell{C: 2, R: 3}, 1, 2, 3, 4),
		samplesInCell(gridSpec, gridding.Cell{C: 7, R: 1}, 5, 1, 3)...,
	)

	values, mask, visibility := gridding.Bin(samples, gridSpec, gridding.Parameters{CellSize: 100})
	assert.Equal(t, 10, len(values))
	assert.Equal(t, 10, mask.Width())
	assert.Equal(t, 10, visibility.Height())

	assert.Equal(t, 2.5, values[2][3])
	assert.Equal(t, 3.0, values[7][1])
	for c := range gridSpec.Width {
		for r := range gridSpec.Height {
			occupied := c == 2 && r == 3 || c == 7 && r == 1
			assert.Equal(t, !occupied, mask[c][r])
			assert.Equal(t, occupied, visibility[c][r])
		}
	}
}

func TestBinVisibility(t *testing.T) {
	gridSpec := newTestGridSpec(t)
	for _, tc := range []struct {
		name             string
		cell             gridding.Cell
		blankingDistance float64
		radius           int
	}{
		{
			name:             "two_cells",
			cell:             gridding.Cell{C: 5, R: 5},
			blankingDistance: 200,
			radius:           2,
		},
		{
			name:             "fractional",
			cell:             gridding.Cell{C: 5, R: 5},
			blankingDistance: 150,
			radius:           1,
		},
		{
			name:             "zero",
			cell:             gridding.Cell{C: 5, R: 5},
			blankingDistance: 0,
			radius:           0,
		},
		{
			name:             "clipped",
			cell:             gridding.Cell{C: 0, R: 9},
			blankingDistance: 300,
			radius:           3,
		},
		{
			name:             "beyond_int_range",
			cell:             gridding.Cell{C: 3, R: 6},
			blankingDistance: 1e300,
			radius:           gridSpec.Width + gridSpec.Height,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			samples := samplesInCell(gridSpec, tc.cell, 1)
			params := gridding.Parameters{CellSize: 100, BlankingDistance: tc.blankingDistance}
			_, _, visibility := gridding.Bin(samples, gridSpec, params)
			for c := range gridSpec.Width {
				for r := range gridSpec.Height {
					expected := abs(c-tc.cell.C) <= tc.radius && abs(r-tc.cell.R) <= tc.radius
					assert.Equal(t, expected, visibility[c][r], "cell %d,%d", c, r)
				}
			}
		})
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
