package gridding_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/ugcs/go-gridding"
)

func TestLowPass(t *testing.T) {
	nan := math.NaN()
	values := [][]float64{
		{2, 2, 2, 2},
		{2, nan, 2, 2},
		{2, 2, 2, 2},
	}
	actual := gridding.LowPass(values, gridding.DefaultLowPassRadius, gridding.DefaultLowPassSigma)
	assert.True(t, math.IsNaN(values[1][1]))
	assert.True(t, math.IsNaN(actual[1][1]))
	for c := range 3 {
		for r := range 4 {
			if c == 1 && r == 1 {
				continue
			}
			assert.True(t, math.Abs(actual[c][r]-2) < 1e-12)
		}
	}

	step := [][]float64{
		{0, 0, 0},
		{0, 0, 0},
		{9, 9, 9},
	}
	smoothed := gridding.LowPass(step, 1, 1)
	for r := range 3 {
		assert.Equal(t, 0.0, smoothed[0][r])
		assert.True(t, smoothed[1][r] > 0 && smoothed[1][r] < smoothed[2][r])
		assert.True(t, smoothed[2][r] < 9)
	}
	assert.Equal(t, 9.0, step[2][0])

	assert.Equal(t, [][]float64(nil), gridding.LowPass(nil, 7, 5))
}
