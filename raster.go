package gridding

import (
	"math"

	"github.com/paulmach/orb"
)

// A Raster is a regular grid of values over a geographic bound, indexed
// [col][row] with column 0 at the western edge and row 0 at the southern edge.
// Cells without a value hold NaN.
type Raster struct {
	Values           [][]float64
	Bound            orb.Bound
	CellSize         float64
	BlankingDistance float64
}

// Width returns the number of columns in r.
func (r *Raster) Width() int {
	return len(r.Values)
}

// Height returns the number of rows in r.
func (r *Raster) Height() int {
	if len(r.Values) == 0 {
		return 0
	}
	return len(r.Values[0])
}

// At returns the value at column c and row row.
func (r *Raster) At(c, row int) float64 {
	return r.Values[c][row]
}

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	clone := *r
	clone.Values = cloneValues(r.Values)
	return &clone
}

// Interpolate returns the bilinear interpolation of r at each of points.
// Points outside r's bound, or next to a cell without a value, yield NaN.
func (r *Raster) Interpolate(points []orb.Point) []float64 {
	width, height := r.Width(), r.Height()
	result := make([]float64, len(points))
	for i, point := range points {
		if width == 0 || height == 0 || !r.Bound.Contains(point) {
			result[i] = math.NaN()
			continue
		}
		x := gridOffset(point.Lon(), r.Bound.Min.Lon(), r.Bound.Max.Lon(), width)
		y := gridOffset(point.Lat(), r.Bound.Min.Lat(), r.Bound.Max.Lat(), height)
		x0, y0 := int(x), int(y)
		x1, y1 := min(x0+1, width-1), min(y0+1, height-1)
		dx, dy := x-float64(x0), y-float64(y0)
		result[i] = 0 +
			r.Values[x0][y0]*(1-dx)*(1-dy) +
			r.Values[x1][y0]*dx*(1-dy) +
			r.Values[x0][y1]*(1-dx)*dy +
			r.Values[x1][y1]*dx*dy
	}
	return result
}

// gridOffset returns the fractional cell offset of v on an axis of n cells
// spanning [lo, hi].
func gridOffset(v, lo, hi float64, n int) float64 {
	if n <= 1 || hi <= lo {
		return 0
	}
	return min((v-lo)/(hi-lo)*float64(n-1), float64(n-1))
}
