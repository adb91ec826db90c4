package gridding

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// cellEpsilon absorbs floating point error when locating points on the far
// edge of a grid, so that they land in the last cell rather than the one
// before it.
const cellEpsilon = 1e-9

// A GridSpec maps geographic positions onto a regular raster.
type GridSpec struct {
	Bound   orb.Bound
	Width   int
	Height  int
	LonStep float64 // Degrees per column, zero on a degenerate axis.
	LatStep float64 // Degrees per row, zero on a degenerate axis.
}

// NewGridSpec returns the grid covering bound with square cells of cellSize
// meters. Each axis is sized by the longer of the two bounding edges along
// it, as measured by distance. If either dimension is zero then the grid is
// empty and cannot be used.
func NewGridSpec(bound orb.Bound, cellSize float64, distance DistanceFunc) GridSpec {
	if distance == nil {
		distance = geo.DistanceHaversine
	}
	minLon, minLat := bound.Min.Lon(), bound.Min.Lat()
	maxLon, maxLat := bound.Max.Lon(), bound.Max.Lat()

	widthMeters := max(
		distance(orb.Point{minLon, minLat}, orb.Point{maxLon, minLat}),
		distance(orb.Point{minLon, maxLat}, orb.Point{maxLon, maxLat}),
	)
	heightMeters := max(
		distance(orb.Point{minLon, minLat}, orb.Point{minLon, maxLat}),
		distance(orb.Point{maxLon, minLat}, orb.Point{maxLon, maxLat}),
	)

	g := GridSpec{
		Bound:  bound,
		Width:  int(widthMeters / cellSize),
		Height: int(heightMeters / cellSize),
	}
	if g.Width > 1 {
		g.LonStep = (maxLon - minLon) / float64(g.Width-1)
	}
	if g.Height > 1 {
		g.LatStep = (maxLat - minLat) / float64(g.Height-1)
	}
	return g
}

// Empty returns whether g has no cells.
func (g GridSpec) Empty() bool {
	return g.Width <= 0 || g.Height <= 0
}

// Cell returns the cell containing point, clamped to g.
func (g GridSpec) Cell(point orb.Point) Cell {
	return Cell{
		C: axisIndex(point.Lon()-g.Bound.Min.Lon(), g.LonStep, g.Width),
		R: axisIndex(point.Lat()-g.Bound.Min.Lat(), g.LatStep, g.Height),
	}
}

// Point returns the position of the node of cell c.
func (g GridSpec) Point(c Cell) orb.Point {
	return orb.Point{
		g.Bound.Min.Lon() + float64(c.C)*g.LonStep,
		g.Bound.Min.Lat() + float64(c.R)*g.LatStep,
	}
}

// CellDimensions returns the ground width and height of a single cell in
// meters. A degenerate axis reports cellSize.
func (g GridSpec) CellDimensions(cellSize float64, distance DistanceFunc) (float64, float64) {
	if distance == nil {
		distance = geo.DistanceHaversine
	}
	origin := g.Bound.Min
	cellWidth, cellHeight := cellSize, cellSize
	if g.LonStep > 0 {
		cellWidth = distance(origin, orb.Point{origin.Lon() + g.LonStep, origin.Lat()})
	}
	if g.LatStep > 0 {
		cellHeight = distance(origin, orb.Point{origin.Lon(), origin.Lat() + g.LatStep})
	}
	return cellWidth, cellHeight
}

// axisIndex returns the index of offset along an axis of n cells of size step.
// Every offset maps to zero on a degenerate axis.
func axisIndex(offset, step float64, n int) int {
	if step <= 0 || n <= 1 {
		return 0
	}
	index := int(math.Floor(offset/step + cellEpsilon))
	return min(max(index, 0), n-1)
}
