// Package gridding converts scattered geolocated samples into a regular raster
// suitable for color-mapped rendering.
package gridding

import (
	"context"
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// MinCellSize is the smallest cell size, in meters, accepted by Clamp.
const MinCellSize = 0.01

var ErrInvalidParameters = errors.New("invalid gridding parameters")

// A Sample is a scalar reading at a geographic position.
type Sample struct {
	Lat   float64
	Lon   float64
	Value float64
}

// Point returns s's position as an orb.Point.
func (s Sample) Point() orb.Point {
	return orb.Point{s.Lon, s.Lat}
}

// valid returns whether s carries a usable value and position.
func (s Sample) valid() bool {
	return !math.IsNaN(s.Value) && !math.IsNaN(s.Lat) && !math.IsNaN(s.Lon)
}

// A Source supplies the samples of a named data series.
type Source interface {
	Samples(ctx context.Context, seriesKey string) ([]Sample, error)
}

// A StaticSource is a Source backed by in-memory samples keyed by series.
type StaticSource map[string][]Sample

// Samples returns the samples of seriesKey.
func (s StaticSource) Samples(ctx context.Context, seriesKey string) ([]Sample, error) {
	return s[seriesKey], nil
}

// A Cell is a raster cell index.
type Cell struct {
	C int // Column.
	R int // Row.
}

// A DistanceFunc returns the ground distance in meters between two points.
type DistanceFunc func(orb.Point, orb.Point) float64

// Parameters are the gridding parameters of a single run.
type Parameters struct {
	CellSize         float64 `yaml:"cellSize"`         // Meters.
	BlankingDistance float64 `yaml:"blankingDistance"` // Meters.
}

// Clamp returns p with its cell size raised to at least MinCellSize.
func (p Parameters) Clamp() Parameters {
	p.CellSize = max(p.CellSize, MinCellSize)
	return p
}

// Validate returns ErrInvalidParameters if p cannot be used for a run.
func (p Parameters) Validate() error {
	switch {
	case math.IsNaN(p.CellSize) || math.IsInf(p.CellSize, 0) || p.CellSize <= 0:
		return ErrInvalidParameters
	case math.IsNaN(p.BlankingDistance) || math.IsInf(p.BlankingDistance, 0) || p.BlankingDistance < 0:
		return ErrInvalidParameters
	default:
		return nil
	}
}

// A Mask flags raster cells, indexed [col][row]. In the gridding pipeline true
// means the cell value is unknown and must be estimated.
type Mask [][]bool

// NewMask returns a width by height mask with every cell set to value.
func NewMask(width, height int, value bool) Mask {
	m := make(Mask, width)
	for c := range m {
		m[c] = make([]bool, height)
		if value {
			for r := range m[c] {
				m[c][r] = true
			}
		}
	}
	return m
}

// Clone returns a deep copy of m.
func (m Mask) Clone() Mask {
	clone := make(Mask, len(m))
	for c, column := range m {
		clone[c] = append([]bool(nil), column...)
	}
	return clone
}

// Width returns the number of columns in m.
func (m Mask) Width() int {
	return len(m)
}

// Height returns the number of rows in m.
func (m Mask) Height() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// newValues returns a width by height array of values, indexed [col][row].
func newValues(width, height int) [][]float64 {
	flat := make([]float64, width*height)
	values := make([][]float64, width)
	for c := range values {
		values[c] = flat[c*height : (c+1)*height : (c+1)*height]
	}
	return values
}

// cloneValues returns a deep copy of values.
func cloneValues(values [][]float64) [][]float64 {
	if len(values) == 0 {
		return nil
	}
	clone := newValues(len(values), len(values[0]))
	for c, column := range values {
		copy(clone[c], column)
	}
	return clone
}
