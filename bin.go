package gridding

import "math"

// A binning is the raster state produced by Bin.
type binning struct {
	values     [][]float64 // Medians of occupied cells, zero elsewhere.
	mask       Mask        // False for occupied cells.
	visibility Mask        // True within the blanking distance of an occupied cell.
	occupied   int
}

// Bin assigns samples to the cells of g. Each occupied cell receives the
// median of its samples' values and is marked known in the returned mask. The
// returned visibility mask marks every cell within blankingDistance of an
// occupied cell, measured as a box of cells around it.
func Bin(samples []Sample, g GridSpec, params Parameters) (values [][]float64, mask, visibility Mask) {
	b := bin(samples, g, params)
	return b.values, b.mask, b.visibility
}

func bin(samples []Sample, g GridSpec, params Parameters) binning {
	valuesByCell := make(map[Cell][]float64)
	for _, sample := range samples {
		cell := g.Cell(sample.Point())
		valuesByCell[cell] = append(valuesByCell[cell], sample.Value)
	}

	b := binning{
		values:     newValues(g.Width, g.Height),
		mask:       NewMask(g.Width, g.Height, true),
		visibility: NewMask(g.Width, g.Height, false),
		occupied:   len(valuesByCell),
	}

	radius := blankingRadius(params)
	for cell, values := range valuesByCell {
		b.values[cell.C][cell.R] = median(values)
		b.mask[cell.C][cell.R] = false
		for c := max(cell.C-radius, 0); c <= min(cell.C+radius, g.Width-1); c++ {
			for r := max(cell.R-radius, 0); r <= min(cell.R+radius, g.Height-1); r++ {
				b.visibility[c][r] = true
			}
		}
	}
	return b
}

// blankingRadius returns the blanking distance of params in whole cells. Cells
// are square, so the radius is the same along both axes. Radii beyond any grid
// saturate.
func blankingRadius(params Parameters) int {
	if params.BlankingDistance <= 0 {
		return 0
	}
	return int(min(params.BlankingDistance/params.CellSize, math.MaxInt32))
}
