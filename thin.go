package gridding

import "math"

const (
	thinMinLineFraction = 0.01 // Lines with fewer known cells do not count towards the average.
	thinDenseFraction   = 0.9  // Masks at least this dense are left alone.
	thinMaxDensity      = 0.22
	thinMinDensity      = 0.05
)

// Thin returns a copy of mask in which the known (false) cells of each row,
// then of each column, are reduced to an evenly spaced subset. The retained
// density is the average known density of the mask capped at 22%. Masks that
// are almost entirely known, or whose density is below 5%, are returned as an
// unmodified copy.
func Thin(mask Mask) Mask {
	result := mask.Clone()
	width, height := mask.Width(), mask.Height()
	if width == 0 || height == 0 {
		return result
	}

	avgRowKnown, avgColKnown := averageKnown(mask)
	if avgRowKnown == 0 && avgColKnown == 0 ||
		float64(avgRowKnown) >= thinDenseFraction*float64(width) && float64(avgColKnown) >= thinDenseFraction*float64(height) {
		return result
	}

	density := min(thinMaxDensity, float64(avgRowKnown)/float64(width), float64(avgColKnown)/float64(height))
	if density < thinMinDensity {
		return result
	}

	// Rows.
	rowTarget := int(density * float64(width))
	known := make([]int, 0, max(width, height))
	for r := range height {
		known = known[:0]
		for c := range width {
			if !result[c][r] {
				known = append(known, c)
			}
		}
		if len(known) <= rowTarget || rowTarget <= 0 {
			continue
		}
		keep := evenlySpaced(known, rowTarget)
		for c := range width {
			result[c][r] = true
		}
		for _, c := range keep {
			result[c][r] = false
		}
	}

	// Columns.
	colTarget := int(density * float64(height))
	for c := range width {
		known = known[:0]
		for r := range height {
			if !result[c][r] {
				known = append(known, r)
			}
		}
		if len(known) <= colTarget || colTarget <= 0 {
			continue
		}
		keep := evenlySpaced(known, colTarget)
		for r := range height {
			result[c][r] = true
		}
		for _, r := range keep {
			result[c][r] = false
		}
	}

	return result
}

// averageKnown returns the mean number of known cells per row and per column,
// truncated to integers. Rows and columns with no more than 1% of their cells
// known are excluded.
func averageKnown(mask Mask) (int, int) {
	width, height := mask.Width(), mask.Height()
	rowCounts := make([]int, height)
	colCounts := make([]int, width)
	for c := range width {
		for r := range height {
			if !mask[c][r] {
				rowCounts[r]++
				colCounts[c]++
			}
		}
	}
	return truncatedMean(rowCounts, thinMinLineFraction*float64(width)),
		truncatedMean(colCounts, thinMinLineFraction*float64(height))
}

// truncatedMean returns the integer mean of the counts greater than threshold,
// or zero if there are none.
func truncatedMean(counts []int, threshold float64) int {
	sum, n := 0, 0
	for _, count := range counts {
		if float64(count) > threshold {
			sum += count
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// evenlySpaced returns n elements of indexes, which must have more than n
// elements, spread evenly from the first to the last.
func evenlySpaced(indexes []int, n int) []int {
	if n == 1 {
		return []int{indexes[0]}
	}
	step := float64(len(indexes)-1) / float64(n-1)
	result := make([]int, n)
	for k := range n {
		result[k] = indexes[int(math.Round(float64(k)*step))]
	}
	return result
}
