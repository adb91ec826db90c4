package gridding

import "math"

// Default low-pass filter parameters.
const (
	DefaultLowPassRadius = 7
	DefaultLowPassSigma  = 5.0
)

// LowPass returns values convolved with a normalized Gaussian kernel of the
// given radius and sigma, in cells. NaN cells stay NaN and are excluded from
// the weighted average of their neighbors.
func LowPass(values [][]float64, radius int, sigma float64) [][]float64 {
	result := cloneValues(values)
	if len(values) == 0 || len(values[0]) == 0 {
		return result
	}
	width, height := len(values), len(values[0])

	size := 2*radius + 1
	kernel := make([]float64, size*size)
	for dc := -radius; dc <= radius; dc++ {
		for dr := -radius; dr <= radius; dr++ {
			kernel[(dc+radius)*size+dr+radius] = math.Exp(-float64(dc*dc+dr*dr) / (2 * sigma * sigma))
		}
	}

	for c := range width {
		for r := range height {
			if math.IsNaN(values[c][r]) {
				continue
			}
			sum, weightSum := 0.0, 0.0
			for kc := max(c-radius, 0); kc <= min(c+radius, width-1); kc++ {
				for kr := max(r-radius, 0); kr <= min(r+radius, height-1); kr++ {
					v := values[kc][kr]
					if math.IsNaN(v) {
						continue
					}
					weight := kernel[(kc-c+radius)*size+kr-r+radius]
					sum += v * weight
					weightSum += weight
				}
			}
			result[c][r] = sum / weightSum
		}
	}
	return result
}
