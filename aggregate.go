package gridding

import (
	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb"
)

// Aggregate returns one sample per distinct position in samples, whose value
// is the median of the values at that position. The order of the result is
// unspecified.
func Aggregate(samples []Sample) []Sample {
	valuesByPoint := make(map[orb.Point][]float64)
	for _, sample := range samples {
		point := sample.Point()
		valuesByPoint[point] = append(valuesByPoint[point], sample.Value)
	}

	aggregated := make([]Sample, 0, len(valuesByPoint))
	for point, values := range valuesByPoint {
		aggregated = append(aggregated, Sample{
			Lat:   point.Lat(),
			Lon:   point.Lon(),
			Value: median(values),
		})
	}
	return aggregated
}

// median returns the median of values, averaging the two middle values when
// len(values) is even. values must not be empty.
func median(values []float64) float64 {
	m, _ := stats.Median(values)
	return m
}

// bound returns the bounding box of samples, which must not be empty.
func bound(samples []Sample) orb.Bound {
	b := orb.Bound{Min: samples[0].Point(), Max: samples[0].Point()}
	for _, sample := range samples[1:] {
		b = b.Extend(sample.Point())
	}
	return b
}
