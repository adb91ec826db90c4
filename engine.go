package gridding

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb/geo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relaxation schedule. The stiff pass only runs if the smooth pass does not
// converge within its iteration budget.
var (
	smoothPass = SolveParams{Tension: 0, MaxIterations: 100}
	stiffPass  = SolveParams{Tension: 0.999999, MaxIterations: 200}
)

var (
	runs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_runs_total",
		Help: "The total number of gridding runs",
	})
	emptyRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_empty_runs_total",
		Help: "The total number of gridding runs without a result",
	})
	cancelledRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_cancelled_runs_total",
		Help: "The total number of cancelled gridding runs",
	})
	solverRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_solver_retries_total",
		Help: "The total number of relaxations redone with high tension",
	})
	solverIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridding_solver_iterations",
		Help:    "The number of iterations performed by each relaxation",
		Buckets: prometheus.LinearBuckets(0, 25, 9),
	})
)

// A Result is the output of a successful gridding run.
type Result struct {
	SeriesKey  string
	Raster     *Raster
	Min        float64 // Smallest value in Raster.
	Max        float64 // Largest value in Raster.
	Parameters Parameters
	Iterations int     // Iterations of the final relaxation.
	Tension    float64 // Tension of the final relaxation.
	Smoothed   *Raster // Low-pass filtered Raster, if enabled.
}

// An Engine grids scattered samples onto a raster.
type Engine struct {
	distance  DistanceFunc
	solver    Solver
	logger    *log.Logger
	smoothing bool
}

// An EngineOption sets an option on an Engine.
type EngineOption func(*Engine)

// NewEngine returns a new Engine with the given options.
func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{
		distance: geo.DistanceHaversine,
		solver:   NewSplineSolver(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// WithDistanceFunc sets the function used to measure the bounding box.
func WithDistanceFunc(distance DistanceFunc) EngineOption {
	return func(e *Engine) {
		e.distance = distance
	}
}

func WithSolver(solver Solver) EngineOption {
	return func(e *Engine) {
		e.solver = solver
	}
}

func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSmoothing sets whether results include a low-pass filtered raster.
func WithSmoothing(smoothing bool) EngineOption {
	return func(e *Engine) {
		e.smoothing = smoothing
	}
}

// Run grids the samples of seriesKey from sources. It returns a nil Result
// and a nil error if there are no usable samples or if they span less than a
// cell. If ctx is cancelled then Run returns a nil Result and ctx.Err().
// Errors from sources are returned unchanged.
func (e *Engine) Run(ctx context.Context, sources []Source, seriesKey string, params Parameters) (*Result, error) {
	runs.Inc()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	var samples []Sample
	for _, source := range sources {
		sourceSamples, err := source.Samples(ctx, seriesKey)
		if err != nil {
			return nil, err
		}
		for _, sample := range sourceSamples {
			if sample.valid() {
				samples = append(samples, sample)
			}
		}
	}

	samples = Aggregate(samples)
	if len(samples) == 0 {
		e.logger.Debug("No samples", "series", seriesKey)
		emptyRuns.Inc()
		return nil, nil
	}

	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
	}
	anchor := median(values)

	gridSpec := NewGridSpec(bound(samples), params.CellSize, e.distance)
	if gridSpec.Empty() {
		e.logger.Debug("Empty grid", "series", seriesKey, "width", gridSpec.Width, "height", gridSpec.Height)
		emptyRuns.Inc()
		return nil, nil
	}

	b := bin(samples, gridSpec, params)
	mask := Thin(b.mask)

	// Every unknown cell starts from the anchor value. Unknown cells out of
	// sight of any sample keep it, so that the surface is not extrapolated
	// into unsurveyed areas.
	anchored := 0
	for c := range gridSpec.Width {
		for r := range gridSpec.Height {
			if !mask[c][r] {
				continue
			}
			b.values[c][r] = anchor
			if !b.visibility[c][r] {
				mask[c][r] = false
				anchored++
			}
		}
	}
	e.logger.Info("Filtering complete",
		"series", seriesKey,
		"samples", len(samples),
		"width", gridSpec.Width,
		"height", gridSpec.Height,
		"occupied", b.occupied,
		"anchored", anchored,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		return nil, e.cancelled(seriesKey, err)
	}

	cellWidth, cellHeight := gridSpec.CellDimensions(params.CellSize, e.distance)
	solveStart := time.Now()
	pass, iterations, err := e.relax(ctx, b.values, mask, cellWidth, cellHeight)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, e.cancelled(seriesKey, err)
	case err != nil:
		return nil, err
	}
	e.logger.Info("Interpolation complete",
		"series", seriesKey,
		"iterations", iterations,
		"tension", pass.Tension,
		"maxIterations", pass.MaxIterations,
		"elapsed", time.Since(solveStart).Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		return nil, e.cancelled(seriesKey, err)
	}

	finite := make([]float64, 0, gridSpec.Width*gridSpec.Height)
	for c := range gridSpec.Width {
		for r := range gridSpec.Height {
			if !b.visibility[c][r] {
				b.values[c][r] = math.NaN()
				continue
			}
			finite = append(finite, b.values[c][r])
		}
	}

	result := &Result{
		SeriesKey: seriesKey,
		Raster: &Raster{
			Values:           b.values,
			Bound:            gridSpec.Bound,
			CellSize:         params.CellSize,
			BlankingDistance: params.BlankingDistance,
		},
		Min:        math.NaN(),
		Max:        math.NaN(),
		Parameters: params,
		Iterations: iterations,
		Tension:    pass.Tension,
	}
	if len(finite) > 0 {
		result.Min, _ = stats.Min(finite)
		result.Max, _ = stats.Max(finite)
	}
	if e.smoothing {
		smoothed := *result.Raster
		smoothed.Values = LowPass(result.Raster.Values, DefaultLowPassRadius, DefaultLowPassSigma)
		result.Smoothed = &smoothed
	}
	return result, nil
}

// relax runs the smooth relaxation over values and, if it exhausts its
// iteration budget, redoes it from the same starting values with the stiff
// relaxation. It returns the parameters and iteration count of the last pass.
func (e *Engine) relax(ctx context.Context, values [][]float64, mask Mask, cellWidth, cellHeight float64) (SolveParams, int, error) {
	initial := cloneValues(values)

	pass := smoothPass
	pass.CellWidth, pass.CellHeight = cellWidth, cellHeight
	iterations, err := e.solver.Solve(ctx, values, mask, pass)
	if err != nil {
		return pass, iterations, err
	}
	solverIterations.Observe(float64(iterations))
	if iterations < pass.MaxIterations {
		return pass, iterations, nil
	}

	e.logger.Debug("Relaxation did not converge, retrying with high tension", "iterations", iterations)
	solverRetries.Inc()
	for c, column := range initial {
		copy(values[c], column)
	}
	pass = stiffPass
	pass.CellWidth, pass.CellHeight = cellWidth, cellHeight
	iterations, err = e.solver.Solve(ctx, values, mask, pass)
	if err != nil {
		return pass, iterations, err
	}
	solverIterations.Observe(float64(iterations))
	return pass, iterations, nil
}

func (e *Engine) cancelled(seriesKey string, err error) error {
	e.logger.Info("Gridding interrupted", "series", seriesKey)
	cancelledRuns.Inc()
	return err
}
