package gridding

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Solver names accepted in a Config.
const (
	SolverSpline   = "spline"
	SolverNeighbor = "neighbor"
)

// A Config is a gridding configuration as stored in YAML.
type Config struct {
	Parameters `yaml:",inline"`
	Solver     string  `yaml:"solver,omitempty"`    // SolverSpline or SolverNeighbor.
	Tolerance  float64 `yaml:"tolerance,omitempty"` // SplineSolver only.
	Smoothing  bool    `yaml:"smoothing,omitempty"`
}

// LoadConfig loads a Config from the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML Config.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	switch config.Solver {
	case "":
		config.Solver = SolverSpline
	case SolverSpline, SolverNeighbor:
	default:
		return nil, fmt.Errorf("unknown solver %q", config.Solver)
	}
	if config.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must not be negative")
	}
	if err := config.Parameters.Clamp().Validate(); err != nil {
		return nil, fmt.Errorf("cellSize %g, blankingDistance %g: %w", config.CellSize, config.BlankingDistance, err)
	}

	return &config, nil
}

// GriddingParameters returns c's clamped gridding parameters.
func (c *Config) GriddingParameters() Parameters {
	return c.Parameters.Clamp()
}

// EngineOptions returns the engine options selected by c.
func (c *Config) EngineOptions() []EngineOption {
	var solver Solver
	switch c.Solver {
	case SolverNeighbor:
		solver = NewNeighborSolver()
	default:
		var splineSolverOptions []SplineSolverOption
		if c.Tolerance > 0 {
			splineSolverOptions = append(splineSolverOptions, WithTolerance(c.Tolerance))
		}
		solver = NewSplineSolver(splineSolverOptions...)
	}
	return []EngineOption{
		WithSolver(solver),
		WithSmoothing(c.Smoothing),
	}
}
