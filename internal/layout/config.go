package layout

import (
	"math"

	"github.com/HendryAvila/knowgraph/internal/apperr"
	"github.com/HendryAvila/knowgraph/internal/validation"
)

// Config holds the tunable simulation parameters. The defaults keep graphs of
// a few dozen nodes stable; larger graphs need their own tuning.
type Config struct {
	Width      float64 `json:"width" yaml:"width" toml:"width" env:"WIDTH" validate:"gt=0"`
	Height     float64 `json:"height" yaml:"height" toml:"height" env:"HEIGHT" validate:"gt=0"`
	Radius     float64 `json:"radius" yaml:"radius" toml:"radius" env:"RADIUS" validate:"gt=0"`
	Iterations int     `json:"iterations" yaml:"iterations" toml:"iterations" env:"ITERATIONS" validate:"gte=0,lte=10000"`
	Repulsion  float64 `json:"repulsion" yaml:"repulsion" toml:"repulsion" env:"REPULSION" validate:"gte=0"`
	Attraction float64 `json:"attraction" yaml:"attraction" toml:"attraction" env:"ATTRACTION" validate:"gte=0"`
	TimeStep   float64 `json:"time_step" yaml:"time_step" toml:"time_step" env:"TIME_STEP" validate:"gt=0"`
	Damping    float64 `json:"damping" yaml:"damping" toml:"damping" env:"DAMPING" validate:"gte=0,lte=1"`
	// Seed fixes the initial scatter, so equal inputs lay out identically.
	Seed int64 `json:"seed" yaml:"seed" toml:"seed" env:"SEED"`
}

// DefaultConfig returns the default layout parameters.
func DefaultConfig() Config {
	return Config{
		Width:      800,
		Height:     600,
		Radius:     25,
		Iterations: 50,
		Repulsion:  5000,
		Attraction: 0.01,
		TimeStep:   0.1,
		Damping:    0.9,
		Seed:       1,
	}
}

// Validate checks that every float is finite, field ranges, and that a node
// fits inside the viewport.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"radius", c.Radius},
		{"repulsion", c.Repulsion},
		{"attraction", c.Attraction},
		{"time_step", c.TimeStep},
		{"damping", c.Damping},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return apperr.Validation("%s must be a finite number", f.name)
		}
	}
	if err := validation.Struct(c); err != nil {
		return err
	}
	if c.Width < 2*c.Radius || c.Height < 2*c.Radius {
		return apperr.Validation("viewport %gx%g cannot hold a node of radius %g", c.Width, c.Height, c.Radius)
	}
	return nil
}
