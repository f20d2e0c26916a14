// Package config describes a heterostructure run in yaml: the energy grid,
// solver and convergence settings, and the layer stack from top to bottom.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/usadel/internal/bvp"
	"github.com/san-kum/usadel/internal/material"
	"github.com/san-kum/usadel/internal/numeric"
	"github.com/san-kum/usadel/internal/spin"
)

var ErrInvalid = errors.New("config: invalid")

const (
	DefaultEnergies   = 150
	DefaultThreshold  = 1e-4
	DefaultIterations = 100
	DefaultPoints     = material.DefaultPoints
	DefaultScattering = material.DefaultScattering

	// minEnergy keeps the grid off E = 0, where the tanh weight vanishes.
	minEnergy = 1e-6
)

// DefaultCutoff is the Debye cutoff cosh(1/0.2), which makes the default
// coupling 0.2.
var DefaultCutoff = math.Cosh(1 / 0.2)

type Config struct {
	Name        string         `yaml:"name"`
	Temperature float64        `yaml:"temperature"`
	Scattering  float64        `yaml:"scattering"`
	Workers     int            `yaml:"workers,omitempty"`
	Energies    EnergyConfig   `yaml:"energies"`
	Solver      bvp.Options    `yaml:"solver"`
	Converge    ConvergeConfig `yaml:"converge"`
	Layers      []LayerConfig  `yaml:"layers"`
}

type EnergyConfig struct {
	Points int     `yaml:"points"`
	Cutoff float64 `yaml:"cutoff"`
}

type ConvergeConfig struct {
	Threshold  float64 `yaml:"threshold"`
	Iterations int     `yaml:"iterations"`
	Bootstrap  bool    `yaml:"bootstrap"`
}

// LayerConfig is one layer. Kind selects the material; fields that do not
// apply to the kind are ignored.
type LayerConfig struct {
	Kind       string          `yaml:"kind"`
	Name       string          `yaml:"name,omitempty"`
	Length     float64         `yaml:"length"`
	Points     int             `yaml:"points,omitempty"`
	Scattering *float64        `yaml:"scattering,omitempty"`
	Frozen     bool            `yaml:"frozen,omitempty"`
	Gap        float64         `yaml:"gap,omitempty"`
	Phase      float64         `yaml:"phase,omitempty"`
	Coupling   float64         `yaml:"coupling,omitempty"`
	Exchange   []float64       `yaml:"exchange,flow,omitempty"`
	SpinOrbit  SpinOrbitConfig `yaml:"spin_orbit,omitempty"`
	A          InterfaceConfig `yaml:"a,omitempty"`
	B          InterfaceConfig `yaml:"b,omitempty"`
}

type SpinOrbitConfig struct {
	Ax []float64 `yaml:"ax,flow,omitempty"`
	Ay []float64 `yaml:"ay,flow,omitempty"`
	Az []float64 `yaml:"az,flow,omitempty"`
}

type InterfaceConfig struct {
	Conductance   float64   `yaml:"conductance,omitempty"`
	Polarization  float64   `yaml:"polarization,omitempty"`
	SpinMixing    float64   `yaml:"spin_mixing,omitempty"`
	SecondOrder   float64   `yaml:"second_order,omitempty"`
	Magnetization []float64 `yaml:"magnetization,flow,omitempty"`
	Misalignment  []float64 `yaml:"misalignment,flow,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "bulk",
		Scattering: DefaultScattering,
		Energies: EnergyConfig{
			Points: DefaultEnergies,
			Cutoff: DefaultCutoff,
		},
		Solver: bvp.DefaultOptions(),
		Converge: ConvergeConfig{
			Threshold:  DefaultThreshold,
			Iterations: DefaultIterations,
			Bootstrap:  true,
		},
		Layers: []LayerConfig{
			{Kind: "superconductor", Name: "S", Length: 1, Gap: 1},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes yaml over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a copy that shares no layer slice with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Layers = slices.Clone(c.Layers)
	return &out
}

func (c *Config) Validate() error {
	if c.Temperature < 0 {
		return fmt.Errorf("%w: negative temperature %g", ErrInvalid, c.Temperature)
	}
	if c.Scattering < 0 {
		return fmt.Errorf("%w: negative scattering %g", ErrInvalid, c.Scattering)
	}
	if _, err := c.EnergyGrid(); err != nil {
		return err
	}
	if !(c.Converge.Threshold > 0) || c.Converge.Iterations <= 0 {
		return fmt.Errorf("%w: converge needs a positive threshold and iteration cap", ErrInvalid)
	}
	if len(c.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalid)
	}
	for i, l := range c.Layers {
		if err := l.validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

func (l LayerConfig) validate() error {
	if l.Kind == "" {
		return fmt.Errorf("%w: missing kind", ErrInvalid)
	}
	if !(l.Length > 0) {
		return fmt.Errorf("%w: length %g must be positive", ErrInvalid, l.Length)
	}
	if l.Points != 0 && l.Points < 2 {
		return fmt.Errorf("%w: %d points, need at least 2", ErrInvalid, l.Points)
	}
	if l.Scattering != nil && *l.Scattering < 0 {
		return fmt.Errorf("%w: negative scattering", ErrInvalid)
	}
	for name, v := range map[string][]float64{
		"exchange":        l.Exchange,
		"spin_orbit.ax":   l.SpinOrbit.Ax,
		"spin_orbit.ay":   l.SpinOrbit.Ay,
		"spin_orbit.az":   l.SpinOrbit.Az,
		"a.magnetization": l.A.Magnetization,
		"a.misalignment":  l.A.Misalignment,
		"b.magnetization": l.B.Magnetization,
		"b.misalignment":  l.B.Misalignment,
	} {
		if _, err := Vector(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// EnergyGrid returns the positive energy grid of the run.
func (c *Config) EnergyGrid() ([]float64, error) {
	return EnergyGrid(c.Energies.Points, c.Energies.Cutoff)
}

// EnergyGrid places half the points in [1e-6, 1.5] around the gap edge, a
// quarter in [1.5, 4.5] and the rest up to the cutoff.
func EnergyGrid(points int, cutoff float64) ([]float64, error) {
	if points < 4 {
		return nil, fmt.Errorf("%w: %d energies, need at least 4", ErrInvalid, points)
	}
	if !(cutoff > 4.5) {
		return nil, fmt.Errorf("%w: cutoff %g must exceed 4.5", ErrInvalid, cutoff)
	}
	low := points / 2
	mid := points / 4
	high := points - low - mid

	grid := numeric.Linspace(low, minEnergy, 1.5)
	grid = append(grid, numeric.Linspace(mid+1, 1.5, 4.5)[1:]...)
	grid = append(grid, numeric.Linspace(high+1, 4.5, cutoff)[1:]...)
	return grid, nil
}

// Vector converts an optional 3-component list.
func Vector(v []float64) (spin.Vector, error) {
	switch len(v) {
	case 0:
		return spin.Vector{}, nil
	case 3:
		return spin.Vector{v[0], v[1], v[2]}, nil
	default:
		return spin.Vector{}, fmt.Errorf("%w: vector needs 3 components, got %d", ErrInvalid, len(v))
	}
}

// Interface converts to the material form.
func (f InterfaceConfig) Interface() material.Interface {
	m, _ := Vector(f.Magnetization)
	out := material.Interface{
		Conductance:   f.Conductance,
		Polarization:  f.Polarization,
		SpinMixing:    f.SpinMixing,
		SecondOrder:   f.SecondOrder,
		Magnetization: m,
	}
	if len(f.Misalignment) == 3 {
		v, _ := Vector(f.Misalignment)
		out.Misalignment = &v
	}
	return out
}

func (s SpinOrbitConfig) SpinOrbit() material.SpinOrbit {
	ax, _ := Vector(s.Ax)
	ay, _ := Vector(s.Ay)
	az, _ := Vector(s.Az)
	return material.SpinOrbit{Ax: ax, Ay: ay, Az: az}
}

// Options builds the material options of layer i.
func (c *Config) Options(i int) material.Options {
	l := c.Layers[i]
	opts := material.DefaultOptions()
	opts.Name = l.Name
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("%s%d", l.Kind, i)
	}
	opts.Length = l.Length
	if l.Points > 0 {
		opts.Points = l.Points
	}
	opts.Scattering = c.Scattering
	if l.Scattering != nil {
		opts.Scattering = *l.Scattering
	}
	opts.Temperature = c.Temperature
	opts.A = l.A.Interface()
	opts.B = l.B.Interface()
	opts.SpinOrbit = l.SpinOrbit.SpinOrbit()
	opts.Frozen = l.Frozen
	opts.Solver = c.Solver
	opts.Workers = c.Workers
	return opts
}
