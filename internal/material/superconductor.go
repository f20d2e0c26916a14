package material

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/usadel/internal/numeric"
	"github.com/san-kum/usadel/internal/riccati"
	"github.com/san-kum/usadel/internal/spin"
)

// gapFactor is π/(2e^γ), so that tanh(gapFactor·E/T) = tanh(E/2kT) with E
// in units of the zero-temperature gap and T in units of Tc.
const gapFactor = 0.8819384944310228

// gapFloor keeps relative gap changes finite as the gap vanishes.
const gapFloor = 1e-5

// Superconductor is a conductor with a self-consistent pair potential.
type Superconductor struct {
	Conductor

	// Gap is the pair potential at each position, in units of the bulk
	// zero-temperature gap.
	Gap []complex128

	// Coupling is the dimensionless BCS coupling constant.
	Coupling float64

	// Locked disables gap updates.
	Locked bool

	spline        *numeric.ComplexSpline
	gapDifference float64
}

// NewSuperconductor returns a superconductor in the bulk BCS state with a
// uniform gap. A non-positive coupling selects 1/acosh(cutoff), the value
// for which the bulk gap at zero temperature is 1 with the largest energy
// of the grid as cutoff.
func NewSuperconductor(energies []float64, opts Options, gap complex128, coupling float64) (*Superconductor, error) {
	c, err := NewConductor(energies, opts)
	if err != nil {
		return nil, err
	}
	if len(energies) < 2 {
		return nil, fmt.Errorf("%w: gap equation needs at least 2 energies", ErrConfiguration)
	}
	if coupling <= 0 {
		cutoff := energies[len(energies)-1]
		if cutoff <= 1 {
			return nil, fmt.Errorf("%w: energy cutoff %g must exceed the gap", ErrConfiguration, cutoff)
		}
		coupling = 1 / math.Acosh(cutoff)
	}

	s := &Superconductor{Conductor: *c, Coupling: coupling}
	s.SetGap(gap)
	for i, e := range energies {
		p := riccati.NewBCS(complex(e, s.Scattering), gap)
		for j := range s.states[i] {
			s.states[i][j] = p
		}
	}
	return s, nil
}

// SetGap sets a uniform pair potential.
func (s *Superconductor) SetGap(gap complex128) {
	s.Gap = make([]complex128, len(s.positions))
	for j := range s.Gap {
		s.Gap[j] = gap
	}
	s.spline = nil
}

// ScaleGap rescales the pair potential so that its largest magnitude is
// target, keeping the phase profile. A vanishing gap is replaced by a
// uniform real one.
func (s *Superconductor) ScaleGap(target float64) {
	m := s.MaxGap()
	if m == 0 || math.IsNaN(m) {
		s.SetGap(complex(target, 0))
		return
	}
	k := complex(target/m, 0)
	for j := range s.Gap {
		s.Gap[j] *= k
	}
	s.spline = nil
}

// MaxGap returns the largest |Δ|.
func (s *Superconductor) MaxGap() float64 {
	m := 0.0
	for _, d := range s.Gap {
		m = math.Max(m, cmplx.Abs(d))
	}
	return m
}

// GetGap interpolates the pair potential at normalized position z.
func (s *Superconductor) GetGap(z float64) complex128 {
	if s.spline == nil {
		if err := s.fitGap(); err != nil {
			panic(err)
		}
	}
	return s.spline.At(z)
}

func (s *Superconductor) fitGap() error {
	spline, err := numeric.NewComplexSpline(s.positions, s.Gap)
	if err != nil {
		return fmt.Errorf("%w: gap profile: %w", ErrConfiguration, err)
	}
	s.spline = spline
	return nil
}

func (s *Superconductor) UpdatePrehook() error {
	if err := s.Conductor.UpdatePrehook(); err != nil {
		return err
	}
	if len(s.Gap) != len(s.positions) {
		return fmt.Errorf("%w: %d gap values for %d positions", ErrConfiguration, len(s.Gap), len(s.positions))
	}
	if err := s.fitGap(); err != nil {
		return err
	}
	s.rate = math.Max(s.rate, s.MaxGap()/s.Thouless)
	return nil
}

// DiffusionEquation adds the pairing terms −Δσy + g(Δ*σy)g and
// Δ*σy − g̃(Δσy)g̃ to the conductor terms.
func (s *Superconductor) DiffusionEquation(e complex128, z float64, g, gt, dg, dgt spin.Matrix) (spin.Matrix, spin.Matrix) {
	d2g, d2gt := s.Conductor.DiffusionEquation(e, z, g, gt, dg, dgt)

	gap := s.GetGap(z) / complex(s.Thouless, 0)
	d := spin.SigmaY.Scale(gap)
	dc := spin.SigmaY.Scale(cmplx.Conj(gap))

	d2g = d2g.Sub(d).Add(spin.Mul3(g, dc, g))
	d2gt = d2gt.Add(dc).Sub(spin.Mul3(gt, d, gt))
	return d2g, d2gt
}

// Update solves the transport problem and then, unless gap updates are
// disabled, recomputes the pair potential from the new state. A failure
// other than an *UpdateError leaves the gap untouched.
func (s *Superconductor) Update() error {
	err := s.solve(s)
	var partial *UpdateError
	if err != nil && !errors.As(err, &partial) {
		return err
	}
	if s.Frozen || s.Bootstrap || s.Locked {
		s.gapDifference = 0
		return err
	}
	s.updateGap()
	return err
}

// updateGap evaluates the gap equation
//
//	Δ(z) = λ ∫₀^cutoff ½(f_s − f̃_s*) tanh(E/2T) dE
//
// at every position.
func (s *Superconductor) updateGap() {
	lower := math.Max(0, s.energies[0])
	upper := s.energies[len(s.energies)-1]

	scale := math.Max(s.MaxGap(), gapFloor)
	diff := 0.0
	integrand := make([]complex128, len(s.energies))
	for j := range s.positions {
		for i, e := range s.energies {
			fs, fst := s.states[i][j].SingletPair()
			w := 1.0
			if s.Temperature > 0 {
				w = math.Tanh(gapFactor * e / s.Temperature)
			}
			integrand[i] = (fs - cmplx.Conj(fst)) / 2 * complex(w, 0)
		}
		gap := complex(s.Coupling, 0) * numeric.IntegrateSplineComplex(s.energies, integrand, lower, upper)
		if cmplx.IsNaN(gap) || cmplx.IsInf(gap) {
			continue
		}
		diff = math.Max(diff, cmplx.Abs(gap-s.Gap[j])/scale)
		s.Gap[j] = gap
	}
	s.gapDifference = diff
	s.spline = nil
}

// Difference is the larger of the state change and the relative gap
// change of the last update.
func (s *Superconductor) Difference() float64 {
	return math.Max(s.difference, s.gapDifference)
}

func (s *Superconductor) Save() Snapshot {
	snap := s.Layer.Save()
	snap.Gap = make([][2]float64, len(s.Gap))
	for j, d := range s.Gap {
		snap.Gap[j] = [2]float64{real(d), imag(d)}
	}
	return snap
}

func (s *Superconductor) Load(snap Snapshot) error {
	if snap.Gap != nil && len(snap.Gap) != len(s.Gap) {
		return fmt.Errorf("%w: snapshot has %d gap values, layer %d", ErrConfiguration, len(snap.Gap), len(s.Gap))
	}
	if err := s.Layer.Load(snap); err != nil {
		return err
	}
	for j, d := range snap.Gap {
		s.Gap[j] = complex(d[0], d[1])
	}
	s.spline = nil
	s.gapDifference = 0
	return nil
}
