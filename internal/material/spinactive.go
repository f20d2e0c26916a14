package material

import (
	"math"

	"github.com/san-kum/usadel/internal/spin"
)

// SpinActive computes the matrix current through an interface with
// arbitrary polarization and spin mixing, up to second order in the
// tunneling.
type SpinActive struct {
	Conductance  float64
	Polarization float64
	SpinMixing   float64
	SecondOrder  float64

	// m is the transmission magnetization, m0 and m1 the reflection
	// magnetizations on this side and on the far side.
	m, m0, m1 spin.Nambu

	// coefficients of the first-order transmission term
	linear, quadratic complex128
}

// NewSpinActive builds the model for interface f. far is the misalignment
// configured on the neighbor's facing side, or nil.
func NewSpinActive(f Interface, far *spin.Vector) (*SpinActive, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	m := nambuMagnetization(f.Magnetization)
	s := &SpinActive{
		Conductance:  f.Conductance,
		Polarization: f.Polarization,
		SpinMixing:   f.SpinMixing,
		SecondOrder:  f.SecondOrder,
		m:            m,
		m0:           m,
		m1:           m,
	}
	if f.Misalignment != nil {
		s.m0 = nambuMagnetization(*f.Misalignment)
	}
	if far != nil {
		s.m1 = nambuMagnetization(*far)
	}

	pr := math.Sqrt(1 - f.Polarization*f.Polarization)
	pp, pm := 1+pr, 1-pr
	s.linear = complex(f.Polarization/pp, 0)
	s.quadratic = complex(pm/pp, 0)
	return s, nil
}

// nambuMagnetization returns diag(m·σ, m·σ*) for the unit vector along v.
func nambuMagnetization(v spin.Vector) spin.Nambu {
	s := v.Unit().Matrix()
	return spin.NambuDiag(s, s.Conj())
}

// transmit is F(G) = G + (P/P₊)(MG + GM) + (P₋/P₊)MGM.
func (s *SpinActive) transmit(g spin.Nambu) spin.Nambu {
	mg := s.m.Mul(g)
	return g.Add(mg.Add(g.Mul(s.m)).Scale(s.linear)).Add(mg.Mul(s.m).Scale(s.quadratic))
}

// Current returns the matrix current I = (C/2)(I₁ + I₂) between g0 on this
// side and g1 on the far side; g1 is zero for vacuum. The second-order
// part I₂ is only included when secondOrder is set.
func (s *SpinActive) Current(g0, g1 spin.Nambu, secondOrder bool) spin.Nambu {
	t1 := s.transmit(g1)
	r0 := s.m0.Scale(complex(0, -s.SpinMixing))

	current := g0.Commutator(t1.Add(r0))

	if secondOrder && s.SecondOrder != 0 {
		// The 1/Q of the transmission-reflection terms cancels against
		// the Q in the reflection matrices.
		k := complex(0, -s.SecondOrder)
		current = current.
			Add(g0.Commutator(s.m0.Mul(g0).Mul(s.m0)).Scale(k)).
			Add(g0.Commutator(t1.Mul(s.m1).Mul(t1)).Scale(k)).
			Add(g0.Commutator(s.m0.Mul(t1).Add(t1.Mul(s.m0))).Scale(k))
	}
	return current.Scale(complex(s.Conductance/2, 0))
}
