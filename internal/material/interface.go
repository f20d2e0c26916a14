package material

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/usadel/internal/riccati"
	"github.com/san-kum/usadel/internal/spin"
)

// Interface holds the parameters of one side of a layer.
type Interface struct {
	Conductance  float64
	Polarization float64
	SpinMixing   float64
	SecondOrder  float64

	// Magnetization is the interface moment; it is normalized before use.
	Magnetization spin.Vector

	// Misalignment, if set, replaces Magnetization for the reflection
	// terms on this side.
	Misalignment *spin.Vector
}

// SpinActive reports whether the interface needs the spin-active model
// instead of the Kuprianov-Lukichev condition.
func (f Interface) SpinActive() bool {
	return f.Polarization != 0 || f.SpinMixing != 0 || f.SecondOrder != 0
}

func (f Interface) Validate() error {
	if f.Conductance < 0 {
		return fmt.Errorf("%w: negative conductance %g", ErrConfiguration, f.Conductance)
	}
	if f.Polarization < 0 || f.Polarization >= 1 {
		return fmt.Errorf("%w: polarization %g outside [0, 1)", ErrConfiguration, f.Polarization)
	}
	if f.SecondOrder != 0 && f.SpinMixing == 0 {
		return fmt.Errorf("%w: %w: second-order spin mixing %g without first-order spin mixing",
			ErrConfiguration, ErrSingular, f.SecondOrder)
	}
	return nil
}

// tunnel is the Kuprianov-Lukichev residual. sign is +1 on side a and -1
// on side b.
func tunnel(c float64, n *riccati.Propagator, g, gt, dg, dgt spin.Matrix, sign float64) (spin.Matrix, spin.Matrix) {
	n1, nt1, ok := n.Normalization()
	if !ok {
		return nanMatrix(), nanMatrix()
	}
	k := complex(sign*c, 0)

	r := dg.Sub(spin.Mul3(spin.Identity.Sub(g.Mul(n.Gt)), n1, g.Sub(n.G)).Scale(k))
	rt := dgt.Sub(spin.Mul3(spin.Identity.Sub(gt.Mul(n.G)), nt1, gt.Sub(n.Gt)).Scale(k))
	return r, rt
}

// spinActive is the residual of a spin-active interface built from the
// matrix current J: r = dg + ½(I−gg̃)(J₁₂ − J₁₁g) on side a, with the
// current term negated on side b.
func spinActive(model *SpinActive, n *riccati.Propagator, g, gt, dg, dgt spin.Matrix, sign float64, secondOrder bool) (spin.Matrix, spin.Matrix) {
	this := riccati.Propagator{G: g, Gt: gt}
	g0, _ := this.Nambu()

	var g1 spin.Nambu
	if n != nil {
		var ok bool
		if g1, ok = n.Nambu(); !ok {
			return nanMatrix(), nanMatrix()
		}
	}
	j := model.Current(g0, g1, secondOrder)

	k := complex(sign/2, 0)
	r := dg.Add(spin.Identity.Sub(g.Mul(gt)).Mul(j.Block(0, 1).Sub(j.Block(0, 0).Mul(g))).Scale(k))
	rt := dgt.Add(spin.Identity.Sub(gt.Mul(g)).Mul(j.Block(1, 0).Sub(j.Block(1, 1).Mul(gt))).Scale(k))
	return r, rt
}

// nanMatrix marks a residual that cannot be evaluated.
func nanMatrix() spin.Matrix {
	nan := cmplx.NaN()
	return spin.Matrix{{nan, nan}, {nan, nan}}
}
