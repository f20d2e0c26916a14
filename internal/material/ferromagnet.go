package material

import (
	"fmt"
	"math"

	"github.com/san-kum/usadel/internal/spin"
)

// Ferromagnet is a conductor with an exchange field.
type Ferromagnet struct {
	Conductor

	// Exchange is the field at each position, in units of the bulk gap.
	// Between positions it is interpolated linearly.
	Exchange []spin.Vector

	h, ht []spin.Matrix
}

// NewFerromagnet returns a ferromagnet in the normal state with a uniform
// exchange field.
func NewFerromagnet(energies []float64, opts Options, exchange spin.Vector) (*Ferromagnet, error) {
	c, err := NewConductor(energies, opts)
	if err != nil {
		return nil, err
	}
	f := &Ferromagnet{Conductor: *c}
	f.SetExchange(exchange)
	return f, nil
}

// SetExchange sets a uniform exchange field.
func (f *Ferromagnet) SetExchange(h spin.Vector) {
	f.Exchange = make([]spin.Vector, len(f.positions))
	for j := range f.Exchange {
		f.Exchange[j] = h
	}
}

// UpdatePrehook caches h = (−i/T)(h·σ) and h̃ = (i/T)(h·σ)* at every
// position, T the Thouless energy.
func (f *Ferromagnet) UpdatePrehook() error {
	if err := f.Conductor.UpdatePrehook(); err != nil {
		return err
	}
	if len(f.Exchange) != len(f.positions) {
		return fmt.Errorf("%w: %d exchange vectors for %d positions", ErrConfiguration, len(f.Exchange), len(f.positions))
	}

	f.h = make([]spin.Matrix, len(f.Exchange))
	f.ht = make([]spin.Matrix, len(f.Exchange))
	scale := 1 / f.Thouless
	for j, v := range f.Exchange {
		s := v.Matrix()
		f.h[j] = s.Scale(complex(0, -scale))
		f.ht[j] = s.Conj().Scale(complex(0, scale))
		f.rate = math.Max(f.rate, v.Norm()*scale)
	}
	return nil
}

func (f *Ferromagnet) exchangeAt(z float64) (spin.Matrix, spin.Matrix) {
	n := len(f.h)
	x := math.Min(math.Max(z, 0), 1) * float64(n-1)
	i := min(int(x), n-2)
	t := complex(x-float64(i), 0)
	h := f.h[i].Scale(1 - t).Add(f.h[i+1].Scale(t))
	ht := f.ht[i].Scale(1 - t).Add(f.ht[i+1].Scale(t))
	return h, ht
}

// DiffusionEquation adds h·g + g·h̃ and h̃·g̃ + g̃·h to the conductor terms.
func (f *Ferromagnet) DiffusionEquation(e complex128, z float64, g, gt, dg, dgt spin.Matrix) (spin.Matrix, spin.Matrix) {
	d2g, d2gt := f.Conductor.DiffusionEquation(e, z, g, gt, dg, dgt)
	h, ht := f.exchangeAt(z)
	d2g = d2g.Add(h.Mul(g)).Add(g.Mul(ht))
	d2gt = d2gt.Add(ht.Mul(gt)).Add(gt.Mul(h))
	return d2g, d2gt
}

func (f *Ferromagnet) Update() error {
	return f.solve(f)
}
