package riccati

import (
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/usadel/internal/ode"
	"github.com/san-kum/usadel/internal/spin"
)

const (
	// MatrixDim is the number of reals in one packed spin matrix.
	MatrixDim = 8

	// Dim is the number of reals in a packed propagator.
	Dim = 4 * MatrixDim
)

// Propagator is the Riccati state at one energy and position.
type Propagator struct {
	G, Gt   spin.Matrix
	DG, DGt spin.Matrix
}

// NewBCS returns the bulk BCS solution at energy e for the pair potential
// gap, both in the same units. A zero gap gives the normal state.
func NewBCS(e, gap complex128) Propagator {
	if gap == 0 {
		return Propagator{}
	}
	root := cmplx.Sqrt(e*e - complex(real(gap)*real(gap)+imag(gap)*imag(gap), 0))

	// a solves Δ*a² − 2εa + Δ = 0 and ã solves Δã² + 2εã + Δ* = 0. The
	// products of the roots have unit modulus; the bounded roots are taken
	// in the form that avoids cancellation.
	q := e + root
	if cmplx.Abs(e-root) > cmplx.Abs(q) {
		q = e - root
	}
	a := gap / q
	at := -cmplx.Conj(gap) / q

	j := spin.Matrix{{0, 1}, {-1, 0}}
	return Propagator{G: j.Scale(a), Gt: j.Scale(at)}
}

// Regular reports whether both normalization matrices exist.
func Regular(g, gt spin.Matrix) bool {
	_, ok1 := spin.Identity.Sub(g.Mul(gt)).Inv()
	_, ok2 := spin.Identity.Sub(gt.Mul(g)).Inv()
	return ok1 && ok2
}

// Normalization returns N and Ñ. ok is false if either is singular.
func (p *Propagator) Normalization() (n, nt spin.Matrix, ok bool) {
	n, ok1 := spin.Identity.Sub(p.G.Mul(p.Gt)).Inv()
	nt, ok2 := spin.Identity.Sub(p.Gt.Mul(p.G)).Inv()
	return n, nt, ok1 && ok2
}

// DOS returns the spin-averaged density of states Re Tr[N(I+g·g̃)]/2.
func (p *Propagator) DOS() float64 {
	n, _, ok := p.Normalization()
	if !ok {
		return math.NaN()
	}
	return real(n.Mul(spin.Identity.Add(p.G.Mul(p.Gt))).Trace()) / 2
}

// SingletPair returns the singlet pair amplitudes (Ng)₁₂ − (Ng)₂₁ and
// (Ñg̃)₁₂ − (Ñg̃)₂₁.
func (p *Propagator) SingletPair() (fs, fst complex128) {
	n, nt, ok := p.Normalization()
	if !ok {
		return cmplx.NaN(), cmplx.NaN()
	}
	f := n.Mul(p.G)
	ft := nt.Mul(p.Gt)
	return f[0][1] - f[1][0], ft[0][1] - ft[1][0]
}

// Triplet returns the d-vector of the anomalous function N·g written as
// (f₀ + d·σ)iσy.
func (p *Propagator) Triplet() [3]complex128 {
	n, _, ok := p.Normalization()
	if !ok {
		nan := cmplx.NaN()
		return [3]complex128{nan, nan, nan}
	}
	// f·(iσy)⁻¹ = −f·iσy
	m := n.Mul(p.G).Mul(spin.Matrix{{0, -1}, {1, 0}})
	return [3]complex128{
		m.Mul(spin.SigmaX).Trace() / 2,
		m.Mul(spin.SigmaY).Trace() / 2,
		m.Mul(spin.SigmaZ).Trace() / 2,
	}
}

// Nambu returns the retarded Green's function
//
//	G = [[N(I+gg̃), 2Ng], [−2Ñg̃, −Ñ(I+g̃g)]]
//
// which squares to the identity.
func (p *Propagator) Nambu() (spin.Nambu, bool) {
	n, nt, ok := p.Normalization()
	if !ok {
		return spin.Nambu{}, false
	}
	return spin.NewNambu(
		n.Mul(spin.Identity.Add(p.G.Mul(p.Gt))),
		n.Mul(p.G).Scale(2),
		nt.Mul(p.Gt).Scale(-2),
		nt.Mul(spin.Identity.Add(p.Gt.Mul(p.G))).Scale(-1),
	), true
}

// Valid reports whether every entry is finite.
func (p *Propagator) Valid() bool {
	return p.G.IsValid() && p.Gt.IsValid() && p.DG.IsValid() && p.DGt.IsValid()
}

// Difference is the largest entrywise change between p and q.
func (p *Propagator) Difference(q *Propagator) float64 {
	return max(
		p.G.Distance(q.G),
		p.Gt.Distance(q.Gt),
		p.DG.Distance(q.DG),
		p.DGt.Distance(q.DGt),
	)
}

// Pack writes the propagator into y, which must hold Dim entries.
func (p *Propagator) Pack(y []float64) {
	PackMatrix(y[0:], p.G)
	PackMatrix(y[MatrixDim:], p.Gt)
	PackMatrix(y[2*MatrixDim:], p.DG)
	PackMatrix(y[3*MatrixDim:], p.DGt)
}

// State returns a freshly packed copy.
func (p *Propagator) State() ode.State {
	y := make(ode.State, Dim)
	p.Pack(y)
	return y
}

// Unpack reads a propagator packed by Pack.
func Unpack(y []float64) Propagator {
	return Propagator{
		G:   UnpackMatrix(y[0:]),
		Gt:  UnpackMatrix(y[MatrixDim:]),
		DG:  UnpackMatrix(y[2*MatrixDim:]),
		DGt: UnpackMatrix(y[3*MatrixDim:]),
	}
}

func PackMatrix(dst []float64, m spin.Matrix) {
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			k := 2 * (2*r + c)
			dst[k] = real(m[r][c])
			dst[k+1] = imag(m[r][c])
		}
	}
}

func UnpackMatrix(src []float64) spin.Matrix {
	var m spin.Matrix
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			k := 2 * (2*r + c)
			m[r][c] = complex(src[k], src[k+1])
		}
	}
	return m
}

func (p Propagator) MarshalJSON() ([]byte, error) {
	y := make([]float64, Dim)
	p.Pack(y)
	return json.Marshal(y)
}

func (p *Propagator) UnmarshalJSON(data []byte) error {
	var y []float64
	if err := json.Unmarshal(data, &y); err != nil {
		return err
	}
	if len(y) != Dim {
		return fmt.Errorf("%w: propagator has %d entries, want %d", ode.ErrDimensionMismatch, len(y), Dim)
	}
	*p = Unpack(y)
	return nil
}
