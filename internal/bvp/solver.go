package bvp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/usadel/internal/integrators"
	"github.com/san-kum/usadel/internal/ode"
)

// Problem is a first-order system with boundary residuals at both ends.
// The residual lengths must add up to the state dimension.
type Problem interface {
	ode.System
	ResidualA(y ode.State) []float64
	ResidualB(y ode.State) []float64
}

// Stiff is implemented by problems that can bound the growth rate of their
// solutions.
type Stiff interface {
	Stiffness() float64
}

type Options struct {
	Integrator    string  `yaml:"integrator"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	MaxSegments   int     `yaml:"max_segments"`
	Growth        float64 `yaml:"growth"`
	MaxStep       float64 `yaml:"max_step"`
	StepFactor    float64 `yaml:"step_factor"`
	MinDamping    float64 `yaml:"min_damping"`
}

func DefaultOptions() Options {
	return Options{
		Integrator:    "rk4",
		Tolerance:     1e-8,
		MaxIterations: 30,
		MaxSegments:   16,
		Growth:        4,
		MaxStep:       0.02,
		StepFactor:    0.25,
		MinDamping:    1.0 / 1024,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Integrator == "" {
		o.Integrator = d.Integrator
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.MaxSegments <= 0 {
		o.MaxSegments = d.MaxSegments
	}
	if o.Growth <= 0 {
		o.Growth = d.Growth
	}
	if o.MaxStep <= 0 {
		o.MaxStep = d.MaxStep
	}
	if o.StepFactor <= 0 {
		o.StepFactor = d.StepFactor
	}
	if o.MinDamping <= 0 {
		o.MinDamping = d.MinDamping
	}
	return o
}

// Solution holds the converged state at every mesh point.
type Solution struct {
	Mesh       []float64
	States     []ode.State
	Iterations int
	Segments   int
	Residual   float64
}

type Solver struct {
	opts  Options
	integ ode.Integrator
}

func New(opts Options) (*Solver, error) {
	opts = opts.withDefaults()
	integ, err := integrators.New(opts.Integrator)
	if err != nil {
		return nil, err
	}
	return &Solver{opts: opts, integ: integ}, nil
}

func (s *Solver) Options() Options { return s.opts }

// Solve runs the Newton iteration from the initial guess, one state per
// mesh point.
func (s *Solver) Solve(p Problem, mesh []float64, guess []ode.State) (*Solution, error) {
	m := len(mesh)
	if m < 2 || len(guess) != m {
		return nil, fmt.Errorf("%w: %d points, %d guesses", ErrMesh, m, len(guess))
	}
	for i := 1; i < m; i++ {
		if !(mesh[i] > mesh[i-1]) {
			return nil, fmt.Errorf("%w: not strictly increasing at %d", ErrMesh, i)
		}
	}
	dim := p.StateDim()
	for i, g := range guess {
		if len(g) != dim {
			return nil, fmt.Errorf("%w: guess %d has %d entries, want %d", ode.ErrDimensionMismatch, i, len(g), dim)
		}
	}

	rate := 0.0
	if st, ok := p.(Stiff); ok {
		rate = st.Stiffness()
	}
	span := mesh[m-1] - mesh[0]
	segments := 1
	if rate > 0 {
		segments = int(math.Ceil(rate * span / s.opts.Growth))
	}
	segments = min(max(segments, 1), m-1, s.opts.MaxSegments)

	step := s.opts.MaxStep
	if rate > 0 {
		step = math.Min(step, s.opts.StepFactor/rate)
	}

	w := &workspace{
		p:     p,
		integ: s.integ,
		mesh:  mesh,
		nodes: make([]int, segments+1),
		step:  step,
		dim:   dim,
	}
	for j := range w.nodes {
		w.nodes[j] = int(math.Round(float64(j*(m-1)) / float64(segments)))
	}

	shots := make([]ode.State, segments+1)
	for j, idx := range w.nodes {
		shots[j] = guess[idx].Clone()
	}

	f, ends, err := w.residual(shots)
	if err != nil {
		return nil, err
	}

	iter := 0
	for ; ; iter++ {
		norm := maxAbs(f)
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			return nil, &SolveError{Iteration: iter, Residual: norm, Wrapped: ode.ErrInvalidState}
		}
		if norm <= s.opts.Tolerance*math.Max(1, shotsNorm(shots)) {
			break
		}
		if iter >= s.opts.MaxIterations {
			return nil, &SolveError{Iteration: iter, Residual: norm, Wrapped: ErrDivergence}
		}

		dx, err := w.newtonStep(shots, f, ends)
		if err != nil {
			return nil, &SolveError{Iteration: iter, Residual: norm, Wrapped: err}
		}

		accepted := false
		for lambda := 1.0; lambda >= s.opts.MinDamping; lambda /= 2 {
			trial := make([]ode.State, len(shots))
			for j := range shots {
				trial[j] = shots[j].Clone()
				for c := 0; c < dim; c++ {
					trial[j][c] += lambda * dx[j*dim+c]
				}
			}
			ft, et, err := w.residual(trial)
			if err != nil {
				return nil, err
			}
			if n := maxAbs(ft); n < norm {
				shots, f, ends = trial, ft, et
				accepted = true
				break
			}
		}
		if !accepted {
			return nil, &SolveError{Iteration: iter, Residual: norm, Wrapped: ErrDivergence}
		}
	}

	return &Solution{
		Mesh:       mesh,
		States:     w.path(shots),
		Iterations: iter,
		Segments:   segments,
		Residual:   maxAbs(f),
	}, nil
}

type workspace struct {
	p     Problem
	integ ode.Integrator
	mesh  []float64
	nodes []int
	step  float64
	dim   int
}

// shoot integrates segment k from y. If record is non-nil it receives the
// state at every mesh point of the segment, starting point included.
func (w *workspace) shoot(k int, y ode.State, record []ode.State) ode.State {
	first, last := w.nodes[k], w.nodes[k+1]
	if record != nil {
		record[0] = y.Clone()
	}
	for i := first; i < last; i++ {
		z0, z1 := w.mesh[i], w.mesh[i+1]
		sub := int(math.Ceil((z1 - z0) / w.step))
		if sub < 1 {
			sub = 1
		}
		h := (z1 - z0) / float64(sub)
		for j := 0; j < sub; j++ {
			y = w.integ.Step(w.p, y, z0+float64(j)*h, h)
		}
		if !y.IsValid() {
			return y
		}
		if record != nil {
			record[i-first+1] = y.Clone()
		}
	}
	return y
}

// residual evaluates [rA; continuity mismatches; rB] and returns the
// segment end states for reuse in the Jacobian.
func (w *workspace) residual(shots []ode.State) ([]float64, []ode.State, error) {
	segments := len(shots) - 1
	ra := w.p.ResidualA(shots[0])
	rb := w.p.ResidualB(shots[segments])
	if len(ra)+len(rb) != w.dim {
		return nil, nil, fmt.Errorf("%w: %d+%d boundary residuals for dimension %d",
			ode.ErrDimensionMismatch, len(ra), len(rb), w.dim)
	}

	f := make([]float64, 0, w.dim*(segments+1))
	f = append(f, ra...)
	ends := make([]ode.State, segments)
	for k := 0; k < segments; k++ {
		ends[k] = w.shoot(k, shots[k].Clone(), nil)
		for c := 0; c < w.dim; c++ {
			f = append(f, ends[k][c]-shots[k+1][c])
		}
	}
	f = append(f, rb...)
	return f, ends, nil
}

// newtonStep solves J·dx = -f with a forward-difference Jacobian.
func (w *workspace) newtonStep(shots []ode.State, f []float64, ends []ode.State) ([]float64, error) {
	segments := len(shots) - 1
	n := w.dim * (segments + 1)
	na := len(f) - w.dim*segments - len(w.p.ResidualB(shots[segments]))
	ra := f[:na]
	rb := f[na+segments*w.dim:]

	jac := mat.NewDense(n, n, nil)
	for k := 0; k <= segments; k++ {
		for c := 0; c < w.dim; c++ {
			col := k*w.dim + c
			delta := 1e-7 * math.Max(1, math.Abs(shots[k][c]))
			probe := shots[k].Clone()
			probe[c] += delta

			if k == 0 {
				for r, v := range w.p.ResidualA(probe) {
					jac.Set(r, col, (v-ra[r])/delta)
				}
			}
			if k < segments {
				end := w.shoot(k, probe.Clone(), nil)
				if !end.IsValid() {
					return nil, ode.ErrInvalidState
				}
				row := na + k*w.dim
				for r := 0; r < w.dim; r++ {
					jac.Set(row+r, col, (end[r]-ends[k][r])/delta)
				}
			}
			if k > 0 {
				jac.Set(na+(k-1)*w.dim+c, col, -1)
			}
			if k == segments {
				row := na + segments*w.dim
				for r, v := range w.p.ResidualB(probe) {
					jac.Set(row+r, col, (v-rb[r])/delta)
				}
			}
		}
	}

	var lu mat.LU
	lu.Factorize(jac)
	rhs := make([]float64, n)
	for i, v := range f {
		rhs[i] = -v
	}
	var dx mat.VecDense
	if err := lu.SolveVecTo(&dx, false, mat.NewVecDense(n, rhs)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, ErrSingularJacobian
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = dx.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, ErrSingularJacobian
		}
	}
	return out, nil
}

// path integrates every segment once more and collects the state at each
// mesh point. Node states are taken from the shooting unknowns.
func (w *workspace) path(shots []ode.State) []ode.State {
	states := make([]ode.State, len(w.mesh))
	for k := 0; k < len(shots)-1; k++ {
		first, last := w.nodes[k], w.nodes[k+1]
		w.shoot(k, shots[k].Clone(), states[first:last+1])
	}
	for k, idx := range w.nodes {
		states[idx] = shots[k].Clone()
	}
	return states
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if math.IsNaN(x) {
			return math.NaN()
		}
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func shotsNorm(shots []ode.State) float64 {
	m := 0.0
	for _, s := range shots {
		m = math.Max(m, s.MaxAbs())
	}
	return m
}
