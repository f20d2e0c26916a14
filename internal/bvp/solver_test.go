package bvp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/usadel/internal/ode"
)

// screened is y'' = k²y with y(0) = 1 and y'(1) = 0.
type screened struct{ k float64 }

func (s *screened) Derive(y ode.State, z float64) ode.State {
	return ode.State{y[1], s.k * s.k * y[0]}
}

func (s *screened) StateDim() int                   { return 2 }
func (s *screened) ResidualA(y ode.State) []float64 { return []float64{y[0] - 1} }
func (s *screened) ResidualB(y ode.State) []float64 { return []float64{y[1]} }
func (s *screened) Stiffness() float64              { return s.k }

func (s *screened) exact(z float64) (float64, float64) {
	c := math.Cosh(s.k)
	return math.Cosh(s.k*(1-z)) / c, -s.k * math.Sinh(s.k*(1-z)) / c
}

// quadratic is y'' = 3y²/2 with y(0) = 4 and y(1) = 1, solved by 4/(1+z)².
type quadratic struct{}

func (quadratic) Derive(y ode.State, z float64) ode.State {
	return ode.State{y[1], 1.5 * y[0] * y[0]}
}

func (quadratic) StateDim() int                   { return 2 }
func (quadratic) ResidualA(y ode.State) []float64 { return []float64{y[0] - 4} }
func (quadratic) ResidualB(y ode.State) []float64 { return []float64{y[0] - 1} }

// lopsided reports two residuals at each end of a 2-dimensional system.
type lopsided struct{ quadratic }

func (lopsided) ResidualA(y ode.State) []float64 { return []float64{y[0], y[1]} }

func mesh(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

func flatGuess(n int, v ...float64) []ode.State {
	out := make([]ode.State, n)
	for i := range out {
		out[i] = append(ode.State(nil), v...)
	}
	return out
}

func TestSolveLinearScreening(t *testing.T) {
	p := &screened{k: 5}
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	zs := mesh(21)
	sol, err := s.Solve(p, zs, flatGuess(len(zs), 0, 0))
	require.NoError(t, err)
	require.Len(t, sol.States, len(zs))
	assert.Equal(t, 2, sol.Segments)

	for i, z := range zs {
		y, dy := p.exact(z)
		assert.InDelta(t, y, sol.States[i][0], 1e-5, "y at z=%.2f", z)
		assert.InDelta(t, dy, sol.States[i][1], 1e-4, "y' at z=%.2f", z)
	}
}

func TestSolveSegmentsCapped(t *testing.T) {
	p := &screened{k: 40}
	opts := DefaultOptions()
	opts.MaxSegments = 4
	s, err := New(opts)
	require.NoError(t, err)

	zs := mesh(41)
	sol, err := s.Solve(p, zs, flatGuess(len(zs), 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 4, sol.Segments)
	assert.InDelta(t, 1, sol.States[0][0], 1e-6)
	assert.InDelta(t, 0, sol.States[len(zs)-1][1], 1e-6)
}

func TestSolveSegmentsLimitedByMesh(t *testing.T) {
	p := &screened{k: 40}
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	zs := mesh(3)
	sol, err := s.Solve(p, zs, flatGuess(len(zs), 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, sol.Segments)
}

func TestSolveNonlinear(t *testing.T) {
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	zs := mesh(11)
	guess := make([]ode.State, len(zs))
	for i, z := range zs {
		guess[i] = ode.State{4 - 3*z, -3}
	}

	sol, err := s.Solve(quadratic{}, zs, guess)
	require.NoError(t, err)
	assert.Positive(t, sol.Iterations)

	for i, z := range zs {
		want := 4 / ((1 + z) * (1 + z))
		assert.InDelta(t, want, sol.States[i][0], 1e-6, "y at z=%.1f", z)
	}
	assert.InDelta(t, -8, sol.States[0][1], 1e-5)
}

func TestSolveExactGuessReturnsImmediately(t *testing.T) {
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	zs := mesh(11)
	guess := make([]ode.State, len(zs))
	for i, z := range zs {
		guess[i] = ode.State{4 - 3*z, -3}
	}
	first, err := s.Solve(quadratic{}, zs, guess)
	require.NoError(t, err)

	again, err := s.Solve(quadratic{}, zs, first.States)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Iterations)
}

func TestSolveRejectsBadMesh(t *testing.T) {
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	_, err = s.Solve(quadratic{}, []float64{0}, flatGuess(1, 0, 0))
	assert.ErrorIs(t, err, ErrMesh)

	_, err = s.Solve(quadratic{}, []float64{0, 0.5, 0.5, 1}, flatGuess(4, 0, 0))
	assert.ErrorIs(t, err, ErrMesh)

	_, err = s.Solve(quadratic{}, mesh(4), flatGuess(3, 0, 0))
	assert.ErrorIs(t, err, ErrMesh)

	_, err = s.Solve(quadratic{}, mesh(4), flatGuess(4, 0))
	assert.ErrorIs(t, err, ode.ErrDimensionMismatch)
}

func TestSolveRejectsResidualCount(t *testing.T) {
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	_, err = s.Solve(lopsided{}, mesh(5), flatGuess(5, 0, 0))
	assert.ErrorIs(t, err, ode.ErrDimensionMismatch)
}

func TestSolveIterationCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 1
	opts.Tolerance = 1e-15
	s, err := New(opts)
	require.NoError(t, err)

	zs := mesh(11)
	_, err = s.Solve(quadratic{}, zs, flatGuess(len(zs), 0, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivergence)

	var se *SolveError
	require.ErrorAs(t, err, &se)
	assert.LessOrEqual(t, se.Iteration, 1)
}

func TestNewUnknownIntegrator(t *testing.T) {
	_, err := New(Options{Integrator: "leapfrog"})
	assert.Error(t, err)
}

func TestOptionsDefaultsFilled(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), s.Options())
}
