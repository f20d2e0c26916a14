package structure_test

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/usadel/internal/config"
	"github.com/san-kum/usadel/internal/material"
	"github.com/san-kum/usadel/internal/numeric"
	"github.com/san-kum/usadel/internal/riccati"
	"github.com/san-kum/usadel/internal/structure"
)

func layerOptions(length float64, points int) material.Options {
	opts := material.DefaultOptions()
	opts.Length = length
	opts.Points = points
	opts.Solver.MaxStep = 0.05
	return opts
}

func conductor(energies []float64, length float64) material.Material {
	c, err := material.NewConductor(energies, layerOptions(length, 3))
	Expect(err).NotTo(HaveOccurred())
	return c
}

func superconductor(energies []float64, length float64, gap complex128, coupling float64) *material.Superconductor {
	s, err := material.NewSuperconductor(energies, layerOptions(length, 3), gap, coupling)
	Expect(err).NotTo(HaveOccurred())
	return s
}

type record struct{ a, b, c float64 }

func collect(out *[]record) material.SinkFunc {
	return func(a, b, c float64) error {
		*out = append(*out, record{a, b, c})
		return nil
	}
}

// bulkGap iterates the gap equation of a uniform BCS state on the given
// grid until it stops changing.
func bulkGap(energies []float64, scattering, coupling, start float64) float64 {
	gap := start
	integrand := make([]complex128, len(energies))
	for k := 0; k < 1000; k++ {
		for i, e := range energies {
			p := riccati.NewBCS(complex(e, scattering), complex(gap, 0))
			fs, fst := p.SingletPair()
			integrand[i] = (fs - cmplx.Conj(fst)) / 2
		}
		next := coupling * real(numeric.IntegrateSplineComplex(energies, integrand, energies[0], energies[len(energies)-1]))
		if math.Abs(next-gap) < 1e-13 {
			return next
		}
		gap = next
	}
	return gap
}

var _ = Describe("Structure", func() {
	energies := []float64{0.5, 1.5}

	Describe("PushBack", func() {
		It("links neighbors with vacuum at both ends", func() {
			s := structure.New()
			for _, l := range []float64{1, 0.5, 2} {
				Expect(s.PushBack(conductor(energies, l))).To(Succeed())
			}
			layers := s.Layers()
			Expect(s.Len()).To(Equal(3))
			Expect(layers[0].Base().MaterialA).To(BeNil())
			Expect(layers[0].Base().MaterialB).To(BeIdenticalTo(layers[1]))
			Expect(layers[1].Base().MaterialA).To(BeIdenticalTo(layers[0]))
			Expect(layers[1].Base().MaterialB).To(BeIdenticalTo(layers[2]))
			Expect(layers[2].Base().MaterialA).To(BeIdenticalTo(layers[1]))
			Expect(layers[2].Base().MaterialB).To(BeNil())
			Expect(s.Energies()).To(Equal(energies))
		})

		It("rejects a nil layer", func() {
			Expect(structure.New().PushBack(nil)).To(MatchError(structure.ErrConfiguration))
		})

		It("rejects a layer on another energy grid", func() {
			s := structure.New()
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())
			err := s.PushBack(conductor([]float64{0.5, 1.6}, 1))
			Expect(err).To(MatchError(structure.ErrConfiguration))
			Expect(s.Len()).To(Equal(1))
		})
	})

	Describe("Converge", func() {
		It("refuses an empty structure", func() {
			_, err := structure.New().Converge(context.Background(), structure.DefaultConvergeOptions())
			Expect(err).To(MatchError(structure.ErrEmpty))
			Expect(err).To(MatchError(structure.ErrConfiguration))
			Expect(structure.New().Update(context.Background())).To(MatchError(structure.ErrEmpty))
		})

		It("refuses bad options", func() {
			s := structure.New()
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())

			opts := structure.DefaultConvergeOptions()
			opts.Threshold = 0
			_, err := s.Converge(context.Background(), opts)
			Expect(err).To(MatchError(structure.ErrConfiguration))

			opts = structure.DefaultConvergeOptions()
			opts.Iterations = 0
			_, err = s.Converge(context.Background(), opts)
			Expect(err).To(MatchError(structure.ErrConfiguration))
		})

		It("bootstraps and then refines a normal stack", func() {
			s := structure.New()
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())

			var pre, post []int
			var bootstrapping []bool
			opts := structure.DefaultConvergeOptions()
			opts.Prehook = func(it int, st *structure.Structure) {
				pre = append(pre, it)
				bootstrapping = append(bootstrapping, st.Layers()[0].Base().Bootstrap)
			}
			opts.Posthook = func(it int, _ *structure.Structure) { post = append(post, it) }

			res, err := s.Converge(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Iterations).To(Equal(2))
			Expect(res.Bootstrap).To(Equal(1))
			Expect(res.Difference).To(BeNumerically("<", opts.Threshold))
			Expect(res.Errors).To(BeEmpty())
			Expect(pre).To(Equal([]int{1, 2}))
			Expect(post).To(Equal([]int{1, 2}))
			Expect(bootstrapping).To(Equal([]bool{true, false}))

			for _, m := range s.Layers() {
				Expect(m.Base().Bootstrap).To(BeFalse())
			}
		})

		It("converges in one iteration without bootstrapping", func() {
			s := structure.New()
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())

			opts := structure.DefaultConvergeOptions()
			opts.Bootstrap = false
			res, err := s.Converge(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Iterations).To(Equal(1))
			Expect(res.Bootstrap).To(Equal(0))
		})

		It("stops at the iteration cap without an error", func() {
			s := structure.New()
			Expect(s.PushBack(superconductor([]float64{0.1, 0.5, 1.2, 3}, 0.5, 0.5, 0.3))).To(Succeed())

			calls := 0
			opts := structure.ConvergeOptions{
				Threshold:  1e-12,
				Iterations: 2,
				Posthook:   func(int, *structure.Structure) { calls++ },
			}
			res, err := s.Converge(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeFalse())
			Expect(res.Iterations).To(Equal(2))
			Expect(calls).To(Equal(2))
			Expect(res.Difference).To(BeNumerically(">", opts.Threshold))
		})

		It("never converges while energies fail", func() {
			bulkEnergies := []float64{0.3, 2}
			bulk := superconductor(bulkEnergies, 1, 1, 0)
			bulk.Frozen = true

			opts := layerOptions(1, 5)
			opts.Solver.MaxIterations = 1
			opts.Solver.Tolerance = 1e-15
			opts.A.Conductance = 3
			c, err := material.NewConductor(bulkEnergies, opts)
			Expect(err).NotTo(HaveOccurred())

			s := structure.New()
			Expect(s.PushBack(bulk)).To(Succeed())
			Expect(s.PushBack(c)).To(Succeed())

			copts := structure.DefaultConvergeOptions()
			copts.Iterations = 3
			res, err := s.Converge(context.Background(), copts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeFalse())
			Expect(res.Iterations).To(Equal(3))
			Expect(math.IsInf(res.Difference, 1)).To(BeTrue(), "difference %g", res.Difference)
			Expect(res.Errors).To(HaveLen(3))
			for _, e := range res.Errors {
				Expect(e).To(MatchError(material.ErrSolverDivergence))
			}
			Expect(s.Failed()).To(Equal(2))
		})

		It("returns on a canceled context", func() {
			s := structure.New()
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := s.Converge(ctx, structure.DefaultConvergeOptions())
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Iterations).To(Equal(0))
			Expect(res.Converged).To(BeFalse())
		})

		It("reaches the bulk gap of an isolated superconductor", Label("slow"), func() {
			if testing.Short() {
				Skip("self-consistent run skipped in short mode")
			}
			grid, err := config.EnergyGrid(config.DefaultEnergies, config.DefaultCutoff)
			Expect(err).NotTo(HaveOccurred())
			coupling := 1 / math.Acosh(grid[len(grid)-1])
			want := bulkGap(grid, material.DefaultScattering, coupling, 1)
			Expect(want).To(BeNumerically("~", 1, 0.01))

			for _, start := range []float64{0.5, 1.5} {
				for _, bootstrap := range []bool{true, false} {
					sc := superconductor(grid, 0.2, complex(start, 0), 0)
					Expect(sc.Coupling).To(BeNumerically("~", coupling, 1e-15))
					s := structure.New()
					Expect(s.PushBack(sc)).To(Succeed())

					opts := structure.ConvergeOptions{Threshold: 1e-5, Iterations: 80, Bootstrap: bootstrap}
					res, err := s.Converge(context.Background(), opts)
					Expect(err).NotTo(HaveOccurred())
					Expect(res.Converged).To(BeTrue(), "start %g bootstrap %t", start, bootstrap)
					for _, gap := range sc.Gap {
						Expect(real(gap)).To(BeNumerically("~", want, 1e-3), "start %g bootstrap %t", start, bootstrap)
						Expect(imag(gap)).To(BeNumerically("~", 0, 1e-6))
					}
				}
			}
		})
	})

	Describe("output", func() {
		var s *structure.Structure

		BeforeEach(func() {
			s = structure.New()
			Expect(s.PushBack(superconductor(energies, 0.5, 1, 0.3))).To(Succeed())
			Expect(s.PushBack(conductor(energies, 1))).To(Succeed())
		})

		It("writes the gap at global positions", func() {
			var got []record
			Expect(s.WriteGap(collect(&got))).To(Succeed())
			Expect(got).To(HaveLen(6))

			xs := []float64{0, 0.25, 0.5, 0.5, 1, 1.5}
			for k, r := range got {
				Expect(r.a).To(BeNumerically("~", xs[k], 1e-15))
				Expect(r.c).To(Equal(0.0))
				if k < 3 {
					Expect(r.b).To(Equal(1.0))
				} else {
					Expect(r.b).To(Equal(0.0))
				}
			}
		})

		It("writes the mirrored density of states of every layer", func() {
			var got []record
			Expect(s.WriteDensityOfStates(collect(&got))).To(Succeed())
			Expect(got).To(HaveLen(6 * 4))
			Expect(got[0].a).To(Equal(0.0))
			Expect(got[len(got)-1].a).To(BeNumerically("~", 1.5, 1e-15))
			Expect(got[len(got)-1].c).To(Equal(1.0))
		})

		It("round-trips a snapshot", func() {
			snap := s.Save()
			sc := s.Superconductors()[0]
			sc.SetGap(0.1)
			Expect(s.MaxGap()).To(BeNumerically("~", 0.1, 1e-15))

			Expect(s.Load(snap)).To(Succeed())
			Expect(s.MaxGap()).To(BeNumerically("~", 1, 1e-15))

			snap.Layers = snap.Layers[:1]
			Expect(s.Load(snap)).To(MatchError(structure.ErrConfiguration))
		})

		It("sets the temperature of every layer", func() {
			s.SetTemperature(0.4)
			for _, m := range s.Layers() {
				Expect(m.Base().Temperature).To(Equal(0.4))
			}
			Expect(s.Failed()).To(Equal(0))
		})
	})
})
