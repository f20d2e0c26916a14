package structure

import (
	"errors"

	"github.com/san-kum/usadel/internal/material"
)

// WriteDensityOfStates emits (position, energy, dos) for every layer, with
// positions in units of the coherence length measured from the top of the
// stack.
func (s *Structure) WriteDensityOfStates(sink material.Sink) error {
	if len(s.layers) == 0 {
		return ErrEmpty
	}
	left := 0.0
	for _, m := range s.layers {
		right := left + m.Base().Length
		if err := m.WriteDensityOfStates(sink, left, right); err != nil {
			return err
		}
		left = right
	}
	return nil
}

// WriteGap emits (position, Re Δ, Im Δ) for every position of every layer.
// Layers without a pair potential contribute zeros.
func (s *Structure) WriteGap(sink material.Sink) error {
	if len(s.layers) == 0 {
		return ErrEmpty
	}
	left := 0.0
	for _, m := range s.layers {
		b := m.Base()
		right := left + b.Length
		sc, _ := m.(*material.Superconductor)
		for j, z := range b.Positions() {
			var gap complex128
			if sc != nil {
				gap = sc.Gap[j]
			}
			if err := sink.Record(left+(right-left)*z, real(gap), imag(gap)); err != nil {
				return err
			}
		}
		left = right
	}
	return nil
}

// isPartial reports whether err only carries per-energy failures.
func isPartial(err error) bool {
	var ue *material.UpdateError
	return errors.As(err, &ue)
}
