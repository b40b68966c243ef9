// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

// Volume is the shared volume gate. It is read once per frame by the driver
// and written by the UI, so the value is stored as atomic float64 bits.
// The range is 0.0-1.0 where 0 closes the gate.
type Volume struct {
	bits atomic.Uint64
}

// NewVolume returns a gate set to v (clamped).
func NewVolume(v float64) *Volume {
	vol := &Volume{}
	vol.Set(v)
	return vol
}

// Volume returns the current value.
func (v *Volume) Volume() float64 {
	return math.Float64frombits(v.bits.Load())
}

// Set stores value clamped to [0, 1] and returns what was stored.
func (v *Volume) Set(value float64) float64 {
	value = clampVolume(value)
	v.bits.Store(math.Float64bits(value))
	return value
}

// Adjust adds delta to the current value and returns the clamped result.
func (v *Volume) Adjust(delta float64) float64 {
	for {
		old := v.bits.Load()
		next := clampVolume(math.Float64frombits(old) + delta)
		if v.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Open reports whether the gate lets the signal through.
func (v *Volume) Open() bool {
	return v.Volume() > 0
}

// clampVolume limits value to [0, 1] on a 0.01 grid so repeated keyboard
// steps land exactly on 0.
func clampVolume(value float64) float64 {
	if value < 0.0 || math.IsNaN(value) {
		value = 0.0
	}
	if value > 1.0 {
		value = 1.0
	}
	return math.Round(value*100) / 100
}
