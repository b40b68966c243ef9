// SPDX-License-Identifier: MIT
package analysis

// HeightsProvider is implemented by components that hold the latest bar
// heights. Consumers on other goroutines (terminal renderer, UDP publisher)
// read through it instead of touching pipeline state directly.
type HeightsProvider interface {
	HeightsInto(dst []int) error // HeightsInto copies the latest heights; len(dst) must equal Bars().
	Bars() int                   // Bars returns the number of bars.
}
