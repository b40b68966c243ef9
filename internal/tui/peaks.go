// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/harmonica"

// Peak cap spring: slow and slightly underdamped so caps hang, then fall.
const (
	peakFrequency = 2.0
	peakDamping   = 0.9
)

// peakField tracks one falling cap per bar. A cap jumps to any bar that
// reaches it and otherwise springs back down towards the bar.
type peakField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newPeakField(fps, bars int) peakField {
	return peakField{
		spring: harmonica.NewSpring(harmonica.FPS(fps), peakFrequency, peakDamping),
		pos:    make([]float64, bars),
		vel:    make([]float64, bars),
	}
}

// update advances every cap one frame towards heights.
func (p *peakField) update(heights []int) {
	for i, h := range heights[:min(len(heights), len(p.pos))] {
		target := float64(h)
		if target >= p.pos[i] {
			p.pos[i] = target
			p.vel[i] = 0
			continue
		}
		p.pos[i], p.vel[i] = p.spring.Update(p.pos[i], p.vel[i], target)
		// An underdamped spring dips below its target; a cap never does.
		if p.pos[i] < target {
			p.pos[i] = target
			p.vel[i] = 0
		}
	}
}
