// SPDX-License-Identifier: MIT
package tui

import "strings"

// Eighth blocks, index n is n/8 of a cell.
var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const capRune = '▔'

// cell is one character of the bar area.
type cell uint8

const (
	cellEmpty cell = iota
	cellBar
	cellCap
)

// layout returns how many bars fit into width and how many columns each one
// takes. Bars wider than one column keep a one column gap.
func layout(bars, width int) (shown, colWidth int) {
	if bars <= 0 || width <= 0 {
		return 0, 0
	}
	colWidth = max(1, width/bars)
	return min(bars, width/colWidth), colWidth
}

// eighths scales a pixel height to eighth-cells within rows.
func eighths(height float64, rows, pixelHeight int) int {
	if pixelHeight <= 0 || height <= 0 {
		return 0
	}
	e := int(height * float64(rows*8) / float64(pixelHeight))
	return min(e, rows*8)
}

// renderBars draws heights as block columns, top row first. peaks may be nil.
// Each line carries its runes and a parallel slice of cell kinds for styling.
func renderBars(heights []int, peaks []float64, width, rows, pixelHeight int) ([][]rune, [][]cell) {
	shown, colWidth := layout(len(heights), width)
	barWidth := colWidth
	if colWidth > 1 {
		barWidth = colWidth - 1
	}

	lines := make([][]rune, rows)
	kinds := make([][]cell, rows)
	for r := range lines {
		lines[r] = []rune(strings.Repeat(" ", shown*colWidth))
		kinds[r] = make([]cell, shown*colWidth)
	}

	for b := range shown {
		level := eighths(float64(heights[b]), rows, pixelHeight)
		capRow := -1
		if peaks != nil && b < len(peaks) {
			if pe := eighths(peaks[b], rows, pixelHeight); pe > level {
				capRow = min(pe/8, rows-1)
			}
		}

		for r := range rows {
			fromBottom := rows - 1 - r
			fill := min(max(level-fromBottom*8, 0), 8)

			ch, kind := blocks[fill], cellBar
			if fill == 0 {
				ch, kind = ' ', cellEmpty
				if fromBottom == capRow {
					ch, kind = capRune, cellCap
				}
			}
			for c := range barWidth {
				lines[r][b*colWidth+c] = ch
				kinds[r][b*colWidth+c] = kind
			}
		}
	}
	return lines, kinds
}
