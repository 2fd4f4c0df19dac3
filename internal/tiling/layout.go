// Package tiling computes grid arrangements for the "tile windows" command.
package tiling

import (
	"math"

	"github.com/1broseidon/deskshell/internal/geom"
)

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows <= 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes window positions for a grid layout with gaps.
// The last row stretches its cells when it is not full.
func CalculatePositions(numWindows int, area geom.Rect, gapSize int) []geom.Rect {
	if numWindows <= 0 {
		return nil
	}

	rows, cols := CalculateGrid(numWindows)

	// One gap before each column and one after the last.
	cellHeight := (area.Height - (rows+1)*gapSize) / rows

	positions := make([]geom.Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		rowCols := cols
		if row == rows-1 {
			rowCols = numWindows - row*cols
		}
		cellWidth := (area.Width - (rowCols+1)*gapSize) / rowCols

		positions[i] = geom.Rect{
			X:      area.X + gapSize + col*(cellWidth+gapSize),
			Y:      area.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}

	return positions
}
