// Package neural encodes board knowledge for the ONNX policy network
// and runs inference through gonnx. It depends only on the rules
// package so the engine can layer on top of it.
package neural

import "broadside/pkg/battleship"

// NumChannels is the input depth: hits, misses, normalized heat.
const NumChannels = 3

// Encode builds the flat channels-last input tensor backing for a
// size x size board: channel 0 marks hit cells, channel 1 miss cells,
// channel 2 the heatmap normalized to its maximum.
func Encode(size int, hits, misses []battleship.Cell, heat [][]float64) []float32 {
	data := make([]float32, size*size*NumChannels)
	at := func(c battleship.Cell, channel int) *float32 {
		return &data[(c.Row*size+c.Col)*NumChannels+channel]
	}

	for _, c := range hits {
		*at(c, 0) = 1
	}
	for _, c := range misses {
		*at(c, 1) = 1
	}

	maxHeat := 0.0
	for _, row := range heat {
		for _, v := range row {
			if v > maxHeat {
				maxHeat = v
			}
		}
	}
	if maxHeat > 0 {
		for r := 0; r < size && r < len(heat); r++ {
			for c := 0; c < size && c < len(heat[r]); c++ {
				*at(battleship.Cell{Row: r, Col: c}, 2) = float32(heat[r][c] / maxHeat)
			}
		}
	}
	return data
}
