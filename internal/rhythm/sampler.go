package rhythm

import "math"

// EnergyCells holds one sampled value per rhythm, indexed by Rhythm.
type EnergyCells [4]float64

// Sum adds the cells of the given rhythms in the order given.
func (c EnergyCells) Sum(rs ...Rhythm) float64 {
	var sum float64
	for _, r := range rs {
		sum += c[r]
	}
	return sum
}

// CellIndex returns the table row position of rhythm r on scale s for an
// elapsed value. Macro scales take elapsed days, the zero and micro scales
// take elapsed seconds. The result may lie outside the row for negative
// input; Table.Cell maps that to 0.
func CellIndex(s ScaleIndex, r Rhythm, elapsed float64) int {
	ts := Scale(s)
	cells := float64(r.Cells())
	if ts.BasePeriod == 0 || cells == 0 {
		return 0
	}
	if s.IsMacro() {
		return int(math.Floor(math.Mod(elapsed, ts.BasePeriod*cells) / ts.BasePeriod))
	}
	frac := math.Mod(elapsed/(ts.BasePeriod*ts.Multipliers[r]), 1)
	return int(math.Floor(frac * cells))
}

// Sample reads the energy cells of every rhythm on scale s.
func Sample(s ScaleIndex, elapsed float64) EnergyCells {
	var cells EnergyCells
	if !s.Valid() {
		return cells
	}
	table := scales[s].table()
	for _, r := range Rhythms {
		cells[r] = table.Cell(r, CellIndex(s, r, elapsed))
	}
	return cells
}

// SampleDays samples a macro scale at a whole number of elapsed days.
func SampleDays(s ScaleIndex, days int) EnergyCells {
	return Sample(s, float64(days))
}
