// Package rhythm is the deterministic calculation engine: it turns an origin
// instant and a target instant into energy cells, balance and risk scores,
// phase angles and activity windows.
//
// Every function is pure. The lookup tables and scale descriptors are
// package-level read-only data and must never be written to.
package rhythm

// Rhythm is one of the four cyclical dimensions. Its value is the lookup
// table row it samples.
type Rhythm int

const (
	Motor Rhythm = iota
	Physical
	Sensory
	Analytical
)

// Rhythms lists every rhythm in table-row order.
var Rhythms = [4]Rhythm{Motor, Physical, Sensory, Analytical}

// String returns a human-readable rhythm name.
func (r Rhythm) String() string {
	switch r {
	case Motor:
		return "Motor"
	case Physical:
		return "Physical"
	case Sensory:
		return "Sensory"
	case Analytical:
		return "Analytical"
	default:
		return "Unknown"
	}
}

// Cells returns the number of cells in the rhythm's table row.
func (r Rhythm) Cells() int {
	if r < Motor || r > Analytical {
		return 0
	}
	return cellCounts[r]
}

// cellCounts holds the row length of each rhythm: 14, 28, 42, 49.
var cellCounts = [4]int{14, 28, 42, 49}

// Table is one of the two fixed four-row lookup tables.
type Table [4][]float64

// Cell returns the sample at index in the rhythm's row, or 0 when the index
// falls outside the row.
func (t *Table) Cell(r Rhythm, index int) float64 {
	if r < Motor || r > Analytical {
		return 0
	}
	row := t[r]
	if index < 0 || index >= len(row) {
		return 0
	}
	return row[index]
}

// clone returns a copy that shares no row storage with t.
func (t *Table) clone() *Table {
	var c Table
	for i, row := range t {
		c[i] = append([]float64(nil), row...)
	}
	return &c
}

// standardTable is sampled by every scale except Macro 3.5, Zero and Micro 3.5.
var standardTable = Table{
	{16, 8, 4, 0, 4, 8, 16, 24, 32, 40, 48, 40, 32, 24},
	{12, 10, 8, 6, 4, 2, 0, 0, 2, 4, 6, 8, 10, 12, 12, 14, 16, 18, 20, 22, 24, 24, 22, 20, 18, 16, 14, 12},
	{8, 7, 6, 5, 4, 3, 2, 1.5, 1, 0.5, 0, 0.5, 1, 1.5, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 13.5, 14, 14.5, 15, 15.5, 16, 15.5, 15, 14.5, 14, 13.5, 13, 12, 11, 10, 9},
	{6, 5.5, 5, 4.5, 4, 3.5, 3, 2.5, 2, 1.5, 1, 0.5, 0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5, 5.5, 6, 6.5, 7, 7.5, 8, 8.5, 9, 9.5, 10, 10.5, 11, 11.5, 12, 11.5, 11, 10.5, 10, 9.5, 9, 8.5, 8, 7.5, 7, 6.5, 6},
}

// shiftedPhaseTable is the phase-rotated variant sampled by Macro 3.5, Zero
// and Micro 3.5.
var shiftedPhaseTable = Table{
	{24, 32, 40, 48, 40, 32, 24, 16, 8, 4, 0, 4, 8, 16},
	{12, 14, 16, 18, 20, 22, 24, 24, 22, 20, 18, 16, 14, 12, 12, 10, 8, 6, 4, 2, 0, 0, 2, 4, 6, 8, 10, 12},
	{9, 10, 11, 12, 13, 13.5, 14, 14.5, 15, 15.5, 16, 15.5, 15, 14.5, 14, 13.5, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1.5, 1, 0.5, 0, 0.5, 1, 1.5, 2, 3, 4, 5, 6, 7, 8},
	{6, 6.5, 7, 7.5, 8, 8.5, 9, 9.5, 10, 10.5, 11, 11.5, 12, 11.5, 11, 10.5, 10, 9.5, 9, 8.5, 8, 7.5, 7, 6.5, 6, 5.5, 5, 4.5, 4, 3.5, 3, 2.5, 2, 1.5, 1, 0.5, 0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5, 5.5, 6},
}
