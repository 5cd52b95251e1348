package rhythm

import "fmt"

// CompatCycle is the residue cycle pairwise compatibility is measured on.
const CompatCycle = 14

// Band is a named compatibility band.
type Band int

const (
	Resonant Band = iota
	OptimalBand
	Polar
)

// String returns a human-readable band name.
func (b Band) String() string {
	switch b {
	case Resonant:
		return "Resonant"
	case OptimalBand:
		return "Optimal"
	case Polar:
		return "Polar"
	default:
		return "Unknown"
	}
}

func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Band) UnmarshalText(text []byte) error {
	for _, c := range [...]Band{Resonant, OptimalBand, Polar} {
		if c.String() == string(text) {
			*b = c
			return nil
		}
	}
	return fmt.Errorf("unknown band %q", text)
}

// Compat describes how two origins relate at a shared target.
type Compat struct {
	Index int  `json:"index"`
	Band  Band `json:"band"`

	// Gauge is the 0..100 needle position: 0 at full resonance, 100 at the
	// polar centre.
	Gauge int `json:"gauge"`
}

// gauge is indexed by residue 0..13.
var gauge = [CompatCycle]int{0, 15, 35, 50, 65, 85, 100, 100, 85, 65, 50, 35, 15, 0}

// CompatIndex returns |days1 - days2| mod 14.
func CompatIndex(days1, days2 int) int {
	d := days1 - days2
	if d < 0 {
		d = -d
	}
	return d % CompatCycle
}

// BandOf maps a residue in 0..13 to its band. The bands are disjoint and
// cover every residue.
func BandOf(index int) Band {
	switch index {
	case 0, 1, 12, 13:
		return Resonant
	case 5, 6, 7, 8:
		return Polar
	default:
		return OptimalBand
	}
}

// Compatibility compares two elapsed-day counts taken at the same target.
func Compatibility(days1, days2 int) Compat {
	idx := CompatIndex(days1, days2)
	return Compat{Index: idx, Band: BandOf(idx), Gauge: gauge[idx]}
}
