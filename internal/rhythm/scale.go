package rhythm

// ScaleIndex identifies one of the nine time scales, ordered from the longest
// macro period to the shortest micro period.
type ScaleIndex int

const (
	Macro35 ScaleIndex = iota
	Macro3
	Macro2
	Macro1
	Zero
	Micro1
	Micro2
	Micro3
	Micro35
)

// ScaleCount is the number of time scales.
const ScaleCount = 9

// MacroScales are the four day-domain scales used by the balance aggregator,
// in order of decreasing period length.
var MacroScales = [4]ScaleIndex{Macro35, Macro3, Macro2, Macro1}

// TimeScale describes how one scale samples the lookup tables.
type TimeScale struct {
	Name string

	// BasePeriod is measured in elapsed days for macro scales and in elapsed
	// seconds for the zero and micro scales.
	BasePeriod float64

	// Shifted selects the phase-shifted table instead of the standard one.
	Shifted bool

	// Multipliers stretch BasePeriod per rhythm. Only the zero and micro
	// scales use them.
	Multipliers [4]float64
}

var micro = [4]float64{1, 2, 3, 3.5}

var scales = [ScaleCount]TimeScale{
	Macro35: {Name: "MACRO 3.5", BasePeriod: 1372, Shifted: true},
	Macro3:  {Name: "MACRO 3", BasePeriod: 196},
	Macro2:  {Name: "MACRO 2", BasePeriod: 14},
	Macro1:  {Name: "MACRO 1", BasePeriod: 1},
	Zero:    {Name: "ZERO", BasePeriod: 86400, Shifted: true, Multipliers: micro},
	Micro1:  {Name: "MICRO 1", BasePeriod: 6171.428, Multipliers: micro},
	Micro2:  {Name: "MICRO 2", BasePeriod: 440.816, Multipliers: micro},
	Micro3:  {Name: "MICRO 3", BasePeriod: 31.486, Multipliers: micro},
	Micro35: {Name: "MICRO 3.5", BasePeriod: 2.24, Shifted: true, Multipliers: micro},
}

// Scale returns the descriptor for s. Out-of-range indices yield the zero
// TimeScale.
func Scale(s ScaleIndex) TimeScale {
	if !s.Valid() {
		return TimeScale{}
	}
	return scales[s]
}

// Valid reports whether s names one of the nine scales.
func (s ScaleIndex) Valid() bool {
	return s >= Macro35 && s <= Micro35
}

// IsMacro reports whether s is sampled in the elapsed-day domain.
func (s ScaleIndex) IsMacro() bool {
	return s >= Macro35 && s <= Macro1
}

// String returns the scale's display name.
func (s ScaleIndex) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return scales[s].Name
}

// Table returns a copy of the lookup table the scale samples. Changes to the
// copy never reach the sampler.
func (ts TimeScale) Table() *Table {
	return ts.table().clone()
}

func (ts TimeScale) table() *Table {
	if ts.Shifted {
		return &shiftedPhaseTable
	}
	return &standardTable
}
