package rhythm

import (
	"fmt"
	"math"
)

// scaleWeights weight each macro scale in the per-rhythm breakdown. 0.166 is
// a literal, not 1/6.
var scaleWeights = [4]float64{0.125, 0.166, 0.25, 0.5}

// Level classifies a full balance score.
type Level int

const (
	Critical Level = iota
	Low
	Optimal
	High
	SuperHigh
)

// String returns a human-readable level name.
func (l Level) String() string {
	switch l {
	case Critical:
		return "Critical"
	case Low:
		return "Low"
	case Optimal:
		return "Optimal"
	case High:
		return "High"
	case SuperHigh:
		return "SuperHigh"
	default:
		return "Unknown"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	for c := Critical; c <= SuperHigh; c++ {
		if c.String() == string(text) {
			*l = c
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", text)
}

// Classify maps a full balance score to its level.
func Classify(balance int) Level {
	switch {
	case balance >= 75:
		return SuperHigh
	case balance >= 60:
		return High
	case balance >= 45:
		return Optimal
	case balance >= 30:
		return Low
	default:
		return Critical
	}
}

// Breakdown is the per-rhythm balance, indexed by Rhythm.
type Breakdown [4]int

// Balance is the aggregate of the four macro scales for one elapsed-day count.
type Balance struct {
	Full     int `json:"full"`
	Basic    int `json:"basic"`
	Reactive int `json:"reactive"`
}

// macroCells samples the four macro scales, longest period first.
func macroCells(days int) [4]EnergyCells {
	var out [4]EnergyCells
	for j, s := range MacroScales {
		out[j] = SampleDays(s, days)
	}
	return out
}

// divisor gives the shortest macro scale the largest share: 8, 6, 4, 2.
func divisor(j int) float64 {
	return float64((4 - j) * 2)
}

func aggregate(cells [4]EnergyCells, rs ...Rhythm) int {
	var sum float64
	for j := range cells {
		sum += cells[j].Sum(rs...) / divisor(j)
	}
	return roundHalfUp(sum)
}

// FullBalance sums all four rhythms across the macro scales. The score is not
// clamped to [0, 100].
func FullBalance(days int) int {
	return aggregate(macroCells(days), Motor, Physical, Sensory, Analytical)
}

// BasicBalance sums the Motor and Physical rhythms across the macro scales.
func BasicBalance(days int) int {
	return aggregate(macroCells(days), Motor, Physical)
}

// ReactiveBalance sums the Sensory and Analytical rhythms across the macro
// scales.
func ReactiveBalance(days int) int {
	return aggregate(macroCells(days), Sensory, Analytical)
}

// Balances computes full, basic and reactive balance with a single sampling
// pass.
func Balances(days int) Balance {
	cells := macroCells(days)
	return Balance{
		Full:     aggregate(cells, Motor, Physical, Sensory, Analytical),
		Basic:    aggregate(cells, Motor, Physical),
		Reactive: aggregate(cells, Sensory, Analytical),
	}
}

// PerRhythm weights each rhythm across the macro scales and scales the
// rounded result by 4.
func PerRhythm(days int) Breakdown {
	cells := macroCells(days)
	var out Breakdown
	for _, r := range Rhythms {
		var sum float64
		for j := range cells {
			sum += cells[j][r] * scaleWeights[j]
		}
		out[r] = roundHalfUp(sum) * 4
	}
	return out
}

// roundHalfUp rounds ties towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
