package rhythm

import "time"

// Boundary coefficients per rhythm for the daily, fortnight and macro cycles.
var (
	dailyCoeff     = [4]int{25, 13, 8, 4}
	fortnightCoeff = [4]int{15, 7, 5, 3}
	macroCoeff     = [4]int{10, 5, 3, 2}
)

const (
	lunarRisk    = 10
	seasonalRisk = 3

	// lunarOrb is the half-width of the open window around 0, 90 and 270
	// degrees.
	lunarOrb = 7.0
)

// Season is a solar window that adds seasonal risk.
type Season int

const (
	SeasonNone Season = iota
	SeasonSpringEquinox
	SeasonSummerSolstice
	SeasonAutumnEquinox
	SeasonWinterSolstice
)

type dayRange struct{ from, to int }

var seasonWindows = [...]struct {
	season Season
	days   dayRange
}{
	{SeasonSpringEquinox, dayRange{73, 86}},
	{SeasonSummerSolstice, dayRange{168, 176}},
	{SeasonAutumnEquinox, dayRange{258, 271}},
	{SeasonWinterSolstice, dayRange{351, 359}},
}

func (s Season) String() string {
	switch s {
	case SeasonSpringEquinox:
		return "Spring equinox"
	case SeasonSummerSolstice:
		return "Summer solstice"
	case SeasonAutumnEquinox:
		return "Autumn equinox"
	case SeasonWinterSolstice:
		return "Winter solstice"
	default:
		return "None"
	}
}

// MarshalText encodes the season by name.
func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SeasonWindow returns the season window containing the ordinal day of the
// year, or SeasonNone.
func SeasonWindow(dayOfYear int) Season {
	for _, w := range seasonWindows {
		if dayOfYear >= w.days.from && dayOfYear <= w.days.to {
			return w.season
		}
	}
	return SeasonNone
}

// CyclePositions are the daily, fortnight and macro cycle cells of one rhythm.
type CyclePositions struct {
	Daily     int
	Fortnight int
	Macro     int
}

// Positions locates rhythm r in its three boundary-checked cycles.
func Positions(r Rhythm, days int) CyclePositions {
	cells := r.Cells()
	if cells == 0 {
		return CyclePositions{}
	}
	return CyclePositions{
		Daily:     days % cells,
		Fortnight: (days % (14 * cells)) / 14,
		Macro:     (days % (196 * cells)) / 196,
	}
}

// RhythmRisk is the boundary contribution of a single rhythm.
func RhythmRisk(r Rhythm, days int) int {
	last := r.Cells() - 1
	if last < 0 {
		return 0
	}
	at := func(c int) bool { return c == 0 || c == last }

	p := Positions(r, days)
	risk := 0
	if at(p.Daily) {
		risk += dailyCoeff[r]
	}
	if at(p.Fortnight) {
		risk += fortnightCoeff[r]
	}
	if at(p.Macro) {
		risk += macroCoeff[r]
	}
	return risk
}

// LunarWindow reports whether the moon angle lies strictly within lunarOrb of
// 0, 90 or 270 degrees.
func LunarWindow(moonAngle float64) bool {
	m := moonAngle
	for m >= 360 {
		m -= 360
	}
	switch {
	case m > 90-lunarOrb && m < 90+lunarOrb:
		return true
	case m > 270-lunarOrb && m < 270+lunarOrb:
		return true
	case m > 360-lunarOrb || m < lunarOrb:
		return true
	}
	return false
}

// Risk scores cycle-boundary coincidences for an elapsed-day count plus the
// lunar and seasonal windows of the target instant.
func Risk(days int, target time.Time) int {
	risk := 0
	for _, r := range Rhythms {
		risk += RhythmRisk(r, days)
	}
	if LunarWindow(MoonAngle(target)) {
		risk += lunarRisk
	}
	if SeasonWindow(DayOfYear(target)) != SeasonNone {
		risk += seasonalRisk
	}
	return risk
}

// RiskMarks converts a risk score into 0 to 3 visual marks.
func RiskMarks(risk int) int {
	switch {
	case risk >= 75:
		return 3
	case risk >= 50:
		return 2
	case risk >= 25:
		return 1
	default:
		return 0
	}
}
