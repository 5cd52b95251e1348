package rhythm

import (
	"math"
	"time"
)

// SynodicMonth is the lunar period in days.
const SynodicMonth = 29.530588

// FullMoonReference is a known full moon used as phase zero.
var FullMoonReference = time.Date(1996, time.January, 6, 16, 15, 0, 0, time.UTC)

var synodicMillis = SynodicMonth * 24 * 3600 * 1000

// SunAngle is the solar marker angle for the target's wall clock in AppZone.
func SunAngle(target time.Time) float64 {
	t := target.In(AppZone)
	minutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
	return (minutes - 760) * 0.25
}

// EarthAngle is the orbital marker angle for the target's day of the year.
func EarthAngle(target time.Time) float64 {
	return float64(DayOfYear(target)-15)*(360/float64(DaysInYear(target))) + 180
}

// MoonAngle is the lunar phase angle in [0, 360), zero at full moon.
func MoonAngle(target time.Time) float64 {
	diff := float64(target.UnixMilli() - FullMoonReference.UnixMilli())
	phase := math.Mod(math.Mod(diff, synodicMillis)+synodicMillis, synodicMillis)
	angle := phase * 360 / synodicMillis
	if angle >= 360 {
		angle = 0
	}
	return angle
}

// MapAngles positions the four rhythm rings of scale s. Macro scales take
// elapsed days, the zero and micro scales take elapsed seconds.
func MapAngles(s ScaleIndex, elapsed float64) [4]float64 {
	var angles [4]float64
	if !s.Valid() {
		return angles
	}
	for _, r := range Rhythms {
		angle := CellAngle(r) * float64(CellIndex(s, r, elapsed))
		if s == Macro35 || s == Zero {
			angle += 180
		}
		angles[r] = angle + 90
	}
	return angles
}

// CellAngle is the arc one cell of the rhythm's ring spans.
func CellAngle(r Rhythm) float64 {
	cells := r.Cells()
	if cells == 0 {
		return 0
	}
	return 360 / float64(cells)
}

// DayOfYear returns the ordinal day of the target in AppZone, from 1.
func DayOfYear(target time.Time) int {
	return target.In(AppZone).YearDay()
}

// DaysInYear returns 365 or 366 for the target's year in AppZone.
func DaysInYear(target time.Time) int {
	y := target.In(AppZone).Year()
	if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
		return 366
	}
	return 365
}
