package rhythm

import (
	"time"

	"golang.org/x/exp/constraints"
)

// AppZoneOffset is the fixed application-wide UTC offset in seconds.
const AppZoneOffset = 5 * 60 * 60

// AppZone is the fixed UTC+5 zone every instant is evaluated in.
var AppZone = time.FixedZone("UTC+5", AppZoneOffset)

const secondsPerDay = 86400

// Origin reinterprets a stored instant in AppZone, keeping its wall clock and
// discarding whatever zone storage attached to it.
func Origin(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), AppZone)
}

// Target converts an instant into AppZone, keeping the instant.
func Target(t time.Time) time.Time {
	return t.In(AppZone)
}

// StartOfDay truncates t to midnight of its calendar day in AppZone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(AppZone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, AppZone)
}

// ElapsedDays counts whole calendar days (midnight to midnight in AppZone)
// from origin to target. Targets before the origin yield 0.
func ElapsedDays(origin, target time.Time) int {
	secs := StartOfDay(target).Unix() - StartOfDay(origin).Unix()
	return int(nonNegative(floorDiv(secs, secondsPerDay)))
}

// ElapsedSeconds counts whole seconds from origin to target. Targets before
// the origin yield 0.
func ElapsedSeconds(origin, target time.Time) int64 {
	return nonNegative(floorDiv(ElapsedMillis(origin, target), 1000))
}

// ElapsedMillis is the signed millisecond difference target - origin. It is
// not clamped; the activity scheduler relies on the sign.
func ElapsedMillis(origin, target time.Time) int64 {
	return target.UnixMilli() - origin.UnixMilli()
}

func nonNegative[T constraints.Integer](v T) T {
	if v < 0 {
		return 0
	}
	return v
}

func floorDiv[T constraints.Integer](a, b T) T {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
