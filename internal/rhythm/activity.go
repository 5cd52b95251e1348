package rhythm

import (
	"fmt"
	"time"
)

// Activity is one of the six scheduled activity categories.
type Activity int

const (
	Digestion Activity = iota
	Aerobic
	Anaerobic
	SensoryActivity
	Sexual
	Analytic
)

// Activities lists every category in display order.
var Activities = [6]Activity{Digestion, Aerobic, Anaerobic, SensoryActivity, Sexual, Analytic}

// slotsPerCycle is the number of sequential sub-period slots enumerated from
// each cycle start.
const slotsPerCycle = 28

// sexualOffsetPeriods shifts the Sexual category's first slot by three
// periods past the cycle start.
const sexualOffsetPeriods = 3

// ActivitySpec holds the period and cycle lengths of a category in
// milliseconds.
type ActivitySpec struct {
	Key      string
	PeriodMs int64
	CycleMs  int64
}

const dayMs = 86400000

var activitySpecs = [6]ActivitySpec{
	Digestion:       {Key: "digestion", PeriodMs: 3085714, CycleMs: dayMs},
	Aerobic:         {Key: "aerobic", PeriodMs: 3085714, CycleMs: dayMs},
	Anaerobic:       {Key: "anaerobic", PeriodMs: 6171428, CycleMs: 2 * dayMs},
	SensoryActivity: {Key: "sensory", PeriodMs: 9257142, CycleMs: 3 * dayMs},
	Sexual:          {Key: "sexual", PeriodMs: 64800000, CycleMs: 3 * dayMs},
	Analytic:        {Key: "analytic", PeriodMs: 10800000, CycleMs: 302400000},
}

// Spec returns the category's timing descriptor.
func (a Activity) Spec() ActivitySpec {
	if a < Digestion || a > Analytic {
		return ActivitySpec{}
	}
	return activitySpecs[a]
}

// String returns the category key.
func (a Activity) String() string {
	if s := a.Spec(); s.Key != "" {
		return s.Key
	}
	return "unknown"
}

// MarshalText encodes the category as its key so packs serialize as objects.
func (a Activity) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Activity) UnmarshalText(text []byte) error {
	for _, c := range Activities {
		if c.String() == string(text) {
			*a = c
			return nil
		}
	}
	return fmt.Errorf("unknown activity %q", text)
}

// selects reports whether slot n (1-based) of the cycle is a window of a.
func (a Activity) selects(n int) bool {
	switch a {
	case Digestion:
		return n%4 == 3
	case Sexual:
		return n == 1
	case Anaerobic:
		return n%4 == 0
	default:
		return n%2 == 0
	}
}

// Window is one scheduled activity interval.
type Window struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	IsActive bool      `json:"is_active"`
}

// CycleStart returns the start of the category's cycle that contains target,
// measured from origin. Targets before the origin fall into negative cycles.
func CycleStart(a Activity, origin, target time.Time) time.Time {
	spec := a.Spec()
	origin = origin.In(AppZone)
	if spec.CycleMs == 0 {
		return origin
	}
	offset := floorDiv(ElapsedMillis(origin, target), spec.CycleMs) * spec.CycleMs
	return origin.Add(time.Duration(offset) * time.Millisecond)
}

// Schedule lists the windows of category a in the cycle containing target,
// ordered by start time.
func Schedule(a Activity, origin, target time.Time) []Window {
	spec := a.Spec()
	if spec.PeriodMs == 0 {
		return nil
	}
	period := time.Duration(spec.PeriodMs) * time.Millisecond

	start := CycleStart(a, origin, target)
	if a == Sexual {
		start = start.Add(sexualOffsetPeriods * period)
	}

	var windows []Window
	for n := 1; n <= slotsPerCycle; n++ {
		if a.selects(n) {
			end := start.Add(period)
			windows = append(windows, Window{
				Start:    start,
				End:      end,
				IsActive: !target.Before(start) && !target.After(end),
			})
		}
		start = start.Add(period)
	}
	return windows
}

// Pack is the schedule of every category keyed by category.
type Pack map[Activity][]Window

// ActivityPack schedules all six categories for the cycle containing target.
func ActivityPack(origin, target time.Time) Pack {
	pack := make(Pack, len(Activities))
	for _, a := range Activities {
		pack[a] = Schedule(a, origin, target)
	}
	return pack
}
