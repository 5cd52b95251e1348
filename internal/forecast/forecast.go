// Package forecast composes the rhythm engine into per-profile views: the
// current snapshot, the rhythm chart window and the yearly calendar.
// Per-day results are memoized in an LRU cache keyed by the exact
// (origin, target) pair; memoization never changes an output.
package forecast

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/talgya/ritmxoid/internal/rhythm"
)

const defaultCacheSize = 4096

// ErrBadSpan is returned for chart spans other than 14, 28, 42 or 49 days.
var ErrBadSpan = errors.New("chart span must be 14, 28, 42 or 49")

// Day is the per-day result the calendar and ranking views need.
type Day struct {
	Date        time.Time    `json:"date"`
	ElapsedDays int          `json:"elapsed_days"`
	Balance     int          `json:"balance"`
	Level       rhythm.Level `json:"level"`
	Risk        int          `json:"risk"`
	Marks       int          `json:"marks"`
}

type dayKey struct {
	origin int64
	target int64
}

// Forecaster evaluates and memoizes engine results. Safe for concurrent use.
type Forecaster struct {
	cache *lru.Cache[dayKey, Day]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a forecaster caching up to size per-day results. A
// non-positive size falls back to the default.
func New(size int) (*Forecaster, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[dayKey, Day](size)
	if err != nil {
		return nil, fmt.Errorf("day cache: %w", err)
	}
	return &Forecaster{cache: cache}, nil
}

// Day evaluates balance and risk of origin at target.
func (f *Forecaster) Day(origin, target time.Time) Day {
	key := dayKey{origin: origin.UnixNano(), target: target.UnixNano()}
	if d, ok := f.cache.Get(key); ok {
		f.hits.Add(1)
		return d
	}
	f.misses.Add(1)

	d := evaluateDay(origin, target)
	f.cache.Add(key, d)
	return d
}

func evaluateDay(origin, target time.Time) Day {
	days := rhythm.ElapsedDays(origin, target)
	balance := rhythm.FullBalance(days)
	risk := rhythm.Risk(days, target)
	return Day{
		Date:        rhythm.Target(target),
		ElapsedDays: days,
		Balance:     balance,
		Level:       rhythm.Classify(balance),
		Risk:        risk,
		Marks:       rhythm.RiskMarks(risk),
	}
}

// CacheStats returns the number of cache hits and misses so far.
func (f *Forecaster) CacheStats() (hits, misses uint64) {
	return f.hits.Load(), f.misses.Load()
}

// ScaleAngles are the ring angles of one time scale.
type ScaleAngles struct {
	Scale  string     `json:"scale"`
	Angles [4]float64 `json:"angles"`
}

// Snapshot is everything the engine says about one (origin, target) pair.
type Snapshot struct {
	Origin         time.Time      `json:"origin"`
	Target         time.Time      `json:"target"`
	ElapsedDays    int            `json:"elapsed_days"`
	ElapsedSeconds int64          `json:"elapsed_seconds"`
	TimePassed     string         `json:"time_passed"`
	Balance        rhythm.Balance `json:"balance"`
	Level          rhythm.Level   `json:"level"`
	Rhythms        map[string]int `json:"rhythms"`
	Risk           int            `json:"risk"`
	RiskMarks      int            `json:"risk_marks"`
	SunAngle       float64        `json:"sun_angle"`
	MoonAngle      float64        `json:"moon_angle"`
	EarthAngle     float64        `json:"earth_angle"`
	Maps           []ScaleAngles  `json:"maps"`
	Activities     rhythm.Pack    `json:"activities"`
}

// Snapshot evaluates every engine output for origin at target.
func (f *Forecaster) Snapshot(origin, target time.Time) Snapshot {
	origin = rhythm.Target(origin)
	target = rhythm.Target(target)

	day := f.Day(origin, target)
	days := day.ElapsedDays
	seconds := rhythm.ElapsedSeconds(origin, target)
	balance := rhythm.Balances(days)

	breakdown := rhythm.PerRhythm(days)
	rhythms := make(map[string]int, len(breakdown))
	for _, r := range rhythm.Rhythms {
		rhythms[r.String()] = breakdown[r]
	}

	maps := make([]ScaleAngles, 0, rhythm.ScaleCount)
	for s := rhythm.Macro35; s <= rhythm.Micro35; s++ {
		elapsed := float64(seconds)
		if s.IsMacro() {
			elapsed = float64(days)
		}
		maps = append(maps, ScaleAngles{Scale: s.String(), Angles: rhythm.MapAngles(s, elapsed)})
	}

	return Snapshot{
		Origin:         origin,
		Target:         target,
		ElapsedDays:    days,
		ElapsedSeconds: seconds,
		TimePassed:     TimePassed(seconds),
		Balance:        balance,
		Level:          day.Level,
		Rhythms:        rhythms,
		Risk:           day.Risk,
		RiskMarks:      day.Marks,
		SunAngle:       rhythm.SunAngle(target),
		MoonAngle:      rhythm.MoonAngle(target),
		EarthAngle:     rhythm.EarthAngle(target),
		Maps:           maps,
		Activities:     rhythm.ActivityPack(origin, target),
	}
}

// TimePassed formats elapsed seconds as "12,345d 6h 7m".
func TimePassed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60
	return fmt.Sprintf("%sd %dh %dm", humanize.Comma(days), hours, minutes)
}

// ChartBar is one day of the rhythm chart.
type ChartBar struct {
	Offset  int              `json:"offset"`
	Day     int              `json:"day"`
	Today   bool             `json:"today"`
	Rhythms rhythm.Breakdown `json:"rhythms"`
}

// Chart returns the per-rhythm breakdown for span days centred on the
// target's elapsed day. Days before the origin are sampled as negative
// counts, which read as zero cells.
func Chart(origin, target time.Time, span int) ([]ChartBar, error) {
	switch span {
	case 14, 28, 42, 49:
	default:
		return nil, ErrBadSpan
	}

	today := rhythm.ElapsedDays(origin, target)
	bars := make([]ChartBar, 0, span)
	for i := 0; i < span; i++ {
		offset := i - span/2
		d := today + offset
		bars = append(bars, ChartBar{
			Offset:  offset,
			Day:     d,
			Today:   offset == 0,
			Rhythms: rhythm.PerRhythm(d),
		})
	}
	return bars, nil
}
