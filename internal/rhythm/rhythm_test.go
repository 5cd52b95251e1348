package rhythm

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, AppZone)
}

func TestTablesShape(t *testing.T) {
	for _, tbl := range []*Table{&standardTable, &shiftedPhaseTable} {
		for _, r := range Rhythms {
			assert.Len(t, tbl[r], r.Cells(), "row %s", r)
		}
	}
}

func TestTableCellOutOfRange(t *testing.T) {
	assert.Equal(t, 0.0, standardTable.Cell(Motor, -1))
	assert.Equal(t, 0.0, standardTable.Cell(Motor, 14))
	assert.Equal(t, 0.0, standardTable.Cell(Rhythm(7), 0))
	assert.Equal(t, 48.0, standardTable.Cell(Motor, 10))
}

func TestScaleTableIsCopy(t *testing.T) {
	tbl := Scale(Macro3).Table()
	require.Len(t, tbl[Motor], 14)
	tbl[Motor][0] = 1000
	assert.Equal(t, 16.0, standardTable.Cell(Motor, 0))
	assert.Equal(t, 16.0, Scale(Macro3).Table().Cell(Motor, 0))
}

func TestScaleDescriptors(t *testing.T) {
	shifted := map[ScaleIndex]bool{Macro35: true, Zero: true, Micro35: true}
	for s := Macro35; s <= Micro35; s++ {
		ts := Scale(s)
		assert.Equal(t, shifted[s], ts.Shifted, s.String())
		assert.Equal(t, s < Zero, s.IsMacro(), s.String())
		if !s.IsMacro() {
			assert.Equal(t, [4]float64{1, 2, 3, 3.5}, ts.Multipliers)
		}
	}
	assert.False(t, ScaleIndex(9).Valid())
	assert.Equal(t, TimeScale{}, Scale(-1))
}

func TestOriginReinterpretsWallClock(t *testing.T) {
	stored := time.Date(1990, 1, 1, 12, 0, 0, 0, time.UTC)
	o := Origin(stored)
	assert.Equal(t, 12, o.Hour())
	_, off := o.Zone()
	assert.Equal(t, AppZoneOffset, off)

	tgt := Target(stored)
	assert.True(t, tgt.Equal(stored))
	assert.Equal(t, 17, tgt.Hour())
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name    string
		origin  time.Time
		target  time.Time
		days    int
		seconds int64
	}{
		{"same instant", at(1990, 1, 1, 12, 0), at(1990, 1, 1, 12, 0), 0, 0},
		{"same day later", at(1990, 1, 1, 12, 0), at(1990, 1, 1, 23, 59), 0, 43140},
		{"across midnight", at(1990, 1, 1, 23, 0), at(1990, 1, 2, 1, 0), 1, 7200},
		{"before origin", at(1990, 1, 2, 0, 0), at(1990, 1, 1, 0, 0), 0, 0},
		{"one year", at(1990, 1, 1, 12, 0), at(1991, 1, 1, 0, 0), 365, 365*86400 - 12*3600},
		{"other zone target", at(1990, 1, 1, 12, 0), time.Date(1990, 1, 1, 20, 0, 0, 0, time.UTC), 1, 13 * 3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, ElapsedDays(tt.origin, tt.target))
			assert.Equal(t, tt.seconds, ElapsedSeconds(tt.origin, tt.target))
		})
	}
}

func TestSampleAtZero(t *testing.T) {
	assert.Equal(t, EnergyCells{24, 12, 9, 6}, SampleDays(Macro35, 0))
	for _, s := range []ScaleIndex{Macro3, Macro2, Macro1} {
		assert.Equal(t, EnergyCells{16, 12, 8, 6}, SampleDays(s, 0), s.String())
	}
	assert.Equal(t, EnergyCells{}, Sample(ScaleIndex(12), 5))
}

func TestSampleMacroIndex(t *testing.T) {
	// Macro 1 walks one cell per day.
	assert.Equal(t, 48.0, SampleDays(Macro1, 10)[Motor])
	// Macro 2 holds each cell for 14 days.
	assert.Equal(t, SampleDays(Macro2, 0), SampleDays(Macro2, 13))
	assert.Equal(t, 8.0, SampleDays(Macro2, 14)[Motor])
}

func TestMacroPeriodicity(t *testing.T) {
	for _, s := range MacroScales {
		base := int(Scale(s).BasePeriod)
		for _, r := range Rhythms {
			period := base * r.Cells()
			for _, d := range []int{0, 1, 13, 195, 1371, 5000, 19207, 70000} {
				require.Equal(t, SampleDays(s, d)[r], SampleDays(s, d+period)[r],
					"scale %s rhythm %s day %d", s, r, d)
			}
		}
	}
}

func TestSampleMicro(t *testing.T) {
	// Zero scale: one Motor turn per day, 14 cells.
	cell := 86400.0 / 14
	assert.Equal(t, 0, CellIndex(Zero, Motor, 0))
	assert.Equal(t, 1, CellIndex(Zero, Motor, cell+1))
	assert.Equal(t, 13, CellIndex(Zero, Motor, 86399))
	assert.Equal(t, 0, CellIndex(Zero, Motor, 86400))
	// Physical runs at half speed.
	assert.Equal(t, 14, CellIndex(Zero, Physical, 86400))
	assert.Equal(t, shiftedPhaseTable.Cell(Physical, 14), Sample(Zero, 86400)[Physical])
}

func TestBalanceAtZero(t *testing.T) {
	// Index 0 of every row: Macro 3.5 samples the shifted table, the rest the
	// standard one.
	// Full: 51/8 + 42/6 + 42/4 + 42/2 = 44.875
	assert.Equal(t, 45, FullBalance(0))
	// Basic: 36/8 + 28/6 + 28/4 + 28/2 = 30.1667
	assert.Equal(t, 30, BasicBalance(0))
	// Reactive: 15/8 + 14/6 + 14/4 + 14/2 = 14.7083
	assert.Equal(t, 15, ReactiveBalance(0))
	assert.Equal(t, Balance{Full: 45, Basic: 30, Reactive: 15}, Balances(0))
	assert.Equal(t, Breakdown{72, 48, 32, 24}, PerRhythm(0))
}

func TestBalanceMatchesFormula(t *testing.T) {
	for _, d := range []int{0, 1, 7, 100, 1000, 9999, 12345} {
		var full float64
		for j, s := range MacroScales {
			c := SampleDays(s, d)
			full += (c[0] + c[1] + c[2] + c[3]) / float64((4-j)*2)
		}
		assert.Equal(t, int(math.Floor(full+0.5)), FullBalance(d), "day %d", d)
		assert.Equal(t, Balances(d).Full, FullBalance(d))
		assert.Equal(t, Balances(d).Basic, BasicBalance(d))
		assert.Equal(t, Balances(d).Reactive, ReactiveBalance(d))
	}
}

func TestDeterminism(t *testing.T) {
	o, tg := at(1985, 6, 15, 8, 30), at(2024, 2, 1, 12, 0)
	d := ElapsedDays(o, tg)
	assert.Equal(t, Balances(d), Balances(d))
	assert.Equal(t, PerRhythm(d), PerRhythm(d))
	assert.Equal(t, Risk(d, tg), Risk(d, tg))
	assert.Equal(t, MoonAngle(tg), MoonAngle(tg))
	assert.Equal(t, ActivityPack(o, tg), ActivityPack(o, tg))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		balance int
		want    Level
	}{
		{-5, Critical}, {29, Critical}, {30, Low}, {44, Low}, {45, Optimal},
		{59, Optimal}, {60, High}, {74, High}, {75, SuperHigh}, {120, SuperHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.balance), "balance %d", tt.balance)
	}
}

func TestRhythmRiskAdditivity(t *testing.T) {
	for _, r := range Rhythms {
		assert.Equal(t, dailyCoeff[r]+fortnightCoeff[r]+macroCoeff[r], RhythmRisk(r, 0), r.String())
	}
	// Day 13: Motor daily at its last cell, fortnight and macro still at 0.
	assert.Equal(t, CyclePositions{Daily: 13, Fortnight: 0, Macro: 0}, Positions(Motor, 13))
	assert.Equal(t, 50, RhythmRisk(Motor, 13))
	// Day 5: Motor is mid-cycle daily but at 0 on the longer cycles.
	assert.Equal(t, 25, RhythmRisk(Motor, 5))
}

func TestRisk(t *testing.T) {
	quiet := at(2024, 2, 1, 12, 0)    // moon ~67 deg, day 32
	lunar := at(2024, 2, 3, 12, 0)    // moon ~91 deg
	equinox := at(2024, 3, 20, 12, 0) // day 80, moon ~292 deg

	assert.Equal(t, 100, Risk(0, quiet))
	assert.Equal(t, 110, Risk(0, lunar))
	assert.Equal(t, 103, Risk(0, equinox))
	assert.Equal(t, 100, Risk(0, at(1990, 1, 1, 12, 0)))
}

func TestLunarWindow(t *testing.T) {
	for _, m := range []float64{0, 3, 356, 84, 96, 264, 276} {
		assert.True(t, LunarWindow(m), "%v", m)
	}
	for _, m := range []float64{7, 83, 97, 180, 263, 277, 353} {
		assert.False(t, LunarWindow(m), "%v", m)
	}
}

func TestSeasonWindow(t *testing.T) {
	assert.Equal(t, SeasonSpringEquinox, SeasonWindow(73))
	assert.Equal(t, SeasonSpringEquinox, SeasonWindow(86))
	assert.Equal(t, SeasonNone, SeasonWindow(87))
	assert.Equal(t, SeasonSummerSolstice, SeasonWindow(170))
	assert.Equal(t, SeasonAutumnEquinox, SeasonWindow(258))
	assert.Equal(t, SeasonWinterSolstice, SeasonWindow(359))
	assert.Equal(t, SeasonNone, SeasonWindow(360))
}

func TestSeasonText(t *testing.T) {
	assert.Equal(t, "Winter solstice", SeasonWinterSolstice.String())
	assert.Equal(t, "Spring equinox", SeasonWindow(80).String())
	assert.Equal(t, "None", Season(9).String())

	b, err := json.Marshal(map[string]Season{"season": SeasonAutumnEquinox})
	require.NoError(t, err)
	assert.JSONEq(t, `{"season":"Autumn equinox"}`, string(b))
}

func TestRiskMarks(t *testing.T) {
	assert.Equal(t, 0, RiskMarks(24))
	assert.Equal(t, 1, RiskMarks(25))
	assert.Equal(t, 1, RiskMarks(49))
	assert.Equal(t, 2, RiskMarks(50))
	assert.Equal(t, 3, RiskMarks(75))
	assert.Equal(t, 3, RiskMarks(300))
}

func TestSunAndEarthAngles(t *testing.T) {
	assert.Equal(t, 0.0, SunAngle(at(2024, 5, 1, 12, 40)))
	assert.Equal(t, -190.0, SunAngle(at(2024, 5, 1, 0, 0)))
	assert.InDelta(t, 0.125, SunAngle(time.Date(2024, 5, 1, 12, 40, 30, 0, AppZone)), 1e-12)

	assert.Equal(t, 180.0, EarthAngle(at(2023, 1, 15, 0, 0)))
	assert.InDelta(t, 180+360.0/366, EarthAngle(at(2024, 1, 16, 0, 0)), 1e-12)
	assert.Equal(t, 366, DaysInYear(at(2000, 6, 1, 0, 0)))
	assert.Equal(t, 365, DaysInYear(at(1900, 6, 1, 0, 0)))
}

func TestMoonAngle(t *testing.T) {
	assert.Equal(t, 0.0, MoonAngle(FullMoonReference))

	period := time.Duration(SynodicMonth * 24 * float64(time.Hour))
	for _, tg := range []time.Time{
		at(1950, 3, 3, 3, 3),
		at(1996, 1, 1, 0, 0),
		at(2024, 2, 3, 12, 0),
		at(2100, 12, 31, 23, 59),
	} {
		a := MoonAngle(tg)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.Less(t, a, 360.0)

		b := MoonAngle(tg.Add(period))
		diff := math.Abs(a - b)
		if diff > 180 {
			diff = 360 - diff
		}
		assert.Less(t, diff, 1e-6, "target %s", tg)
	}
}

func TestMapAngles(t *testing.T) {
	assert.Equal(t, [4]float64{90, 90, 90, 90}, MapAngles(Macro1, 0))
	assert.Equal(t, [4]float64{270, 270, 270, 270}, MapAngles(Macro35, 0))
	assert.Equal(t, [4]float64{270, 270, 270, 270}, MapAngles(Zero, 0))

	got := MapAngles(Macro1, 3)
	for _, r := range Rhythms {
		assert.InDelta(t, 3*360/float64(r.Cells())+90, got[r], 1e-9, r.String())
	}
	assert.Equal(t, [4]float64{}, MapAngles(ScaleIndex(-1), 3))
}

func TestDigestionWindows(t *testing.T) {
	origin := at(1990, 1, 1, 12, 0)
	target := at(2024, 2, 1, 15, 30)
	windows := Schedule(Digestion, origin, target)
	require.Len(t, windows, 7)

	period := 3085714 * time.Millisecond
	cycleStart := CycleStart(Digestion, origin, target)
	assert.True(t, windows[0].Start.Equal(cycleStart.Add(2*period)))
	for i, w := range windows {
		assert.Equal(t, period, w.End.Sub(w.Start))
		if i > 0 {
			assert.True(t, w.Start.After(windows[i-1].End), "window %d overlaps", i)
		}
	}
	assert.True(t, windows[6].End.Sub(cycleStart) <= 24*time.Hour)
}

func TestCycleStart(t *testing.T) {
	origin := at(1990, 1, 1, 12, 0)
	assert.True(t, CycleStart(Digestion, origin, at(1990, 1, 3, 11, 0)).Equal(at(1990, 1, 2, 12, 0)))
	assert.True(t, CycleStart(Anaerobic, origin, at(1990, 1, 3, 11, 0)).Equal(origin))
	assert.True(t, CycleStart(Digestion, origin, at(1990, 1, 1, 11, 0)).Equal(at(1989, 12, 31, 12, 0)))
}

func TestScheduleCounts(t *testing.T) {
	origin := at(1990, 1, 1, 12, 0)
	target := at(2024, 2, 1, 15, 30)
	want := map[Activity]int{
		Digestion: 7, Aerobic: 14, Anaerobic: 7, SensoryActivity: 14, Sexual: 1, Analytic: 14,
	}
	pack := ActivityPack(origin, target)
	require.Len(t, pack, 6)
	for a, n := range want {
		assert.Len(t, pack[a], n, a.String())
	}

	sexual := pack[Sexual][0]
	start := CycleStart(Sexual, origin, target)
	assert.True(t, sexual.Start.Equal(start.Add(3*64800000*time.Millisecond)))
}

func TestWindowActiveInclusive(t *testing.T) {
	origin := at(1990, 1, 1, 12, 0)
	period := 3085714 * time.Millisecond
	first := origin.Add(2 * period) // first digestion window

	for _, tg := range []time.Time{first, first.Add(period / 2), first.Add(period)} {
		ws := Schedule(Digestion, origin, tg)
		assert.True(t, ws[0].IsActive, "target %s", tg)
	}
	ws := Schedule(Digestion, origin, first.Add(-time.Millisecond))
	assert.False(t, ws[0].IsActive)
}

func TestCompatibilityBands(t *testing.T) {
	counts := map[Band]int{}
	for i := 0; i < CompatCycle; i++ {
		counts[BandOf(i)]++
	}
	assert.Equal(t, map[Band]int{Resonant: 4, OptimalBand: 6, Polar: 4}, counts)

	for _, i := range []int{0, 1, 12, 13} {
		assert.Equal(t, Resonant, BandOf(i))
	}
	for _, i := range []int{2, 3, 4, 9, 10, 11} {
		assert.Equal(t, OptimalBand, BandOf(i))
	}
	for _, i := range []int{5, 6, 7, 8} {
		assert.Equal(t, Polar, BandOf(i))
	}
}

func TestCompatibility(t *testing.T) {
	assert.Equal(t, Compat{Index: 0, Band: Resonant, Gauge: 0}, Compatibility(100, 100))
	assert.Equal(t, Compat{Index: 6, Band: Polar, Gauge: 100}, Compatibility(100, 80))
	assert.Equal(t, Compatibility(80, 100), Compatibility(100, 80))
	assert.Equal(t, 3, CompatIndex(17, 0))
}

func TestLevelAndBandText(t *testing.T) {
	data, err := json.Marshal(Compat{Index: 6, Band: Polar, Gauge: 100})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":6,"band":"Polar","gauge":100}`, string(data))

	var c Compat
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, Polar, c.Band)

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("SuperHigh")))
	assert.Equal(t, SuperHigh, l)
	assert.Error(t, l.UnmarshalText([]byte("Medium")))

	var act Activity
	require.NoError(t, act.UnmarshalText([]byte("sexual")))
	assert.Equal(t, Sexual, act)
}
