package forecast

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/ritmxoid/internal/rhythm"
)

// Month is one month of the yearly calendar.
type Month struct {
	Month time.Month `json:"month"`

	// Lead is the number of blank cells before day 1 in a Monday-first week.
	Lead int `json:"lead"`

	// RiskIndex sums the risk marks of every day in the month.
	RiskIndex int   `json:"risk_index"`
	Days      []Day `json:"days"`
}

// Calendar is a full year of per-day balance and risk for one origin.
type Calendar struct {
	Year   int       `json:"year"`
	Origin string    `json:"origin"`
	Months [12]Month `json:"months"`
}

// Month evaluates every day of a month at midnight in the application zone.
func (f *Forecaster) Month(origin time.Time, year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, rhythm.AppZone)
	m := Month{
		Month: month,
		Lead:  (int(first.Weekday()) + 6) % 7,
	}
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		day := f.Day(origin, d)
		m.RiskIndex += day.Marks
		m.Days = append(m.Days, day)
	}
	return m
}

// MonthRiskIndex sums the risk marks over every day of the month.
func (f *Forecaster) MonthRiskIndex(origin time.Time, year int, month time.Month) int {
	return f.Month(origin, year, month).RiskIndex
}

// Year evaluates all twelve months concurrently. It returns early with the
// context's error if ctx is cancelled.
func (f *Forecaster) Year(ctx context.Context, origin time.Time, year int) (Calendar, error) {
	cal := Calendar{Year: year, Origin: origin.Format(time.RFC3339)}

	g, ctx := errgroup.WithContext(ctx)
	for i := range cal.Months {
		month := time.Month(i + 1)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cal.Months[i] = f.Month(origin, year, month)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Calendar{}, err
	}
	return cal, nil
}
