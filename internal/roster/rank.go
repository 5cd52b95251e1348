package roster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/rhythm"
)

// ErrNeedTwoProfiles is returned when a comparison is not given exactly two
// distinct profiles.
var ErrNeedTwoProfiles = errors.New("compatibility needs exactly two profiles")

// maxRankWorkers bounds the goroutines ranking evaluates profiles with.
const maxRankWorkers = 8

// Standing is one profile's score at the shared target.
type Standing struct {
	Profile
	Balance int          `json:"balance"`
	Level   rhythm.Level `json:"level"`
	Risk    int          `json:"risk"`
	Marks   int          `json:"marks"`
}

// Ranking lists standings per team and for profiles without a team, each
// sorted by descending balance.
type Ranking struct {
	Groups    map[string][]Standing `json:"groups"`
	Ungrouped []Standing            `json:"ungrouped"`
}

// Rank scores every profile at target and groups the results by team.
func Rank(ctx context.Context, f *forecast.Forecaster, profiles []Profile, target time.Time) (Ranking, error) {
	standings := make([]Standing, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRankWorkers)
	for i, p := range profiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			origin, err := p.Origin()
			if err != nil {
				return fmt.Errorf("profile %s: %w", p.ID, err)
			}
			d := f.Day(origin, target)
			standings[i] = Standing{Profile: p, Balance: d.Balance, Level: d.Level, Risk: d.Risk, Marks: d.Marks}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Ranking{}, err
	}

	r := Ranking{Groups: make(map[string][]Standing)}
	for _, s := range standings {
		if s.Grouped() {
			r.Groups[s.Team] = append(r.Groups[s.Team], s)
		} else {
			r.Ungrouped = append(r.Ungrouped, s)
		}
	}
	for team := range r.Groups {
		sortStandings(r.Groups[team])
	}
	sortStandings(r.Ungrouped)
	return r, nil
}

func sortStandings(s []Standing) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Balance > s[j].Balance })
}

// Mode selects which balance the arena compares.
type Mode int

const (
	ModeTotal Mode = iota
	ModeBasic
	ModeReactive
)

// ParseMode reads "total", "basic" or "reactive", case-insensitively. An
// empty string means total.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total":
		return ModeTotal, nil
	case "basic":
		return ModeBasic, nil
	case "reactive":
		return ModeReactive, nil
	}
	return 0, fmt.Errorf("unknown arena mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case ModeBasic:
		return "BASIC"
	case ModeReactive:
		return "REACTIVE"
	default:
		return "TOTAL"
	}
}

// Score returns the mode's balance for an elapsed-day count.
func (m Mode) Score(days int) int {
	switch m {
	case ModeBasic:
		return rhythm.BasicBalance(days)
	case ModeReactive:
		return rhythm.ReactiveBalance(days)
	default:
		return rhythm.FullBalance(days)
	}
}

// Entry is one contestant in the arena: a whole team or a single profile.
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
	Members int    `json:"member_count,omitempty"`
	Score   int    `json:"score"`
}

// Arena scores the selected teams by their members' rounded mean and the
// selected profiles individually. A profile whose team is also selected is
// only counted within its team. Entries are sorted by descending score.
func Arena(profiles []Profile, teams, ids []string, mode Mode, target time.Time) ([]Entry, error) {
	selectedTeams := make(map[string]bool, len(teams))
	for _, t := range teams {
		selectedTeams[t] = true
	}

	var entries []Entry
	for _, team := range teams {
		sum, members := 0, 0
		for _, p := range profiles {
			if p.Team != team {
				continue
			}
			score, err := scoreProfile(p, mode, target)
			if err != nil {
				return nil, err
			}
			sum += score
			members++
		}
		if members == 0 {
			continue
		}
		entries = append(entries, Entry{
			ID:      "group-" + team,
			Name:    team,
			IsGroup: true,
			Members: members,
			Score:   int(math.Floor(float64(sum)/float64(members) + 0.5)),
		})
	}

	byID := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || (p.Grouped() && selectedTeams[p.Team]) {
			continue
		}
		score, err := scoreProfile(p, mode, target)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: p.ID, Name: p.Name, Score: score})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries, nil
}

func scoreProfile(p Profile, mode Mode, target time.Time) (int, error) {
	origin, err := p.Origin()
	if err != nil {
		return 0, fmt.Errorf("profile %s: %w", p.ID, err)
	}
	return mode.Score(rhythm.ElapsedDays(origin, target)), nil
}

// Compare evaluates the compatibility of two profiles at target.
func Compare(a, b Profile, target time.Time) (rhythm.Compat, error) {
	if a.ID == b.ID {
		return rhythm.Compat{}, ErrNeedTwoProfiles
	}
	oa, err := a.Origin()
	if err != nil {
		return rhythm.Compat{}, fmt.Errorf("profile %s: %w", a.ID, err)
	}
	ob, err := b.Origin()
	if err != nil {
		return rhythm.Compat{}, fmt.Errorf("profile %s: %w", b.ID, err)
	}
	return rhythm.Compatibility(rhythm.ElapsedDays(oa, target), rhythm.ElapsedDays(ob, target)), nil
}
