// Package roster holds the people the engine is queried for and the views
// that compare them: grouped ranking, the arena and pairwise compatibility.
package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/ritmxoid/internal/rhythm"
)

// BirthLayout is the wall-clock layout birth instants are stored and
// exchanged in. It carries no zone; the engine reads it in rhythm.AppZone.
const BirthLayout = "2006-01-02T15:04:05"

var (
	ErrEmptyName = errors.New("profile name is required")
	ErrBadBirth  = errors.New("birth must look like 2006-01-02T15:04")
)

// Profile is one person the engine is evaluated for.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Birth    string `json:"birthDate"`
	IsMaster bool   `json:"isMaster"`
	Team     string `json:"teamName,omitempty"`
}

// NewProfile validates the input and assigns a fresh ID.
func NewProfile(name, birth, team string) (Profile, error) {
	p := Profile{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Birth: birth,
		Team:  strings.TrimSpace(team),
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	origin, _ := p.Origin()
	p.Birth = origin.Format(BirthLayout)
	return p, nil
}

// Validate checks the name and birth instant.
func (p Profile) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if _, err := p.Origin(); err != nil {
		return err
	}
	return nil
}

// Origin parses the birth instant and reinterprets it in the application
// zone. Seconds and a trailing zone or offset are accepted; any zone is
// discarded in favour of the wall clock.
func (p Profile) Origin() (time.Time, error) {
	return ParseBirth(p.Birth)
}

// ParseBirth reads a birth instant in any of the accepted layouts.
func ParseBirth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, BirthLayout, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return rhythm.Origin(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadBirth, s)
}

// Grouped reports whether the profile belongs to a team.
func (p Profile) Grouped() bool {
	return p.Team != ""
}
