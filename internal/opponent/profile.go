// Package opponent models the simulated contestants: a static personality
// profile per opponent and stateless decision functions over it. Every
// decision draws from an injected randutil.Rand so games can be replayed.
package opponent

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// WagerStyle selects how an opponent sizes Daily Double and Final wagers.
type WagerStyle string

const (
	Conservative WagerStyle = "conservative"
	Bold         WagerStyle = "bold"
	Strategic    WagerStyle = "strategic"
	Chaotic      WagerStyle = "chaotic"
)

// Profile is the static personality of one simulated opponent.
type Profile struct {
	ID   string
	Name string
	Bio  string

	AccuracyAcademic   float64
	AccuracyPopCulture float64

	// BuzzEagerness is the base probability of attempting a buzz on a
	// first-row clue.
	BuzzEagerness float64
	BuzzSpeedMin  time.Duration
	BuzzSpeedMax  time.Duration
	// ReadingFactor scales the word-count reading floor.
	ReadingFactor float64

	DailyDoubleStyle WagerStyle
	FinalStyle       WagerStyle
}

// Validate checks the profile parameters are usable.
func (p Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for name, v := range map[string]float64{
		"accuracy_academic":    p.AccuracyAcademic,
		"accuracy_pop_culture": p.AccuracyPopCulture,
		"buzz_eagerness":       p.BuzzEagerness,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	if p.BuzzSpeedMin < 0 || p.BuzzSpeedMax < p.BuzzSpeedMin {
		errs = append(errs, fmt.Errorf("buzz speed range [%v, %v] is invalid", p.BuzzSpeedMin, p.BuzzSpeedMax))
	}
	if p.ReadingFactor < 0 {
		errs = append(errs, fmt.Errorf("reading_factor must not be negative, got %v", p.ReadingFactor))
	}
	if p.DailyDoubleStyle == "" {
		errs = append(errs, errors.New("dd_wager_style is required"))
	}
	if p.FinalStyle == "" {
		errs = append(errs, errors.New("fj_wager_style is required"))
	}
	if len(errs) == 0 {
		return nil
	}
	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return fmt.Errorf("opponent %q: %w", p.ID, errors.Join(errs...))
}

// Accuracy returns the probability of a correct response in domain d.
func (p Profile) Accuracy(d Domain) float64 {
	if d == Academic {
		return p.AccuracyAcademic
	}
	return p.AccuracyPopCulture
}

// StrongDomain reports the domain the opponent answers better in. ok is false
// when both accuracies are equal.
func (p Profile) StrongDomain() (d Domain, ok bool) {
	switch {
	case p.AccuracyAcademic > p.AccuracyPopCulture:
		return Academic, true
	case p.AccuracyPopCulture > p.AccuracyAcademic:
		return PopCulture, true
	default:
		return PopCulture, false
	}
}

var builtin = []Profile{
	{
		ID:                 "higgins",
		Name:               "Prof. Higgins",
		Bio:                "a distinguished professor who has published more papers than he's read",
		AccuracyAcademic:   0.82,
		AccuracyPopCulture: 0.48,
		BuzzEagerness:      0.70,
		BuzzSpeedMin:       900 * time.Millisecond,
		BuzzSpeedMax:       2200 * time.Millisecond,
		ReadingFactor:      0.85,
		DailyDoubleStyle:   Conservative,
		FinalStyle:         Strategic,
	},
	{
		ID:                 "buzzy",
		Name:               "Buzzy McBuzzface",
		Bio:                "whose buzzer finger is faster than his brain",
		AccuracyAcademic:   0.35,
		AccuracyPopCulture: 0.52,
		BuzzEagerness:      0.88,
		BuzzSpeedMin:       350 * time.Millisecond,
		BuzzSpeedMax:       1300 * time.Millisecond,
		ReadingFactor:      0.60,
		DailyDoubleStyle:   Bold,
		FinalStyle:         Chaotic,
	},
	{
		ID:                 "trixie",
		Name:               "Trivia Trixie",
		Bio:                "a three-time pub trivia champion from Portland, Oregon",
		AccuracyAcademic:   0.58,
		AccuracyPopCulture: 0.68,
		BuzzEagerness:      0.72,
		BuzzSpeedMin:       650 * time.Millisecond,
		BuzzSpeedMax:       1800 * time.Millisecond,
		ReadingFactor:      0.78,
		DailyDoubleStyle:   Bold,
		FinalStyle:         Strategic,
	},
	{
		ID:                 "wally",
		Name:               "Wild Card Wally",
		Bio:                "a retired gambler who treats every Daily Double like a trip to Vegas",
		AccuracyAcademic:   0.50,
		AccuracyPopCulture: 0.62,
		BuzzEagerness:      0.65,
		BuzzSpeedMin:       700 * time.Millisecond,
		BuzzSpeedMax:       1900 * time.Millisecond,
		ReadingFactor:      0.75,
		DailyDoubleStyle:   Bold,
		FinalStyle:         Chaotic,
	},
	{
		ID:                 "barb",
		Name:               "Nana Barb",
		Bio:                "a sweet grandmother who has watched Jeopardy every night since 1984",
		AccuracyAcademic:   0.65,
		AccuracyPopCulture: 0.55,
		BuzzEagerness:      0.58,
		BuzzSpeedMin:       1000 * time.Millisecond,
		BuzzSpeedMax:       2500 * time.Millisecond,
		ReadingFactor:      0.90,
		DailyDoubleStyle:   Conservative,
		FinalStyle:         Strategic,
	},
}

// Roster is an ordered set of profiles opponents are drawn from.
type Roster struct {
	profiles []Profile
}

// DefaultRoster returns the five built-in personalities.
func DefaultRoster() *Roster {
	return &Roster{profiles: slices.Clone(builtin)}
}

// NewRoster builds a roster from profiles, rejecting invalid or duplicate ones.
func NewRoster(profiles ...Profile) (*Roster, error) {
	r := &Roster{}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.Get(p.ID); ok {
			return nil, fmt.Errorf("duplicate opponent id %q", p.ID)
		}
		r.profiles = append(r.profiles, p)
	}
	return r, nil
}

// With returns a copy of the roster where p replaces the profile sharing its
// id, or is appended when the id is new.
func (r *Roster) With(p Profile) (*Roster, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	next := &Roster{profiles: slices.Clone(r.profiles)}
	if i := slices.IndexFunc(next.profiles, func(q Profile) bool { return q.ID == p.ID }); i >= 0 {
		next.profiles[i] = p
	} else {
		next.profiles = append(next.profiles, p)
	}
	return next, nil
}

// Get looks a profile up by id.
func (r *Roster) Get(id string) (Profile, bool) {
	for _, p := range r.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// Profiles returns the roster in order.
func (r *Roster) Profiles() []Profile {
	return slices.Clone(r.profiles)
}

// Len returns the number of profiles.
func (r *Roster) Len() int {
	return len(r.profiles)
}

// Pair deterministically chooses the two opponents for a board. All unordered
// pairs are enumerated in roster order and the board id indexes into them, so
// consecutive boards rotate through every pairing.
func (r *Roster) Pair(boardID int) (Profile, Profile, error) {
	if len(r.profiles) < 2 {
		return Profile{}, Profile{}, fmt.Errorf("roster has %d opponents, need at least 2", len(r.profiles))
	}

	type pair struct{ a, b int }
	var pairs []pair
	for i := range r.profiles {
		for j := i + 1; j < len(r.profiles); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	idx := boardID % len(pairs)
	if idx < 0 {
		idx += len(pairs)
	}
	p := pairs[idx]
	return r.profiles[p.a], r.profiles[p.b], nil
}
