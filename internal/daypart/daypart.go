// Package daypart maps a wall-clock hour onto one of four fixed segments of the day.
package daypart

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

// Name identifies a daypart bucket.
type Name string

const (
	Morning Name = "morning"
	Day     Name = "day"
	Evening Name = "evening"
	Night   Name = "night"
)

// All lists the dayparts in their cyclical order. The position is the bucket index.
var All = [4]Name{Morning, Day, Evening, Night}

// HoursPerDay is the number of hour buckets.
const HoursPerDay = 24

// Index returns the bucket index of n, or -1 for an unknown name.
func (n Name) Index() int {
	for i, candidate := range All {
		if candidate == n {
			return i
		}
	}
	return -1
}

// Title returns the display form of n, e.g. "Evening".
func (n Name) Title() string {
	return cases.Title(language.English).String(string(n))
}

// Parse converts a case-insensitive name into a Name.
func Parse(raw string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(raw)))
	if n.Index() < 0 {
		return "", fmt.Errorf("unknown daypart %q", raw)
	}
	return n, nil
}

// Boundaries holds the starting hour of each daypart. Night wraps past midnight
// until Morning.
type Boundaries struct {
	Morning int
	Day     int
	Evening int
	Night   int
}

// DefaultBoundaries returns the calendar defaults 6/12/18/24.
func DefaultBoundaries() Boundaries {
	return Boundaries{Morning: 6, Day: 12, Evening: 18, Night: 24}
}

// Start returns the configured starting hour for n.
func (b Boundaries) Start(n Name) int {
	switch n {
	case Morning:
		return b.Morning
	case Day:
		return b.Day
	case Evening:
		return b.Evening
	default:
		return b.Night
	}
}

// Contains reports whether hour falls inside n's half-open interval.
func (b Boundaries) Contains(n Name, hour int) bool {
	switch n {
	case Morning:
		return hour >= b.Morning && hour < b.Day
	case Day:
		return hour >= b.Day && hour < b.Evening
	case Evening:
		return hour >= b.Evening && hour < b.Night
	case Night:
		return hour >= b.Night || hour < b.Morning
	}
	return false
}

// Problems lists every range and ordering violation. An empty result means the four
// intervals partition the day.
func (b Boundaries) Problems() []string {
	var problems []string
	for _, n := range All {
		if h := b.Start(n); h < 0 || h > HoursPerDay {
			problems = append(problems, fmt.Sprintf("%s must be between 0 and %d, got %d", n, HoursPerDay, h))
		}
	}
	for i := 1; i < len(All); i++ {
		prev, cur := All[i-1], All[i]
		if b.Start(prev) >= b.Start(cur) {
			problems = append(problems, fmt.Sprintf("%s (%d) must start before %s (%d)", prev, b.Start(prev), cur, b.Start(cur)))
		}
	}
	return problems
}

// Validate returns a validation error listing every problem, or nil.
func (b Boundaries) Validate() error {
	problems := b.Problems()
	if len(problems) == 0 {
		return nil
	}
	return ferrors.ValidationError("daypart boundaries are out of order").
		WithContext("problems", problems).
		WithCause(fmt.Errorf("%s", strings.Join(problems, "; "))).
		Build()
}

func (b Boundaries) String() string {
	return fmt.Sprintf("morning=%d day=%d evening=%d night=%d", b.Morning, b.Day, b.Evening, b.Night)
}
