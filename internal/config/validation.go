package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

// Configuration keys.
const (
	KeyMorning          = "morning"
	KeyDay              = "day"
	KeyEvening          = "evening"
	KeyNight            = "night"
	KeyWallpaperCommand = "wallpaper_command"
	KeyAlwaysChange     = "always_change"
	KeyUpdateInterval   = "update_interval"
	KeyReselectDelay    = "reselect_delay"
	KeyReselectBackoff  = "reselect_backoff"
)

// MaxUpdateInterval is the longest accepted update_interval, one year of minutes.
const MaxUpdateInterval = 366 * 24 * 60

var knownKeys = map[string]bool{
	KeyMorning: true, KeyDay: true, KeyEvening: true, KeyNight: true,
	KeyWallpaperCommand: true, KeyAlwaysChange: true, KeyUpdateInterval: true,
	KeyReselectDelay: true, KeyReselectBackoff: true,
}

// ProblemKind classifies a single validation problem.
type ProblemKind string

const (
	ProblemMissing ProblemKind = "missing"
	ProblemType    ProblemKind = "type"
	ProblemValue   ProblemKind = "value"
)

// Problem describes one invalid or absent key.
type Problem struct {
	Key     string
	Kind    ProblemKind
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Key, p.Message)
}

// Problems is the aggregate of every validation problem found in one pass.
type Problems []Problem

func (ps Problems) Error() string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}

// Has reports whether a problem of kind was recorded for key.
func (ps Problems) Has(key string, kind ProblemKind) bool {
	for _, p := range ps {
		if p.Key == key && p.Kind == kind {
			return true
		}
	}
	return false
}

// UnknownKeys returns the keys in raw that the configuration does not recognize, sorted.
func UnknownKeys(raw map[string]any) []string {
	var unknown []string
	for k := range raw {
		if !knownKeys[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Validate checks every key of a decoded document at once and returns Settings, or a
// validation error wrapping Problems that lists all of them.
func Validate(raw map[string]any) (*Settings, error) {
	v := &validator{raw: raw}
	defaults := daypart.DefaultBoundaries()

	s := &Settings{
		Boundaries: daypart.Boundaries{
			Morning: v.optionalInt(KeyMorning, defaults.Morning),
			Day:     v.optionalInt(KeyDay, defaults.Day),
			Evening: v.optionalInt(KeyEvening, defaults.Evening),
			Night:   v.optionalInt(KeyNight, defaults.Night),
		},
		WallpaperCommand: v.requiredString(KeyWallpaperCommand),
		AlwaysChange:     v.requiredBool(KeyAlwaysChange),
	}

	if minutes, ok := v.requiredInt(KeyUpdateInterval); ok {
		switch {
		case minutes <= 0:
			v.add(KeyUpdateInterval, ProblemValue, fmt.Sprintf("must be a positive number of minutes, got %d", minutes))
		case minutes > MaxUpdateInterval:
			v.add(KeyUpdateInterval, ProblemValue, fmt.Sprintf("must be at most %d minutes, got %d", MaxUpdateInterval, minutes))
		default:
			s.UpdateInterval = time.Duration(minutes) * time.Minute
		}
	}

	delay := v.optionalInt(KeyReselectDelay, 1)
	if delay <= 0 {
		v.add(KeyReselectDelay, ProblemValue, fmt.Sprintf("must be a positive number of seconds, got %d", delay))
	}
	s.ReselectDelay = time.Duration(delay) * time.Second

	s.ReselectBackoff = RetryBackoffLinear
	if rawMode, ok := v.optionalString(KeyReselectBackoff); ok {
		mode, err := ParseRetryBackoff(rawMode)
		if err != nil {
			v.add(KeyReselectBackoff, ProblemValue, err.Error())
		} else {
			s.ReselectBackoff = mode
		}
	}

	if strings.TrimSpace(s.WallpaperCommand) == "" && !v.problems.Has(KeyWallpaperCommand, ProblemMissing) && !v.problems.Has(KeyWallpaperCommand, ProblemType) {
		v.add(KeyWallpaperCommand, ProblemValue, "must not be empty")
	}

	if !v.anyBoundaryProblem() {
		for _, msg := range s.Boundaries.Problems() {
			v.add("dayparts", ProblemValue, msg)
		}
	}

	if len(v.problems) > 0 {
		return nil, ferrors.ValidationError("invalid configuration").
			WithContext("problems", len(v.problems)).
			WithCause(v.problems).
			Build()
	}
	return s, nil
}

type validator struct {
	raw      map[string]any
	problems Problems
}

func (v *validator) add(key string, kind ProblemKind, msg string) {
	v.problems = append(v.problems, Problem{Key: key, Kind: kind, Message: msg})
}

func (v *validator) anyBoundaryProblem() bool {
	for _, k := range []string{KeyMorning, KeyDay, KeyEvening, KeyNight} {
		if v.problems.Has(k, ProblemType) || v.problems.Has(k, ProblemValue) {
			return true
		}
	}
	return false
}

// asInt accepts the integer types produced by the TOML and YAML decoders. isInt is
// false for non-integers; inRange is false for integers outside the int32 range.
func asInt(value any) (n int, isInt, inRange bool) {
	switch x := value.(type) {
	case int:
		return x, true, x >= math.MinInt32 && x <= math.MaxInt32
	case int64:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, true, false
		}
		return int(x), true, true
	case uint64:
		if x > math.MaxInt32 {
			return 0, true, false
		}
		return int(x), true, true
	}
	return 0, false, false
}

func (v *validator) requiredInt(key string) (int, bool) {
	value, ok := v.raw[key]
	if !ok {
		v.add(key, ProblemMissing, "config key is missing")
		return 0, false
	}
	n, isInt, inRange := asInt(value)
	switch {
	case !isInt:
		v.add(key, ProblemType, fmt.Sprintf("must be an integer, got %T", value))
		return 0, false
	case !inRange:
		v.add(key, ProblemValue, fmt.Sprintf("integer %v is out of range", value))
		return 0, false
	}
	return n, true
}

func (v *validator) optionalInt(key string, fallback int) int {
	if _, ok := v.raw[key]; !ok {
		return fallback
	}
	n, ok := v.requiredInt(key)
	if !ok {
		return fallback
	}
	return n
}

func (v *validator) requiredBool(key string) bool {
	value, ok := v.raw[key]
	if !ok {
		v.add(key, ProblemMissing, "config key is missing")
		return false
	}
	b, ok := value.(bool)
	if !ok {
		v.add(key, ProblemType, fmt.Sprintf("must be a boolean, got %T", value))
	}
	return b
}

func (v *validator) requiredString(key string) string {
	value, ok := v.raw[key]
	if !ok {
		v.add(key, ProblemMissing, "config key is missing")
		return ""
	}
	s, ok := value.(string)
	if !ok {
		v.add(key, ProblemType, fmt.Sprintf("must be a string, got %T", value))
	}
	return s
}

func (v *validator) optionalString(key string) (string, bool) {
	if _, ok := v.raw[key]; !ok {
		return "", false
	}
	s := v.requiredString(key)
	return s, !v.problems.Has(key, ProblemType)
}
