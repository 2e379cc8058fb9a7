// Package retry computes the delay before the rotation loop re-selects after its
// repeat gate turned a pick down.
package retry

import (
	"time"

	"git.home.luguber.info/inful/wallhelper/internal/config"
)

// DefaultMax caps every delay unless a policy sets its own.
const DefaultMax = 30 * time.Second

// Policy encapsulates backoff settings. It is immutable after construction.
type Policy struct {
	Mode    config.RetryBackoffMode // fixed|linear|exponential
	Initial time.Duration           // base delay
	Max     time.Duration           // cap for growth
}

// DefaultPolicy returns linear growth from 1s, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: DefaultMax}
}

// NewPolicy builds a policy from raw fields; zero/invalid values fall back to defaults.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDuration time.Duration) Policy {
	p := DefaultPolicy()
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromSettings builds the reselect policy for the active settings.
func FromSettings(s config.Settings) Policy {
	return NewPolicy(s.ReselectBackoff, s.ReselectDelay, DefaultMax)
}

// Delay returns the delay for the given consecutive attempt number (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d := p.Initial
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= p.Max {
				return p.Max
			}
		}
		return min(d, p.Max)
	default: // linear
		d := time.Duration(attempt) * p.Initial
		if d > p.Max || d < 0 {
			return p.Max
		}
		return d
	}
}
