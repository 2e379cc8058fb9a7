package daypart

import (
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

// Resolve returns the daypart whose interval claims hour. The intervals are tested in
// order with night last, since night is the wraparound catch-all.
//
// An hour outside [0, 23], or one no interval claims, is a resolution error. There is no
// fallback daypart.
func Resolve(hour int, b Boundaries) (Name, error) {
	if hour < 0 || hour >= HoursPerDay {
		return "", ferrors.ResolutionError("hour out of range").
			WithContext("hour", hour).
			Build()
	}

	switch {
	case b.Contains(Morning, hour):
		return Morning, nil
	case b.Contains(Day, hour):
		return Day, nil
	case b.Contains(Evening, hour):
		return Evening, nil
	case b.Contains(Night, hour):
		return Night, nil
	}

	return "", ferrors.ResolutionError("hour doesn't match any daypart; ensure dayparts are in order and don't overlap").
		WithContext("hour", hour).
		WithContext("boundaries", b.String()).
		Build()
}
