// Package selector picks one image for a daypart and hour using the two-tier
// specificity rule: a non-empty hour bucket always overrides the daypart bucket.
package selector

import (
	"math/rand/v2"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
)

// Random is the uniform index source used for picks. IntN returns a value in [0, n).
type Random interface {
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.IntN(n) }

// NewRandom returns a Random backed by the runtime's global generator.
func NewRandom() Random { return defaultRandom{} }

// Source names the bucket tier a selection came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceDaypart Source = "daypart"
	SourceHour    Source = "hour"
)

// Selection is the outcome of Select. Candidates is the size of the bucket the pick was
// drawn from; it is 0 when nothing was found.
type Selection struct {
	Path       string
	Found      bool
	Candidates int
	Source     Source
}

// Select draws a uniformly random path from the daypart bucket, then replaces it with a
// draw from the hour bucket when that bucket has entries. Previously shown images are not
// excluded here.
func Select(part daypart.Name, hour int, reg *registry.Registry, rnd Random) Selection {
	if rnd == nil {
		rnd = NewRandom()
	}

	sel := Selection{Source: SourceNone}
	if bucket := reg.Daypart(part); len(bucket) > 0 {
		sel = pick(bucket, rnd, SourceDaypart)
	}
	if bucket := reg.Hour(hour); len(bucket) > 0 {
		sel = pick(bucket, rnd, SourceHour)
	}
	return sel
}

func pick(bucket registry.Bucket, rnd Random, src Source) Selection {
	return Selection{
		Path:       bucket[rnd.IntN(len(bucket))],
		Found:      true,
		Candidates: len(bucket),
		Source:     src,
	}
}
