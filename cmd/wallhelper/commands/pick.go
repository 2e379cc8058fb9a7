package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/wallhelper/internal/applier"
	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
	"git.home.luguber.info/inful/wallhelper/internal/selector"
)

// PickCmd implements the 'pick' command.
type PickCmd struct {
	Hour  int  `help:"Hour of day to pick for (0-23); defaults to the current hour" default:"-1"`
	Apply bool `help:"Run the wallpaper command for the picked image"`

	now    func() time.Time
	random selector.Random
	apply  func(cmd, image string) error
}

func (p *PickCmd) Run(g *Global, root *CLI) error {
	hour := p.Hour
	if hour < -1 || hour >= daypart.HoursPerDay {
		return ferrors.ValidationError("--hour must be between 0 and 23").
			WithContext("hour", hour).
			Build()
	}
	if hour == -1 {
		now := time.Now
		if p.now != nil {
			now = p.now
		}
		hour = now().Hour()
	}

	settings, _, reg, err := loadAll(root)
	if err != nil {
		return err
	}

	part, err := daypart.Resolve(hour, settings.Boundaries)
	if err != nil {
		return err
	}
	sel := selector.Select(part, hour, reg, p.random)

	out := g.out()
	fmt.Fprintf(out, "Daypart: %s (from %d:00)\n", part.Title(), settings.Boundaries.Start(part))
	fmt.Fprintf(out, "Hour:    %d\n", hour)
	if !sel.Found {
		fmt.Fprintln(out, "Image:   none found")
		return nil
	}
	command := applier.Render(settings.WallpaperCommand, sel.Path)
	fmt.Fprintf(out, "Source:  %s bucket, %d candidates\n", sel.Source, sel.Candidates)
	fmt.Fprintf(out, "Image:   %s\n", sel.Path)
	fmt.Fprintf(out, "Command: %s\n", command)

	if !p.Apply {
		return nil
	}
	if p.apply != nil {
		return p.apply(command, sel.Path)
	}
	return applier.NewShell().Apply(g.ctx(), command, sel.Path)
}
