package commands

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Format string `help:"Output format" enum:"text,yaml" default:"text"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	settings, _, reg, err := loadAll(root)
	if err != nil {
		return err
	}
	summary := reg.Summary()
	out := g.out()

	if l.Format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		return enc.Close()
	}

	fmt.Fprintln(out, summary.String())
	b := settings.Boundaries
	for i, n := range daypart.All {
		end := b.Start(daypart.All[(i+1)%len(daypart.All)])
		fmt.Fprintf(out, "  %-8s %02d-%02d  %d\n", n.Title(), b.Start(n), end, summary.Dayparts[string(n)])
	}

	hours := make([]int, 0, len(summary.Hours))
	for h := range summary.Hours {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		fmt.Fprintf(out, "  hour %-3d        %d\n", h, summary.Hours[h])
	}
	return nil
}
