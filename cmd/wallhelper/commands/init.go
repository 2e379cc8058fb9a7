package commands

import (
	"fmt"

	"git.home.luguber.info/inful/wallhelper/internal/bootstrap"
	"git.home.luguber.info/inful/wallhelper/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config.toml with the defaults"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	dir, err := config.ResolveDir(root.ConfigDir)
	if err != nil {
		return err
	}
	return RunInit(g, dir, i.Force)
}

// RunInit creates the directory skeleton under dir and reports what changed.
func RunInit(g *Global, dir string, force bool) error {
	out := g.out()
	fmt.Fprintf(out, "Initializing wallhelper in %s\n", dir)

	res, err := bootstrap.Ensure(dir, force)
	if err != nil {
		fmt.Fprintln(out, "Initialization failed")
		return err
	}

	fmt.Fprintf(out, "Created %d directories\n", len(res.CreatedDirs))
	if res.ConfigWritten {
		fmt.Fprintf(out, "Wrote configuration to %s\n", res.ConfigPath)
	} else {
		fmt.Fprintf(out, "Keeping existing configuration %s (use --force to overwrite)\n", res.ConfigPath)
	}
	fmt.Fprintln(out, "initialized successfully")
	return nil
}
