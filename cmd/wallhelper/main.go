package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/wallhelper/cmd/wallhelper/commands"
	"git.home.luguber.info/inful/wallhelper/internal/config"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
	"git.home.luguber.info/inful/wallhelper/internal/version"
)

func main() {
	if _, err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	}

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("wallhelper"),
		kong.Description("Rotate desktop wallpapers by time of day."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := parser.Run(&commands.Global{Context: ctx, Out: os.Stdout, Logger: cli.Logger()}, cli)
	cancel()

	ferrors.NewCLIErrorAdapter(cli.Verbose, cli.Logger()).HandleError(err)
}
