// Package applier runs the user's wallpaper command for a chosen image.
package applier

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

// maxOutput bounds how much command output is attached to an apply error.
const maxOutput = 4096

// Shell executes wallpaper commands through the platform shell.
type Shell struct {
	// Shell and ShellFlag default to "sh -c" (or "cmd /C" on Windows).
	Shell     string
	ShellFlag string
	// Env is appended to the process environment; later entries win.
	Env []string
}

// NewShell returns a Shell using the platform default interpreter.
func NewShell() *Shell {
	if runtime.GOOS == "windows" {
		return &Shell{Shell: "cmd", ShellFlag: "/C"}
	}
	return &Shell{Shell: "sh", ShellFlag: "-c"}
}

// Render substitutes image into every placeholder of template. The path is inserted
// as-is; quoting is up to the template.
func Render(template, image string) string {
	return strings.ReplaceAll(template, config.Placeholder, image)
}

// Apply runs command and waits for it to exit. The image path is exported to the child
// as WALLHELPER_IMAGE. A non-zero exit or a failure to start is an apply error carrying
// the command and its combined output.
func (s *Shell) Apply(ctx context.Context, command, image string) error {
	shell, flag := s.Shell, s.ShellFlag
	if shell == "" {
		def := NewShell()
		shell, flag = def.Shell, def.ShellFlag
	}

	// #nosec G204 -- running the user's configured command is the purpose of this type
	cmd := exec.CommandContext(ctx, shell, flag, command)
	env := append(os.Environ(), s.Env...)
	cmd.Env = append(env, config.EnvImage+"="+image)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		b := ferrors.ApplyError("wallpaper command failed").
			WithCause(err).
			WithContext("command", command).
			WithContext("image", image).
			WithContext("output", truncate(out.String()))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			b = b.WithContext("exit_code", exitErr.ExitCode())
		}
		return b.Build()
	}
	return nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxOutput {
		return s
	}
	return s[:maxOutput] + "..."
}
