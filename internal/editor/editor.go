// Package editor launches the user's text editor on a config file.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoEditor is returned when no editor command can be determined.
var ErrNoEditor = errors.New("no editor found")

// Editor runs an editor command with the given stdio.
type Editor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Command overrides detection when non-empty.
	Command []string
}

// Open runs the editor on path and waits for it to exit.
func (e *Editor) Open(ctx context.Context, path string) error {
	argv := e.Command
	if len(argv) == 0 {
		argv = Detect()
	}
	if len(argv) == 0 {
		return ErrNoEditor
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Detect returns the editor command line.
// Fallback chain: $EDITOR → $VISUAL → nano → vi. Values are split on
// whitespace so "code --wait" works.
func Detect() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if argv := strings.Fields(os.Getenv(env)); len(argv) > 0 {
			return argv
		}
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}
