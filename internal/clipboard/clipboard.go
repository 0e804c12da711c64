// Package clipboard delivers exported text to the system clipboard or to a writer.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when clipboard access is not available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Sink receives the output of an export.
type Sink interface {
	Copy(text string) error
}

// System copies text to the system clipboard through the platform's
// clipboard command.
type System struct{}

// Copy implements Sink.
func (System) Copy(text string) error {
	args, err := command(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "", exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// IsAvailable checks if clipboard functionality is available on this system.
func IsAvailable() bool {
	_, err := command(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "", exec.LookPath)
	return err == nil
}

// command picks the clipboard command line for the platform.
func command(goos string, wayland bool, lookPath func(string) (string, error)) ([]string, error) {
	var candidates [][]string
	switch goos {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "linux", "freebsd", "openbsd":
		if wayland {
			candidates = append(candidates, []string{"wl-copy"})
		}
		candidates = append(candidates,
			[]string{"xclip", "-selection", "clipboard"},
			[]string{"xsel", "--clipboard", "--input"},
		)
	default:
		return nil, ErrClipboardUnavailable
	}

	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// Writer writes exported text to W, e.g. stdout.
type Writer struct {
	W io.Writer
}

// Copy implements Sink.
func (w Writer) Copy(text string) error {
	if _, err := io.WriteString(w.W, text); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
