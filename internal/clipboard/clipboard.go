// Package clipboard copies text to the system clipboard through the
// platform's command-line helper.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard helper is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// candidates lists helper commands in preference order for each platform.
var candidates = map[string][][]string{
	"darwin":  {{"pbcopy"}},
	"linux":   {{"wl-copy"}, {"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}},
	"freebsd": {{"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}},
}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// helper returns the first installed helper for goos, or nil.
func helper(goos string) []string {
	for _, argv := range candidates[goos] {
		if _, err := lookPath(argv[0]); err == nil {
			return argv
		}
	}
	return nil
}

// IsAvailable reports whether Copy can work on this system.
func IsAvailable() bool {
	return helper(runtime.GOOS) != nil
}

// Copy copies text to the system clipboard.
func Copy(text string) error {
	argv := helper(runtime.GOOS)
	if argv == nil {
		return ErrClipboardUnavailable
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
