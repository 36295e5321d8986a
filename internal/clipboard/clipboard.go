// Package clipboard provides platform-specific clipboard operations.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoTool is returned when no clipboard tool is installed.
var ErrNoTool = errors.New("no suitable clipboard tool found")

// tool is one clipboard program and its arguments.
type tool []string

// toolsFor lists the clipboard tools to try on a platform, in order of
// preference.
func toolsFor(goos string) ([]tool, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return []tool{
			{"wl-copy"},                          // Wayland
			{"xclip", "-selection", "clipboard"}, // X11
			{"xsel", "--clipboard", "--input"},   // X11 alternative
		}, nil
	case "darwin":
		return []tool{{"pbcopy"}}, nil
	case "windows":
		return []tool{{"clip.exe"}, {"powershell", "-NoProfile", "-Command", "$input | Set-Clipboard"}}, nil
	}
	return nil, fmt.Errorf("unsupported platform: %s", goos)
}

// CopyText copies plain text, such as a tab-separated table, to the system
// clipboard.
func CopyText(text string) error {
	tools, err := toolsFor(runtime.GOOS)
	if err != nil {
		return err
	}
	return copyWith(tools, text, exec.LookPath)
}

func copyWith(tools []tool, text string, lookPath func(string) (string, error)) error {
	var tried []string
	for _, t := range tools {
		tried = append(tried, t[0])
		if _, err := lookPath(t[0]); err != nil {
			continue
		}
		cmd := exec.Command(t[0], t[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w (tried: %s)", ErrNoTool, strings.Join(tried, ", "))
}
