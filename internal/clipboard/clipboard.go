// Package clipboard shells out to the platform clipboard utilities for
// copying and pasting editor text.
package clipboard

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// CopyText writes text to the system clipboard.
func CopyText(text string) error {
	switch runtime.GOOS {
	case "darwin":
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	case "linux":
		return copyTextLinux(text)
	default:
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
}

func copyTextLinux(text string) error {
	// Try wl-copy first (Wayland)
	if _, err := exec.LookPath("wl-copy"); err == nil {
		cmd := exec.Command("wl-copy")
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	}

	// Fall back to xclip (X11)
	if _, err := exec.LookPath("xclip"); err == nil {
		cmd := exec.Command("xclip", "-selection", "clipboard")
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	}

	return fmt.Errorf("no clipboard utility found (install wl-copy or xclip)")
}

// ReadText reads text content from the system clipboard.
func ReadText() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return runPaste(exec.Command("pbpaste"))
	case "linux":
		return readTextLinux()
	default:
		return "", fmt.Errorf("clipboard read not supported on %s", runtime.GOOS)
	}
}

func readTextLinux() (string, error) {
	if _, err := exec.LookPath("wl-paste"); err == nil {
		if text, err := runPaste(exec.Command("wl-paste", "--no-newline")); err == nil {
			return text, nil
		}
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		if text, err := runPaste(exec.Command("xclip", "-selection", "clipboard", "-o")); err == nil {
			return text, nil
		}
	}
	return "", fmt.Errorf("no clipboard utility found (install wl-paste or xclip)")
}

func runPaste(cmd *exec.Cmd) (string, error) {
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return normalizePaste(out.String()), nil
}

// normalizePaste converts CRLF line endings to LF so pasted text matches
// the document's newline convention.
func normalizePaste(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
