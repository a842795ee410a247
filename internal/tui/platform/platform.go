// Package platform hands item links to the desktop: the default browser and
// the system clipboard.
package platform

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/glabrego/pixfeed-cli/internal/media"
)

var (
	// ErrNoLink means the item carries no product or source link at all.
	ErrNoLink      = errors.New("item has no link")
	ErrNoClipboard = errors.New("no clipboard command available")
)

// LinkError reports a link that is present but unusable.
type LinkError struct {
	Link   string
	Reason string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("invalid link %q: %s", e.Link, e.Reason)
}

// ItemLink returns item's link once it is safe to hand to a browser.
func ItemLink(item media.Item) (string, error) {
	return ValidateURL(item.Link())
}

func ValidateURL(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", ErrNoLink
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return "", &LinkError{Link: link, Reason: "malformed"}
	}
	switch {
	case parsed.Scheme != "http" && parsed.Scheme != "https":
		return "", &LinkError{Link: link, Reason: "unsupported scheme " + parsed.Scheme}
	case parsed.Host == "":
		return "", &LinkError{Link: link, Reason: "missing host"}
	}
	return link, nil
}

func OpenURLInBrowser(link string) error {
	name, args := browserCommand(runtime.GOOS, link)
	return exec.Command(name, args...).Run()
}

func browserCommand(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		return "xdg-open", []string{link}
	}
}

func CopyURLToClipboard(link string) error {
	c, err := clipboardCommand(runtime.GOOS, os.Getenv, exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(c[0], c[1:]...)
	cmd.Stdin = strings.NewReader(link)
	return cmd.Run()
}

// clipboardCommand picks the first installed clipboard writer, preferring
// wl-copy inside a Wayland session.
func clipboardCommand(goos string, getenv func(string) string, lookPath func(string) (string, error)) ([]string, error) {
	var candidates [][]string
	switch goos {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "windows":
		candidates = [][]string{{"clip"}}
	default:
		x11 := [][]string{
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
		if getenv("WAYLAND_DISPLAY") != "" {
			candidates = append([][]string{{"wl-copy"}}, x11...)
		} else {
			candidates = append(x11, []string{"wl-copy"})
		}
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, ErrNoClipboard
}
