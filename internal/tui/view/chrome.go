package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/pixfeed-cli/internal/tui/theme"
)

func Header(title string, paused bool, th tuitheme.Theme) string {
	mode := "autoplay"
	if paused {
		mode = "paused"
	}
	return th.Title.Render(title) + " " + th.ModePill.Render(mode)
}

type FooterParams struct {
	Shown   int
	Base    int
	Passes  int
	Focus   string
	Playing int
	Muted   bool
}

func Footer(p FooterParams, th tuitheme.Theme) string {
	sound := "on"
	if p.Muted {
		sound = "muted"
	}
	parts := []string{
		th.MetaValue.Render(fmt.Sprintf("%d items", p.Shown)),
		th.MetaLabel.Render("album") + " " + th.MetaValue.Render(fmt.Sprintf("%d", p.Base)),
		th.MetaLabel.Render("pass") + " " + th.MetaValue.Render(fmt.Sprintf("%d", p.Passes)),
		th.MetaLabel.Render("focus") + " " + th.MetaValue.Render(p.Focus),
		th.MetaLabel.Render("playing") + " " + th.MetaValue.Render(fmt.Sprintf("%d", p.Playing)),
		th.MetaLabel.Render("sound") + " " + th.MetaValue.Render(sound),
	}
	return strings.Join(parts, " • ")
}

func Message(loading bool, hasWarning bool, status, warning, spinner string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	} else if loading {
		main = strings.TrimSpace(spinner + " Loading album")
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
