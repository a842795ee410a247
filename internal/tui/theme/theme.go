package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title     lipgloss.Style
	ModePill  lipgloss.Style
	MetaLabel lipgloss.Style
	MetaValue lipgloss.Style
	StateIdle lipgloss.Style
	StateWarn lipgloss.Style
	StateLoad lipgloss.Style

	CaptionFocused lipgloss.Style
	CaptionDormant lipgloss.Style
	Placeholder    lipgloss.Style
	Fading         lipgloss.Style
	LiveMarker     lipgloss.Style
	VideoMarker    lipgloss.Style
	Selected       lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay0 := lipgloss.Color("#6c7086")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:       lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		MetaLabel:      lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:      lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:      lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:      lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:      lipgloss.NewStyle().Foreground(cpPeach),
		CaptionFocused: lipgloss.NewStyle().Bold(true).Foreground(cpText),
		CaptionDormant: lipgloss.NewStyle().Faint(true).Foreground(cpOverlay0),
		Placeholder:    lipgloss.NewStyle(),
		Fading:         lipgloss.NewStyle().Faint(true),
		LiveMarker:     lipgloss.NewStyle().Bold(true).Foreground(cpRed),
		VideoMarker:    lipgloss.NewStyle().Foreground(cpYellow),
		Selected:       lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
	}
}

// StyleCaption renders a cell caption at the strength its alpha calls for.
// Anything below full opacity reads as dormant.
func (t Theme) StyleCaption(alpha float64, caption string) string {
	if caption == "" {
		return caption
	}
	if alpha >= 1 {
		return t.CaptionFocused.Render(caption)
	}
	return t.CaptionDormant.Render(caption)
}

// StylePlaceholder fades a rendered placeholder line as the crossfade
// progresses. Half transparent and below is drawn faint.
func (t Theme) StylePlaceholder(alpha float64, line string) string {
	if alpha > 0.5 {
		return t.Placeholder.Render(line)
	}
	return t.Fading.Render(line)
}

func (t Theme) RenderSelected(selected bool, line string) string {
	if !selected {
		return line
	}
	return t.Selected.Render(line)
}
