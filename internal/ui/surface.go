package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// surface paints text onto a solid background. lipgloss resets the
// background after every styled segment, so spaces between segments are
// painted separately.
type surface struct {
	color lipgloss.Color
	fill  lipgloss.Style
}

func newSurface(color string) surface {
	c := lipgloss.Color(color)
	return surface{color: c, fill: lipgloss.NewStyle().Background(c)}
}

// Text renders text in style, painting every run of spaces too.
func (s surface) Text(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(s.color)
	var b strings.Builder
	for text != "" {
		i := strings.IndexByte(text, ' ')
		if i < 0 {
			b.WriteString(styled.Render(text))
			break
		}
		if i > 0 {
			b.WriteString(styled.Render(text[:i]))
		}
		j := i
		for j < len(text) && text[j] == ' ' {
			j++
		}
		b.WriteString(s.Gap(j - i))
		text = text[j:]
	}
	return b.String()
}

// Gap returns n painted spaces.
func (s surface) Gap(n int) string {
	if n <= 0 {
		return ""
	}
	return s.fill.Render(strings.Repeat(" ", n))
}

// Glue paints a separator such as ":" between two segments.
func (s surface) Glue(sep string) string {
	return s.fill.Render(sep)
}

// Fill pads rendered content to width.
func (s surface) Fill(content string, width int) string {
	return s.fill.Width(width).Render(content)
}

func (s surface) Color() lipgloss.Color {
	return s.color
}
