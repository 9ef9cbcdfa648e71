package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tfevents/internal/models"
)

// changeColor picks the color for a resource line from its first change.
func changeColor(changes []models.ResourceChange) string {
	if len(changes) == 0 {
		return ""
	}
	switch changes[0] {
	case models.ChangeCreate:
		return ColorSuccess
	case models.ChangeUpdate:
		return ColorWarning
	case models.ChangeDestroy:
		return ColorError
	case models.ChangeRead:
		return ColorInfo
	}
	return ""
}

func paint(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + ColorReset
}

// FormatEvent renders one event as a line of console output. The raw text
// is kept intact; only its color depends on what the line was classified as.
func FormatEvent(e models.TerraformEvent) string {
	switch {
	case e.SourceStream == models.Stderr:
		return paint(ColorWarning, e.Source)
	case e.Status == models.StatusCompleted:
		return FormatSummary(e)
	case len(e.Change) > 0:
		return paint(changeColor(e.Change), e.Source)
	}
	return e.Source
}

// FormatSummary renders a Completed event in bold.
func FormatSummary(e models.TerraformEvent) string {
	if plain {
		return e.Source
	}
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(GetHexColorByName("success")))
	return style.Render(e.Source)
}

// FormatCounts renders the counts of a Completed event, e.g.
// "+2 ~1 -0". Absent counts are left out.
func FormatCounts(e models.TerraformEvent) string {
	var parts []string
	add := func(sign string, n *uint32, color string) {
		if n != nil {
			parts = append(parts, paint(color, fmt.Sprintf("%s%d", sign, *n)))
		}
	}
	add("+", e.CreateCount, ColorSuccess)
	add("~", e.UpdateCount, ColorWarning)
	add("-", e.DeleteCount, ColorError)
	return strings.Join(parts, " ")
}

// Emphasize renders text bold in color, or unchanged when colors are off.
func Emphasize(color, text string) string {
	if plain {
		return text
	}
	return color + TextBold + text + ColorReset
}
