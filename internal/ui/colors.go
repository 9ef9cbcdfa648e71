// Package ui provides user interface components and utilities.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"tfevents/internal/config"
)

// Color constants for terminal output.
const (
	ColorReset = "\033[0m"
	TextBold   = "\033[1m"
)

var (
	// Default colors - will be overridden from config
	ColorError   = "\033[1;31m"
	ColorSuccess = "\033[32m"
	ColorWarning = "\033[33m"
	ColorInfo    = "\033[36m"

	// Additional stored colors
	ColorHighlight = "\033[38;2;130;57;243m"  // Purple for highlights (#8239F3)
	ColorFaint     = "\033[38;2;119;119;119m" // Gray for less important text (#777)

	// Store the loaded config
	appConfig *config.Config

	// Set by DisableColors; render helpers then skip bold and reset codes too
	plain bool
)

// builtinColors are the lipgloss colors used before InitColors runs.
var builtinColors = config.ColorConfig{
	Highlight: "#8239F3", // Purple for highlights
	Faint:     "#777777", // Gray for less important text
	Info:      "#36c",    // Cyan/Blue
	Success:   "#2a2",    // Green
	Warning:   "#fa0",    // Yellow/Orange
	Error:     "#f33",    // Red
}

// InitColors initializes the colors from the provided configuration.
func InitColors(cfg *config.Config) {
	appConfig = cfg

	// Update the color variables based on the configuration
	ColorError = parseColorToAnsi(cfg.Colors.Error)
	ColorSuccess = parseColorToAnsi(cfg.Colors.Success)
	ColorWarning = parseColorToAnsi(cfg.Colors.Warning)
	ColorInfo = parseColorToAnsi(cfg.Colors.Info)
	ColorHighlight = parseColorToAnsi(cfg.Colors.Highlight)
	ColorFaint = parseColorToAnsi(cfg.Colors.Faint)
}

// DisableColors turns every color into the empty string, for output that is
// not a terminal: JSON lines, pipes and CI logs.
func DisableColors() {
	plain = true
	ColorError, ColorSuccess, ColorWarning, ColorInfo = "", "", "", ""
	ColorHighlight, ColorFaint = "", ""
}

// parseColorToAnsi converts a hex color string to an ANSI color code.
func parseColorToAnsi(hexColor string) string {
	// Strip the leading # if present
	hexColor = strings.TrimPrefix(hexColor, "#")

	// Handle simple 3-character hex colors
	if len(hexColor) == 3 {
		hexColor = strings.Repeat(hexColor[0:1], 2) +
			strings.Repeat(hexColor[1:2], 2) +
			strings.Repeat(hexColor[2:3], 2)
	}

	// Parse the hex values
	rgb, err := strconv.ParseUint(hexColor, 16, 32)
	if len(hexColor) != 6 || err != nil {
		// Fall back to default if invalid
		return "\033[37m" // White as fallback
	}

	// Return the 24-bit color ANSI escape sequence
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", rgb>>16, (rgb>>8)&0xff, rgb&0xff)
}

// GetHexColorByName returns the hex color string for use with lipgloss.
// Before InitColors has run the built-in palette is used.
func GetHexColorByName(name string) string {
	colors := builtinColors
	if appConfig != nil {
		colors = appConfig.Colors
	}

	switch strings.ToLower(name) {
	case "info":
		return colors.Info
	case "success":
		return colors.Success
	case "warning":
		return colors.Warning
	case "error":
		return colors.Error
	case "highlight":
		return colors.Highlight
	case "faint":
		return colors.Faint
	default:
		return "" // No color
	}
}

// GetSpinnerType returns the configured spinner type or the default.
func GetSpinnerType() string {
	if appConfig == nil || appConfig.UI.SpinnerType == "" {
		return "MiniDot"
	}
	return appConfig.UI.SpinnerType
}
