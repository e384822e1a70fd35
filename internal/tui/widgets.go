package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

// ========================================
// Brand Colors
// ========================================

var (
	ColorRed      = lipgloss.Color("#FF0033") // Primary/Active
	ColorBlue     = lipgloss.Color("#569FC6") // Secondary/Links
	ColorGray     = lipgloss.Color("#9A9EA0") // Inactive/Subtle
	ColorWhite    = lipgloss.Color("#FFFFFF") // Text
	ColorDarkGray = lipgloss.Color("#3A3A3A") // Background
	ColorOrange   = lipgloss.Color("#DDA036") // Warning/Busy
	ColorGreen    = lipgloss.Color("#4CAF50") // Success
)

// HeaderWidth is the standard width for the header
const HeaderWidth = 72

// ========================================
// Header State for dynamic updates
// ========================================

// HeaderState contains the dynamic state for the header
type HeaderState struct {
	ChannelName string
	Counts      map[models.ItemStatus]int
	Busy        bool
	SpinnerView string
}

// queueSummary renders the per-status counts in a fixed order, skipping zeroes
func queueSummary(counts map[models.ItemStatus]int) string {
	var parts []string
	total := 0
	for _, s := range models.AllStatuses() {
		n := counts[s]
		total += n
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if total == 0 {
		return "empty"
	}
	return strings.Join(parts, ", ")
}

// ========================================
// Header Rendering
// ========================================

func headerTitle(screenTitle string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorRed).
		Align(lipgloss.Center).
		Width(HeaderWidth)
	return titleStyle.Render("▶ YouTube Uploader - " + screenTitle)
}

func headerMotto() string {
	mottoStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(ColorGray).
		Align(lipgloss.Center).
		Width(HeaderWidth)
	return mottoStyle.Render("queue, describe, publish")
}

func headerDivider() string {
	return lipgloss.NewStyle().
		Foreground(ColorGray).
		Width(HeaderWidth).
		Render(strings.Repeat("─", HeaderWidth))
}

// RenderHeader renders the standard application header
// screenTitle should be the name of the current screen (e.g., "Queue", "Edit")
func RenderHeader(screenTitle string, state *HeaderState) string {
	if state == nil {
		return RenderSimpleHeader(screenTitle)
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(ColorWhite).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	channel := state.ChannelName
	channelColor := ColorGreen
	if channel == "" {
		channel = "not signed in"
		channelColor = ColorGray
	}
	channelStyled := lipgloss.NewStyle().
		Foreground(channelColor).
		Bold(true).
		Render(channel)

	activity := ""
	if state.Busy && state.SpinnerView != "" {
		activity = "  " + state.SpinnerView
	}

	statusLine := fmt.Sprintf("Channel: %s  |  Queue: %s%s",
		channelStyled,
		queueSummary(state.Counts),
		activity,
	)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		headerTitle(screenTitle),
		headerMotto(),
		headerDivider(),
		statusStyle.Render(statusLine),
		headerDivider(),
	)
}

// RenderSimpleHeader renders a header without the full status bar
func RenderSimpleHeader(screenTitle string) string {
	return lipgloss.JoinVertical(
		lipgloss.Center,
		headerTitle(screenTitle),
		headerMotto(),
		headerDivider(),
	)
}

// ========================================
// Footer Rendering
// ========================================

// RenderHelpFooter renders the standard help footer at the bottom of the screen
func RenderHelpFooter(helpText string, width int) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	footerStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center)

	return footerStyle.Render(helpStyle.Render(helpText))
}

// ========================================
// Layout Helpers
// ========================================

// LayoutWithHeaderFooter creates a standard layout with header at top and footer at bottom
func LayoutWithHeaderFooter(header, content, footer string, width, height int) string {
	mainSection := lipgloss.JoinVertical(
		lipgloss.Center,
		header,
		"",
		content,
	)

	// Leave room for the footer
	centeredMain := lipgloss.Place(
		width,
		height-2,
		lipgloss.Center,
		lipgloss.Top,
		mainSection,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		centeredMain,
		footer,
	)
}

// ========================================
// Status badges
// ========================================

// StatusColor returns the badge color for an item status
func StatusColor(s models.ItemStatus) lipgloss.Color {
	switch s {
	case models.StatusOptimizing, models.StatusUploading:
		return ColorOrange
	case models.StatusReady:
		return ColorBlue
	case models.StatusCompleted:
		return ColorGreen
	case models.StatusError:
		return ColorRed
	default:
		return ColorGray
	}
}

// RenderStatusBadge renders the human label for a status in its color
func RenderStatusBadge(s models.ItemStatus) string {
	return lipgloss.NewStyle().
		Foreground(StatusColor(s)).
		Bold(true).
		Render(s.Label())
}

// ========================================
// Common Styles
// ========================================

// Box style for content areas
var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorRed).
	Padding(1, 2)

// Title style for section headings
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// Subtitle style
var SubtitleStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// Label style for form labels
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// Value style for displaying values
var ValueStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// Active style for active/selected items
var ActiveStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// Inactive style for inactive items
var InactiveStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// Error style for error messages
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// Warning style for non-blocking issues
var WarningStyle = lipgloss.NewStyle().
	Foreground(ColorOrange)

// Success style for success messages
var SuccessStyle = lipgloss.NewStyle().
	Foreground(ColorGreen).
	Bold(true)
