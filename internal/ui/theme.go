package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"grimpo/internal/garden"
)

// Grimpo theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconGarden  = "🪸"
	IconSparkle = "✨"
	IconCoin    = "🐚"
	IconDone    = "✅"
	IconUnlock  = "🔓"
	IconLock    = "🔒"
	IconBag     = "🎒"
	IconPin     = "📍"
	IconWave    = "🌊"
	IconTrash   = "🗑️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("39")  // sea blue
	cAccent  = lipgloss.Color("44")  // teal
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeUnlocked = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("NEW")
)

// namedColorCodes maps the garden's named colors onto ANSI 256 codes.
var namedColorCodes = map[string]string{
	"red":    "196",
	"orange": "208",
	"yellow": "226",
	"green":  "40",
	"teal":   "30",
	"cyan":   "51",
	"blue":   "33",
	"indigo": "54",
	"purple": "129",
	"pink":   "213",
	"white":  "255",
	"black":  "16",
	"gold":   "220",
	"coral":  "209",
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// LockText renders an unlocked/locked marker.
func LockText(unlocked bool) string {
	if unlocked {
		return Good.Render(IconUnlock + " unlocked")
	}
	return Bad.Render(IconLock + " locked")
}

// Swatch renders a small dot in the decoration's color, or a muted dot for the default.
func Swatch(c garden.Color) string {
	switch c.Kind() {
	case garden.ColorHex:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c.String())).Render("●")
	case garden.ColorNamed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(namedColorCodes[c.String()])).Render("●")
	default:
		return Muted.Render("·")
	}
}

// ColorName is the human label for a color.
func ColorName(c garden.Color) string {
	if c.IsDefault() {
		return "default"
	}
	return c.String()
}
