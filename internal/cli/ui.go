package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette, ANSI 256 codes.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Shared styles for commands and the explorer.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// status is the leading glyph of a one-line message.
type status struct {
	icon  string
	style lipgloss.Style
	body  *lipgloss.Style
}

var (
	statusSuccess = status{icon: "✓", style: lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{icon: "✗", style: lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{icon: "!", style: StyleWarning, body: &StyleWarning}
	statusInfo    = status{icon: "›", style: lipgloss.NewStyle().Foreground(colorGray)}
)

func (s status) line(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if s.body != nil {
		msg = s.body.Render(msg)
	}
	return s.style.Render(s.icon) + " " + msg
}

func printSuccess(format string, args ...any) { fmt.Println(statusSuccess.line(format, args...)) }
func printError(format string, args ...any)   { fmt.Println(statusError.line(format, args...)) }
func printWarning(format string, args ...any) { fmt.Println(statusWarning.line(format, args...)) }
func printInfo(format string, args ...any)    { fmt.Println(statusInfo.line(format, args...)) }

// printDetail prints an indented dim line under a status message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

// statsLine summarizes a render: datasets read, marks drawn and whether
// the artifacts came from the cache.
func statsLine(resources, marks int, cached bool) string {
	origin := lipgloss.NewStyle().Foreground(colorGray).Render("rendered")
	if cached {
		origin = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	sep := StyleDim.Render(" · ")
	return "  " + strings.Join([]string{
		StyleDim.Render(plural(resources, "dataset")),
		StyleDim.Render(plural(marks, "mark")),
		origin,
	}, sep)
}

func printStats(resources, marks int, cached bool) {
	fmt.Println(statsLine(resources, marks, cached))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
