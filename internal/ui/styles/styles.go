// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"}

	BorderDefaultColor        = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderHighlightFocusColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Trigger and action accents (indigo and purple)
	TriggerAccentColor = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}
	ActionAccentColor  = lipgloss.AdaptiveColor{Light: "#7E22CE", Dark: "#C084FC"}
	ArrowColor         = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#6366F1"}

	ChipBgColor    = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
	ChipTextColor  = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}
	ChipMutedColor = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}

	// Diff
	DiffAddedColor   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	DiffRemovedColor = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TriggerAccentColor)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(TextDescriptionColor)

	HintStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(StatusSuccessColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#4F46E5"))

	DisabledButtonStyle = baseButtonStyle.
				Foreground(lipgloss.Color("#9CA3AF")).
				Background(lipgloss.Color("#2D2D2D"))
)

// ApplyMarkdownStyle records the glamour style used for rendered help.
// Valid values are "dark" and "light"; anything else keeps the default.
func ApplyMarkdownStyle(style string) {
	if style == "dark" || style == "light" {
		MarkdownStyle = style
	}
}

// MarkdownStyle is the glamour standard style name for rendered markdown.
var MarkdownStyle = "dark"
