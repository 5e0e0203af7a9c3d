package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan, primary accent
	colorAccent      = lipgloss.Color("#FFD700") // Gold, attention/prompt
	colorSuccess     = lipgloss.Color("#00E676") // Green, ready
	colorDanger      = lipgloss.Color("#FF5252") // Red, invalid input
	colorMuted       = lipgloss.Color("#636363") // Gray, not reached
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray, reasons
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white, emphatic text
)

// Stage icons.
const (
	iconReady   = "✓"
	iconError   = "✗"
	iconPending = "◎"
	iconWaiting = "·"
)

// Checklist row styles.
var (
	styleStageReady = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleStageError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleStagePending = lipgloss.NewStyle().
				Foreground(colorAccent)

	styleStageWaiting = lipgloss.NewStyle().
				Foreground(colorMuted)

	styleStageReason = lipgloss.NewStyle().
				Foreground(colorMutedLight).
				PaddingLeft(4)

	styleChecklistTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
)

// Confirm prompt styles.
var (
	styleConfirmOverlay = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(colorAccent).
				Padding(1, 2)

	styleConfirmTitle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	styleConfirmSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Background(colorAccent).
				Bold(true).
				Padding(0, 1)

	styleConfirmNormal = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)

	styleConfirmHelp = lipgloss.NewStyle().
				Foreground(colorMutedLight)
)
