package views

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tgienger/perplex/internal/api"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Navigation messages, handled by the app.

// SelectedProject opens a project's overview
type SelectedProject struct {
	Project models.Project
}

// OpenMeeting opens the topic list of a meeting
type OpenMeeting struct {
	Project models.Project
	Meeting models.Meeting
}

// BackToProjects signals to go back to project list
type BackToProjects struct{}

// BackToProject returns from a meeting to its project
type BackToProject struct {
	Project models.Project
}

// OpenProfile shows the signed-in user's profile
type OpenProfile struct{}

// CloseProfile leaves the profile
type CloseProfile struct{}

// SignOut ends the session and exits
type SignOut struct{}

// Toast is a transient status line message
type Toast struct {
	Text  string
	Error bool
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return Toast{Text: text} }
}

func errorToast(err error) tea.Cmd {
	return func() tea.Msg { return Toast{Text: "Error: " + api.Message(err), Error: true} }
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Every load is stamped with a process-wide generation; a view applies a
// result only if it is still the latest load that view started.
var generation atomic.Uint64

func nextGeneration() uint64 {
	return generation.Add(1)
}

type loadState int

const (
	loading loadState = iota
	loadFailed
	loaded
)

// renderError wraps "Error: <message>" to width
func renderError(s *styles.Styles, err error, width int) string {
	return s.Error.Render(wordwrap.String("Error: "+api.Message(err), max(width, 10)))
}

// fit truncates a single line to width cells with an ellipsis
func fit(text string, width int) string {
	if width < 1 {
		return ""
	}
	return truncate.StringWithTail(text, uint(width), "…")
}
