package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var (
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlN = tea.KeyMsg{Type: tea.KeyCtrlN}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and flattens batches into their messages. Commands
// returned by Update are not run.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// only returns the messages of type T
func only[T any](msgs []tea.Msg) []T {
	var out []T
	for _, m := range msgs {
		if typed, ok := m.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// one returns the single message of type T
func one[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	found := only[T](msgs)
	require.Len(t, found, 1, "messages: %#v", msgs)
	return found[0]
}

// memoryPrefs is an in-memory Preferences
type memoryPrefs map[string]string

func (m memoryPrefs) String(key, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func (m memoryPrefs) Bool(key string, def bool) bool {
	switch m[key] {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}

func (m memoryPrefs) SetString(key, value string) { m[key] = value }

func (m memoryPrefs) SetBool(key string, value bool) {
	if value {
		m[key] = "true"
	} else {
		m[key] = "false"
	}
}
