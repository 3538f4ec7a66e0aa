// Package markdown renders project, meeting and topic descriptions for the
// terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown for a column of the given width. Empty input
// renders as "". If the renderer fails, the input is returned unchanged.
func Render(input string, width int) (out string) {
	value := strings.TrimRight(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if width < 1 {
		width = 1
	}

	defer func() {
		if recover() != nil {
			out = value
		}
	}()

	r := markdownRenderer(width)
	if r == nil {
		return value
	}
	formatted, err := r.Render(value)
	if err != nil {
		return value
	}
	formatted = strings.Trim(formatted, "\n")
	if strings.TrimSpace(formatted) == "" {
		return value
	}
	return formatted
}

// RenderOr renders input, or returns placeholder when input is blank.
func RenderOr(input, placeholder string, width int) string {
	if strings.TrimSpace(input) == "" {
		return placeholder
	}
	return Render(input, width)
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.DarkStyleConfig
	zero := uint(0)
	style.Document.Margin = &zero
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}
