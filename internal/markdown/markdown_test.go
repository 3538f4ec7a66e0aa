package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type panicRenderer struct{}

func (panicRenderer) Render(string) (string, error) {
	panic("boom")
}

func TestRender_RecoversFromRendererPanic(t *testing.T) {
	const width = 23

	rendererMu.Lock()
	prev, hadPrev := renderers[width]
	renderers[width] = panicRenderer{}
	rendererMu.Unlock()

	defer func() {
		rendererMu.Lock()
		if hadPrev {
			renderers[width] = prev
		} else {
			delete(renderers, width)
		}
		rendererMu.Unlock()
	}()

	assert.Equal(t, "hello", Render("hello\n", width))
}

func TestRender_Blank(t *testing.T) {
	assert.Equal(t, "", Render("  \n\n", 40))
	assert.Equal(t, "(no description)", RenderOr("", "(no description)", 40))
}

func TestRender_KeepsText(t *testing.T) {
	out := Render("# Agenda\n\n- budget\n- hiring", 40)
	assert.Contains(t, out, "Agenda")
	assert.Contains(t, out, "budget")
	assert.Contains(t, out, "hiring")
}
