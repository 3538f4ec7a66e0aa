package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeByName(t *testing.T) {
	theme, err := ThemeByName("Perplex")
	require.NoError(t, err)
	assert.Equal(t, Perplex.Name, theme.Name)

	theme, err = ThemeByName("tokyo-night")
	require.NoError(t, err)
	assert.Equal(t, TokyoNight.Name, theme.Name)

	_, err = ThemeByName("solarized")
	assert.Error(t, err)
}

func TestProgressBar(t *testing.T) {
	s := NewStyles()
	bar := s.ProgressBar(2.0/3.0, 9)
	assert.Equal(t, 6, strings.Count(bar, "█"))
	assert.Equal(t, 3, strings.Count(bar, "░"))

	assert.Equal(t, 10, strings.Count(s.ProgressBar(0, 10), "░"))
	assert.Equal(t, 10, strings.Count(s.ProgressBar(1.5, 10), "█"))
	assert.Empty(t, s.ProgressBar(0.5, 0))
}

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 40, ContentWidth(40))
	assert.Equal(t, MaxWidth, ContentWidth(200))
}
