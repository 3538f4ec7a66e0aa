package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tgienger/perplex/internal/models"
)

func TestProgressOf(t *testing.T) {
	list := []models.Topic{topic(1, true), topic(2, false), topic(3, true)}

	p := ProgressOf(list)

	assert.Equal(t, 2, p.Done)
	assert.Equal(t, 3, p.Total)
	assert.InDelta(t, 2.0/3.0, p.Ratio(), 1e-9)
}

func TestProgressEmpty(t *testing.T) {
	p := ProgressOf(nil)
	assert.Equal(t, Progress{}, p)
	assert.Equal(t, 0.0, p.Ratio())
}

func TestProgressAllDone(t *testing.T) {
	p := ProgressOf([]models.Topic{topic(1, true), topic(2, true)})
	assert.Equal(t, 1.0, p.Ratio())
}
