package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tgienger/perplex/internal/models"
)

func topic(id int64, closed bool) models.Topic {
	return models.Topic{ID: id, ClosedAt: models.NullTime{Valid: closed}}
}

func seq(ids ...int64) []models.Topic {
	out := make([]models.Topic, len(ids))
	for i, id := range ids {
		out[i] = topic(id, false)
	}
	return out
}

func TestNeighborsAt(t *testing.T) {
	list := seq(10, 11, 12, 13, 14)

	tests := []struct {
		name  string
		index int
		want  Neighbors
	}{
		{name: "first", index: 0, want: Neighbors{Before: 11, BeforeBefore: 12}},
		{name: "second", index: 1, want: Neighbors{After: 10, Before: 12, BeforeBefore: 13}},
		{name: "middle", index: 2, want: Neighbors{AfterAfter: 10, After: 11, Before: 13, BeforeBefore: 14}},
		{name: "penultimate", index: 3, want: Neighbors{AfterAfter: 11, After: 12, Before: 14}},
		{name: "last", index: 4, want: Neighbors{AfterAfter: 12, After: 13}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NeighborsAt(list, tc.index))
		})
	}
}

func TestMoveRequests(t *testing.T) {
	list := seq(10, 11, 12, 13, 14)

	n := NeighborsAt(list, 2)
	assert.Equal(t, ReorderRequest{TopicID: 12, Before: 11, After: 10}, n.MoveUp(12))
	assert.Equal(t, ReorderRequest{TopicID: 12, Before: 14, After: 13}, n.MoveDown(12))

	first := NeighborsAt(list, 0)
	assert.False(t, first.CanMoveUp())
	assert.True(t, first.CanMoveDown())
	assert.Equal(t, ReorderRequest{TopicID: 10, Before: NoNeighbor, After: NoNeighbor}, first.MoveUp(10))

	second := NeighborsAt(list, 1)
	assert.True(t, second.CanMoveUp())
	assert.Equal(t, ReorderRequest{TopicID: 11, Before: 10, After: NoNeighbor}, second.MoveUp(11))

	last := NeighborsAt(list, 4)
	assert.True(t, last.CanMoveUp())
	assert.False(t, last.CanMoveDown())
	assert.Equal(t, ReorderRequest{TopicID: 14, Before: NoNeighbor, After: NoNeighbor}, last.MoveDown(14))

	penultimate := NeighborsAt(list, 3)
	assert.Equal(t, ReorderRequest{TopicID: 13, Before: NoNeighbor, After: 14}, penultimate.MoveDown(13))
}

func TestSingleTopicCannotMove(t *testing.T) {
	n := NeighborsAt(seq(5), 0)
	assert.False(t, n.CanMoveUp())
	assert.False(t, n.CanMoveDown())
}

// For every length and index the sentinel appears exactly when the offset
// falls outside the sequence.
func TestNeighborSentinelProperty(t *testing.T) {
	for n := 1; n <= 7; n++ {
		ids := make([]int64, n)
		for i := range ids {
			ids[i] = int64(100 + i)
		}
		list := seq(ids...)

		for i := 0; i < n; i++ {
			nb := NeighborsAt(list, i)
			up := nb.MoveUp(ids[i])
			down := nb.MoveDown(ids[i])

			expect := func(offset int) int64 {
				j := i + offset
				if j < 0 || j >= n {
					return NoNeighbor
				}
				return ids[j]
			}

			assert.Equal(t, expect(-1), up.Before, "n=%d i=%d up.before", n, i)
			assert.Equal(t, expect(-2), up.After, "n=%d i=%d up.after", n, i)
			assert.Equal(t, expect(+2), down.Before, "n=%d i=%d down.before", n, i)
			assert.Equal(t, expect(+1), down.After, "n=%d i=%d down.after", n, i)

			assert.Equal(t, i > 0, nb.CanMoveUp(), "n=%d i=%d can move up", n, i)
			assert.Equal(t, i < n-1, nb.CanMoveDown(), "n=%d i=%d can move down", n, i)
		}
	}
}

func TestNeighborsAreFilterScoped(t *testing.T) {
	// Open topics are 1, 3 and 5; closed ones sit between them.
	list := []models.Topic{
		topic(1, false),
		topic(2, true),
		topic(3, false),
		topic(4, true),
		topic(5, false),
	}

	open := Open(list)
	closed := Closed(list)

	assert.Equal(t, []int64{1, 3, 5}, ids(open))
	assert.Equal(t, []int64{2, 4}, ids(closed))

	n := NeighborsAt(open, 1)
	assert.Equal(t, Neighbors{After: 1, Before: 5}, n)

	c := NeighborsAt(closed, 0)
	assert.Equal(t, Neighbors{Before: 4}, c)
	assert.False(t, c.CanMoveUp())
}

func ids(list []models.Topic) []int64 {
	out := make([]int64, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}
