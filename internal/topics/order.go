// Package topics derives per-render state of a meeting's topic list:
// open/closed partitions, completion progress, and the neighbor IDs the
// reorder endpoint needs. Everything here is a pure function of a snapshot.
package topics

import "github.com/tgienger/perplex/internal/models"

// NoNeighbor is sent in place of a neighbor ID when there is none on that
// side; the server moves the topic to that boundary.
const NoNeighbor int64 = -1

// Open returns the topics that are not closed, in order.
func Open(list []models.Topic) []models.Topic {
	return Filter(list, func(t models.Topic) bool { return !t.Closed() })
}

// Closed returns the closed topics, in order.
func Closed(list []models.Topic) []models.Topic {
	return Filter(list, models.Topic.Closed)
}

// Filter returns the topics for which keep is true, preserving order.
func Filter(list []models.Topic, keep func(models.Topic) bool) []models.Topic {
	out := make([]models.Topic, 0, len(list))
	for _, t := range list {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Neighbors are the IDs around one topic in a filtered sequence. A zero ID
// means there is no topic at that offset.
type Neighbors struct {
	AfterAfter   int64 // index-2
	After        int64 // index-1
	Before       int64 // index+1
	BeforeBefore int64 // index+2
}

// NeighborsAt returns the neighbors of seq[i]. seq must already be the
// visible, filtered sequence: adjacency never looks past the filter.
func NeighborsAt(seq []models.Topic, i int) Neighbors {
	at := func(j int) int64 {
		if j < 0 || j >= len(seq) {
			return 0
		}
		return seq[j].ID
	}
	return Neighbors{
		AfterAfter:   at(i - 2),
		After:        at(i - 1),
		Before:       at(i + 1),
		BeforeBefore: at(i + 2),
	}
}

// CanMoveUp is false only when neither of the two predecessors exists.
func (n Neighbors) CanMoveUp() bool {
	return n.After != 0 || n.AfterAfter != 0
}

// CanMoveDown is false only when neither of the two successors exists.
func (n Neighbors) CanMoveDown() bool {
	return n.Before != 0 || n.BeforeBefore != 0
}

// ReorderRequest is the body of a topic order update.
type ReorderRequest struct {
	TopicID int64
	Before  int64
	After   int64
}

// MoveUp places the topic between its two predecessors.
func (n Neighbors) MoveUp(topicID int64) ReorderRequest {
	return ReorderRequest{
		TopicID: topicID,
		Before:  orSentinel(n.After),
		After:   orSentinel(n.AfterAfter),
	}
}

// MoveDown places the topic between its two successors.
func (n Neighbors) MoveDown(topicID int64) ReorderRequest {
	return ReorderRequest{
		TopicID: topicID,
		Before:  orSentinel(n.BeforeBefore),
		After:   orSentinel(n.Before),
	}
}

func orSentinel(id int64) int64 {
	if id == 0 {
		return NoNeighbor
	}
	return id
}
