package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicDecodesClosedAt(t *testing.T) {
	payload := `{
		"ID": 7,
		"meeting_id": 3,
		"title": "Budget",
		"closed_at": {"Time": "2024-03-01T10:00:00Z", "Valid": true},
		"assigned_users": [{"id": "u1", "name": "Willma"}],
		"tags": [{"ID": 1, "title": "urgent", "color": "#ff0000"}]
	}`

	var topic Topic
	require.NoError(t, json.Unmarshal([]byte(payload), &topic))

	assert.Equal(t, int64(7), topic.ID)
	assert.True(t, topic.Closed())
	assert.True(t, topic.AssignedTo("u1"))
	assert.False(t, topic.AssignedTo("u2"))
	assert.Equal(t, "urgent", topic.Tags[0].Title)
}

func TestTopicOpenWhenClosedAtInvalid(t *testing.T) {
	var topic Topic
	require.NoError(t, json.Unmarshal([]byte(`{"ID": 1, "closed_at": {"Time": "0001-01-01T00:00:00Z", "Valid": false}}`), &topic))
	assert.False(t, topic.Closed())
}

func TestMeetingUpcoming(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, Meeting{StartDate: now.Add(time.Hour)}.Upcoming(now))
	assert.False(t, Meeting{StartDate: now.Add(-time.Hour)}.Upcoming(now))
}

func TestUserRegistered(t *testing.T) {
	assert.False(t, User{ID: "abc"}.Registered())
	assert.True(t, User{ID: "abc", Name: "Willma"}.Registered())
}

func TestResponseEnvelope(t *testing.T) {
	var resp Response[[]Project]
	require.NoError(t, json.Unmarshal([]byte(`{"success": true, "data": [{"ID": 1, "name": "Perplex", "owner_id": "u1"}]}`), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Perplex", resp.Data[0].Name)
	assert.Equal(t, "u1", resp.Data[0].OwnerID)
}

func TestCommentAuthorName(t *testing.T) {
	assert.Equal(t, "Ann", Comment{AuthorID: "u1", Author: User{ID: "u1", Name: "Ann"}}.AuthorName())
	assert.Equal(t, "u2", Comment{AuthorID: "u2"}.AuthorName())
}

func TestActionOverdue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	due := NullTime{Time: now.Add(-time.Hour), Valid: true}

	assert.True(t, Action{DueDate: due}.Overdue(now))
	assert.False(t, Action{DueDate: due, ClosedAt: NullTime{Time: now, Valid: true}}.Overdue(now))
	assert.False(t, Action{}.Overdue(now), "no due date")
	assert.False(t, Action{DueDate: NullTime{Time: now.Add(time.Hour), Valid: true}}.Overdue(now))
}
