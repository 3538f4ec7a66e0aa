package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/perplex/internal/api"
	"github.com/tgienger/perplex/internal/logging"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/query"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/session/sessiontest"
	"github.com/tgienger/perplex/internal/topics"
)

func TestTopicsMutationInvalidatesOnlyItsMeeting(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	fake.Topics[[2]int64{1, 10}] = []models.Topic{{ID: 1}, {ID: 2}}
	fake.Topics[[2]int64{1, 11}] = []models.Topic{{ID: 3}}
	s := sessiontest.NewSession(fake, "me")

	_, err := s.Topics.List(ctx, 1, 10)
	require.NoError(t, err)
	_, err = s.Topics.List(ctx, 1, 11)
	require.NoError(t, err)
	_, err = s.Meetings.List(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, s.Topics.Reorder(ctx, 1, 10, topics.ReorderRequest{TopicID: 2, Before: 1, After: topics.NoNeighbor}))

	_, err = s.Topics.List(ctx, 1, 10)
	require.NoError(t, err)
	_, err = s.Topics.List(ctx, 1, 11)
	require.NoError(t, err)
	_, err = s.Meetings.List(ctx, 1)
	require.NoError(t, err)

	var meeting10, meeting11 int
	for _, c := range fake.Calls("ListTopics") {
		switch c.Args[1] {
		case int64(10):
			meeting10++
		case int64(11):
			meeting11++
		}
	}
	assert.Equal(t, 2, meeting10, "reordered meeting is refetched")
	assert.Equal(t, 1, meeting11, "sibling meeting stays cached")
	assert.Len(t, fake.Calls("ListMeetings"), 1)

	reorder := fake.Calls("ReorderTopic")
	require.Len(t, reorder, 1)
	assert.Equal(t, []any{int64(1), int64(10), int64(2), int64(1), int64(-1)}, reorder[0].Args)
}

func TestTopicsCreateAndStatusInvalidate(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	s := sessiontest.NewSession(fake, "me")

	list, err := s.Topics.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := s.Topics.Create(ctx, 1, 10, "Budget", "")
	require.NoError(t, err)

	list, err = s.Topics.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Closed())

	require.NoError(t, s.Topics.SetStatus(ctx, 1, 10, created.ID, true))
	list, err = s.Topics.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, list[0].Closed())
	assert.Len(t, fake.Calls("ListTopics"), 3)
}

func TestFailedMutationKeepsCache(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	s := sessiontest.NewSession(fake, "me")

	_, err := s.Projects.List(ctx)
	require.NoError(t, err)

	fake.SetError("CreateProject", &api.Error{Status: 400, Message: "name required"})
	_, err = s.Projects.Create(ctx, "", "")
	require.Error(t, err)
	assert.Equal(t, "name required", api.Message(err))

	_, err = s.Projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fake.Calls("ListProjects"), 1)
}

func TestEditProjectInvalidatesListAndDetail(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	fake.Projects = []models.Project{{ID: 1, Name: "Old"}}
	s := sessiontest.NewSession(fake, "me")

	p, err := s.Projects.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Old", p.Name)
	_, err = s.Projects.List(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Projects.Edit(ctx, 1, "New", "desc"))

	p, err = s.Projects.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
	list, err := s.Projects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", list[0].Name)
}

func TestCloseCancelsAndClears(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	cache := query.NewCache(query.RetryPolicy{}, logging.Discard())
	s := session.New(ctx, fake, cache, "me", logging.Discard())

	_, err := s.Projects.List(ctx)
	require.NoError(t, err)
	require.True(t, cache.Has(session.ProjectsKey()))

	s.Close()
	s.Close()

	assert.True(t, s.Closed())
	assert.False(t, cache.Has(session.ProjectsKey()))
	select {
	case <-s.Context().Done():
	default:
		t.Fatal("session context not cancelled")
	}
}

func TestResolveNotFoundIsNotRetried(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	cache := query.NewCache(query.RetryPolicy{Retries: 3, Delay: time.Millisecond}, logging.Discard())
	s := session.New(ctx, fake, cache, "me", logging.Discard())

	_, err := s.Users.Resolve(ctx, "me")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Len(t, fake.Calls("ResolveUser"), 1)

	fake.SetError("ResolveUser", errors.New("connection refused"))
	_, err = s.Users.Resolve(ctx, "me")
	require.Error(t, err)
	assert.Len(t, fake.Calls("ResolveUser"), 1+4, "first attempt plus three retries")
}

func TestChangeNameRefreshesResolve(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	fake.Names["me"] = "Ann"
	s := sessiontest.NewSession(fake, "me")

	name, err := s.Users.Resolve(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	_, err = s.Users.ChangeName(ctx, "Bea")
	require.NoError(t, err)

	name, err = s.Users.Resolve(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, "Bea", name)
}

func TestRefreshSeesBackendChanges(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	fake.Topics[[2]int64{1, 10}] = []models.Topic{{ID: 1}}
	s := sessiontest.NewSession(fake, "me")

	first, err := s.Topics.Refresh(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// another client adds a topic
	fake.Topics[[2]int64{1, 10}] = append(fake.Topics[[2]int64{1, 10}], models.Topic{ID: 9})

	cached, err := s.Topics.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	fresh, err := s.Topics.Refresh(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Len(t, fake.Calls("ListTopics"), 2)
}

func TestCommentCreateInvalidatesConversation(t *testing.T) {
	ctx := context.Background()
	fake := sessiontest.NewFake()
	fake.Names["me"] = "Ann"
	s := sessiontest.NewSession(fake, "me")

	_, err := s.Comments.Refresh(ctx, 4)
	require.NoError(t, err)
	_, err = s.Tags.List(ctx, 4)
	require.NoError(t, err)

	comment, err := s.Comments.Create(ctx, 4, "Agreed")
	require.NoError(t, err)
	assert.Equal(t, "Ann", comment.AuthorName())

	_, err = s.Tags.List(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, fake.Calls("ListTags"), 1, "tags stay cached")
	assert.Equal(t, []any{int64(4), "Agreed"}, fake.Calls("CreateComment")[0].Args)
}
