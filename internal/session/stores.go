package session

import (
	"context"
	"time"

	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/query"
	"github.com/tgienger/perplex/internal/topics"
)

// Cache keys. Each mutation invalidates exactly the keys of the collections
// it changes.

func ProjectsKey() query.Key { return query.NewKey("projects") }

func ProjectKey(projectID int64) query.Key { return query.NewKey("project", projectID) }

func MeetingsKey(projectID int64) query.Key { return query.NewKey("meetings", projectID) }

func TopicsKey(projectID, meetingID int64) query.Key {
	return query.NewKey("topics", projectID, meetingID)
}

func TagsKey(projectID int64) query.Key { return query.NewKey("tags", projectID) }

func UserKey(userID string) query.Key { return query.NewKey("user", userID) }

func CommentsKey(projectID int64) query.Key { return query.NewKey("comments", projectID) }

func ActionsKey(projectID int64) query.Key { return query.NewKey("actions", projectID) }

// Projects reads and mutates projects.
type Projects struct{ s *Session }

// List returns the projects visible to the user.
func (p *Projects) List(ctx context.Context) ([]models.Project, error) {
	return query.Fetch(ctx, p.s.cache, ProjectsKey(), p.s.backend.ListProjects)
}

// Refresh reloads the project list from the server.
func (p *Projects) Refresh(ctx context.Context) ([]models.Project, error) {
	return query.Refetch(ctx, p.s.cache, ProjectsKey(), p.s.backend.ListProjects)
}

// Find returns one project.
func (p *Projects) Find(ctx context.Context, projectID int64) (models.Project, error) {
	return query.Fetch(ctx, p.s.cache, ProjectKey(projectID), p.find(projectID))
}

// Reload fetches one project from the server.
func (p *Projects) Reload(ctx context.Context, projectID int64) (models.Project, error) {
	return query.Refetch(ctx, p.s.cache, ProjectKey(projectID), p.find(projectID))
}

func (p *Projects) find(projectID int64) func(context.Context) (models.Project, error) {
	return func(ctx context.Context) (models.Project, error) {
		project, err := p.s.backend.FindProject(ctx, projectID)
		if err != nil {
			return models.Project{}, err
		}
		return *project, nil
	}
}

// Create adds a project owned by the user.
func (p *Projects) Create(ctx context.Context, name, description string) (*models.Project, error) {
	project, err := p.s.backend.CreateProject(ctx, name, description)
	if err != nil {
		return nil, err
	}
	p.s.invalidate(ProjectsKey())
	p.s.logger.Info("project created", "project", project.ID)
	return project, nil
}

// Edit changes a project's name and description.
func (p *Projects) Edit(ctx context.Context, projectID int64, name, description string) error {
	if err := p.s.backend.EditProject(ctx, projectID, name, description); err != nil {
		return err
	}
	p.s.invalidate(ProjectsKey(), ProjectKey(projectID))
	p.s.logger.Info("project edited", "project", projectID)
	return nil
}

// Meetings reads and mutates meetings of a project.
type Meetings struct{ s *Session }

// List returns the meetings of a project.
func (m *Meetings) List(ctx context.Context, projectID int64) ([]models.Meeting, error) {
	return query.Fetch(ctx, m.s.cache, MeetingsKey(projectID), m.list(projectID))
}

// Refresh reloads the meetings of a project from the server.
func (m *Meetings) Refresh(ctx context.Context, projectID int64) ([]models.Meeting, error) {
	return query.Refetch(ctx, m.s.cache, MeetingsKey(projectID), m.list(projectID))
}

func (m *Meetings) list(projectID int64) func(context.Context) ([]models.Meeting, error) {
	return func(ctx context.Context) ([]models.Meeting, error) {
		return m.s.backend.ListMeetings(ctx, projectID)
	}
}

// Create schedules a meeting.
func (m *Meetings) Create(ctx context.Context, projectID int64, name, description string, start time.Time) (*models.Meeting, error) {
	meeting, err := m.s.backend.CreateMeeting(ctx, projectID, name, description, start)
	if err != nil {
		return nil, err
	}
	m.s.invalidate(MeetingsKey(projectID))
	m.s.logger.Info("meeting created", "project", projectID, "meeting", meeting.ID)
	return meeting, nil
}

// Topics reads and mutates the topics of a meeting.
type Topics struct{ s *Session }

// List returns the topics of a meeting in their stored order.
func (t *Topics) List(ctx context.Context, projectID, meetingID int64) ([]models.Topic, error) {
	return query.Fetch(ctx, t.s.cache, TopicsKey(projectID, meetingID), t.list(projectID, meetingID))
}

// Refresh reloads the topics of a meeting from the server.
func (t *Topics) Refresh(ctx context.Context, projectID, meetingID int64) ([]models.Topic, error) {
	return query.Refetch(ctx, t.s.cache, TopicsKey(projectID, meetingID), t.list(projectID, meetingID))
}

func (t *Topics) list(projectID, meetingID int64) func(context.Context) ([]models.Topic, error) {
	return func(ctx context.Context) ([]models.Topic, error) {
		return t.s.backend.ListTopics(ctx, projectID, meetingID)
	}
}

// Create adds a topic to a meeting.
func (t *Topics) Create(ctx context.Context, projectID, meetingID int64, title, description string) (*models.Topic, error) {
	topic, err := t.s.backend.CreateTopic(ctx, projectID, meetingID, title, description)
	if err != nil {
		return nil, err
	}
	t.s.invalidate(TopicsKey(projectID, meetingID))
	t.s.logger.Info("topic created", "project", projectID, "meeting", meetingID, "topic", topic.ID)
	return topic, nil
}

// SetStatus closes or reopens a topic.
func (t *Topics) SetStatus(ctx context.Context, projectID, meetingID, topicID int64, closed bool) error {
	if err := t.s.backend.SetTopicStatus(ctx, projectID, meetingID, topicID, closed); err != nil {
		return err
	}
	t.s.invalidate(TopicsKey(projectID, meetingID))
	return nil
}

// Reorder submits a move computed by topics.Neighbors.
func (t *Topics) Reorder(ctx context.Context, projectID, meetingID int64, req topics.ReorderRequest) error {
	if err := t.s.backend.ReorderTopic(ctx, projectID, meetingID, req.TopicID, req.Before, req.After); err != nil {
		return err
	}
	t.s.invalidate(TopicsKey(projectID, meetingID))
	t.s.logger.Debug("topic reordered", "topic", req.TopicID, "before", req.Before, "after", req.After)
	return nil
}

// Tags reads the tags of a project.
type Tags struct{ s *Session }

// List returns the tags of a project.
func (t *Tags) List(ctx context.Context, projectID int64) ([]models.Tag, error) {
	return query.Fetch(ctx, t.s.cache, TagsKey(projectID), t.list(projectID))
}

// Refresh reloads the tags of a project from the server.
func (t *Tags) Refresh(ctx context.Context, projectID int64) ([]models.Tag, error) {
	return query.Refetch(ctx, t.s.cache, TagsKey(projectID), t.list(projectID))
}

func (t *Tags) list(projectID int64) func(context.Context) ([]models.Tag, error) {
	return func(ctx context.Context) ([]models.Tag, error) {
		return t.s.backend.ListTags(ctx, projectID)
	}
}

// Comments reads and writes a project's conversation.
type Comments struct{ s *Session }

// Refresh loads a project's comments, oldest first.
func (c *Comments) Refresh(ctx context.Context, projectID int64) ([]models.Comment, error) {
	return query.Refetch(ctx, c.s.cache, CommentsKey(projectID), func(ctx context.Context) ([]models.Comment, error) {
		return c.s.backend.ListComments(ctx, projectID)
	})
}

// Create posts a comment to a project's conversation.
func (c *Comments) Create(ctx context.Context, projectID int64, content string) (*models.Comment, error) {
	comment, err := c.s.backend.CreateComment(ctx, projectID, content)
	if err != nil {
		return nil, err
	}
	c.s.invalidate(CommentsKey(projectID))
	c.s.logger.Info("comment created", "project", projectID, "comment", comment.ID)
	return comment, nil
}

// Actions reads the follow-up actions of a project.
type Actions struct{ s *Session }

// Refresh loads the actions of a project.
func (a *Actions) Refresh(ctx context.Context, projectID int64) ([]models.Action, error) {
	return query.Refetch(ctx, a.s.cache, ActionsKey(projectID), func(ctx context.Context) ([]models.Action, error) {
		return a.s.backend.ListActions(ctx, projectID)
	})
}

// Users resolves display names and renames the signed-in user.
type Users struct{ s *Session }

// Resolve returns the display name of userID. Unregistered users yield a
// not-found error, which is never retried.
func (u *Users) Resolve(ctx context.Context, userID string) (string, error) {
	return query.Fetch(ctx, u.s.cache, UserKey(userID), u.resolve(userID))
}

// Refresh resolves userID again, skipping any cached name.
func (u *Users) Refresh(ctx context.Context, userID string) (string, error) {
	return query.Refetch(ctx, u.s.cache, UserKey(userID), u.resolve(userID))
}

func (u *Users) resolve(userID string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return u.s.backend.ResolveUser(ctx, userID)
	}
}

// ChangeName sets the signed-in user's display name.
func (u *Users) ChangeName(ctx context.Context, name string) (string, error) {
	changed, err := u.s.backend.ChangeName(ctx, name)
	if err != nil {
		return "", err
	}
	u.s.invalidate(UserKey(u.s.User.ID))
	u.s.logger.Info("user renamed")
	return changed, nil
}
