// Package session holds the signed-in user's context: who they are, and the
// per-entity stores views use to read and mutate server data. A Session is
// built once at startup and passed by reference; Close tears it down on
// sign-out.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/query"
)

// Backend is the remote API as seen by the stores. *api.Client implements it.
type Backend interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	FindProject(ctx context.Context, projectID int64) (*models.Project, error)
	CreateProject(ctx context.Context, name, description string) (*models.Project, error)
	EditProject(ctx context.Context, projectID int64, name, description string) error

	ListMeetings(ctx context.Context, projectID int64) ([]models.Meeting, error)
	CreateMeeting(ctx context.Context, projectID int64, name, description string, startDate time.Time) (*models.Meeting, error)

	ListTopics(ctx context.Context, projectID, meetingID int64) ([]models.Topic, error)
	CreateTopic(ctx context.Context, projectID, meetingID int64, title, description string) (*models.Topic, error)
	SetTopicStatus(ctx context.Context, projectID, meetingID, topicID int64, closed bool) error
	ReorderTopic(ctx context.Context, projectID, meetingID, topicID, before, after int64) error

	ListTags(ctx context.Context, projectID int64) ([]models.Tag, error)

	ListComments(ctx context.Context, projectID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, projectID int64, content string) (*models.Comment, error)

	ListActions(ctx context.Context, projectID int64) ([]models.Action, error)

	ResolveUser(ctx context.Context, userID string) (string, error)
	ChangeName(ctx context.Context, name string) (string, error)
}

// Session is the process-wide user context.
type Session struct {
	User models.User

	Projects *Projects
	Meetings *Meetings
	Topics   *Topics
	Tags     *Tags
	Comments *Comments
	Actions  *Actions
	Users    *Users

	backend Backend
	cache   *query.Cache
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New signs in userID against backend. Requests made through the session
// are abandoned once parent is cancelled or Close is called.
func New(parent context.Context, backend Backend, cache *query.Cache, userID string, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		User:    models.User{ID: userID},
		backend: backend,
		cache:   cache,
		logger:  logger.With("uid", userID),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.Projects = &Projects{s: s}
	s.Meetings = &Meetings{s: s}
	s.Topics = &Topics{s: s}
	s.Tags = &Tags{s: s}
	s.Comments = &Comments{s: s}
	s.Actions = &Actions{s: s}
	s.Users = &Users{s: s}
	s.logger.Info("session started")
	return s
}

// Context is the parent of every request made for this session.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Close signs out: in-flight requests are cancelled and cached responses are
// dropped. Calling Close more than once is harmless.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.cache.Clear()
	s.logger.Info("session closed")
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) invalidate(keys ...query.Key) {
	s.cache.Invalidate(keys...)
}
