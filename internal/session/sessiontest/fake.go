// Package sessiontest provides an in-memory session.Backend for tests.
package sessiontest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/tgienger/perplex/internal/api"
	"github.com/tgienger/perplex/internal/logging"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/query"
	"github.com/tgienger/perplex/internal/session"
)

// Call records one backend invocation.
type Call struct {
	Method string
	Args   []any
}

// Fake is a scriptable backend. Build it with NewFake; fields may be set
// before the first call.
type Fake struct {
	mu sync.Mutex

	Projects []models.Project
	Meetings map[int64][]models.Meeting
	Topics   map[[2]int64][]models.Topic
	Tags     map[int64][]models.Tag
	Comments map[int64][]models.Comment
	Actions  map[int64][]models.Action
	Names    map[string]string

	// Errors makes the named method fail with the given error.
	Errors map[string]error

	nextID int64
	calls  []Call
}

// NewFake returns an empty backend.
func NewFake() *Fake {
	return &Fake{
		Meetings: map[int64][]models.Meeting{},
		Topics:   map[[2]int64][]models.Topic{},
		Tags:     map[int64][]models.Tag{},
		Comments: map[int64][]models.Comment{},
		Actions:  map[int64][]models.Action{},
		Names:    map[string]string{},
		Errors:   map[string]error{},
		nextID:   100,
	}
}

// NewSession wraps f in a session for userID with retries disabled.
func NewSession(f *Fake, userID string) *session.Session {
	cache := query.NewCache(query.RetryPolicy{}, logging.Discard())
	return session.New(context.Background(), f, cache, userID, logging.Discard())
}

// NotFound is the error the API returns for a missing entity.
func NotFound(message string) error {
	return &api.Error{Status: http.StatusNotFound, Message: message}
}

// Calls returns every invocation of method so far.
func (f *Fake) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// SetError makes method fail with err; nil clears it.
func (f *Fake) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Errors, method)
		return
	}
	f.Errors[method] = err
}

func (f *Fake) enter(method string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
	return f.Errors[method]
}

func (f *Fake) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *Fake) ListProjects(ctx context.Context) ([]models.Project, error) {
	if err := f.enter("ListProjects"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Project(nil), f.Projects...), nil
}

func (f *Fake) FindProject(ctx context.Context, projectID int64) (*models.Project, error) {
	if err := f.enter("FindProject", projectID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Projects {
		if p.ID == projectID {
			found := p
			return &found, nil
		}
	}
	return nil, NotFound("project not found")
}

func (f *Fake) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	if err := f.enter("CreateProject", name, description); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Project{ID: f.id(), Name: name, Description: description, CreatedAt: time.Now()}
	f.Projects = append(f.Projects, p)
	return &p, nil
}

func (f *Fake) EditProject(ctx context.Context, projectID int64, name, description string) error {
	if err := f.enter("EditProject", projectID, name, description); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Projects {
		if f.Projects[i].ID == projectID {
			f.Projects[i].Name = name
			f.Projects[i].Description = description
			return nil
		}
	}
	return NotFound("project not found")
}

func (f *Fake) ListMeetings(ctx context.Context, projectID int64) ([]models.Meeting, error) {
	if err := f.enter("ListMeetings", projectID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Meeting(nil), f.Meetings[projectID]...), nil
}

func (f *Fake) CreateMeeting(ctx context.Context, projectID int64, name, description string, startDate time.Time) (*models.Meeting, error) {
	if err := f.enter("CreateMeeting", projectID, name, description, startDate); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m := models.Meeting{ID: f.id(), ProjectID: projectID, Name: name, Description: description, StartDate: startDate}
	f.Meetings[projectID] = append(f.Meetings[projectID], m)
	return &m, nil
}

func (f *Fake) ListTopics(ctx context.Context, projectID, meetingID int64) ([]models.Topic, error) {
	if err := f.enter("ListTopics", projectID, meetingID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Topic(nil), f.Topics[[2]int64{projectID, meetingID}]...), nil
}

func (f *Fake) CreateTopic(ctx context.Context, projectID, meetingID int64, title, description string) (*models.Topic, error) {
	if err := f.enter("CreateTopic", projectID, meetingID, title, description); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{projectID, meetingID}
	t := models.Topic{ID: f.id(), MeetingID: meetingID, Title: title, Description: description}
	f.Topics[key] = append(f.Topics[key], t)
	return &t, nil
}

func (f *Fake) SetTopicStatus(ctx context.Context, projectID, meetingID, topicID int64, closed bool) error {
	if err := f.enter("SetTopicStatus", projectID, meetingID, topicID, closed); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.Topics[[2]int64{projectID, meetingID}]
	for i := range list {
		if list[i].ID == topicID {
			list[i].ClosedAt = models.NullTime{Valid: closed}
			if closed {
				list[i].ClosedAt.Time = time.Now()
			}
			return nil
		}
	}
	return NotFound("topic not found")
}

func (f *Fake) ReorderTopic(ctx context.Context, projectID, meetingID, topicID, before, after int64) error {
	return f.enter("ReorderTopic", projectID, meetingID, topicID, before, after)
}

func (f *Fake) ListTags(ctx context.Context, projectID int64) ([]models.Tag, error) {
	if err := f.enter("ListTags", projectID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Tag(nil), f.Tags[projectID]...), nil
}

func (f *Fake) ListComments(ctx context.Context, projectID int64) ([]models.Comment, error) {
	if err := f.enter("ListComments", projectID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.Comments[projectID]...), nil
}

// CreateComment posts as the user stored under the "me" key.
func (f *Fake) CreateComment(ctx context.Context, projectID int64, content string) (*models.Comment, error) {
	if err := f.enter("CreateComment", projectID, content); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Comment{
		ID:        f.id(),
		AuthorID:  "me",
		Author:    models.User{ID: "me", Name: f.Names["me"]},
		Content:   content,
		ProjectID: projectID,
		CreatedAt: time.Now(),
	}
	f.Comments[projectID] = append(f.Comments[projectID], c)
	return &c, nil
}

func (f *Fake) ListActions(ctx context.Context, projectID int64) ([]models.Action, error) {
	if err := f.enter("ListActions", projectID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Action(nil), f.Actions[projectID]...), nil
}

func (f *Fake) ResolveUser(ctx context.Context, userID string) (string, error) {
	if err := f.enter("ResolveUser", userID); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.Names[userID]
	if !ok {
		return "", NotFound("user not found")
	}
	return name, nil
}

// ChangeName renames the user stored under the "me" key.
func (f *Fake) ChangeName(ctx context.Context, name string) (string, error) {
	if err := f.enter("ChangeName", name); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Names["me"] = name
	return name, nil
}
