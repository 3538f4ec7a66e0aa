package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/perplex/internal/db"
	"github.com/tgienger/perplex/internal/logging"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/session/sessiontest"
	"github.com/tgienger/perplex/internal/ui/views"
)

type mapStore map[string]string

func (m mapStore) GetSetting(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapStore) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

func newTestApp(t *testing.T, store mapStore) (*App, *session.Session, *sessiontest.Fake) {
	t.Helper()
	fake := sessiontest.NewFake()
	fake.Projects = []models.Project{{ID: 7, Name: "Seven"}}
	sess := sessiontest.NewSession(fake, "me")
	prefs := db.NewPreferences(store, logging.Discard())
	app := NewApp(sess, prefs, time.Now)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return app, sess, fake
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestAppReopensLastProject(t *testing.T) {
	store := mapStore{db.KeyLastProjectID: "7"}
	app, _, _ := newTestApp(t, store)

	for _, msg := range run(app.Init()) {
		if _, ok := msg.(lastProjectMsg); ok {
			app.Update(msg)
		}
	}
	assert.Equal(t, ViewProject, app.CurrentView())
	assert.Equal(t, "7", store[db.KeyLastProjectID])
}

func TestAppForgetsMissingLastProject(t *testing.T) {
	store := mapStore{db.KeyLastProjectID: "99"}
	app, _, _ := newTestApp(t, store)

	for _, msg := range run(app.Init()) {
		if _, ok := msg.(lastProjectMsg); ok {
			app.Update(msg)
		}
	}
	assert.Equal(t, ViewProjects, app.CurrentView())
	assert.Equal(t, "", store[db.KeyLastProjectID])
}

func TestAppNavigation(t *testing.T) {
	store := mapStore{}
	app, _, _ := newTestApp(t, store)
	project := models.Project{ID: 7, Name: "Seven"}

	app.Update(views.SelectedProject{Project: project})
	assert.Equal(t, ViewProject, app.CurrentView())
	assert.Equal(t, "7", store[db.KeyLastProjectID])

	app.Update(views.OpenMeeting{Project: project, Meeting: models.Meeting{ID: 3, Name: "Weekly"}})
	assert.Equal(t, ViewTopics, app.CurrentView())

	app.Update(views.OpenProfile{})
	assert.Equal(t, ViewProfile, app.CurrentView())
	app.Update(views.CloseProfile{})
	assert.Equal(t, ViewTopics, app.CurrentView())

	app.Update(views.BackToProject{Project: project})
	assert.Equal(t, ViewProject, app.CurrentView())

	app.Update(views.BackToProjects{})
	assert.Equal(t, ViewProjects, app.CurrentView())
	assert.Equal(t, "", store[db.KeyLastProjectID])
}

func TestAppToast(t *testing.T) {
	app, _, _ := newTestApp(t, mapStore{})

	_, cmd := app.Update(views.Toast{Text: "Meeting #12 created"})
	require.NotNil(t, cmd)
	assert.Contains(t, app.View(), "Meeting #12 created")

	// an older timer does not clear a newer toast
	app.Update(views.Toast{Text: "Topic order updated"})
	app.Update(clearToastMsg{seq: 1})
	assert.Contains(t, app.View(), "Topic order updated")

	app.Update(clearToastMsg{seq: 2})
	assert.NotContains(t, app.View(), "Topic order updated")
}

func TestAppSignOut(t *testing.T) {
	app, sess, _ := newTestApp(t, mapStore{})

	_, cmd := app.Update(views.SignOut{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, sess.Closed())
	select {
	case <-sess.Context().Done():
	default:
		t.Fatal("session context still live after sign-out")
	}
}

// feed delivers msgs to app, as the program loop would
func feed(app *App, msgs []tea.Msg) {
	for _, msg := range msgs {
		app.Update(msg)
	}
}

func openMeeting(t *testing.T, app *App, fake *sessiontest.Fake) {
	t.Helper()
	fake.Topics[[2]int64{7, 3}] = []models.Topic{
		{ID: 1, MeetingID: 3, Title: "Budget"},
		{ID: 2, MeetingID: 3, Title: "Hiring"},
	}
	_, cmd := app.Update(views.OpenMeeting{
		Project: models.Project{ID: 7, Name: "Seven"},
		Meeting: models.Meeting{ID: 3, Name: "Weekly"},
	})
	feed(app, run(cmd))
	require.Equal(t, ViewTopics, app.CurrentView())
	require.Contains(t, app.View(), "Budget")
}

var keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func TestAppDeliversTopicStatusWhileProfileIsOpen(t *testing.T) {
	app, _, fake := newTestApp(t, mapStore{})
	fake.Names["me"] = "Ann"
	openMeeting(t, app, fake)

	_, toggle := app.Update(keySpace)
	require.NotNil(t, toggle)
	assert.Contains(t, app.View(), "[~] #1")

	_, cmd := app.Update(views.OpenProfile{})
	feed(app, run(cmd))
	require.Equal(t, ViewProfile, app.CurrentView())

	// the answer lands while the profile is on screen
	feed(app, run(toggle))

	_, cmd = app.Update(views.CloseProfile{})
	feed(app, run(cmd))
	require.Equal(t, ViewTopics, app.CurrentView())

	out := app.View()
	assert.NotContains(t, out, "[~]")
	assert.Contains(t, out, "[x] #1")

	_, again := app.Update(keySpace)
	assert.NotNil(t, again, "the topic accepts another toggle")
}

func TestAppDeliversReorderToastWhileProfileIsOpen(t *testing.T) {
	app, _, fake := newTestApp(t, mapStore{})
	openMeeting(t, app, fake)

	_, move := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("J")})
	require.NotNil(t, move)

	app.Update(views.OpenProfile{})
	_, cmd := app.Update(move())
	var toasts []views.Toast
	for _, msg := range run(cmd) {
		if toast, ok := msg.(views.Toast); ok {
			toasts = append(toasts, toast)
		}
	}
	require.Len(t, toasts, 1)
	assert.Equal(t, "Topic order updated", toasts[0].Text)
	require.Len(t, fake.Calls("ReorderTopic"), 1)
}
