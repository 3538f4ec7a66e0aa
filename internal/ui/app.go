package ui

import (
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
	"github.com/tgienger/perplex/internal/db"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/styles"
	"github.com/tgienger/perplex/internal/ui/views"
)

// ToastDuration is how long a status message stays up
const ToastDuration = 3 * time.Second

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewProject
	ViewTopics
	ViewProfile
)

func (v View) String() string {
	switch v {
	case ViewProject:
		return "project"
	case ViewTopics:
		return "topics"
	case ViewProfile:
		return "profile"
	default:
		return "projects"
	}
}

type lastProjectMsg struct {
	project models.Project
	err     error
}

type clearToastMsg struct {
	seq int
}

type App struct {
	session *session.Session
	prefs   views.Preferences
	logger  *slog.Logger
	now     func() time.Time
	styles  *styles.Styles

	currentView View
	// returnTo is where the profile goes back to
	returnTo View

	projectList *views.ProjectListView
	project     *views.ProjectView
	topicList   *views.TopicListView
	profile     *views.UserView

	toast    views.Toast
	toastSeq int

	width  int
	height int
}

// Creates a new application
func NewApp(sess *session.Session, prefs views.Preferences, now func() time.Time) *App {
	return &App{
		session:     sess,
		prefs:       prefs,
		logger:      sess.Logger(),
		now:         now,
		styles:      styles.NewStyles(),
		currentView: ViewProjects,
		projectList: views.NewProjectListView(sess, lastProjectID(prefs)),
	}
}

func lastProjectID(prefs views.Preferences) int64 {
	id, err := strconv.ParseInt(prefs.String(db.KeyLastProjectID, ""), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// CurrentView reports which view is active
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	// Reopen the last project, if any
	if id := lastProjectID(a.prefs); id != 0 {
		ctx, projects := a.session.Context(), a.session.Projects
		return tea.Batch(a.projectList.Init(), func() tea.Msg {
			p, err := projects.Find(ctx, id)
			return lastProjectMsg{project: p, err: err}
		})
	}
	return a.projectList.Init()
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) switchTo(v View) {
	a.logger.Debug("navigate", "from", a.currentView, "to", v)
	a.currentView = v
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.switchTo(ViewProject)
	a.project = views.NewProjectView(a.session, a.prefs, project, a.now)
	a.topicList = nil

	// Save as last opened project
	a.prefs.SetString(db.KeyLastProjectID, strconv.FormatInt(project.ID, 10))

	return tea.Batch(a.project.Init(), a.resize())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case lastProjectMsg:
		if msg.err != nil {
			a.logger.Info("last project unavailable", "err", msg.err)
			a.prefs.SetString(db.KeyLastProjectID, "")
			return a, nil
		}
		if a.currentView != ViewProjects {
			return a, nil
		}
		return a, a.openProject(msg.project)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.OpenMeeting:
		a.switchTo(ViewTopics)
		a.topicList = views.NewTopicListView(a.session, msg.Project, msg.Meeting)
		return a, tea.Batch(a.topicList.Init(), a.resize())

	case views.BackToProject:
		if a.project == nil || a.project.Project().ID != msg.Project.ID {
			return a, a.openProject(msg.Project)
		}
		a.switchTo(ViewProject)
		a.topicList = nil
		return a, tea.Batch(a.project.Init(), a.resize())

	case views.BackToProjects:
		a.switchTo(ViewProjects)
		a.project, a.topicList = nil, nil
		a.prefs.SetString(db.KeyLastProjectID, "")
		return a, tea.Batch(a.projectList.Init(), a.resize())

	case views.OpenProfile:
		if a.currentView != ViewProfile {
			a.returnTo = a.currentView
		}
		a.switchTo(ViewProfile)
		a.profile = views.NewUserView(a.session)
		return a, tea.Batch(a.profile.Init(), a.resize())

	case views.CloseProfile:
		a.profile = nil
		a.switchTo(a.returnTo)
		return a, tea.Batch(a.active().Init(), a.resize())

	case views.TopicMutation:
		if a.topicList == nil {
			return a, nil
		}
		_, cmd := a.topicList.Update(msg)
		return a, cmd

	case views.SignOut:
		a.logger.Info("sign out")
		a.session.Close()
		return a, tea.Quit

	case views.Toast:
		a.toast = msg
		a.toastSeq++
		seq := a.toastSeq
		return a, tea.Tick(ToastDuration, func(time.Time) tea.Msg {
			return clearToastMsg{seq: seq}
		})

	case clearToastMsg:
		if msg.seq == a.toastSeq {
			a.toast = views.Toast{}
		}
		return a, nil
	}

	if m := a.active(); m != nil {
		_, cmd := m.Update(msg)
		return a, cmd
	}
	return a, nil
}

// active returns the model of the current view. Loads go to it alone, so
// answers for views that were left are dropped; topic mutations are the
// exception.
func (a *App) active() tea.Model {
	switch a.currentView {
	case ViewProject:
		if a.project != nil {
			return a.project
		}
	case ViewTopics:
		if a.topicList != nil {
			return a.topicList
		}
	case ViewProfile:
		if a.profile != nil {
			return a.profile
		}
	}
	return a.projectList
}

func (a *App) View() string {
	content := a.active().View()
	if a.toast.Text == "" {
		return content
	}
	style := a.styles.Success
	if a.toast.Error {
		style = a.styles.Error
	}
	width := styles.ContentWidth(a.width)
	line := style.Render(truncate.StringWithTail(a.toast.Text, uint(max(width-2, 1)), "…"))
	return content + "\n" + a.styles.StatusBar.Render(line)
}
