package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles  *styles.Styles
	width   int
	current int64 // last opened project, highlighted
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	switch {
	case selected:
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	case p.project.ID == d.current:
		titleStyle = d.styles.ListCurrent.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	default:
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	// first line of the description only; it is markdown
	desc, _, _ := strings.Cut(p.Description(), "\n")

	title := titleStyle.Render(fit(p.Title(), width-4))
	fmt.Fprintf(w, "%s\n%s", title, descStyle.Render(fit(desc, width-4)))
}

type projectValues struct {
	Name        string
	Description string
}

func readProject(f []*field) projectValues {
	return projectValues{
		Name:        strings.TrimSpace(f[0].value()),
		Description: strings.TrimSpace(f[1].value()),
	}
}

func writeProject(f []*field, v projectValues) {
	f[0].setValue(v.Name)
	f[1].setValue(v.Description)
}

func requireName(v projectValues) error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func newProjectForm(sess *session.Session, s *styles.Styles, k keys.KeyMap) *formModel[projectValues] {
	return &formModel[projectValues]{
		title: "New Project",
		fields: []*field{
			newField("Name", "Project name", 100),
			newAreaField("Description", "Description (markdown, optional)", 2000),
		},
		form:     form.New(func() projectValues { return projectValues{} }),
		read:     readProject,
		write:    writeProject,
		validate: requireName,
		submit: func(ctx context.Context, v projectValues) (int64, error) {
			p, err := sess.Projects.Create(ctx, v.Name, v.Description)
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		},
		success:  createdText("Project"),
		ctx:      sess.Context(),
		allowNew: true,
		button:   "Create",
		styles:   s,
		keys:     k,
	}
}

type projectsLoadedMsg struct {
	gen      uint64
	projects []models.Project
	err      error
}

// ProjectListView lists the user's projects
type ProjectListView struct {
	session  *session.Session
	list     list.Model
	delegate *projectDelegate
	spinner  spinner.Model
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	gen   uint64
	state loadState
	err   error

	// selectID is selected once the list next loads
	selectID int64

	creating *formModel[projectValues]

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewProjectListView creates the project list; current is highlighted.
func NewProjectListView(sess *session.Session, current int64) *ProjectListView {
	s := styles.NewStyles()

	delegate := &projectDelegate{styles: s, width: 80, current: current}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		session:  sess,
		list:     l,
		delegate: delegate,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		selectID: current,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.spinner.Tick)
}

func (v *ProjectListView) load() tea.Cmd {
	v.gen = nextGeneration()
	if v.state == loadFailed {
		v.state = loading
	}
	gen, ctx, projects := v.gen, v.session.Context(), v.session.Projects
	return func() tea.Msg {
		list, err := projects.Refresh(ctx)
		return projectsLoadedMsg{gen: gen, projects: list, err: err}
	}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case spinner.TickMsg:
		if v.state != loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case projectsLoadedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.state, v.err = loadFailed, msg.err
			return v, nil
		}
		items := make([]list.Item, len(msg.projects))
		selected := -1
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
			if p.ID == v.selectID {
				selected = i
			}
		}
		cmd := v.list.SetItems(items)
		if selected >= 0 {
			v.list.Select(selected)
		}
		v.selectID = 0
		v.state, v.err = loaded, nil
		return v, cmd

	case formSubmittedMsg:
		if v.creating != nil {
			return v, v.creating.update(msg)
		}
		return v, nil

	case formClosedMsg:
		if v.creating == nil || msg.owner != any(v.creating) {
			return v, nil
		}
		v.creating = nil
		if msg.canceled {
			return v, nil
		}
		v.selectID = msg.id
		return v, v.load()

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.creating != nil {
			return v, v.creating.update(msg)
		}

		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			// only q quits from the project list
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.creating = newProjectForm(v.session, v.styles, v.keys)
			return v, v.creating.init()
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load()
		case key.Matches(msg, v.keys.Profile):
			return v, send(OpenProfile{})
		case key.Matches(msg, v.keys.SignOut):
			return v, send(SignOut{})
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, send(SelectedProject{Project: item.project})
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.creating != nil {
		return v.creating.view(v.width, v.height)
	}

	switch v.state {
	case loading:
		return v.spinner.View() + v.styles.TitleMuted.Render(" Loading projects...")
	case loadFailed:
		return styles.CenterView(
			renderError(v.styles, v.err, styles.ContentWidth(v.width)-4)+"\n"+v.renderHelp(),
			v.width, v.height)
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s select • %s new • %s refresh • %s profile • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("p"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("p") + "      profile",
		s.HelpKey.Render("ctrl+o") + " sign out",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
