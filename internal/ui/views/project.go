package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/perplex/internal/db"
	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/markdown"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

// Preferences is the persisted UI state views read and write
type Preferences interface {
	String(key, def string) string
	Bool(key string, def bool) bool
	SetString(key, value string)
	SetBool(key string, value bool)
}

// Project overview tabs
const (
	TabConversation = "conversation"
	TabMeetings     = "meetings"
	TabActions      = "actions"
	TabTags         = "tags"
)

var projectTabs = []string{TabConversation, TabMeetings, TabActions, TabTags}

func tabIndex(tab string) int {
	for i, t := range projectTabs {
		if t == tab {
			return i
		}
	}
	return -1
}

type projectFoundMsg struct {
	gen     uint64
	project models.Project
	err     error
}

type meetingsLoadedMsg struct {
	gen      uint64
	meetings []models.Meeting
	err      error
}

type tagsLoadedMsg struct {
	gen  uint64
	tags []models.Tag
	err  error
}

type commentsLoadedMsg struct {
	gen      uint64
	comments []models.Comment
	err      error
}

type actionsLoadedMsg struct {
	gen     uint64
	actions []models.Action
	err     error
}

type ownerResolvedMsg struct {
	gen  uint64
	name string
}

func newProjectEditForm(sess *session.Session, project models.Project, s *styles.Styles, k keys.KeyMap) *formModel[projectValues] {
	return &formModel[projectValues]{
		title: "Edit Project",
		fields: []*field{
			newField("Name", "Project name", 100),
			newAreaField("Description", "Description (markdown, optional)", 2000),
		},
		form: form.New(func() projectValues {
			return projectValues{Name: project.Name, Description: project.Description}
		}),
		read:     readProject,
		write:    writeProject,
		validate: requireName,
		submit: func(ctx context.Context, v projectValues) (int64, error) {
			if err := sess.Projects.Edit(ctx, project.ID, v.Name, v.Description); err != nil {
				return 0, err
			}
			return project.ID, nil
		},
		success: func(id int64) string { return fmt.Sprintf("Project #%d updated", id) },
		ctx:     sess.Context(),
		button:  "Save",
		styles:  s,
		keys:    k,
	}
}

// ProjectView is a project's overview: description, conversation, meetings,
// actions and tags
type ProjectView struct {
	session *session.Session
	prefs   Preferences
	now     func() time.Time
	project models.Project
	owner   string

	comments []models.Comment
	meetings []models.Meeting
	actions  []models.Action
	tags     []models.Tag

	styles  *styles.Styles
	keys    keys.KeyMap
	spinner spinner.Model
	width   int
	height  int

	projectGen  uint64
	commentsGen uint64
	meetingsGen uint64
	actionsGen  uint64
	tagsGen     uint64
	ownerGen    uint64

	commentsState loadState
	commentsErr   error
	meetingsState loadState
	meetingsErr   error
	actionsState  loadState
	actionsErr    error
	tagsState     loadState
	tagsErr       error
	projectErr    error

	tab          string
	upcomingOnly bool
	openOnly     bool
	cursor       int
	selectID     int64

	editing    *formModel[projectValues]
	creating   *formModel[meetingValues]
	commenting *formModel[commentValues]
}

// NewProjectView opens project; now is the clock used for the upcoming
// filter and new meeting dates.
func NewProjectView(sess *session.Session, prefs Preferences, project models.Project, now func() time.Time) *ProjectView {
	s := styles.NewStyles()
	tab := prefs.String(db.KeyProjectTab, TabMeetings)
	if tabIndex(tab) < 0 {
		tab = TabMeetings
	}
	return &ProjectView{
		session:      sess,
		prefs:        prefs,
		now:          now,
		project:      project,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
		tab:          tab,
		upcomingOnly: prefs.Bool(db.KeyMeetingUpcomingOnly, false),
		openOnly:     prefs.Bool(db.KeyActionOpenOnly, false),
	}
}

// Project returns the project being shown
func (v *ProjectView) Project() models.Project {
	return v.project
}

func (v *ProjectView) Init() tea.Cmd {
	return tea.Batch(v.loadAll(), v.resolveOwner(), v.spinner.Tick)
}

func (v *ProjectView) loadAll() tea.Cmd {
	return tea.Batch(v.loadProject(), v.loadComments(), v.loadMeetings(), v.loadActions(), v.loadTags())
}

func (v *ProjectView) loadProject() tea.Cmd {
	v.projectGen = nextGeneration()
	gen, ctx, store, id := v.projectGen, v.session.Context(), v.session.Projects, v.project.ID
	return func() tea.Msg {
		p, err := store.Reload(ctx, id)
		return projectFoundMsg{gen: gen, project: p, err: err}
	}
}

func (v *ProjectView) loadMeetings() tea.Cmd {
	v.meetingsGen = nextGeneration()
	if v.meetingsState == loadFailed {
		v.meetingsState = loading
	}
	gen, ctx, store, id := v.meetingsGen, v.session.Context(), v.session.Meetings, v.project.ID
	return func() tea.Msg {
		list, err := store.Refresh(ctx, id)
		return meetingsLoadedMsg{gen: gen, meetings: list, err: err}
	}
}

func (v *ProjectView) loadComments() tea.Cmd {
	v.commentsGen = nextGeneration()
	if v.commentsState == loadFailed {
		v.commentsState = loading
	}
	gen, ctx, store, id := v.commentsGen, v.session.Context(), v.session.Comments, v.project.ID
	return func() tea.Msg {
		list, err := store.Refresh(ctx, id)
		return commentsLoadedMsg{gen: gen, comments: list, err: err}
	}
}

func (v *ProjectView) loadActions() tea.Cmd {
	v.actionsGen = nextGeneration()
	if v.actionsState == loadFailed {
		v.actionsState = loading
	}
	gen, ctx, store, id := v.actionsGen, v.session.Context(), v.session.Actions, v.project.ID
	return func() tea.Msg {
		list, err := store.Refresh(ctx, id)
		return actionsLoadedMsg{gen: gen, actions: list, err: err}
	}
}

func (v *ProjectView) loadTags() tea.Cmd {
	v.tagsGen = nextGeneration()
	if v.tagsState == loadFailed {
		v.tagsState = loading
	}
	gen, ctx, store, id := v.tagsGen, v.session.Context(), v.session.Tags, v.project.ID
	return func() tea.Msg {
		list, err := store.Refresh(ctx, id)
		return tagsLoadedMsg{gen: gen, tags: list, err: err}
	}
}

// resolveOwner looks up the owner's display name; failures leave the raw ID.
func (v *ProjectView) resolveOwner() tea.Cmd {
	if v.project.OwnerID == "" {
		return nil
	}
	v.ownerGen = nextGeneration()
	gen, ctx, users, uid := v.ownerGen, v.session.Context(), v.session.Users, v.project.OwnerID
	return func() tea.Msg {
		name, err := users.Resolve(ctx, uid)
		if err != nil {
			name = uid
		}
		return ownerResolvedMsg{gen: gen, name: name}
	}
}

// visibleMeetings applies the upcoming-only filter
func (v *ProjectView) visibleMeetings() []models.Meeting {
	if !v.upcomingOnly {
		return v.meetings
	}
	now := v.now()
	out := make([]models.Meeting, 0, len(v.meetings))
	for _, m := range v.meetings {
		if m.Upcoming(now) {
			out = append(out, m)
		}
	}
	return out
}

// visibleActions applies the open-only filter
func (v *ProjectView) visibleActions() []models.Action {
	if !v.openOnly {
		return v.actions
	}
	out := make([]models.Action, 0, len(v.actions))
	for _, a := range v.actions {
		if !a.Closed() {
			out = append(out, a)
		}
	}
	return out
}

func (v *ProjectView) anyLoading() bool {
	for _, st := range []loadState{v.commentsState, v.meetingsState, v.actionsState, v.tagsState} {
		if st == loading {
			return true
		}
	}
	return false
}

func (v *ProjectView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		if !v.anyLoading() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case projectFoundMsg:
		if msg.gen != v.projectGen {
			return v, nil
		}
		v.projectErr = msg.err
		if msg.err == nil {
			ownerChanged := msg.project.OwnerID != v.project.OwnerID
			v.project = msg.project
			if ownerChanged {
				return v, v.resolveOwner()
			}
		}
		return v, nil

	case ownerResolvedMsg:
		if msg.gen == v.ownerGen {
			v.owner = msg.name
		}
		return v, nil

	case meetingsLoadedMsg:
		if msg.gen != v.meetingsGen {
			return v, nil
		}
		if msg.err != nil {
			v.meetingsState, v.meetingsErr = loadFailed, msg.err
			return v, nil
		}
		v.meetings = msg.meetings
		v.meetingsState, v.meetingsErr = loaded, nil
		v.selectMeeting()
		return v, nil

	case commentsLoadedMsg:
		if msg.gen != v.commentsGen {
			return v, nil
		}
		if msg.err != nil {
			v.commentsState, v.commentsErr = loadFailed, msg.err
			return v, nil
		}
		v.comments = msg.comments
		v.commentsState, v.commentsErr = loaded, nil
		return v, nil

	case actionsLoadedMsg:
		if msg.gen != v.actionsGen {
			return v, nil
		}
		if msg.err != nil {
			v.actionsState, v.actionsErr = loadFailed, msg.err
			return v, nil
		}
		v.actions = msg.actions
		v.actionsState, v.actionsErr = loaded, nil
		return v, nil

	case tagsLoadedMsg:
		if msg.gen != v.tagsGen {
			return v, nil
		}
		if msg.err != nil {
			v.tagsState, v.tagsErr = loadFailed, msg.err
			return v, nil
		}
		v.tags = msg.tags
		v.tagsState, v.tagsErr = loaded, nil
		return v, nil

	case formSubmittedMsg:
		if v.editing != nil {
			return v, v.editing.update(msg)
		}
		if v.creating != nil {
			return v, v.creating.update(msg)
		}
		if v.commenting != nil {
			return v, v.commenting.update(msg)
		}
		return v, nil

	case formClosedMsg:
		return v, v.formClosed(msg)

	case tea.KeyMsg:
		if v.editing != nil {
			return v, v.editing.update(msg)
		}
		if v.creating != nil {
			return v, v.creating.update(msg)
		}
		if v.commenting != nil {
			return v, v.commenting.update(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *ProjectView) formClosed(msg formClosedMsg) tea.Cmd {
	switch {
	case v.editing != nil && msg.owner == any(v.editing):
		v.editing = nil
		if msg.canceled {
			return nil
		}
		return v.loadProject()
	case v.creating != nil && msg.owner == any(v.creating):
		v.creating = nil
		if msg.canceled {
			return nil
		}
		v.selectID = msg.id
		return v.loadMeetings()
	case v.commenting != nil && msg.owner == any(v.commenting):
		v.commenting = nil
		if msg.canceled {
			return nil
		}
		return v.loadComments()
	}
	return nil
}

// selectMeeting moves the cursor to selectID once it is listed
func (v *ProjectView) selectMeeting() {
	visible := v.visibleMeetings()
	if v.selectID != 0 {
		for i, m := range visible {
			if m.ID == v.selectID {
				v.cursor = i
			}
		}
		v.selectID = 0
	}
	v.cursor = clamp(v.cursor, 0, max(len(visible)-1, 0))
}

func (v *ProjectView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, send(BackToProjects{})
	case key.Matches(msg, v.keys.Tab):
		v.switchTab(1)
		return v, nil
	case key.Matches(msg, v.keys.BackTab):
		v.switchTab(-1)
		return v, nil
	case key.Matches(msg, v.keys.Upcoming):
		v.upcomingOnly = !v.upcomingOnly
		v.prefs.SetBool(db.KeyMeetingUpcomingOnly, v.upcomingOnly)
		v.selectMeeting()
		return v, nil
	case key.Matches(msg, v.keys.OpenOnly):
		v.openOnly = !v.openOnly
		v.prefs.SetBool(db.KeyActionOpenOnly, v.openOnly)
		return v, nil
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visibleMeetings())-1 {
			v.cursor++
		}
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		visible := v.visibleMeetings()
		if v.tab == TabMeetings && v.cursor < len(visible) {
			return v, send(OpenMeeting{Project: v.project, Meeting: visible[v.cursor]})
		}
		return v, nil
	case key.Matches(msg, v.keys.New) && v.tab == TabConversation:
		v.commenting = newCommentForm(v.session, v.project.ID, v.styles, v.keys)
		return v, v.commenting.init()
	case key.Matches(msg, v.keys.New):
		v.creating = newMeetingForm(v.session, v.project.ID, v.now, v.styles, v.keys)
		return v, v.creating.init()
	case key.Matches(msg, v.keys.Edit):
		v.editing = newProjectEditForm(v.session, v.project, v.styles, v.keys)
		return v, v.editing.init()
	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadAll()
	case key.Matches(msg, v.keys.Profile):
		return v, send(OpenProfile{})
	case key.Matches(msg, v.keys.SignOut):
		return v, send(SignOut{})
	}
	return v, nil
}

// switchTab moves by step through the tabs and remembers the choice
func (v *ProjectView) switchTab(step int) {
	i := tabIndex(v.tab) + step
	v.tab = projectTabs[(i+len(projectTabs))%len(projectTabs)]
	v.prefs.SetString(db.KeyProjectTab, v.tab)
}

func (v *ProjectView) View() string {
	if v.editing != nil {
		return v.editing.view(v.width, v.height)
	}
	if v.creating != nil {
		return v.creating.view(v.width, v.height)
	}
	if v.commenting != nil {
		return v.commenting.view(v.width, v.height)
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	var b strings.Builder
	b.WriteString(s.Title.Render(fit(v.project.Name, width)))
	b.WriteString("\n")

	var meta []string
	if v.owner != "" {
		meta = append(meta, "Owner: "+v.owner)
	}
	if !v.project.CreatedAt.IsZero() {
		meta = append(meta, "Created "+v.project.CreatedAt.Local().Format("Jan 2, 2006"))
	}
	if len(meta) > 0 {
		b.WriteString(s.TitleMuted.Render(fit(strings.Join(meta, " • "), width)))
		b.WriteString("\n")
	}
	if v.projectErr != nil {
		b.WriteString(renderError(s, v.projectErr, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(markdown.RenderOr(v.project.Description, s.TitleMuted.Render("(no description)"), width))
	b.WriteString("\n\n")

	b.WriteString(v.renderTabs())
	b.WriteString("\n\n")
	switch v.tab {
	case TabConversation:
		b.WriteString(v.renderConversation(width))
	case TabMeetings:
		b.WriteString(v.renderMeetings(width))
	case TabActions:
		b.WriteString(v.renderActions(width))
	default:
		b.WriteString(v.renderTags(width))
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

var tabTitles = map[string]string{
	TabConversation: "Conversation",
	TabMeetings:     "Meetings",
	TabActions:      "Actions",
	TabTags:         "Tags",
}

func checkLabel(on bool, label string) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

func (v *ProjectView) renderTabs() string {
	s := v.styles
	parts := make([]string, 0, len(projectTabs)+2)
	for _, t := range projectTabs {
		style := s.Tab
		if t == v.tab {
			style = s.TabActive
		}
		parts = append(parts, style.Render(tabTitles[t]))
	}
	switch v.tab {
	case TabMeetings:
		parts = append(parts, "   ", s.TitleMuted.Render(checkLabel(v.upcomingOnly, "upcoming only")))
	case TabActions:
		parts = append(parts, "   ", s.TitleMuted.Render(checkLabel(v.openOnly, "open only")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (v *ProjectView) renderConversation(width int) string {
	s := v.styles
	switch v.commentsState {
	case loading:
		return v.spinner.View() + s.TitleMuted.Render(" Loading conversation...")
	case loadFailed:
		return renderError(s, v.commentsErr, width)
	}
	if len(v.comments) == 0 {
		return s.TitleMuted.Render("No comments yet. Press 'n' to start the conversation.")
	}
	blocks := make([]string, 0, len(v.comments))
	for _, c := range v.comments {
		header := s.Title.Render(fit(c.AuthorName(), width/2))
		if !c.CreatedAt.IsZero() {
			header += "  " + s.TitleMuted.Render(c.CreatedAt.Local().Format("Jan 2 15:04"))
		}
		blocks = append(blocks, header, markdown.Render(c.Content, width), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (v *ProjectView) renderActions(width int) string {
	s := v.styles
	switch v.actionsState {
	case loading:
		return v.spinner.View() + s.TitleMuted.Render(" Loading actions...")
	case loadFailed:
		return renderError(s, v.actionsErr, width)
	}
	visible := v.visibleActions()
	if len(visible) == 0 {
		if v.openOnly {
			return s.TitleMuted.Render("No open actions. Press 'o' to show all.")
		}
		return s.TitleMuted.Render("No actions in this project.")
	}

	now := v.now()
	rows := make([]string, 0, len(visible))
	for _, a := range visible {
		box := "[ ]"
		style := s.ListItem
		if a.Closed() {
			box = "[x]"
			style = style.Inherit(s.TopicClosed)
		}
		line := fmt.Sprintf("%s #%d %s", box, a.ID, a.Title)
		if a.DueDate.Valid {
			line += "  due " + a.DueDate.Time.Local().Format("Jan 2")
		}
		if a.AssignedTo(v.session.User.ID) {
			line = "● " + line
		}
		row := fit(line, width-14)
		if a.Overdue(now) {
			row += " " + s.Badge.Render("overdue")
		}
		rows = append(rows, style.Width(width).Render(row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *ProjectView) renderMeetings(width int) string {
	s := v.styles
	switch v.meetingsState {
	case loading:
		return v.spinner.View() + s.TitleMuted.Render(" Loading meetings...")
	case loadFailed:
		return renderError(s, v.meetingsErr, width)
	}

	visible := v.visibleMeetings()
	if len(visible) == 0 {
		if v.upcomingOnly {
			return s.TitleMuted.Render("No upcoming meetings. Press 'u' to show all.")
		}
		return s.TitleMuted.Render("No meetings. Press 'n' to schedule one.")
	}

	now := v.now()
	rows := make([]string, 0, len(visible))
	for i, m := range visible {
		when := m.StartDate.Local().Format("Mon Jan 2 15:04")
		line := fmt.Sprintf("%s  %s", when, m.Name)
		if m.Upcoming(now) {
			line += "  " + s.Badge.Render("upcoming")
		}
		style := s.ListItem
		if i == v.cursor {
			style = s.ListSelected
		}
		rows = append(rows, style.Width(width).Render(fit(line, width-4)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *ProjectView) renderTags(width int) string {
	s := v.styles
	switch v.tagsState {
	case loading:
		return v.spinner.View() + s.TitleMuted.Render(" Loading tags...")
	case loadFailed:
		return renderError(s, v.tagsErr, width)
	}
	if len(v.tags) == 0 {
		return s.TitleMuted.Render("No tags in this project.")
	}
	chips := make([]string, 0, len(v.tags))
	for _, t := range v.tags {
		chips = append(chips, s.Chip(t.Title, t.Color))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(chips, " "))
}

func (v *ProjectView) renderHelp() string {
	s := v.styles
	if styles.ContentWidth(v.width) < 60 {
		return s.Help.Render(fmt.Sprintf("%s open • %s new • %s back",
			s.HelpKey.Render("↵"), s.HelpKey.Render("n"), s.HelpKey.Render("esc")))
	}
	newLabel, filter := "new meeting", s.HelpKey.Render("u")+" upcoming"
	switch v.tab {
	case TabConversation:
		newLabel, filter = "comment", ""
	case TabActions:
		filter = s.HelpKey.Render("o") + " open only"
	case TabTags:
		filter = ""
	}
	parts := []string{
		s.HelpKey.Render("↵") + " open",
		s.HelpKey.Render("tab") + " tab",
		s.HelpKey.Render("n") + " " + newLabel,
		s.HelpKey.Render("e") + " edit",
	}
	if filter != "" {
		parts = append(parts, filter)
	}
	parts = append(parts, s.HelpKey.Render("r")+" refresh", s.HelpKey.Render("esc")+" back")
	return s.Help.Render(strings.Join(parts, " • "))
}
