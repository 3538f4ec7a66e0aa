package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/perplex/internal/markdown"
	"github.com/tgienger/perplex/internal/models"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/topics"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

type topicsLoadedMsg struct {
	gen    uint64
	topics []models.Topic
	err    error
}

// TopicMutation is the result of a status change or reorder the topic list
// fired without waiting. It belongs to that list even when another view is
// on screen.
type TopicMutation interface {
	tea.Msg
	topicMutation()
}

type topicStatusMsg struct {
	topicID int64
	err     error
}

type topicReorderedMsg struct {
	topicID int64
	err     error
}

func (topicStatusMsg) topicMutation()    {}
func (topicReorderedMsg) topicMutation() {}

// topicRow is one displayed topic and its place in its section. Reordering
// only ever looks at the section, never across the open/closed split.
type topicRow struct {
	topic   models.Topic
	section []models.Topic
	index   int
}

func (r topicRow) neighbors() topics.Neighbors {
	return topics.NeighborsAt(r.section, r.index)
}

// TopicListView shows the agenda of one meeting
type TopicListView struct {
	session *session.Session
	project models.Project
	meeting models.Meeting
	topics  []models.Topic
	styles  *styles.Styles
	keys    keys.KeyMap
	spinner spinner.Model

	width  int
	height int

	gen   uint64
	state loadState
	err   error

	cursor  int
	scrollY int
	// followID keeps the cursor on a topic across reloads
	followID int64
	// pending holds topics whose status change is in flight
	pending map[int64]bool

	viewing  bool
	creating *formModel[topicValues]

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTopicListView creates the topic list of meeting
func NewTopicListView(sess *session.Session, project models.Project, meeting models.Meeting) *TopicListView {
	s := styles.NewStyles()
	return &TopicListView{
		session: sess,
		project: project,
		meeting: meeting,
		styles:  s,
		keys:    keys.DefaultKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
		pending: make(map[int64]bool),
	}
}

// Init initializes the view
func (v *TopicListView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.spinner.Tick)
}

func (v *TopicListView) load() tea.Cmd {
	v.gen = nextGeneration()
	if v.state == loadFailed {
		v.state = loading
	}
	gen, ctx, store := v.gen, v.session.Context(), v.session.Topics
	pid, mid := v.project.ID, v.meeting.ID
	return func() tea.Msg {
		list, err := store.Refresh(ctx, pid, mid)
		return topicsLoadedMsg{gen: gen, topics: list, err: err}
	}
}

// rows lists open topics, then closed ones
func (v *TopicListView) rows() []topicRow {
	open, closed := topics.Open(v.topics), topics.Closed(v.topics)
	rows := make([]topicRow, 0, len(v.topics))
	for i, t := range open {
		rows = append(rows, topicRow{topic: t, section: open, index: i})
	}
	for i, t := range closed {
		rows = append(rows, topicRow{topic: t, section: closed, index: i})
	}
	return rows
}

func (v *TopicListView) selected() (topicRow, bool) {
	rows := v.rows()
	if v.cursor < 0 || v.cursor >= len(rows) {
		return topicRow{}, false
	}
	return rows[v.cursor], true
}

func (v *TopicListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		if v.state != loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case topicsLoadedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.state, v.err = loadFailed, msg.err
			return v, nil
		}
		v.topics = msg.topics
		v.state, v.err = loaded, nil
		v.follow()
		return v, nil

	case topicStatusMsg:
		delete(v.pending, msg.topicID)
		if msg.err != nil {
			return v, errorToast(msg.err)
		}
		return v, v.load()

	case topicReorderedMsg:
		if msg.err != nil {
			return v, errorToast(msg.err)
		}
		return v, tea.Batch(toast("Topic order updated"), v.load())

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
		v.followID = msg.id
		return v, v.load()

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.creating != nil {
			return v, v.creating.update(msg)
		}
		if v.viewing {
			return v.updateViewing(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

// follow moves the cursor to followID if it is listed
func (v *TopicListView) follow() {
	rows := v.rows()
	if v.followID != 0 {
		for i, r := range rows {
			if r.topic.ID == v.followID {
				v.cursor = i
			}
		}
		v.followID = 0
	}
	v.cursor = clamp(v.cursor, 0, max(len(rows)-1, 0))
	v.ensureVisible()
}

func (v *TopicListView) visibleItems() int {
	// Each topic item is 2 lines (title + tags) + 1 margin = 3 lines
	return max((v.height-14)/3, 1)
}

func (v *TopicListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *TopicListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, send(BackToProject{Project: v.project})
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.topics)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if _, ok := v.selected(); ok {
			v.viewing = true
		}
		return v, nil
	case key.Matches(msg, v.keys.Toggle):
		return v, v.toggleStatus()
	case key.Matches(msg, v.keys.MoveUp):
		return v, v.move(true)
	case key.Matches(msg, v.keys.MoveDown):
		return v, v.move(false)
	case key.Matches(msg, v.keys.New):
		v.creating = newTopicForm(v.session, v.project.ID, v.meeting.ID, v.styles, v.keys)
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
	}
	return v, nil
}

func (v *TopicListView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewing = false
	case key.Matches(msg, v.keys.Toggle):
		return v, v.toggleStatus()
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

// toggleStatus closes or reopens the selected topic. At most one change per
// topic is in flight.
func (v *TopicListView) toggleStatus() tea.Cmd {
	row, ok := v.selected()
	if !ok || v.pending[row.topic.ID] {
		return nil
	}
	id, closed := row.topic.ID, !row.topic.Closed()
	v.pending[id] = true
	v.followID = id
	ctx, store, pid, mid := v.session.Context(), v.session.Topics, v.project.ID, v.meeting.ID
	return func() tea.Msg {
		err := store.SetStatus(ctx, pid, mid, id, closed)
		return topicStatusMsg{topicID: id, err: err}
	}
}

// move sends a reorder for the selected topic without waiting for it
func (v *TopicListView) move(up bool) tea.Cmd {
	row, ok := v.selected()
	if !ok {
		return nil
	}
	n := row.neighbors()
	var req topics.ReorderRequest
	switch {
	case up && n.CanMoveUp():
		req = n.MoveUp(row.topic.ID)
	case !up && n.CanMoveDown():
		req = n.MoveDown(row.topic.ID)
	default:
		return nil
	}
	v.followID = row.topic.ID
	ctx, store, pid, mid := v.session.Context(), v.session.Topics, v.project.ID, v.meeting.ID
	return func() tea.Msg {
		return topicReorderedMsg{topicID: req.TopicID, err: store.Reorder(ctx, pid, mid, req)}
	}
}

// View renders the view
func (v *TopicListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.creating != nil {
		return v.creating.view(v.width, v.height)
	}
	if v.viewing {
		if row, ok := v.selected(); ok {
			return v.renderDetail(row.topic)
		}
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	switch v.state {
	case loading:
		b.WriteString(v.spinner.View() + v.styles.TitleMuted.Render(" Loading topics..."))
	case loadFailed:
		b.WriteString(renderError(v.styles, v.err, styles.ContentWidth(v.width)-4))
	default:
		b.WriteString(v.renderTopicList())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TopicListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	crumb := s.TitleMuted.Render(fit("← "+v.project.Name, width))
	title := s.Title.Render(fit(v.meeting.Name, width))
	when := s.TitleMuted.Render(v.meeting.StartDate.Local().Format("Monday, Jan 2 2006 15:04"))

	lines := []string{crumb, title, when}
	if v.state == loaded {
		p := topics.ProgressOf(v.topics)
		count := fmt.Sprintf("%d / %d topics done", p.Done, p.Total)
		barWidth := clamp(width-len(count)-2, 5, 40)
		lines = append(lines, "", s.ProgressBar(p.Ratio(), barWidth)+"  "+s.TitleMuted.Render(count))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TopicListView) renderTopicList() string {
	s := v.styles

	if len(v.topics) == 0 {
		return s.TitleMuted.Render("No topics. Press 'n' to create one.")
	}

	rows := v.rows()
	openCount := len(topics.Open(v.topics))

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(rows))
	for i := v.scrollY; i < endIdx; i++ {
		// a section header precedes its first row, or the first visible one
		switch {
		case i < openCount && (i == 0 || i == v.scrollY):
			items = append(items, v.sectionHeader("Open", openCount))
		case i == openCount || (i > openCount && i == v.scrollY):
			items = append(items, v.sectionHeader("Closed", len(rows)-openCount))
		}
		items = append(items, v.renderTopicItem(rows[i].topic, i == v.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TopicListView) sectionHeader(name string, count int) string {
	return v.styles.Title.Render(name) + " " + v.styles.Badge.Render(fmt.Sprint(count)) + "\n"
}

func (v *TopicListView) checkbox(t models.Topic) string {
	switch {
	case v.pending[t.ID]:
		return "[~]"
	case t.Closed():
		return "[x]"
	default:
		return "[ ]"
	}
}

func (v *TopicListView) renderTopicItem(t models.Topic, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	prefix := v.checkbox(t) + " " + fmt.Sprintf("#%d", t.ID) + " "
	title := t.Title
	if t.AssignedTo(v.session.User.ID) {
		title = "● " + title
	}
	titleLine := prefix + fit(title, width-len(prefix)-4)

	// Tags line (below title, like description in project list)
	var tagsLine string
	if len(t.Tags) > 0 {
		chips := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			chips = append(chips, s.Chip(tag.Title, tag.Color))
		}
		tagsLine = strings.Join(chips, " ")
	} else {
		tagsLine = s.TitleMuted.Render("no tags")
	}

	// Apply styling based on selection state
	titleStyle := s.ListItem
	if t.Closed() {
		titleStyle = titleStyle.Inherit(s.TopicClosed)
	}
	tagLineStyle := s.ListItem
	if selected {
		titleStyle = s.ListSelected
		tagLineStyle = s.ListSelected
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Width(width).Render(titleLine),
		tagLineStyle.Width(width).Render(tagsLine),
	) + "\n"
}

func (v *TopicListView) renderDetail(t models.Topic) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	status := s.Success.Render("open")
	if t.Closed() {
		status = s.TitleMuted.Render("closed " + t.ClosedAt.Time.Local().Format("Jan 2 15:04"))
	}
	if v.pending[t.ID] {
		status = s.TitleMuted.Render("updating…")
	}

	lines := []string{
		s.TopicID.Render(fmt.Sprintf("#%d", t.ID)) + "  " + status,
		s.Title.Render(fit(t.Title, width)),
		"",
	}
	if len(t.AssignedUsers) > 0 {
		names := make([]string, 0, len(t.AssignedUsers))
		for _, u := range t.AssignedUsers {
			name := u.Name
			if name == "" {
				name = u.ID
			}
			if u.ID == v.session.User.ID {
				name = s.Assigned.Render(name + " (you)")
			}
			names = append(names, name)
		}
		lines = append(lines, "Assigned: "+strings.Join(names, ", "))
	}
	if len(t.Tags) > 0 {
		chips := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			chips = append(chips, s.Chip(tag.Title, tag.Color))
		}
		lines = append(lines, "Tags: "+strings.Join(chips, " "))
	}
	lines = append(lines,
		"",
		markdown.RenderOr(t.Description, s.TitleMuted.Render("(no description)"), width),
		"",
		s.Help.Render(fmt.Sprintf("%s open/close • %s back", s.HelpKey.Render("space"), s.HelpKey.Render("esc"))),
	)
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, lines...), v.width, v.height)
}

func (v *TopicListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	moveUp, moveDown := s.HelpKey.Render("K")+" up", s.HelpKey.Render("J")+" down"
	if row, ok := v.selected(); ok {
		n := row.neighbors()
		if !n.CanMoveUp() {
			moveUp = s.TitleMuted.Faint(true).Render("K up")
		}
		if !n.CanMoveDown() {
			moveDown = s.TitleMuted.Faint(true).Render("J down")
		}
	}

	return s.Help.Render(fmt.Sprintf("%s view • %s open/close • %s • %s • %s new • %s back",
		s.HelpKey.Render("↵"),
		s.HelpKey.Render("space"),
		moveUp,
		moveDown,
		s.HelpKey.Render("n"),
		s.HelpKey.Render("esc"),
	))
}

func (v *TopicListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view topic",
		s.HelpKey.Render("space") + "  open/close topic",
		s.HelpKey.Render("K") + "      move up",
		s.HelpKey.Render("J") + "      move down",
		s.HelpKey.Render("n") + "      new topic",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("esc") + "    back to project",
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
