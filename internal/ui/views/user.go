package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/perplex/internal/api"
	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

type userResolvedMsg struct {
	gen  uint64
	name string
	err  error
}

type nameValues struct {
	Name string
}

func newNameForm(sess *session.Session, title, button string, s *styles.Styles, k keys.KeyMap) *formModel[nameValues] {
	return &formModel[nameValues]{
		title:  title,
		fields: []*field{newField("Name", "Your display name", 64)},
		form:   form.New(func() nameValues { return nameValues{} }),
		read: func(f []*field) nameValues {
			return nameValues{Name: strings.TrimSpace(f[0].value())}
		},
		write: func(f []*field, v nameValues) {
			f[0].setValue(v.Name)
		},
		validate: func(v nameValues) error {
			if v.Name == "" {
				return fmt.Errorf("name is required")
			}
			return nil
		},
		submit: func(ctx context.Context, v nameValues) (int64, error) {
			_, err := sess.Users.ChangeName(ctx, v.Name)
			return 0, err
		},
		success: func(int64) string { return "Name changed!" },
		ctx:     sess.Context(),
		button:  button,
		styles:  s,
		keys:    k,
	}
}

// UserView is the signed-in user's profile
type UserView struct {
	session *session.Session
	styles  *styles.Styles
	keys    keys.KeyMap
	spinner spinner.Model
	width   int
	height  int

	gen   uint64
	state loadState
	err   error
	name  string

	renaming *formModel[nameValues]
}

// NewUserView creates the profile view
func NewUserView(sess *session.Session) *UserView {
	s := styles.NewStyles()
	return &UserView{
		session: sess,
		styles:  s,
		keys:    keys.DefaultKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
	}
}

func (v *UserView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.spinner.Tick)
}

func (v *UserView) load() tea.Cmd {
	v.gen = nextGeneration()
	v.state = loading
	gen, ctx, users, uid := v.gen, v.session.Context(), v.session.Users, v.session.User.ID
	return func() tea.Msg {
		name, err := users.Refresh(ctx, uid)
		return userResolvedMsg{gen: gen, name: name, err: err}
	}
}

// Unregistered reports whether the server does not know the user yet
func (v *UserView) Unregistered() bool {
	return v.state == loadFailed && api.IsNotFound(v.err)
}

func (v *UserView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	case userResolvedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.state, v.err = loadFailed, msg.err
			if v.Unregistered() {
				v.renaming = newNameForm(v.session, "Choose a Name", "Register", v.styles, v.keys)
				return v, v.renaming.init()
			}
			return v, nil
		}
		v.state, v.err, v.name = loaded, nil, msg.name
		v.session.User.Name = msg.name
		return v, nil

	case formSubmittedMsg:
		if v.renaming != nil {
			return v, v.renaming.update(msg)
		}
		return v, nil

	case formClosedMsg:
		if v.renaming == nil || msg.owner != any(v.renaming) {
			return v, nil
		}
		v.renaming = nil
		if msg.canceled {
			if v.Unregistered() {
				return v, send(CloseProfile{})
			}
			return v, nil
		}
		return v, v.load()

	case tea.KeyMsg:
		if v.renaming != nil {
			return v, v.renaming.update(msg)
		}
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, send(CloseProfile{})
		case key.Matches(msg, v.keys.Edit) && v.state == loaded:
			v.renaming = newNameForm(v.session, "Change Name", "Save", v.styles, v.keys)
			cmd := v.renaming.init()
			v.renaming.fields[0].setValue(v.name)
			return v, cmd
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load()
		case key.Matches(msg, v.keys.SignOut):
			return v, send(SignOut{})
		}
	}
	return v, nil
}

func (v *UserView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if v.renaming != nil {
		if v.Unregistered() {
			return lipgloss.JoinVertical(lipgloss.Left,
				s.Error.Render("Unregistered User!"),
				s.TitleMuted.Render("Pick the name other people will see."),
				v.renaming.view(v.width, max(v.height-2, 0)),
			)
		}
		return v.renaming.view(v.width, v.height)
	}

	var body string
	switch v.state {
	case loading:
		body = v.spinner.View() + s.TitleMuted.Render(" Loading profile...")
	case loadFailed:
		body = renderError(s, v.err, contentWidth-4)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render(fit(v.name, contentWidth-4)),
			s.TitleMuted.Render(fit("ID: "+v.session.User.ID, contentWidth-4)),
		)
	}

	help := s.Help.Render(fmt.Sprintf("%s change name • %s refresh • %s sign out • %s back",
		s.HelpKey.Render("e"),
		s.HelpKey.Render("r"),
		s.HelpKey.Render("ctrl+o"),
		s.HelpKey.Render("esc"),
	))
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, s.Title.Render("Profile"), "", body, help), v.width, v.height)
}
