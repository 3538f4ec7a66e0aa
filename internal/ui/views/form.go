package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

// field is one labelled input, single-line or multi-line
type field struct {
	label     string
	multiline bool
	input     textinput.Model
	area      textarea.Model
}

func newField(label, placeholder string, limit int) *field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return &field{label: label, input: in}
}

func newAreaField(label, placeholder string, limit int) *field {
	area := textarea.New()
	area.Placeholder = placeholder
	area.CharLimit = limit
	area.SetWidth(50)
	area.SetHeight(3)
	area.ShowLineNumbers = false
	return &field{label: label, multiline: true, area: area}
}

func (f *field) value() string {
	if f.multiline {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) setValue(v string) {
	if f.multiline {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f *field) focus() {
	if f.multiline {
		f.area.Focus()
		return
	}
	f.input.Focus()
}

func (f *field) blur() {
	if f.multiline {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *field) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func (f *field) view(width int) string {
	if f.multiline {
		f.area.SetWidth(width)
		return f.area.View()
	}
	f.input.Width = width - 2
	return f.input.View()
}

// formSubmittedMsg carries a mutation result back to the form that sent it
type formSubmittedMsg struct {
	owner any
	id    int64
	err   error
}

// formClosedMsg is sent once when a form is done: after a SaveAndClose
// success (id set) or on cancel.
type formClosedMsg struct {
	owner    any
	id       int64
	canceled bool
}

// formModel binds input fields to a form.Form and a mutation
type formModel[V any] struct {
	title  string
	fields []*field
	focus  int
	form   *form.Form[V]

	// read collects values from the fields, write puts them back
	read  func([]*field) V
	write func([]*field, V)
	// validate may reject values before any request is made
	validate func(V) error
	submit   func(context.Context, V) (int64, error)
	// success names the saved entity for the toast
	success func(id int64) string

	// enterIntent lists fields where Enter submits at once instead of
	// moving on
	enterIntent map[int]form.Intent

	ctx      context.Context
	allowNew bool
	button   string
	styles   *styles.Styles
	keys     keys.KeyMap
}

func (f *formModel[V]) init() tea.Cmd {
	f.form.Reset()
	f.write(f.fields, f.form.Values)
	f.setFocus(0)
	return textinput.Blink
}

func (f *formModel[V]) setFocus(i int) {
	for _, fl := range f.fields {
		fl.blur()
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	f.fields[f.focus].focus()
}

func (f *formModel[V]) submitWith(intent form.Intent) tea.Cmd {
	if f.form.Submitting() {
		return nil
	}
	values := f.read(f.fields)
	f.form.Values = values
	if f.validate != nil {
		if err := f.validate(values); err != nil {
			f.form.Fail(err)
			return nil
		}
	}
	if !f.form.Begin(intent) {
		return nil
	}
	ctx, submit, owner := f.ctx, f.submit, any(f)
	return func() tea.Msg {
		id, err := submit(ctx, values)
		return formSubmittedMsg{owner: owner, id: id, err: err}
	}
}

func (f *formModel[V]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case formSubmittedMsg:
		if msg.owner != any(f) {
			return nil
		}
		if msg.err != nil {
			f.form.Fail(msg.err)
			return nil
		}
		intent := f.form.Succeed(msg.id)
		f.write(f.fields, f.form.Values)
		note := toast(f.success(msg.id))
		if intent == form.SaveAndClose {
			return tea.Batch(note, send(formClosedMsg{owner: f, id: msg.id}))
		}
		f.setFocus(0)
		return note

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, f.keys.Back):
			return send(formClosedMsg{owner: f, canceled: true})
		case key.Matches(msg, f.keys.Save):
			return f.submitWith(form.SaveAndClose)
		case key.Matches(msg, f.keys.SaveNew) && f.allowNew:
			return f.submitWith(form.SaveAndNew)
		case key.Matches(msg, f.keys.Tab):
			f.setFocus(f.focus + 1)
			return nil
		case key.Matches(msg, f.keys.BackTab):
			f.setFocus(f.focus - 1)
			return nil
		case key.Matches(msg, f.keys.Enter) && !f.fields[f.focus].multiline:
			if intent, ok := f.enterIntent[f.focus]; ok {
				return f.submitWith(intent)
			}
			if f.focus == len(f.fields)-1 {
				return f.submitWith(form.SaveAndClose)
			}
			f.setFocus(f.focus + 1)
			return nil
		}
		if f.form.Submitting() {
			return nil
		}
		return f.fields[f.focus].update(msg)
	}
	return nil
}

func (f *formModel[V]) view(width, height int) string {
	s := f.styles
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-6, 20, 60)

	rows := []string{s.Title.Render(f.title), ""}
	for i, fl := range f.fields {
		box := s.Input
		if i == f.focus {
			box = s.InputFocused
		}
		rows = append(rows, fl.label+":", box.Width(inputWidth).Render(fl.view(inputWidth-2)), "")
	}

	switch f.form.State().(type) {
	case form.Submitting:
		rows = append(rows, s.TitleMuted.Render("Saving…"), "")
	case form.Failed:
		rows = append(rows, s.Error.Render(fit("Error: "+f.form.Error(), inputWidth)), "")
	}

	buttons := []string{s.ButtonPrimary.Render(" " + f.button + " ")}
	hints := "Tab: next • Ctrl+S: save • Esc: cancel"
	if f.allowNew {
		buttons = append(buttons, "  ", s.Button.Render(" Save & New "))
		hints = "Tab: next • Ctrl+S: save • Ctrl+N: save & new • Esc: cancel"
	}
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center, buttons...),
		"",
		s.TitleMuted.Render(hints),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

func createdText(entity string) func(int64) string {
	return func(id int64) string {
		return fmt.Sprintf("%s #%d created", entity, id)
	}
}
