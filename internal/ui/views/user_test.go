package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/perplex/internal/api"
	"github.com/tgienger/perplex/internal/session/sessiontest"
)

func loadedUserView(t *testing.T, fake *sessiontest.Fake) *UserView {
	t.Helper()
	v := NewUserView(sessiontest.NewSession(fake, "me"))
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	for _, msg := range collect(v.load()) {
		v.Update(msg)
	}
	return v
}

func TestUserViewRegistered(t *testing.T) {
	fake := sessiontest.NewFake()
	fake.Names["me"] = "Ann"
	v := loadedUserView(t, fake)

	assert.False(t, v.Unregistered())
	assert.Nil(t, v.renaming)
	assert.Contains(t, v.View(), "Ann")
	assert.Equal(t, "Ann", v.session.User.Name)
}

func TestUserViewNotFoundShowsRegistration(t *testing.T) {
	fake := sessiontest.NewFake()
	v := loadedUserView(t, fake)

	require.True(t, v.Unregistered())
	require.NotNil(t, v.renaming)
	out := v.View()
	assert.Contains(t, out, "Unregistered User!")
	assert.Contains(t, out, "Choose a Name")
	assert.Contains(t, out, "Register")
	assert.NotContains(t, out, "Error:")
}

func TestUserViewOtherErrorsUseGenericPath(t *testing.T) {
	fake := sessiontest.NewFake()
	fake.SetError("ResolveUser", &api.Error{Status: 500, Message: "database unavailable"})
	v := loadedUserView(t, fake)

	assert.False(t, v.Unregistered())
	assert.Nil(t, v.renaming)
	out := v.View()
	assert.Contains(t, out, "Error: database unavailable")
	assert.NotContains(t, out, "Unregistered User!")
}

func TestUserViewRegisterWithEnter(t *testing.T) {
	fake := sessiontest.NewFake()
	v := loadedUserView(t, fake)
	require.True(t, v.Unregistered())

	v.renaming.fields[0].setValue("Bea")
	_, cmd := v.Update(keyEnter)
	submitted := one[formSubmittedMsg](t, collect(cmd))
	require.NoError(t, submitted.err)

	_, cmd = v.Update(submitted)
	out := collect(cmd)
	assert.Equal(t, Toast{Text: "Name changed!"}, one[Toast](t, out))

	_, cmd = v.Update(one[formClosedMsg](t, out))
	assert.Nil(t, v.renaming)
	for _, msg := range collect(cmd) {
		v.Update(msg)
	}
	assert.False(t, v.Unregistered())
	assert.Contains(t, v.View(), "Bea")
	assert.Equal(t, []any{"Bea"}, fake.Calls("ChangeName")[0].Args)
}

func TestUserViewCancelRegistrationLeaves(t *testing.T) {
	v := loadedUserView(t, sessiontest.NewFake())
	_, cmd := v.Update(keyEsc)
	closed := one[formClosedMsg](t, collect(cmd))
	_, cmd = v.Update(closed)
	one[CloseProfile](t, collect(cmd))
}

func TestUserViewChangeNameFailureKeepsInput(t *testing.T) {
	fake := sessiontest.NewFake()
	fake.Names["me"] = "Ann"
	v := loadedUserView(t, fake)

	v.Update(runes("e"))
	require.NotNil(t, v.renaming)
	assert.Equal(t, "Ann", v.renaming.fields[0].value())

	fake.SetError("ChangeName", &api.Error{Status: 409, Message: "name already taken"})
	v.renaming.fields[0].setValue("Cat")
	_, cmd := v.Update(keyCtrlS)
	_, cmd = v.Update(one[formSubmittedMsg](t, collect(cmd)))
	assert.Nil(t, cmd)

	assert.Equal(t, "Cat", v.renaming.fields[0].value())
	assert.Contains(t, v.View(), "Error: name already taken")
}
