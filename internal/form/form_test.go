package form

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tgienger/perplex/internal/api"
)

type meetingValues struct {
	Title       string
	Description string
	Date        time.Time
}

var epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newMeetingForm() *Form[meetingValues] {
	return New(func() meetingValues { return meetingValues{Date: epoch} })
}

func TestNewFormIsIdle(t *testing.T) {
	f := newMeetingForm()
	assert.Equal(t, Idle{}, f.State())
	assert.Equal(t, meetingValues{Date: epoch}, f.Values)
	assert.Empty(t, f.Error())
}

func TestBeginRejectsSecondSubmission(t *testing.T) {
	f := newMeetingForm()
	f.Values.Title = "Standup"

	assert.True(t, f.Begin(SaveAndClose))
	assert.False(t, f.Begin(SaveAndNew))
	assert.Equal(t, Submitting{Intent: SaveAndClose}, f.State())
}

func TestSucceedResetsValues(t *testing.T) {
	f := newMeetingForm()
	f.Values = meetingValues{Title: "Standup", Description: "daily", Date: epoch.Add(48 * time.Hour)}

	f.Begin(SaveAndClose)
	intent := f.Succeed(42)

	assert.Equal(t, SaveAndClose, intent)
	assert.Equal(t, meetingValues{Date: epoch}, f.Values)
	assert.Equal(t, Succeeded{ID: 42, Intent: SaveAndClose}, f.State())
	assert.True(t, f.Begin(SaveAndNew), "a succeeded form accepts a new submission")
}

func TestFailKeepsValues(t *testing.T) {
	f := newMeetingForm()
	f.Values = meetingValues{Title: "Standup", Description: "daily", Date: epoch}

	f.Begin(SaveAndNew)
	f.Fail(&api.Error{Status: http.StatusBadRequest, Message: "name must be at least 3 characters"})

	assert.Equal(t, "Standup", f.Values.Title)
	assert.Equal(t, "daily", f.Values.Description)
	assert.Equal(t, "name must be at least 3 characters", f.Error())
	assert.True(t, f.Begin(SaveAndNew), "a failed form can be resubmitted")
}

func TestFailWithTransportError(t *testing.T) {
	f := newMeetingForm()
	f.Begin(SaveAndNew)
	f.Fail(errors.New("connection refused"))
	assert.Equal(t, "connection refused", f.Error())
}

func TestReset(t *testing.T) {
	f := newMeetingForm()
	f.Values.Title = "x"
	f.Begin(SaveAndNew)
	f.Fail(errors.New("boom"))

	f.Reset()

	assert.Equal(t, Idle{}, f.State())
	assert.Equal(t, meetingValues{Date: epoch}, f.Values)
}
