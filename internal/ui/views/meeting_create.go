package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

// DateLayout is how meeting start dates are typed and shown
const DateLayout = "2006-01-02 15:04"

type meetingValues struct {
	Name        string
	Description string
	Date        string
}

func newMeetingForm(sess *session.Session, projectID int64, now func() time.Time, s *styles.Styles, k keys.KeyMap) *formModel[meetingValues] {
	return &formModel[meetingValues]{
		title: "New Meeting",
		fields: []*field{
			newField("Title", "Meeting title", 200),
			newAreaField("Description", "Agenda, notes (markdown)", 2000),
			newField("Date", DateLayout, len(DateLayout)),
		},
		form: form.New(func() meetingValues {
			return meetingValues{Date: now().Format(DateLayout)}
		}),
		read: func(f []*field) meetingValues {
			return meetingValues{
				Name:        strings.TrimSpace(f[0].value()),
				Description: strings.TrimSpace(f[1].value()),
				Date:        strings.TrimSpace(f[2].value()),
			}
		},
		write: func(f []*field, v meetingValues) {
			f[0].setValue(v.Name)
			f[1].setValue(v.Description)
			f[2].setValue(v.Date)
		},
		// the server judges the title; only the typed date is checked here
		validate: func(v meetingValues) error {
			_, err := parseMeetingDate(v.Date)
			return err
		},
		submit: func(ctx context.Context, v meetingValues) (int64, error) {
			start, err := parseMeetingDate(v.Date)
			if err != nil {
				return 0, err
			}
			m, err := sess.Meetings.Create(ctx, projectID, v.Name, v.Description, start)
			if err != nil {
				return 0, err
			}
			return m.ID, nil
		},
		success:     createdText("Meeting"),
		enterIntent: map[int]form.Intent{0: form.SaveAndNew},
		ctx:         sess.Context(),
		allowNew:    true,
		button:      "Create",
		styles:      s,
		keys:        k,
	}
}

func parseMeetingDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like %s", DateLayout)
	}
	return t, nil
}
